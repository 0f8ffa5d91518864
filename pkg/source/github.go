// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// defaultPerPage is the number of releases fetched per API page.
	defaultPerPage = 100

	// maxPages bounds pagination.
	maxPages = 10

	// maxJSONResponseBytes is the upper bound on JSON API response size (10 MB).
	maxJSONResponseBytes = 10 << 20

	// DefaultGitHubAPI is the public GitHub REST endpoint.
	DefaultGitHubAPI = "https://api.github.com"
)

type (
	// RateLimitError is returned when the GitHub API rate limit is exceeded.
	RateLimitError struct {
		Limit   int
		ResetAt time.Time
	}

	// Release is a GitHub release with its assets.
	Release struct {
		TagName    string
		Prerelease bool
		Draft      bool
		Assets     []Asset
	}

	// Asset is one downloadable release file.
	Asset struct {
		Name               string
		BrowserDownloadURL string
		Size               int64
	}

	githubRelease struct {
		TagName    string        `json:"tag_name"`
		Prerelease bool          `json:"prerelease"`
		Draft      bool          `json:"draft"`
		Assets     []githubAsset `json:"assets"`
	}

	githubAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	}

	// GitHubClient lists releases through the GitHub REST API.
	GitHubClient struct {
		httpClient *http.Client
		baseURL    string
		token      string
		userAgent  string
	}

	// ClientOption configures a GitHubClient.
	ClientOption func(*GitHubClient)
)

// Error formats the rate limit details as a human-readable message.
func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return fmt.Sprintf("GitHub API quota of %d requests used up", e.Limit)
	}
	return fmt.Sprintf("GitHub API quota of %d requests used up until %s",
		e.Limit, e.ResetAt.UTC().Format(time.RFC3339))
}

// Unwrap lets callers match rate limiting regardless of where it was detected.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *GitHubClient) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, for GitHub Enterprise or test servers.
func WithBaseURL(base string) ClientOption {
	return func(g *GitHubClient) {
		if base != "" {
			g.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithToken sets a token for authenticated requests (5000 requests/hour instead of 60).
func WithToken(token string) ClientOption {
	return func(g *GitHubClient) {
		g.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(g *GitHubClient) {
		if ua != "" {
			g.userAgent = ua
		}
	}
}

// NewGitHubClient creates a client for DefaultGitHubAPI.
func NewGitHubClient(opts ...ClientOption) *GitHubClient {
	c := &GitHubClient{
		httpClient: http.DefaultClient,
		baseURL:    DefaultGitHubAPI,
		userAgent:  "uniget",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListReleases fetches every non-draft release of owner/repo, following
// pagination up to maxPages.
func (c *GitHubClient) ListReleases(ctx context.Context, owner, repo string) ([]Release, error) {
	pageURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), defaultPerPage)

	var all []Release
	for page := 0; page < maxPages && pageURL != ""; page++ {
		resp, err := c.doRequest(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("listing releases of %s/%s: %w", owner, repo, err)
		}

		if rlErr := checkRateLimit(resp); rlErr != nil {
			_ = resp.Body.Close()
			return nil, rlErr
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("listing releases of %s/%s: %w", owner, repo, ErrNotFound)
		case resp.StatusCode != http.StatusOK:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("listing releases of %s/%s: unexpected status %d", owner, repo, resp.StatusCode)
		}

		releases, parseErr := parseReleases(io.LimitReader(resp.Body, maxJSONResponseBytes))
		_ = resp.Body.Close()
		if parseErr != nil {
			return nil, fmt.Errorf("listing releases of %s/%s: %w", owner, repo, parseErr)
		}

		for i := range releases {
			if !releases[i].Draft {
				all = append(all, releases[i])
			}
		}

		pageURL = parseLinkHeader(resp.Header.Get("Link"))
	}

	return all, nil
}

// AuthHeader returns the Authorization header for rawURL when it targets a
// GitHub host and a token is configured. It plugs into WithAuthFunc.
func (c *GitHubClient) AuthHeader(rawURL string) (name, value string) {
	if c.token == "" {
		return "", ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || !isGitHubHost(u, c.baseURL) {
		return "", ""
	}
	return "Authorization", "Bearer " + c.token
}

func (c *GitHubClient) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building release listing request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)
	if name, value := c.AuthHeader(reqURL); name != "" {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstreamDown, redactURL(reqURL), err)
	}
	return resp, nil
}

// checkRateLimit reports an exhausted quota. GitHub answers 403 or 429 with
// X-RateLimit-Remaining set to zero.
func checkRateLimit(resp *http.Response) error {
	rem, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil || rem > 0 {
		return nil //nolint:nilerr // missing or malformed header means no quota info
	}

	rlErr := &RateLimitError{}
	if limit, convErr := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit")); convErr == nil {
		rlErr.Limit = limit
	}
	if reset, convErr := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); convErr == nil {
		rlErr.ResetAt = time.Unix(reset, 0)
	}
	return rlErr
}

func parseReleases(body io.Reader) ([]Release, error) {
	var raw []githubRelease
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding releases: %w", err)
	}

	releases := make([]Release, 0, len(raw))
	for _, gr := range raw {
		assets := make([]Asset, 0, len(gr.Assets))
		for _, ga := range gr.Assets {
			assets = append(assets, Asset(ga))
		}
		releases = append(releases, Release{
			TagName:    gr.TagName,
			Prerelease: gr.Prerelease,
			Draft:      gr.Draft,
			Assets:     assets,
		})
	}
	return releases, nil
}

// parseLinkHeader returns the rel="next" target of a Link header, e.g.
// `<https://api.github.com/...&page=2>; rel="next", <...>; rel="last"`.
func parseLinkHeader(header string) string {
	for link := range strings.SplitSeq(header, ",") {
		target, params, ok := strings.Cut(link, ";")
		if !ok || !strings.Contains(params, `rel="next"`) {
			continue
		}
		target = strings.TrimSpace(target)
		if strings.HasPrefix(target, "<") && strings.HasSuffix(target, ">") {
			return target[1 : len(target)-1]
		}
	}
	return ""
}

// isGitHubHost reports whether reqURL targets the configured API host or, for
// the public API, github.com itself.
func isGitHubHost(reqURL *url.URL, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(reqURL.Host, "github.com")
}

// redactURL strips query parameters and fragments for error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
