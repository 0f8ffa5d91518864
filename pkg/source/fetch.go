// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/dnscache"
)

var (
	// ErrNotFound is returned when the download URL does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrRateLimited is returned when the host answers 429.
	ErrRateLimited = errors.New("rate limited by upstream")
	// ErrUpstreamDown is returned for 5xx answers and open circuit breakers.
	ErrUpstreamDown = errors.New("upstream host unavailable")
)

var (
	sharedResolver     = &dnscache.Resolver{}
	startResolverCycle sync.Once
)

type (
	// Artifact is an open download.
	Artifact struct {
		Body io.ReadCloser
		// Size is -1 when the host does not announce it.
		Size        int64
		ContentType string
	}

	// Downloader fetches an artifact by URL.
	Downloader interface {
		Fetch(ctx context.Context, url string) (*Artifact, error)
	}

	// Fetcher downloads release assets, retrying rate-limited and failing
	// hosts with exponential backoff.
	Fetcher struct {
		client     *http.Client
		userAgent  string
		maxRetries int
		baseDelay  time.Duration
		authFn     func(url string) (headerName, headerValue string)
	}

	// FetchOption configures a Fetcher.
	FetchOption func(*Fetcher)
)

// WithFetchHTTPClient sets a custom HTTP client.
func WithFetchHTTPClient(c *http.Client) FetchOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithFetchUserAgent sets the User-Agent header.
func WithFetchUserAgent(ua string) FetchOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) FetchOption {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseDelay sets the first backoff delay.
func WithBaseDelay(d time.Duration) FetchOption {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithTimeout bounds a whole download, body included. Zero keeps the default.
func WithTimeout(d time.Duration) FetchOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithAuthFunc sets a function returning the auth header for a URL. Empty
// strings skip authentication.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) FetchOption {
	return func(f *Fetcher) {
		f.authFn = fn
	}
}

// NewFetcher creates a Fetcher whose transport resolves hosts through a shared
// DNS cache.
func NewFetcher(opts ...FetchOption) *Fetcher {
	startResolverCycle.Do(func() {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				sharedResolver.Refresh(true)
			}
		}()
	})

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: 10 * time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := sharedResolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					var lastErr error
					for _, ip := range ips {
						conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if dialErr == nil {
							return conn, nil
						}
						lastErr = dialErr
					}
					return nil, fmt.Errorf("failed to dial any resolved IP for %s: %w", host, lastErr)
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:  "uniget",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url. The caller must close Artifact.Body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Artifact, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			delay += time.Duration(float64(delay) * rand.Float64() * 0.1)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		artifact, err := f.doFetch(ctx, url)
		if err == nil {
			return artifact, nil
		}
		lastErr = err

		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamDown) {
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (*Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/octet-stream")
	if f.authFn != nil {
		if name, value := f.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", redactURL(url), err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		size := int64(-1)
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			if n, parseErr := strconv.ParseInt(cl, 10, 64); parseErr == nil {
				size = n
			}
		}
		return &Artifact{
			Body:        resp.Body,
			Size:        size,
			ContentType: resp.Header.Get("Content-Type"),
		}, nil

	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, ErrNotFound

	case resp.StatusCode == http.StatusTooManyRequests:
		_ = resp.Body.Close()
		return nil, ErrRateLimited

	case resp.StatusCode >= 500:
		_ = resp.Body.Close()
		return nil, ErrUpstreamDown

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
