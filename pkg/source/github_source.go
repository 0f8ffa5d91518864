// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"fmt"

	"github.com/uniget/uniget/pkg/unitypackage"
)

// GitHub offers the "<id>.<version>.unitypackage" assets attached to the
// releases of a repository and caches downloads.
type GitHub struct {
	client     *GitHubClient
	downloader Downloader
	cache      *Cache
	// Force re-downloads assets that are already cached.
	Force bool
}

// NewGitHub creates a GitHub adapter.
func NewGitHub(client *GitHubClient, downloader Downloader, cache *Cache) *GitHub {
	return &GitHub{client: client, downloader: downloader, cache: cache}
}

// ListCandidates returns one candidate per matching asset across all non-draft releases.
func (g *GitHub) ListCandidates(ctx context.Context, ref Ref, id string) ([]Candidate, error) {
	if ref.Kind != KindGitHub {
		return nil, &Error{Source: ref.String(), ID: id, Reason: "not a GitHub source"}
	}

	releases, err := g.client.ListReleases(ctx, ref.Owner, ref.Repo)
	if err != nil {
		return nil, &Error{Source: ref.String(), ID: id, Reason: "cannot list releases", Err: err}
	}

	var candidates []Candidate
	for _, release := range releases {
		for _, asset := range release.Assets {
			v, ok := versionFromFileName(asset.Name, id)
			if !ok {
				continue
			}
			candidates = append(candidates, Candidate{Version: v, Handle: asset.BrowserDownloadURL})
		}
	}
	return candidates, nil
}

// Fetch downloads the candidate into the cache unless it is already there.
func (g *GitHub) Fetch(ctx context.Context, ref Ref, id string, c Candidate) (string, error) {
	path := g.cache.GitHubPath(ref.Owner, ref.Repo, unitypackage.FileName(id, c.Version.String()))
	if !g.Force && g.cache.Has(path) {
		return path, nil
	}

	artifact, err := g.downloader.Fetch(ctx, c.Handle)
	if err != nil {
		return "", &Error{Source: ref.String(), ID: id, Reason: fmt.Sprintf("cannot download %s", redactURL(c.Handle)), Err: err}
	}
	defer func() { _ = artifact.Body.Close() }()

	if err := g.cache.Store(path, artifact.Body); err != nil {
		return "", &Error{Source: ref.String(), ID: id, Reason: "cannot cache download", Err: err}
	}
	return path, nil
}
