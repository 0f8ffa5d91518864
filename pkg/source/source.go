// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/uniget/uniget/pkg/semver"
)

const (
	// KindLocal reads containers from the local repository directory.
	KindLocal Kind = "local"
	// KindGitHub reads containers from GitHub release assets.
	KindGitHub Kind = "github"
	// KindNuGet is recognized but not supported.
	KindNuGet Kind = "nuget"
)

type (
	// Kind names a source adapter.
	Kind string

	// Ref is a parsed source string.
	Ref struct {
		Kind  Kind
		Owner string
		Repo  string
		// Package holds the NuGet package id.
		Package string
		raw     string
	}

	// Candidate is one published version an adapter can fetch.
	Candidate struct {
		Version semver.Version
		// Handle is adapter specific: a file path or a download URL.
		Handle string
	}

	// Adapter lists and fetches the containers published for a package id.
	Adapter interface {
		ListCandidates(ctx context.Context, ref Ref, id string) ([]Candidate, error)
		// Fetch makes the candidate available locally and returns its path.
		Fetch(ctx context.Context, ref Ref, id string, c Candidate) (string, error)
	}
)

// String returns the source string the Ref was parsed from.
func (r Ref) String() string {
	return r.raw
}

// ParseSource parses "local", "github:<owner>/<repo>",
// "https://github.com/<owner>/<repo>" or "nuget:<id>".
func ParseSource(s string) (Ref, error) {
	trimmed := strings.TrimSpace(s)
	switch {
	case strings.EqualFold(trimmed, string(KindLocal)):
		return Ref{Kind: KindLocal, raw: s}, nil

	case hasPrefixFold(trimmed, "github:"):
		owner, repo, ok := splitOwnerRepo(trimmed[len("github:"):])
		if !ok {
			return Ref{}, &Error{Source: s, Reason: "expected github:<owner>/<repo>"}
		}
		return Ref{Kind: KindGitHub, Owner: owner, Repo: repo, raw: s}, nil

	case hasPrefixFold(trimmed, "https://github.com/"), hasPrefixFold(trimmed, "http://github.com/"):
		u, err := url.Parse(trimmed)
		if err != nil {
			return Ref{}, &Error{Source: s, Reason: "invalid GitHub URL", Err: err}
		}
		owner, repo, ok := splitOwnerRepo(strings.TrimSuffix(u.Path, ".git"))
		if !ok {
			return Ref{}, &Error{Source: s, Reason: "cannot determine GitHub repository from URL"}
		}
		return Ref{Kind: KindGitHub, Owner: owner, Repo: repo, raw: s}, nil

	case hasPrefixFold(trimmed, "nuget:"):
		pkg := strings.TrimSpace(trimmed[len("nuget:"):])
		if pkg == "" {
			return Ref{}, &Error{Source: s, Reason: "expected nuget:<id>"}
		}
		return Ref{Kind: KindNuGet, Package: pkg, raw: s}, nil

	case trimmed == "":
		return Ref{}, &Error{Reason: "source is required"}

	default:
		return Ref{}, &Error{Source: s, Reason: "cannot recognize source"}
	}
}

// Select picks the candidate the version selection policy prefers for r.
func Select(r semver.Range, candidates []Candidate) (Candidate, bool) {
	versions := make([]semver.Version, len(candidates))
	for i, c := range candidates {
		versions[i] = c.Version
	}
	i := semver.SelectCandidate(r, versions)
	if i < 0 {
		return Candidate{}, false
	}
	return candidates[i], true
}

func splitOwnerRepo(s string) (owner, repo string, ok bool) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
