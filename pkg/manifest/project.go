// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"github.com/uniget/uniget/pkg/semver"
)

// Project is a loaded package manifest.
type Project struct {
	ID          string   `json:"id"`
	Version     string   `json:"version,omitempty"`
	Title       string   `json:"title,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Owners      []string `json:"owners,omitempty"`
	Description string   `json:"description,omitempty"`

	Dependencies Dependencies `json:"dependencies,omitzero"`
	// MergedDependencies is only present on descriptors written by packing a
	// manifest that vendors its dependency closure.
	MergedDependencies Dependencies `json:"mergedDependencies,omitzero"`

	Files []FileSpec `json:"files,omitempty"`
}

// Validate checks the fields an operation relies on. Restore only needs an id;
// publishing also needs a parseable version and at least one file.
func (p *Project) Validate(path string, forPublish bool) error {
	if p.ID == "" {
		return newError(path, "id is required")
	}
	if !forPublish {
		return nil
	}

	if p.Version == "" {
		return newError(path, "version is required to pack %s", p.ID)
	}
	if _, err := semver.Parse(p.Version); err != nil {
		return &Error{Path: path, Reason: "version is not a semantic version", Err: err}
	}
	if len(p.Files) == 0 {
		return newError(path, "files must list at least one entry")
	}
	return nil
}

// HasDependencies reports whether restore has anything to do.
func (p *Project) HasDependencies() bool {
	return p.Dependencies.Len() > 0
}
