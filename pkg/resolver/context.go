// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"github.com/uniget/uniget/pkg/semver"
)

type (
	// PackageMap records the version committed for each package id, in commit order.
	PackageMap struct {
		// Order lists ids in the order they were committed.
		Order    []string
		versions map[string]semver.Version
	}

	// Context carries the state of one whole recursive resolution.
	Context struct {
		// OutputDir is the project root that packages are extracted into.
		OutputDir string

		// LocalRepositoryDir, when set, is scanned before any declared source.
		LocalRepositoryDir string

		PackageMap *PackageMap
	}
)

// NewPackageMap returns an empty map.
func NewPackageMap() *PackageMap {
	return &PackageMap{versions: make(map[string]semver.Version)}
}

// NewContext returns a Context with an empty PackageMap.
func NewContext(outputDir, localRepositoryDir string) *Context {
	return &Context{
		OutputDir:          outputDir,
		LocalRepositoryDir: localRepositoryDir,
		PackageMap:         NewPackageMap(),
	}
}

// Get returns the version committed for id.
func (m *PackageMap) Get(id string) (semver.Version, bool) {
	v, ok := m.versions[id]
	return v, ok
}

// Len returns the number of committed packages.
func (m *PackageMap) Len() int {
	return len(m.Order)
}

// Versions returns the committed versions as strings keyed by id.
func (m *PackageMap) Versions() map[string]string {
	out := make(map[string]string, len(m.versions))
	for id, v := range m.versions {
		out[id] = v.String()
	}
	return out
}

func (m *PackageMap) commit(id string, v semver.Version) {
	if _, ok := m.versions[id]; !ok {
		m.Order = append(m.Order, id)
	}
	m.versions[id] = v
}
