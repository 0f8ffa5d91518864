// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"iter"
)

type (
	// DependencySpec declares one dependency of a package.
	DependencySpec struct {
		// Version is a range expression, or an exact version inside mergedDependencies.
		Version string `json:"version"`
		// Source is "local", "github:<owner>/<repo>" or "nuget:<id>".
		Source string `json:"source,omitempty"`
		// Includes and Excludes are target-path patterns applied on extraction.
		Includes []string `json:"includes,omitempty"`
		Excludes []string `json:"excludes,omitempty"`
		// ExcludeExtra skips files the package flags as extra.
		ExcludeExtra bool `json:"excludeExtra,omitempty"`
	}

	// Dependencies is an insertion-ordered map of package id to DependencySpec.
	// The zero value is an empty, usable map.
	Dependencies struct {
		keys  []string
		specs map[string]DependencySpec
	}
)

// NewDependencies builds an ordered map from parallel id and spec slices.
func NewDependencies(ids []string, specs []DependencySpec) Dependencies {
	var d Dependencies
	for i, id := range ids {
		d.Set(id, specs[i])
	}
	return d
}

// Set inserts or replaces a dependency. Replacing keeps the original position.
func (d *Dependencies) Set(id string, spec DependencySpec) {
	if d.specs == nil {
		d.specs = make(map[string]DependencySpec)
	}
	if _, exists := d.specs[id]; !exists {
		d.keys = append(d.keys, id)
	}
	d.specs[id] = spec
}

// Get returns the spec declared for id.
func (d Dependencies) Get(id string) (DependencySpec, bool) {
	spec, ok := d.specs[id]
	return spec, ok
}

// Len returns the number of dependencies.
func (d Dependencies) Len() int {
	return len(d.keys)
}

// IsZero reports whether the map is empty; it lets `omitzero` drop empty maps.
func (d Dependencies) IsZero() bool {
	return len(d.keys) == 0
}

// Keys returns the ids in declaration order.
func (d Dependencies) Keys() []string {
	return append([]string(nil), d.keys...)
}

// All iterates dependencies in declaration order.
func (d Dependencies) All() iter.Seq2[string, DependencySpec] {
	return func(yield func(string, DependencySpec) bool) {
		for _, id := range d.keys {
			if !yield(id, d.specs[id]) {
				return
			}
		}
	}
}

// MarshalJSON writes the map as a JSON object in declaration order.
func (d Dependencies) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.specs[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
