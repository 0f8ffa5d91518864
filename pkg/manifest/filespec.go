// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"strings"
)

// DependenciesKeyword is the files entry that vendors the resolved dependency
// closure into the published package.
const DependenciesKeyword = "$dependencies$"

const (
	// PlainPath is a bare relative path. In a companion descriptor it is a target path.
	PlainPath FileKind = iota + 1
	// Keyword is a reserved token beginning with "$".
	Keyword
	// Structured is a {source, target, extra, merged} record.
	Structured
)

type (
	// FileKind discriminates the FileSpec variants.
	FileKind int

	// FileSpec is one entry of a manifest's files list. The variant is fixed at
	// load time; consumers switch on Kind.
	FileSpec struct {
		Kind FileKind
		// Path holds the text of a PlainPath or Keyword entry.
		Path   string
		Source string
		Target string
		// Extra marks an addon file that a consumer may choose to skip.
		Extra bool
		// Merged marks a file vendored from the dependency closure.
		Merged bool
	}

	fileItemWire struct {
		Source string `json:"source,omitempty"`
		Target string `json:"target,omitempty"`
		Extra  bool   `json:"extra,omitempty"`
		Merged bool   `json:"merged,omitempty"`
	}
)

// String returns a short label for diagnostics.
func (k FileKind) String() string {
	switch k {
	case PlainPath:
		return "path"
	case Keyword:
		return "keyword"
	case Structured:
		return "item"
	default:
		return "unknown"
	}
}

// NewPathSpec classifies a bare string entry as a Keyword or a PlainPath.
func NewPathSpec(s string) FileSpec {
	if strings.HasPrefix(s, "$") {
		return FileSpec{Kind: Keyword, Path: s}
	}
	return FileSpec{Kind: PlainPath, Path: s}
}

// NewItemSpec builds a Structured entry.
func NewItemSpec(source, target string) FileSpec {
	return FileSpec{Kind: Structured, Source: source, Target: target}
}

// TargetSpec builds the descriptor form of a packed file: a bare target path,
// or a record when a flag has to be carried along.
func TargetSpec(target string, extra, merged bool) FileSpec {
	if !extra && !merged {
		return FileSpec{Kind: PlainPath, Path: target}
	}
	return FileSpec{Kind: Structured, Target: target, Extra: extra, Merged: merged}
}

// TargetPath returns where the entry lands inside a project, reading a PlainPath
// as a target path the way companion descriptors record them.
func (f FileSpec) TargetPath() string {
	if f.Kind == Structured {
		return f.Target
	}
	return f.Path
}

// IsDependenciesKeyword reports whether the entry is the closure-flattening token.
func (f FileSpec) IsDependenciesKeyword() bool {
	return f.Kind == Keyword && strings.EqualFold(f.Path, DependenciesKeyword)
}

// MarshalJSON writes PlainPath and Keyword entries as strings and Structured
// entries as objects.
func (f FileSpec) MarshalJSON() ([]byte, error) {
	if f.Kind == Structured {
		return json.Marshal(fileItemWire{Source: f.Source, Target: f.Target, Extra: f.Extra, Merged: f.Merged})
	}
	return json.Marshal(f.Path)
}
