// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	xsemver "golang.org/x/mod/semver"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

// versionRegex matches a complete semantic version with an optional leading "v".
var versionRegex = regexp.MustCompile(
	`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-((?:0|[1-9]\d*|\d*[A-Za-z-][0-9A-Za-z-]*)(?:\.(?:0|[1-9]\d*|\d*[A-Za-z-][0-9A-Za-z-]*))*))?` +
		`(?:\+([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?$`)

type (
	// Version is a parsed semantic version. The zero value is 0.0.0.
	Version struct {
		Major      int
		Minor      int
		Patch      int
		Prerelease string
		Build      string
	}

	// InvalidVersionError is returned when a string is not a semantic version.
	// It wraps ErrInvalidVersion for errors.Is() compatibility.
	InvalidVersionError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid version %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid version %q", e.Value)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is for programmatic detection.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Parse parses a full semantic version ("1.2.3", "v1.2.3-beta.1+build.5").
// All three numeric components are required.
func Parse(s string) (Version, error) {
	matches := versionRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return Version{}, &InvalidVersionError{Value: s}
	}

	var v Version
	var err error
	if v.Major, err = strconv.Atoi(matches[1]); err != nil {
		return Version{}, &InvalidVersionError{Value: s, Reason: "major component out of range"}
	}
	if v.Minor, err = strconv.Atoi(matches[2]); err != nil {
		return Version{}, &InvalidVersionError{Value: s, Reason: "minor component out of range"}
	}
	if v.Patch, err = strconv.Atoi(matches[3]); err != nil {
		return Version{}, &InvalidVersionError{Value: s, Reason: "patch component out of range"}
	}
	v.Prerelease = matches[4]
	v.Build = matches[5]

	return v, nil
}

// MustParse is like Parse but panics on invalid input. Intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the canonical form without a leading "v".
func (v Version) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		sb.WriteString("-")
		sb.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		sb.WriteString("+")
		sb.WriteString(v.Build)
	}
	return sb.String()
}

// Compare returns -1, 0 or 1 following semantic version precedence.
// Build metadata does not participate in ordering.
func (v Version) Compare(other Version) int {
	return xsemver.Compare(v.canonical(), other.canonical())
}

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether v and other have the same precedence.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsPrerelease reports whether the version carries a prerelease tag.
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// sameTuple reports whether both versions share major.minor.patch.
func (v Version) sameTuple(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor && v.Patch == other.Patch
}

// canonical renders the "vMAJOR.MINOR.PATCH[-PRE]" form understood by x/mod/semver.
func (v Version) canonical() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}
