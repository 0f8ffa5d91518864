// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidRange is the sentinel error wrapped by InvalidRangeError.
var ErrInvalidRange = errors.New("invalid version range")

const (
	opEQ operator = iota
	opLT
	opLE
	opGT
	opGE
)

var (
	// partialRegex matches one comparator token: an optional operator followed by a
	// possibly partial version whose components may be "*", "x" or "X".
	partialRegex = regexp.MustCompile(
		`^(<=|>=|<|>|=|\^|~>|~)?v?` +
			`(\*|x|X|0|[1-9]\d*)(?:\.(\*|x|X|0|[1-9]\d*))?(?:\.(\*|x|X|0|[1-9]\d*))?` +
			`(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?` +
			`(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

	// hyphenRegex matches "A - B" inclusive ranges.
	hyphenRegex = regexp.MustCompile(`^(\S+)\s+-\s+(\S+)$`)

	// operatorSpaceRegex glues an operator to its operand (">= 1.0.0" -> ">=1.0.0").
	operatorSpaceRegex = regexp.MustCompile(`(<=|>=|<|>|=|\^|~>|~)\s+`)
)

type (
	operator int

	comparator struct {
		op      operator
		version Version
	}

	// comparatorSet is an AND of comparators; an empty set matches every release.
	comparatorSet []comparator

	// Range is a parsed range expression: an OR of comparator sets.
	Range struct {
		text string
		sets []comparatorSet
	}

	// InvalidRangeError is returned when a range expression cannot be parsed.
	// It wraps ErrInvalidRange for errors.Is() compatibility.
	InvalidRangeError struct {
		Value  string
		Reason string
	}

	// partial is a version with possibly missing or wildcard components.
	// concrete counts the leading numeric components (0..3).
	partial struct {
		major, minor, patch int
		prerelease          string
		concrete            int
	}
)

// Error implements the error interface.
func (e *InvalidRangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid version range %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid version range %q", e.Value)
}

// Unwrap returns ErrInvalidRange so callers can use errors.Is for programmatic detection.
func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// ParseRange parses a range expression such as ">=1.0.0", "1.x", "^1.2.0",
// "1.0.0 - 2.0.0" or ">=1.0.0 <2.0.0 || 3.x". An empty expression matches any
// release version.
func ParseRange(s string) (Range, error) {
	r := Range{text: strings.TrimSpace(s)}

	for alt := range strings.SplitSeq(r.text, "||") {
		set, err := parseComparatorSet(strings.TrimSpace(alt))
		if err != nil {
			return Range{}, &InvalidRangeError{Value: s, Reason: err.Error()}
		}
		r.sets = append(r.sets, set)
	}

	return r, nil
}

// MustParseRange is like ParseRange but panics on invalid input.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the expression as written.
func (r Range) String() string {
	return r.text
}

// IsWildcard reports whether the expression is open-ended: it contains a "*" or
// "x" wildcard marker, or is empty.
func (r Range) IsWildcard() bool {
	return r.text == "" || strings.ContainsAny(r.text, "*x")
}

// Satisfies reports whether v falls inside the range. A prerelease version only
// satisfies a comparator set that names a prerelease on the same major.minor.patch.
func (r Range) Satisfies(v Version) bool {
	for _, set := range r.sets {
		if set.matches(v) {
			return true
		}
	}
	return false
}

func (s comparatorSet) matches(v Version) bool {
	for _, c := range s {
		if !c.matches(v) {
			return false
		}
	}

	if !v.IsPrerelease() {
		return true
	}
	for _, c := range s {
		if c.version.IsPrerelease() && c.version.sameTuple(v) {
			return true
		}
	}
	return false
}

func (c comparator) matches(v Version) bool {
	cmp := v.Compare(c.version)
	switch c.op {
	case opEQ:
		return cmp == 0
	case opLT:
		return cmp < 0
	case opLE:
		return cmp <= 0
	case opGT:
		return cmp > 0
	case opGE:
		return cmp >= 0
	default:
		return false
	}
}

func parseComparatorSet(s string) (comparatorSet, error) {
	if s == "" {
		return comparatorSet{}, nil
	}

	if m := hyphenRegex.FindStringSubmatch(s); m != nil {
		return parseHyphen(m[1], m[2])
	}

	set := comparatorSet{}
	for token := range strings.FieldsSeq(operatorSpaceRegex.ReplaceAllString(s, "$1")) {
		cs, err := parseComparator(token)
		if err != nil {
			return nil, err
		}
		set = append(set, cs...)
	}
	return set, nil
}

func parseHyphen(lowText, highText string) (comparatorSet, error) {
	low, err := parsePartial(lowText)
	if err != nil {
		return nil, err
	}
	high, err := parsePartial(highText)
	if err != nil {
		return nil, err
	}

	set := comparatorSet{}
	if low.concrete > 0 {
		set = append(set, comparator{opGE, low.floor()})
	}
	switch high.concrete {
	case 0:
	case 3:
		set = append(set, comparator{opLE, high.floor()})
	default:
		set = append(set, comparator{opLT, high.bump(high.concrete)})
	}
	return set, nil
}

func parsePartial(s string) (partial, error) {
	m := partialRegex.FindStringSubmatch(s)
	if m == nil || m[1] != "" {
		return partial{}, fmt.Errorf("malformed version %q", s)
	}
	return partialFromMatch(m)
}

func partialFromMatch(m []string) (partial, error) {
	var p partial
	components := []*int{&p.major, &p.minor, &p.patch}
	for i, text := range m[2:5] {
		if text == "" || text == "*" || text == "x" || text == "X" {
			break
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return partial{}, fmt.Errorf("component %q out of range", text)
		}
		*components[i] = n
		p.concrete++
	}
	if m[5] != "" {
		if p.concrete < 3 {
			return partial{}, fmt.Errorf("prerelease %q requires a full version", m[5])
		}
		p.prerelease = m[5]
	}
	return p, nil
}

// floor returns the smallest version matched by the partial.
func (p partial) floor() Version {
	return Version{Major: p.major, Minor: p.minor, Patch: p.patch, Prerelease: p.prerelease}
}

// bump increments the component at position n-1 (1=major, 2=minor, 3=patch) and
// zeroes the rest, yielding the exclusive upper bound of the partial.
func (p partial) bump(n int) Version {
	switch n {
	case 1:
		return Version{Major: p.major + 1}
	case 2:
		return Version{Major: p.major, Minor: p.minor + 1}
	default:
		return Version{Major: p.major, Minor: p.minor, Patch: p.patch + 1}
	}
}

// none is a comparator set that no release version satisfies.
func none() comparatorSet {
	return comparatorSet{{opLT, Version{}}}
}

func parseComparator(token string) ([]comparator, error) {
	m := partialRegex.FindStringSubmatch(token)
	if m == nil {
		return nil, fmt.Errorf("malformed comparator %q", token)
	}
	p, err := partialFromMatch(m)
	if err != nil {
		return nil, err
	}
	n := p.concrete

	switch m[1] {
	case "", "=":
		switch n {
		case 0:
			return nil, nil
		case 3:
			return []comparator{{opEQ, p.floor()}}, nil
		default:
			return []comparator{{opGE, p.floor()}, {opLT, p.bump(n)}}, nil
		}

	case "^":
		switch {
		case n == 0:
			return nil, nil
		case n == 1 || p.major != 0:
			return []comparator{{opGE, p.floor()}, {opLT, p.bump(1)}}, nil
		case n == 2 || p.minor != 0:
			return []comparator{{opGE, p.floor()}, {opLT, p.bump(2)}}, nil
		default:
			return []comparator{{opGE, p.floor()}, {opLT, p.bump(3)}}, nil
		}

	case "~", "~>":
		switch n {
		case 0:
			return nil, nil
		case 1:
			return []comparator{{opGE, p.floor()}, {opLT, p.bump(1)}}, nil
		default:
			return []comparator{{opGE, p.floor()}, {opLT, p.bump(2)}}, nil
		}

	case ">":
		switch n {
		case 0:
			return none(), nil
		case 3:
			return []comparator{{opGT, p.floor()}}, nil
		default:
			return []comparator{{opGE, p.bump(n)}}, nil
		}

	case ">=":
		if n == 0 {
			return nil, nil
		}
		return []comparator{{opGE, p.floor()}}, nil

	case "<":
		if n == 0 {
			return none(), nil
		}
		return []comparator{{opLT, p.floor()}}, nil

	case "<=":
		switch n {
		case 0:
			return nil, nil
		case 3:
			return []comparator{{opLE, p.floor()}}, nil
		default:
			return []comparator{{opLT, p.bump(n)}}, nil
		}
	}

	return nil, fmt.Errorf("unknown operator %q", m[1])
}
