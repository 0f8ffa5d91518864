// SPDX-License-Identifier: MPL-2.0

package unitypackage

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
)

// SampleKeyword excludes every path whose directory mentions "sample".
const SampleKeyword = "$sample$"

// Filter decides whether a target path is extracted.
type Filter func(targetPath string) bool

// MakeFilter builds a Filter from regular-expression include and exclude lists.
// Exclusions are checked first; with no includes every remaining path passes.
// SampleKeyword in excludes is matched case-insensitively and removed from the
// expression list.
func MakeFilter(includes, excludes []string) (Filter, error) {
	excludeSamples := false
	excludes = slices.DeleteFunc(slices.Clone(excludes), func(s string) bool {
		if strings.EqualFold(s, SampleKeyword) {
			excludeSamples = true
			return true
		}
		return false
	})

	excludeRes, err := compileAll(excludes)
	if err != nil {
		return nil, err
	}
	includeRes, err := compileAll(includes)
	if err != nil {
		return nil, err
	}

	return func(p string) bool {
		if excludeSamples && isSamplePath(p) {
			return false
		}
		if matchAny(excludeRes, p) {
			return false
		}
		if len(includeRes) > 0 {
			return matchAny(includeRes, p)
		}
		return true
	}, nil
}

func isSamplePath(p string) bool {
	return strings.Contains(strings.ToLower(path.Dir(NormalizePath(p))), "sample")
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func matchAny(res []*regexp.Regexp, p string) bool {
	for _, re := range res {
		if re.MatchString(p) {
			return true
		}
	}
	return false
}
