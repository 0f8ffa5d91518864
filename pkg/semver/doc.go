// SPDX-License-Identifier: MPL-2.0

// Package semver parses semantic versions and node-style range expressions, and
// implements the candidate-selection policy used wherever a package version must
// be chosen from a list of available releases.
//
// Open-ended ranges (containing a "*" or "x" wildcard) select the highest
// satisfying candidate; every other range selects the lowest satisfying candidate.
package semver
