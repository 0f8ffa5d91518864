// SPDX-License-Identifier: MPL-2.0

package semver

// SelectCandidate returns the index of the candidate chosen by the selection
// policy, or -1 when no candidate satisfies r. Wildcard ranges pick the highest
// satisfying version; all other ranges pick the lowest. Equal versions keep the
// first occurrence.
func SelectCandidate(r Range, candidates []Version) int {
	highest := r.IsWildcard()

	selected := -1
	for i, v := range candidates {
		if !r.Satisfies(v) {
			continue
		}
		switch {
		case selected == -1:
			selected = i
		case highest && candidates[selected].Less(v):
			selected = i
		case !highest && v.Less(candidates[selected]):
			selected = i
		}
	}
	return selected
}
