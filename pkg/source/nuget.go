// SPDX-License-Identifier: MPL-2.0

package source

import "context"

// NuGet is a placeholder adapter; NuGet feeds are not supported.
type NuGet struct{}

// ListCandidates always fails.
func (NuGet) ListCandidates(_ context.Context, ref Ref, id string) ([]Candidate, error) {
	return nil, unsupported(ref, id)
}

// Fetch always fails.
func (NuGet) Fetch(_ context.Context, ref Ref, id string, _ Candidate) (string, error) {
	return "", unsupported(ref, id)
}

func unsupported(ref Ref, id string) error {
	return &Error{Source: ref.String(), ID: id, Reason: "NuGet sources are not supported"}
}
