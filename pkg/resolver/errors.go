// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"

	"github.com/uniget/uniget/pkg/semver"
)

// ErrConflict is the sentinel error wrapped by ConflictError.
var ErrConflict = errors.New("version conflict")

// ConflictError is returned when a committed package version does not satisfy a
// range declared later for the same id.
type ConflictError struct {
	ID        string
	Committed semver.Version
	Range     string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: resolved version %s does not satisfy %q", e.ID, e.Committed, e.Range)
}

// Unwrap returns ErrConflict.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
