// SPDX-License-Identifier: MPL-2.0

package source

import (
	"errors"
	"fmt"
)

var (
	// ErrSource is the sentinel error wrapped by Error.
	ErrSource = errors.New("package source error")

	// ErrNoCandidate is wrapped when no offered version satisfies a range.
	ErrNoCandidate = errors.New("no matching version")
)

// Error reports an unrecognized source string, an unsupported source kind or a
// failure to locate or download a package.
type Error struct {
	Source string
	ID     string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Reason
	if e.ID != "" {
		msg = fmt.Sprintf("%s: %s", e.ID, msg)
	}
	if e.Source != "" {
		msg = fmt.Sprintf("%s (source %q)", msg, e.Source)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrSource and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSource}
	}
	return []error{ErrSource, e.Err}
}
