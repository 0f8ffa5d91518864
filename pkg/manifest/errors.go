// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
)

// ErrManifest is the sentinel error wrapped by Error.
var ErrManifest = errors.New("invalid manifest")

// Error reports a manifest that cannot be loaded or does not satisfy the
// requirements of the current operation.
type Error struct {
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "manifest"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrManifest and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrManifest}
	}
	return []error{ErrManifest, e.Err}
}

func newError(path, format string, args ...any) *Error {
	return &Error{Path: path, Reason: fmt.Sprintf(format, args...)}
}
