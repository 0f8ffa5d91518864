// SPDX-License-Identifier: MPL-2.0

package unitypackage

import (
	"errors"
	"fmt"
)

// ErrArchiveFormat is the sentinel error wrapped by FormatError.
var ErrArchiveFormat = errors.New("invalid package archive")

// FormatError reports a malformed container or an asset that cannot be packed.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrArchiveFormat and the underlying cause.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrArchiveFormat}
	}
	return []error{ErrArchiveFormat, e.Err}
}
