// SPDX-License-Identifier: MPL-2.0

// Package platform holds cross-platform file name rules.
package platform

import "strings"

// windowsReservedNames cannot be used as a file or folder name on Windows,
// whatever the extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name, ignoring case and everything
// from the first dot, is reserved on Windows.
func IsWindowsReservedName(name string) bool {
	base, _, _ := strings.Cut(name, ".")
	return windowsReservedNames[strings.ToUpper(strings.TrimRight(base, " "))]
}

// ReservedSegment returns the first segment of the slash-separated path p
// that is reserved on Windows.
func ReservedSegment(p string) (string, bool) {
	for seg := range strings.SplitSeq(p, "/") {
		if IsWindowsReservedName(seg) {
			return seg, true
		}
	}
	return "", false
}
