// SPDX-License-Identifier: MPL-2.0

// Package resolver restores the dependency graph of a project manifest.
//
// Resolution is depth-first and sequential. Each package id is committed once per
// Context; later declarations of the same id only check that the committed version
// satisfies their range, so the declaration met first wins and incompatible ranges
// fail with a ConflictError.
package resolver
