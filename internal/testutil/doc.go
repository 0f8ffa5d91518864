// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test instead of
// returning errors.
//
// Besides the Must* file and environment helpers it builds package fixtures:
// MustWriteAsset writes an asset with its .meta sidecar and MustBuildPackage
// writes a complete "<id>.<version>.unitypackage" with its descriptor.
package testutil
