// SPDX-License-Identifier: MPL-2.0

// Package manifest loads and writes package manifests: the JSON documents that
// name a package, list the files it ships and declare its dependencies.
//
// A manifest may inherit from another through a top-level "#base" key holding a
// path relative to the manifest's directory. The base is loaded first and the
// current document is overlaid on it. Dependency declaration order is preserved
// because it decides which declaration wins during restore.
package manifest
