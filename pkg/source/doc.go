// SPDX-License-Identifier: MPL-2.0

// Package source locates published containers for a package id.
//
// A dependency names its source with a short string: "local" for a directory
// of "<id>.<version>.unitypackage" files, "github:<owner>/<repo>" for release
// assets on GitHub, and "nuget:<id>", which is recognized but not supported.
// Adapters list the candidate versions they can offer and fetch the chosen one
// to a local file path. Remote downloads go through a retrying Fetcher guarded
// by per-host circuit breakers and land in an on-disk Cache.
package source
