// SPDX-License-Identifier: MPL-2.0

package unitypackage

import "strings"

const (
	// PackageRoot is the project directory that holds installed package files
	// and their companion descriptors.
	PackageRoot = "Assets/UnityPackages"
	// Extension is the container file suffix.
	Extension = ".unitypackage"
	// DescriptorSuffix ends the name of a companion descriptor.
	DescriptorSuffix = Extension + ".json"
	// MetaSuffix ends the name of a sidecar metadata file.
	MetaSuffix = ".meta"
)

// NormalizePath converts backslashes to forward slashes and trims leading and
// trailing separators.
func NormalizePath(p string) string {
	return strings.Trim(strings.ReplaceAll(p, `\`, "/"), "/")
}

// DescriptorPath returns where the companion descriptor of package id lives
// inside a project.
func DescriptorPath(id string) string {
	return PackageRoot + "/" + id + DescriptorSuffix
}

// DefaultTargetDir returns the directory plain file entries of package id are
// installed into.
func DefaultTargetDir(id string) string {
	return PackageRoot + "/" + id
}

// FileName returns the published container name for id at version.
func FileName(id, version string) string {
	return id + "." + version + Extension
}
