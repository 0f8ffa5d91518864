// SPDX-License-Identifier: MPL-2.0

// Package unitypackage reads and writes ".unitypackage" containers.
//
// A container is a gzip-compressed tar stream. Every asset is stored under a
// directory named by its 32-hex-digit GUID holding up to three members:
//
//	<guid>/asset       raw file bytes, absent for folders
//	<guid>/asset.meta  the importer metadata
//	<guid>/pathname    the project-relative target path, forward slashes
//
// Packer writes containers and synthesizes metadata when a source has no
// sidecar ".meta" file. Extract unpacks a container into a project, honoring a
// path Filter and restoring folder metadata for every directory it populates.
package unitypackage
