// SPDX-License-Identifier: MPL-2.0

// Package pack builds a ".unitypackage" container from a project manifest.
//
// Every file entry of the manifest is expanded to (source, target) pairs. Sources
// with a ".meta" sidecar keep it; the others receive a generated meta and their
// directories receive generated folder metas. The "$dependencies$" keyword
// restores the project's dependency closure into a scratch directory and vendors
// it into the container, recording the flattened versions as merged dependencies
// of the packed descriptor.
package pack
