// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the uniget command tree: pack, restore, remove and config.
package cmd
