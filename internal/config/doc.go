// SPDX-License-Identifier: MPL-2.0

// Package config loads the uniget user configuration.
//
// The file is written in CUE, validated against the embedded #Config schema and
// merged over defaults with viper. UNIGET_* environment variables take precedence
// over the file.
package config
