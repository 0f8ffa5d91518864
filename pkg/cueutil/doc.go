// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE plumbing shared by the configuration loader and
// the package manifest loader: compiling an embedded schema, unifying a document
// with one of its definitions, and turning CUE error lists into path-prefixed
// messages.
//
//	//go:embed project_schema.cue
//	var projectSchema string
//
//	unified, err := cueutil.UnifyWithSchema(ctx, projectSchema, "#Project", doc, path)
//	if err != nil {
//	    return nil, err // error names the offending field, e.g. "dependencies.DepA.version"
//	}
package cueutil
