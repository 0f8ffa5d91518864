// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
)

// UnifyWithSchema compiles schemaSrc, unifies the named definition with value and
// validates the result. With concrete set, every present field must be a concrete
// value. Errors are formatted against filename.
func UnifyWithSchema(ctx *cue.Context, schemaSrc, definition string, value cue.Value, filename string, concrete bool) (cue.Value, error) {
	schemaValue := ctx.CompileString(schemaSrc)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath(definition))
	if schema.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", definition, schema.Err())
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(concrete)); err != nil {
		return cue.Value{}, FormatError(err, filename)
	}

	return unified, nil
}
