// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"fmt"
)

// SerializeOptions tunes Serialize.
type SerializeOptions struct {
	// OmitFiles drops the files list.
	OmitFiles bool
}

// Serialize renders p as indented JSON, omitting empty fields and keeping
// dependency declaration order.
func Serialize(p *Project, opts SerializeOptions) ([]byte, error) {
	out := *p
	if opts.OmitFiles {
		out.Files = nil
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize manifest %s: %w", p.ID, err)
	}
	return append(data, '\n'), nil
}
