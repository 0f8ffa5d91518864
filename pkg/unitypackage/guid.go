// SPDX-License-Identifier: MPL-2.0

package unitypackage

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// assetNamespace seeds name-based asset GUIDs.
var assetNamespace = uuid.MustParse("421A66D3-14FD-41FD-B965-7BA5B510DAB9")

var guidRegex = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// AssetGUID derives the GUID of a generated asset from its target path. The
// same path always yields the same GUID, so repacking keeps references stable.
func AssetGUID(targetPath string) string {
	id := uuid.NewSHA1(assetNamespace, []byte(NormalizePath(targetPath)))
	return hex.EncodeToString(id[:])
}

// ReadGUID returns the value of the first "guid:" line of a meta document.
func ReadGUID(meta []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(meta))
	for scanner.Scan() {
		rest, found := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "guid:")
		if !found {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return "", false
		}
		return fields[0], true
	}
	return "", false
}

// ValidGUID reports whether s is usable as a record directory name.
func ValidGUID(s string) bool {
	return guidRegex.MatchString(s)
}
