// SPDX-License-Identifier: MPL-2.0

package unitypackage

import (
	"path"
	"strings"
)

var textAssetExtensions = map[string]bool{
	".json":  true,
	".txt":   true,
	".xml":   true,
	".md":    true,
	".bytes": true,
	".csv":   true,
	".yaml":  true,
	".html":  true,
	".htm":   true,
	".fnt":   true,
}

// GenerateMeta synthesizes the meta document for an asset that has no sidecar.
// Files get a template picked by the case-insensitive extension of sourcePath;
// anything that is not a file gets the folder template. It reports false for a
// file extension with no template.
func GenerateMeta(guid, sourcePath string, isFile bool) ([]byte, bool) {
	lines := []string{
		"fileFormatVersion: 2",
		"guid: " + guid,
	}

	ext := strings.ToLower(path.Ext(NormalizePath(sourcePath)))
	switch {
	case isFile && ext == ".dll":
		lines = append(lines,
			"MonoAssemblyImporter:",
			"  serializedVersion: 1",
			"  iconMap: {}",
			"  executionOrder: {}",
			"  userData: ",
		)
	case isFile && ext == ".mdb":
		lines = append(lines,
			"DefaultImporter:",
			"  serializedVersion: 1",
			"  iconMap: {}",
			"  executionOrder: {}",
			"  userData: ",
		)
	case isFile && textAssetExtensions[ext]:
		lines = append(lines,
			"TextScriptImporter:",
			"  userData: ",
		)
	case isFile:
		return nil, false
	default:
		lines = append(lines,
			"folderAsset: yes",
			"DefaultImporter:",
			"  userData: ",
		)
	}
	return []byte(strings.Join(lines, "\n")), true
}
