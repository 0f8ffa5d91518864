// SPDX-License-Identifier: MPL-2.0

package unitypackage

import (
	"strings"
	"testing"
)

func TestAssetGUID(t *testing.T) {
	t.Parallel()

	a := AssetGUID("Assets/UnityPackages/Foo/Foo.dll")
	if !ValidGUID(a) || strings.ToLower(a) != a {
		t.Fatalf("AssetGUID() = %q, want 32 lowercase hex digits", a)
	}
	if b := AssetGUID(`Assets\UnityPackages\Foo\Foo.dll/`); b != a {
		t.Errorf("AssetGUID() differs after normalization: %q vs %q", b, a)
	}
	if c := AssetGUID("Assets/UnityPackages/Foo/Bar.dll"); c == a {
		t.Error("AssetGUID() collided for different targets")
	}
}

func TestReadGUID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		meta   string
		want   string
		wantOK bool
	}{
		{"typical", "fileFormatVersion: 2\nguid: 0123456789abcdef0123456789abcdef\nDefaultImporter:\n", "0123456789abcdef0123456789abcdef", true},
		{"crlf", "fileFormatVersion: 2\r\nguid: abc\r\n", "abc", true},
		{"missing", "fileFormatVersion: 2\n", "", false},
		{"empty value", "guid:\n", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ReadGUID([]byte(tt.meta))
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ReadGUID() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGenerateMeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		isFile bool
		want   string
	}{
		{"Bin/Foo.DLL", true, "MonoAssemblyImporter:"},
		{"Bin/Foo.dll.mdb", true, "DefaultImporter:\n  serializedVersion: 1"},
		{"Foo.unitypackage.json", true, "TextScriptImporter:"},
		{".", false, "folderAsset: yes"},
		{"Bin/Foo.dll", false, "folderAsset: yes"},
	}

	for _, tt := range tests {
		data, ok := GenerateMeta("feedface", tt.source, tt.isFile)
		if !ok {
			t.Fatalf("GenerateMeta(%q, %v) reported no template", tt.source, tt.isFile)
		}
		meta := string(data)
		if !strings.HasPrefix(meta, "fileFormatVersion: 2\nguid: feedface\n") {
			t.Errorf("GenerateMeta(%q) header = %q", tt.source, meta)
		}
		if !strings.Contains(meta, tt.want) {
			t.Errorf("GenerateMeta(%q, %v) = %q, want it to contain %q", tt.source, tt.isFile, meta, tt.want)
		}
	}
}

func TestGenerateMeta_UnknownFileType(t *testing.T) {
	t.Parallel()

	if _, ok := GenerateMeta("feedface", "Art/Icon.png", true); ok {
		t.Error("GenerateMeta() produced a template for a .png file")
	}
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		`Assets\Foo\`: "Assets/Foo",
		"/Assets/Foo": "Assets/Foo",
		"Assets":      "Assets",
		"":            "",
	} {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
