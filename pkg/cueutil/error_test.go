// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "project.json"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		originalErr := errors.New("some error")
		err := FormatError(originalErr, "project.json")
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, originalErr) {
			t.Errorf("error should wrap the original, got: %v", err)
		}
		if !strings.Contains(err.Error(), "project.json") {
			t.Errorf("error should contain filepath, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{"empty path", []string{}, ""},
		{"single element", []string{"id"}, "id"},
		{"nested path", []string{"github", "token"}, "github.token"},
		{"array index", []string{"files", "0", "target"}, "files[0].target"},
		{"leading numeric label", []string{"0", "id"}, "0.id"},
		{"nested arrays", []string{"dependencies", "DepA", "includes", "1"}, "dependencies.DepA.includes[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"within limit", 11, false},
		{"at limit", 100, false},
		{"over limit", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckFileSize(make([]byte, tt.size), 100, "config.cue")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckFileSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "config.cue") {
				t.Errorf("error should contain filename, got: %v", err)
			}
		})
	}
}

func TestUnifyWithSchema(t *testing.T) {
	t.Parallel()

	const schema = `
#Thing: {
	name:   string
	count?: int & >=0
}
`

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		ctx := cuecontext.New()
		doc := ctx.CompileString(`name: "a", count: 2`)
		unified, err := UnifyWithSchema(ctx, schema, "#Thing", doc, "thing.cue", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		name, err := unified.LookupPath(cue.ParsePath("name")).String()
		if err != nil || name != "a" {
			t.Errorf("name = %q (%v), want %q", name, err, "a")
		}
	})

	t.Run("constraint violation names the field", func(t *testing.T) {
		t.Parallel()

		ctx := cuecontext.New()
		doc := ctx.CompileString(`name: "a", count: -1`)
		_, err := UnifyWithSchema(ctx, schema, "#Thing", doc, "thing.cue", true)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "count") {
			t.Errorf("error should name the field, got: %v", err)
		}
	})

	t.Run("missing definition", func(t *testing.T) {
		t.Parallel()

		ctx := cuecontext.New()
		_, err := UnifyWithSchema(ctx, schema, "#Other", ctx.CompileString(`name: "a"`), "thing.cue", true)
		if err == nil || !strings.Contains(err.Error(), "#Other") {
			t.Errorf("expected missing definition error, got: %v", err)
		}
	})
}
