// SPDX-License-Identifier: MPL-2.0

package source

import (
	"errors"
	"testing"

	"github.com/uniget/uniget/pkg/semver"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantKind  Kind
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{in: "local", wantKind: KindLocal},
		{in: "LOCAL", wantKind: KindLocal},
		{in: "github:acme/widgets", wantKind: KindGitHub, wantOwner: "acme", wantRepo: "widgets"},
		{in: "https://github.com/acme/widgets", wantKind: KindGitHub, wantOwner: "acme", wantRepo: "widgets"},
		{in: "https://github.com/acme/widgets.git", wantKind: KindGitHub, wantOwner: "acme", wantRepo: "widgets"},
		{in: "nuget:Newtonsoft.Json", wantKind: KindNuGet},
		{in: "github:acme", wantErr: true},
		{in: "github:/widgets", wantErr: true},
		{in: "nuget:", wantErr: true},
		{in: "ftp://example.com/x", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			ref, err := ParseSource(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrSource) {
					t.Fatalf("ParseSource(%q) error = %v, want ErrSource", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSource(%q) error = %v", tt.in, err)
			}
			if ref.Kind != tt.wantKind || ref.Owner != tt.wantOwner || ref.Repo != tt.wantRepo {
				t.Errorf("ParseSource(%q) = %+v", tt.in, ref)
			}
			if ref.String() != tt.in {
				t.Errorf("String() = %q, want %q", ref.String(), tt.in)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	candidates := []Candidate{
		{Version: semver.MustParse("1.0.0"), Handle: "a"},
		{Version: semver.MustParse("1.2.0"), Handle: "b"},
		{Version: semver.MustParse("2.0.0"), Handle: "c"},
	}

	tests := []struct {
		rng    string
		want   string
		wantOK bool
	}{
		{"1.x", "b", true},
		{">=1.1.0", "b", true},
		{"^2.0.0", "c", true},
		{"3.0.0", "", false},
	}

	for _, tt := range tests {
		got, ok := Select(semver.MustParseRange(tt.rng), candidates)
		if ok != tt.wantOK || got.Handle != tt.want {
			t.Errorf("Select(%q) = %+v, %v; want %q, %v", tt.rng, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNuGet_Unsupported(t *testing.T) {
	t.Parallel()

	ref, err := ParseSource("nuget:Foo")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := (NuGet{}).ListCandidates(t.Context(), ref, "Foo"); !errors.Is(err, ErrSource) {
		t.Errorf("ListCandidates() error = %v, want ErrSource", err)
	}
	if _, err := (NuGet{}).Fetch(t.Context(), ref, "Foo", Candidate{}); !errors.Is(err, ErrSource) {
		t.Errorf("Fetch() error = %v, want ErrSource", err)
	}
}
