// SPDX-License-Identifier: MPL-2.0

package source

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/afero"
)

func TestLocalRepository_ListCandidates(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	for _, name := range []string{
		"Foo.1.0.0.unitypackage",
		"Foo.1.2.0-beta.1.unitypackage",
		"Foo.latest.unitypackage",
		"Foo.Bar.1.0.0.unitypackage",
		"FooBar.2.0.0.unitypackage",
		"Foo.1.0.0.unitypackage.json",
		"Other.1.0.0.unitypackage",
	} {
		if err := afero.WriteFile(fsys, filepath.Join("/repo", name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	repo := &LocalRepository{Fs: fsys, Dir: "/repo"}
	candidates, err := repo.ListCandidates(t.Context(), Ref{Kind: KindLocal}, "Foo")
	if err != nil {
		t.Fatalf("ListCandidates() error = %v", err)
	}

	var versions []string
	for _, c := range candidates {
		versions = append(versions, c.Version.String())
	}
	slices.Sort(versions)
	if want := []string{"1.0.0", "1.2.0-beta.1"}; !slices.Equal(versions, want) {
		t.Errorf("versions = %v, want %v", versions, want)
	}

	path, err := repo.Fetch(t.Context(), Ref{Kind: KindLocal}, "Foo", candidates[0])
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if filepath.Dir(path) != "/repo" {
		t.Errorf("Fetch() = %q, want a file in /repo", path)
	}
}

func TestLocalRepository_QuotesID(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/repo/Fxo.1.0.0.unitypackage", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := &LocalRepository{Fs: fsys, Dir: "/repo"}
	candidates, err := repo.ListCandidates(t.Context(), Ref{Kind: KindLocal}, "F?o")
	if err != nil {
		t.Fatalf("ListCandidates() error = %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("ListCandidates() = %v, want wildcard characters in ids matched literally", candidates)
	}
}

func TestLocalRepository_MissingDir(t *testing.T) {
	t.Parallel()

	repo := &LocalRepository{Fs: afero.NewMemMapFs(), Dir: "/nowhere"}
	if _, err := repo.ListCandidates(t.Context(), Ref{Kind: KindLocal}, "Foo"); !errors.Is(err, ErrSource) {
		t.Errorf("ListCandidates() error = %v, want ErrSource", err)
	}
}
