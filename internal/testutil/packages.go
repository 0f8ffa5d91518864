// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"testing"

	"github.com/spf13/afero"

	"github.com/uniget/uniget/pkg/manifest"
	"github.com/uniget/uniget/pkg/unitypackage"
)

// PackageFixture describes a package built by MustBuildPackage.
type PackageFixture struct {
	ID      string
	Version string

	Dependencies       manifest.Dependencies
	MergedDependencies manifest.Dependencies

	// Files maps asset target paths to their contents.
	Files map[string]string
	// Extra lists targets flagged as extra in the descriptor.
	Extra []string
}

// MustWriteAsset writes an asset and a sidecar meta carrying the asset GUID of target.
func MustWriteAsset(t testing.TB, sourcePath, target, content string) {
	t.Helper()
	MustWriteFile(t, sourcePath, content)
	MustWriteFile(t, sourcePath+unitypackage.MetaSuffix,
		fmt.Sprintf("fileFormatVersion: 2\nguid: %s\n", unitypackage.AssetGUID(target)))
}

// MustBuildPackage writes "<id>.<version>.unitypackage" into dir and returns its path.
// The package carries every fixture file, a descriptor listing them and folder
// metas for their directories.
func MustBuildPackage(t testing.TB, dir string, pkg PackageFixture) string {
	t.Helper()

	src := t.TempDir()
	out := filepath.Join(dir, unitypackage.FileName(pkg.ID, pkg.Version))
	MustMkdirAll(t, dir)

	packer, err := unitypackage.NewPacker(afero.NewOsFs(), out)
	if err != nil {
		t.Fatalf("NewPacker: %v", err)
	}

	targets := make([]string, 0, len(pkg.Files))
	for target := range pkg.Files {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	dirs := map[string]struct{}{unitypackage.PackageRoot: {}}
	files := make([]manifest.FileSpec, 0, len(targets))
	for i, target := range targets {
		asset := filepath.Join(src, fmt.Sprintf("asset%d", i))
		MustWriteAsset(t, asset, target, pkg.Files[target])
		if _, err := packer.Add(asset, target); err != nil {
			t.Fatalf("Add(%s): %v", target, err)
		}
		dirs[path.Dir(target)] = struct{}{}
		files = append(files, manifest.TargetSpec(target, slices.Contains(pkg.Extra, target), false))
	}

	project := &manifest.Project{
		ID:                 pkg.ID,
		Version:            pkg.Version,
		Dependencies:       pkg.Dependencies,
		MergedDependencies: pkg.MergedDependencies,
		Files:              files,
	}
	data, err := manifest.Serialize(project, manifest.SerializeOptions{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	descriptor := filepath.Join(src, pkg.ID+".unitypackage.json")
	MustWriteFile(t, descriptor, string(data))
	if _, err := packer.AddWithGeneratedMeta(descriptor, unitypackage.DescriptorPath(pkg.ID)); err != nil {
		t.Fatalf("AddWithGeneratedMeta: %v", err)
	}

	sortedDirs := make([]string, 0, len(dirs))
	for d := range dirs {
		sortedDirs = append(sortedDirs, d)
	}
	sort.Strings(sortedDirs)
	for _, d := range sortedDirs {
		if err := packer.AddGeneratedDirectoryChain(d); err != nil {
			t.Fatalf("AddGeneratedDirectoryChain(%s): %v", d, err)
		}
	}

	MustClose(t, packer)
	return out
}
