// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/uniget/uniget/pkg/manifest"
	"github.com/uniget/uniget/pkg/resolver"
	"github.com/uniget/uniget/pkg/unitypackage"
)

type (
	// Options controls Pack.
	Options struct {
		// OutputDir receives the container. Defaults to the manifest's directory.
		OutputDir string

		// LocalRepositoryDir is passed to the resolver for "$dependencies$".
		LocalRepositoryDir string

		Fs       afero.Fs
		Logger   *log.Logger
		Resolver *resolver.Resolver
		Symbols  SymbolConverter
	}

	// Result describes a packed container.
	Result struct {
		// Path is "<OutputDir>/<id>.<version>.unitypackage".
		Path string

		// Files lists the packed file targets in the order they were added.
		Files []string

		// Merged holds the vendored dependency versions, nil when the manifest
		// has no "$dependencies$" entry.
		Merged *resolver.PackageMap
	}
)

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "pack"})
	}
	if o.Symbols == nil {
		o.Symbols = DefaultSymbolConverter()
	}
	if o.Resolver == nil {
		o.Resolver = resolver.New(resolver.WithFilesystem(o.Fs), resolver.WithLogger(o.Logger))
	}
	return o
}

// Pack builds the container described by the manifest at manifestPath. The
// manifest needs an id, a version and at least one file entry.
func Pack(ctx context.Context, manifestPath string, opts Options) (result *Result, err error) {
	opts = opts.withDefaults()
	fsys := opts.Fs

	p, err := manifest.LoadFS(fsys, manifestPath)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(manifestPath, true); err != nil {
		return nil, err
	}

	projectDir := filepath.Dir(manifestPath)
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = projectDir
	}

	scratch, err := afero.TempDir(fsys, "", "uniget-pack-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if rmErr := fsys.RemoveAll(scratch); rmErr != nil && err == nil {
			err = fmt.Errorf("failed to remove scratch directory: %w", rmErr)
		}
	}()

	c := &collector{fs: fsys, symbols: opts.Symbols, logger: opts.Logger}
	var merged *resolver.PackageMap

	for _, f := range p.Files {
		switch f.Kind {
		case manifest.Structured:
			if f.Source == "" {
				return nil, &manifest.Error{Path: manifestPath, Reason: fmt.Sprintf("file item for %q has no source", f.Target)}
			}
			err = c.addSpec(ctx, projectDir, f.Source, f.Target, f.Extra)

		case manifest.Keyword:
			if !f.IsDependenciesKeyword() {
				return nil, &manifest.Error{Path: manifestPath, Reason: fmt.Sprintf("wrong keyword %q", f.Path)}
			}
			if merged != nil {
				continue
			}
			depsDir := filepath.Join(scratch, "dependencies")
			rc, restoreErr := opts.Resolver.Restore(ctx, manifestPath, resolver.RestoreOptions{
				OutputDir:          depsDir,
				LocalRepositoryDir: opts.LocalRepositoryDir,
			})
			if restoreErr != nil {
				return nil, restoreErr
			}
			merged = rc.PackageMap
			err = c.addRestored(depsDir)

		default:
			err = c.addSpec(ctx, projectDir, f.Path, unitypackage.DefaultTargetDir(p.ID)+"/", false)
		}
		if err != nil {
			return nil, &manifest.Error{Path: manifestPath, Reason: "cannot collect files", Err: err}
		}
	}

	if len(c.items) == 0 {
		return nil, &manifest.Error{Path: manifestPath, Reason: "nothing to add for files"}
	}

	if err := fsys.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	out := filepath.Join(outputDir, unitypackage.FileName(p.ID, p.Version))

	files, err := writePackage(fsys, out, scratch, p, c.items, merged)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("packed", "path", out, "files", len(files))
	return &Result{Path: out, Files: files, Merged: merged}, nil
}

// writePackage writes items, then the descriptor, then generated folder metas
// for every ancestor of a packed target that has no record of its own.
func writePackage(fsys afero.Fs, out, scratch string, p *manifest.Project, items []item, merged *resolver.PackageMap) (files []string, err error) {
	packer, err := unitypackage.NewPacker(fsys, out)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := packer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	folders := map[string]struct{}{unitypackage.PackageRoot: {}}
	descriptorFiles := make([]manifest.FileSpec, 0, len(items))

	for _, it := range items {
		target := unitypackage.NormalizePath(it.target)

		folders[path.Dir(target)] = struct{}{}

		var added bool
		if it.generated {
			added, err = packer.AddWithGeneratedMeta(it.source, target)
		} else {
			added, err = packer.Add(it.source, target)
		}
		if err != nil {
			return nil, err
		}
		if !added || !it.file {
			continue
		}
		files = append(files, target)
		descriptorFiles = append(descriptorFiles, manifest.TargetSpec(target, it.extra, it.merged))
	}

	descriptor := *p
	descriptor.Files = descriptorFiles
	descriptor.MergedDependencies = mergedDependencies(merged)

	data, err := manifest.Serialize(&descriptor, manifest.SerializeOptions{})
	if err != nil {
		return nil, err
	}
	descriptorPath := filepath.Join(scratch, p.ID+unitypackage.DescriptorSuffix)
	if err := afero.WriteFile(fsys, descriptorPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write descriptor: %w", err)
	}
	if _, err := packer.AddWithGeneratedMeta(descriptorPath, unitypackage.DescriptorPath(p.ID)); err != nil {
		return nil, err
	}

	for _, dir := range slices.Sorted(maps.Keys(folders)) {
		if err := packer.AddGeneratedDirectoryChain(dir); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func mergedDependencies(m *resolver.PackageMap) manifest.Dependencies {
	var deps manifest.Dependencies
	if m == nil {
		return deps
	}
	for _, id := range m.Order {
		v, _ := m.Get(id)
		deps.Set(id, manifest.DependencySpec{Version: v.String()})
	}
	return deps
}
