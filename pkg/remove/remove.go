// SPDX-License-Identifier: MPL-2.0

// Package remove deletes restored packages from a project.
//
// Every companion descriptor under "Assets/UnityPackages" names the files its
// package placed in the project. Those files, their metas and the descriptor are
// deleted, then empty folders below the package root are pruned together with
// their folder metas.
package remove

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/uniget/uniget/pkg/manifest"
	"github.com/uniget/uniget/pkg/unitypackage"
)

// ErrNoAssets is returned when the project directory has no "Assets" folder.
var ErrNoAssets = errors.New("project has no Assets directory")

type (
	// Options controls Remove.
	Options struct {
		Fs     afero.Fs
		Logger *log.Logger
	}

	// Report lists what Remove deleted.
	Report struct {
		// Packages holds the ids of removed packages, sorted.
		Packages []string
		// Files holds removed asset and descriptor paths relative to the project.
		Files []string
		// Folders holds pruned folders relative to the project.
		Folders []string
	}
)

// Remove deletes every package restored into projectDir. Descriptors that
// cannot be loaded are logged and left in place.
func Remove(projectDir string, opts Options) (*Report, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "remove"})
	}

	assetsDir := filepath.Join(projectDir, "Assets")
	if ok, _ := afero.DirExists(fsys, assetsDir); !ok {
		return nil, fmt.Errorf("%s: %w", assetsDir, ErrNoAssets)
	}

	report := &Report{}
	packageRoot := filepath.Join(projectDir, filepath.FromSlash(unitypackage.PackageRoot))
	if ok, _ := afero.DirExists(fsys, packageRoot); !ok {
		return report, nil
	}

	descriptors, err := afero.Glob(fsys, filepath.Join(packageRoot, "*"+unitypackage.DescriptorSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list package descriptors: %w", err)
	}
	slices.Sort(descriptors)

	r := &remover{fs: fsys, logger: logger, projectDir: projectDir, report: report}
	for _, descriptor := range descriptors {
		if err := r.removePackage(descriptor); err != nil {
			return report, err
		}
	}

	if err := r.prune(packageRoot); err != nil {
		return report, err
	}
	return report, nil
}

type remover struct {
	fs         afero.Fs
	logger     *log.Logger
	projectDir string
	report     *Report
}

func (r *remover) removePackage(descriptor string) error {
	p, err := manifest.LoadFS(r.fs, descriptor)
	if err != nil {
		r.logger.Warn("ignoring package descriptor", "path", descriptor, "err", err)
		return nil
	}

	for _, f := range p.Files {
		target := f.TargetPath()
		if target == "" || f.Kind == manifest.Keyword {
			continue
		}
		full := filepath.Join(r.projectDir, filepath.FromSlash(unitypackage.NormalizePath(target)))
		if !r.inside(full) {
			r.logger.Warn("ignoring target outside the project", "package", p.ID, "target", target)
			continue
		}
		if err := r.removeWithMeta(full); err != nil {
			return err
		}
	}

	if err := r.removeWithMeta(descriptor); err != nil {
		return err
	}

	id := p.ID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(descriptor), unitypackage.DescriptorSuffix)
	}
	r.logger.Debug("removed package", "id", id)
	r.report.Packages = append(r.report.Packages, id)
	return nil
}

func (r *remover) removeWithMeta(path string) error {
	for _, p := range []string{path, path + unitypackage.MetaSuffix} {
		info, err := r.fs.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if err := r.fs.Remove(p); err != nil {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
		if p == path {
			r.report.Files = append(r.report.Files, r.rel(p))
		}
	}
	return nil
}

// prune removes dir when nothing is left in it after pruning its subdirectories.
// The folder's meta next to it goes too.
func (r *remover) prune(dir string) error {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := r.prune(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}

	entries, err = afero.ReadDir(r.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return nil
	}

	if err := r.fs.Remove(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	r.report.Folders = append(r.report.Folders, r.rel(dir))
	if err := r.fs.Remove(dir + unitypackage.MetaSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", dir+unitypackage.MetaSuffix, err)
	}
	return nil
}

func (r *remover) inside(p string) bool {
	rel, err := filepath.Rel(r.projectDir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (r *remover) rel(p string) string {
	rel, err := filepath.Rel(r.projectDir, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}
