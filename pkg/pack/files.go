// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/uniget/uniget/pkg/unitypackage"
)

type (
	// item is one record to pack.
	item struct {
		source string
		target string
		// generated records need a synthesized meta.
		generated bool
		extra     bool
		merged    bool
		// file is false for folder records vendored from dependencies.
		file bool
	}

	// collector expands manifest file entries into items.
	collector struct {
		fs      afero.Fs
		symbols SymbolConverter
		logger  *log.Logger
		items   []item
	}
)

// addSpec expands source relative to projectDir. A target ending in "/" is a
// directory that receives the source's base name.
func (c *collector) addSpec(ctx context.Context, projectDir, source, target string, extra bool) error {
	pairs, err := expand(c.fs, projectDir, source, target)
	if err != nil {
		return err
	}
	for _, pr := range pairs {
		if err := c.addFile(ctx, pr[0], pr[1], extra); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) addFile(ctx context.Context, source, target string, extra bool) error {
	if strings.EqualFold(filepath.Ext(source), unitypackage.MetaSuffix) {
		return nil
	}

	c.items = append(c.items, item{
		source:    source,
		target:    target,
		generated: !c.exists(source + unitypackage.MetaSuffix),
		extra:     extra,
		file:      true,
	})

	if strings.EqualFold(filepath.Ext(source), ".dll") {
		return c.addSymbols(ctx, source, target, extra)
	}
	return nil
}

// addSymbols packs the debug symbols of a library, converting them first when
// "<dll>.mdb" is missing or older than the library.
func (c *collector) addSymbols(ctx context.Context, dll, target string, extra bool) error {
	mdb := dll + ".mdb"
	if c.stale(mdb, dll) {
		if err := c.symbols.Convert(ctx, dll); err != nil {
			return err
		}
	}

	source, mdbTarget := mdb, target+".mdb"
	if !c.exists(mdb) {
		source = strings.TrimSuffix(dll, filepath.Ext(dll)) + ".mdb"
		mdbTarget = strings.TrimSuffix(target, path.Ext(target)) + ".mdb"
		if !c.exists(source) {
			return nil
		}
	}

	c.logger.Debug("adding debug symbols", "source", source)
	c.items = append(c.items, item{
		source:    source,
		target:    mdbTarget,
		generated: !c.exists(source + unitypackage.MetaSuffix),
		extra:     extra,
		file:      true,
	})
	return nil
}

// addRestored vendors every record restored into dir: each asset or folder
// that has a ".meta" next to it.
func (c *collector) addRestored(dir string) error {
	if !c.exists(dir) {
		return nil
	}
	return afero.Walk(c.fs, dir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, unitypackage.MetaSuffix) {
			return nil
		}

		asset := strings.TrimSuffix(p, unitypackage.MetaSuffix)
		rel, err := filepath.Rel(dir, asset)
		if err != nil {
			return err
		}
		assetInfo, err := c.fs.Stat(asset)
		if err != nil {
			return fmt.Errorf("restored meta %s has no asset: %w", p, err)
		}

		c.items = append(c.items, item{
			source: asset,
			target: filepath.ToSlash(rel),
			merged: true,
			file:   assetInfo.Mode().IsRegular(),
		})
		return nil
	})
}

func (c *collector) exists(p string) bool {
	ok, _ := afero.Exists(c.fs, p)
	return ok
}

func (c *collector) stale(derived, source string) bool {
	d, err := c.fs.Stat(derived)
	if err != nil {
		return true
	}
	s, err := c.fs.Stat(source)
	if err != nil {
		return false
	}
	return d.ModTime().Before(s.ModTime())
}

// expand resolves source to (path, target) pairs. Sources containing "*" or "?"
// are doublestar patterns; the path of each match below the pattern's fixed
// prefix is kept under target.
func expand(fsys afero.Fs, projectDir, source, target string) ([][2]string, error) {
	src := filepath.ToSlash(source)

	if strings.ContainsAny(src, "*?") {
		base, pattern := doublestar.SplitPattern(src)
		baseDir := filepath.Join(projectDir, filepath.FromSlash(base))
		matches, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(fsys, baseDir)), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", source, err)
		}
		slices.Sort(matches)
		pairs := make([][2]string, 0, len(matches))
		for _, m := range matches {
			pairs = append(pairs, [2]string{filepath.Join(baseDir, filepath.FromSlash(m)), path.Join(target, m)})
		}
		return pairs, nil
	}

	full := filepath.Join(projectDir, filepath.FromSlash(src))
	info, err := fsys.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("cannot find %s: %w", source, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory; use a wildcard such as %s/**/*", source, src)
	}

	dst := target
	if dst == "" || strings.HasSuffix(dst, "/") {
		dst += path.Base(src)
	}
	return [][2]string{{full, dst}}, nil
}
