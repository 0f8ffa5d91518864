// SPDX-License-Identifier: MPL-2.0

package unitypackage

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"

	"github.com/uniget/uniget/pkg/manifest"
)

type (
	// ExtractOptions tunes Extract.
	ExtractOptions struct {
		// Filter selects target paths to extract. Nil extracts everything.
		Filter Filter
		// DescriptorID names the package whose companion descriptor supplies
		// the extra file flags.
		DescriptorID string
		// SkipExtra drops files the descriptor flags as extra.
		SkipExtra bool
	}

	// ExtractResult lists what Extract wrote, as target paths.
	ExtractResult struct {
		Files   []string
		Folders []string
	}

	// record is one GUID directory of the expanded container.
	record struct {
		dir string
	}
)

// Extract unpacks the container at archivePath into outputRoot. The container
// is first expanded into a scratch directory that is always removed afterwards.
// Selected files are copied with their metas; folder metas are copied for every
// ancestor directory of a copied file that the container describes.
func Extract(fsys afero.Fs, archivePath, outputRoot string, opts ExtractOptions) (result *ExtractResult, err error) {
	scratch, err := afero.TempDir(fsys, "", "uniget-extract-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if rmErr := fsys.RemoveAll(scratch); rmErr != nil && err == nil {
			err = fmt.Errorf("failed to remove scratch directory: %w", rmErr)
		}
	}()

	if err := untar(fsys, archivePath, scratch); err != nil {
		return nil, err
	}

	files, folders, err := collectRecords(fsys, scratch)
	if err != nil {
		return nil, err
	}

	flags := descriptorFlags(fsys, scratch, files, opts)

	result = &ExtractResult{}
	ancestors := make(map[string]struct{})
	for _, target := range slices.Sorted(maps.Keys(files)) {
		if opts.Filter != nil && !opts.Filter(target) {
			continue
		}
		if f, ok := flags[target]; ok {
			if f.Extra {
				continue
			}
		}

		dest, err := outputPath(outputRoot, target)
		if err != nil {
			return nil, &FormatError{Path: archivePath, Reason: "invalid pathname", Err: err}
		}
		if err := fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", target, err)
		}

		src := filepath.Join(scratch, files[target].dir)
		if err := copyFile(fsys, filepath.Join(src, "asset"), dest); err != nil {
			return nil, err
		}
		if err := copyFile(fsys, filepath.Join(src, "asset"+MetaSuffix), dest+MetaSuffix); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, target)

		for dir := path.Dir(target); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if _, seen := ancestors[dir]; seen {
				break
			}
			ancestors[dir] = struct{}{}
		}
	}

	for _, dir := range slices.Sorted(maps.Keys(ancestors)) {
		folder, ok := folders[dir]
		if !ok {
			continue
		}
		dest, err := outputPath(outputRoot, dir)
		if err != nil {
			return nil, &FormatError{Path: archivePath, Reason: "invalid pathname", Err: err}
		}
		if err := copyFile(fsys, filepath.Join(scratch, folder.dir, "asset"+MetaSuffix), dest+MetaSuffix); err != nil {
			return nil, err
		}
		result.Folders = append(result.Folders, dir)
	}

	return result, nil
}

func untar(fsys afero.Fs, archivePath, scratch string) (err error) {
	file, err := fsys.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open package: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return &FormatError{Path: archivePath, Reason: "not a gzip stream", Err: err}
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &FormatError{Path: archivePath, Reason: "corrupt tar stream", Err: err}
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}

		dest, err := outputPath(scratch, hdr.Name)
		if err != nil {
			return &FormatError{Path: archivePath, Reason: fmt.Sprintf("invalid entry %q", hdr.Name), Err: err}
		}
		if err := fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create scratch directory: %w", err)
		}
		if err := writeStream(fsys, dest, tr); err != nil {
			return err
		}
	}
}

// collectRecords maps every record's pathname to its scratch directory,
// splitting records with an asset member from folder placeholders.
func collectRecords(fsys afero.Fs, scratch string) (files, folders map[string]record, err error) {
	entries, err := afero.ReadDir(fsys, scratch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read scratch directory: %w", err)
	}

	files = make(map[string]record)
	folders = make(map[string]record)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(scratch, entry.Name())

		pathname, readErr := afero.ReadFile(fsys, filepath.Join(dir, "pathname"))
		if readErr != nil {
			continue
		}
		target := NormalizePath(strings.TrimSpace(string(pathname)))
		if target == "" {
			continue
		}

		rec := record{dir: entry.Name()}
		if exists, _ := afero.Exists(fsys, filepath.Join(dir, "asset")); exists {
			files[target] = rec
		} else {
			folders[target] = rec
		}
	}
	return files, folders, nil
}

// descriptorFlags reads the file flags from the companion descriptor of
// opts.DescriptorID when SkipExtra is set and the descriptor is part of the
// container. A missing or unreadable descriptor yields no flags.
func descriptorFlags(fsys afero.Fs, scratch string, files map[string]record, opts ExtractOptions) map[string]manifest.FileSpec {
	if opts.DescriptorID == "" || !opts.SkipExtra {
		return nil
	}
	rec, ok := files[DescriptorPath(opts.DescriptorID)]
	if !ok {
		return nil
	}

	descriptor, err := manifest.LoadFS(fsys, filepath.Join(scratch, rec.dir, "asset"))
	if err != nil {
		return nil
	}

	flags := make(map[string]manifest.FileSpec)
	for _, f := range descriptor.Files {
		if f.Kind == manifest.Structured {
			flags[NormalizePath(f.Target)] = f
		}
	}
	return flags
}

func outputPath(root, target string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(target))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %s", target, root)
	}
	return dest, nil
}

func copyFile(fsys afero.Fs, src, dst string) (err error) {
	in, err := fsys.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FormatError{Path: src, Reason: "record member missing", Err: err}
		}
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()
	return writeStream(fsys, dst, in)
}

func writeStream(fsys afero.Fs, dst string, r io.Reader) (err error) {
	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
