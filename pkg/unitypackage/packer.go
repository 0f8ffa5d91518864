// SPDX-License-Identifier: MPL-2.0

package unitypackage

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"

	"github.com/uniget/uniget/internal/platform"
)

// Packer writes a container. Each normalized target path is recorded at most
// once; later additions for the same target are ignored.
type Packer struct {
	fs      afero.Fs
	path    string
	file    afero.File
	gz      *gzip.Writer
	tw      *tar.Writer
	added   map[string]struct{}
	created time.Time
	closed  bool
}

// NewPacker creates (or truncates) the container at name on fsys.
func NewPacker(fsys afero.Fs, name string) (*Packer, error) {
	file, err := fsys.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create package file: %w", err)
	}

	gz, err := gzip.NewWriterLevel(file, gzip.BestCompression)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	return &Packer{
		fs:      fsys,
		path:    name,
		file:    file,
		gz:      gz,
		tw:      tar.NewWriter(gz),
		added:   make(map[string]struct{}),
		created: time.Now(),
	}, nil
}

// Path returns the container file path.
func (p *Packer) Path() string {
	return p.path
}

// Added reports whether a record for targetPath has been written.
func (p *Packer) Added(targetPath string) bool {
	_, ok := p.added[NormalizePath(targetPath)]
	return ok
}

// Add records sourcePath at targetPath using the GUID and content of the
// sidecar sourcePath+".meta". It returns false when the target was already added.
func (p *Packer) Add(sourcePath, targetPath string) (bool, error) {
	target := NormalizePath(targetPath)
	if p.Added(target) {
		return false, nil
	}

	metaPath := sourcePath + MetaSuffix
	meta, err := afero.ReadFile(p.fs, metaPath)
	if err != nil {
		return false, &FormatError{Path: metaPath, Reason: "cannot read meta", Err: err}
	}
	guid, ok := ReadGUID(meta)
	if !ok {
		return false, &FormatError{Path: metaPath, Reason: "cannot extract guid"}
	}
	if !ValidGUID(guid) {
		return false, &FormatError{Path: metaPath, Reason: fmt.Sprintf("invalid guid %q", guid)}
	}

	metaTime := p.created
	if info, statErr := p.fs.Stat(metaPath); statErr == nil {
		metaTime = info.ModTime()
	}

	if err := p.writeRecord(guid, sourcePath, target, meta, metaTime); err != nil {
		return false, err
	}
	return true, nil
}

// AddWithGeneratedMeta records sourcePath at targetPath with a synthesized meta
// whose GUID is derived from targetPath. A sourcePath that is not a regular
// file (such as ".") produces a folder record without an asset member. Files
// with no meta template are rejected with a FormatError.
func (p *Packer) AddWithGeneratedMeta(sourcePath, targetPath string) (bool, error) {
	target := NormalizePath(targetPath)
	if p.Added(target) {
		return false, nil
	}

	isFile := false
	metaTime := p.created
	if info, err := p.fs.Stat(sourcePath); err == nil {
		isFile = info.Mode().IsRegular()
		metaTime = info.ModTime()
	}

	guid := AssetGUID(target)
	meta, ok := GenerateMeta(guid, sourcePath, isFile)
	if !ok {
		return false, &FormatError{Path: sourcePath, Reason: "cannot generate meta for this file type"}
	}
	if err := p.writeRecord(guid, sourcePath, target, meta, metaTime); err != nil {
		return false, err
	}
	return true, nil
}

// AddGeneratedDirectoryChain records folder metas for targetDir and each of its
// ancestors, stopping below the top-level directory.
func (p *Packer) AddGeneratedDirectoryChain(targetDir string) error {
	dir := NormalizePath(targetDir)
	for dir != "" {
		parent := path.Dir(dir)
		if parent == "." {
			return nil
		}
		if _, err := p.AddWithGeneratedMeta(".", dir); err != nil {
			return err
		}
		dir = parent
	}
	return nil
}

// Close flushes the tar and gzip streams and releases the file. Calling it
// again is a no-op.
func (p *Packer) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return errors.Join(p.tw.Close(), p.gz.Close(), p.file.Close())
}

func (p *Packer) writeRecord(guid, sourcePath, target string, meta []byte, metaTime time.Time) (err error) {
	if p.closed {
		return fmt.Errorf("package %s is closed", p.path)
	}
	if name, reserved := platform.ReservedSegment(target); reserved {
		return &FormatError{Path: sourcePath, Reason: fmt.Sprintf("target %q uses %q, a file name reserved on Windows", target, name)}
	}

	pathTime := metaTime
	asset, openErr := p.fs.Open(sourcePath)
	if openErr == nil {
		defer func() {
			if closeErr := asset.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		info, statErr := asset.Stat()
		if statErr != nil {
			return fmt.Errorf("failed to stat %s: %w", sourcePath, statErr)
		}
		if info.Mode().IsRegular() {
			pathTime = info.ModTime()
			if err := p.writeEntry(guid+"/asset", info.Size(), info.ModTime(), asset); err != nil {
				return err
			}
		}
	} else if !errors.Is(openErr, os.ErrNotExist) {
		return fmt.Errorf("failed to open %s: %w", sourcePath, openErr)
	}

	if err := p.writeEntry(guid+"/asset"+MetaSuffix, int64(len(meta)), metaTime, bytes.NewReader(meta)); err != nil {
		return err
	}
	if err := p.writeEntry(guid+"/pathname", int64(len(target)), pathTime, bytes.NewReader([]byte(target))); err != nil {
		return err
	}

	p.added[target] = struct{}{}
	return nil
}

func (p *Packer) writeEntry(name string, size int64, modTime time.Time, body io.Reader) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0o644,
		Size:     size,
		ModTime:  modTime,
	}
	if err := p.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}
	if _, err := io.Copy(p.tw, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
