// SPDX-License-Identifier: MPL-2.0

package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// Cache stores downloaded containers under Root.
type Cache struct {
	Fs   afero.Fs
	Root string
}

// NewCache returns a cache rooted at root on the OS filesystem.
func NewCache(root string) *Cache {
	return &Cache{Fs: afero.NewOsFs(), Root: root}
}

// GitHubPath returns where a release asset of owner/repo named fileName is cached.
func (c *Cache) GitHubPath(owner, repo, fileName string) string {
	return filepath.Join(c.Root, string(KindGitHub), owner, repo, fileName)
}

// Has reports whether path holds a cached file.
func (c *Cache) Has(path string) bool {
	info, err := c.Fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Store writes r to path. Data goes to a temporary file in the same directory
// that is renamed into place, so readers never see a partial file.
func (c *Cache) Store(path string, r io.Reader) (err error) {
	dir := filepath.Dir(path)
	if err := c.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := afero.TempFile(c.Fs, dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = c.Fs.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return errors.Join(fmt.Errorf("failed to write %s: %w", path, err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := c.Fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move download into cache: %w", err)
	}
	return nil
}
