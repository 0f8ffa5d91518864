// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/uniget/uniget/pkg/semver"
	"github.com/uniget/uniget/pkg/unitypackage"
)

// LocalRepository offers the "<id>.<version>.unitypackage" files found directly
// in Dir.
type LocalRepository struct {
	Fs  afero.Fs
	Dir string
}

// ListCandidates scans Dir. Files whose version part does not parse are ignored.
func (l *LocalRepository) ListCandidates(ctx context.Context, _ Ref, id string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pattern, err := glob.Compile(glob.QuoteMeta(id) + ".*" + glob.QuoteMeta(unitypackage.Extension))
	if err != nil {
		return nil, &Error{Source: string(KindLocal), ID: id, Reason: "invalid package id", Err: err}
	}

	entries, err := afero.ReadDir(l.Fs, l.Dir)
	if err != nil {
		return nil, &Error{Source: string(KindLocal), ID: id, Reason: fmt.Sprintf("cannot read local repository %s", l.Dir), Err: err}
	}

	var candidates []Candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !pattern.Match(name) {
			continue
		}
		v, ok := versionFromFileName(name, id)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Version: v, Handle: filepath.Join(l.Dir, name)})
	}
	return candidates, nil
}

// Fetch returns the candidate's file path.
func (l *LocalRepository) Fetch(_ context.Context, _ Ref, id string, c Candidate) (string, error) {
	if exists, _ := afero.Exists(l.Fs, c.Handle); !exists {
		return "", &Error{Source: string(KindLocal), ID: id, Reason: fmt.Sprintf("%s disappeared", c.Handle)}
	}
	return c.Handle, nil
}

// versionFromFileName extracts the version from "<id>.<version>.unitypackage".
func versionFromFileName(name, id string) (semver.Version, bool) {
	rest, ok := strings.CutPrefix(name, id+".")
	if !ok {
		return semver.Version{}, false
	}
	rest, ok = strings.CutSuffix(rest, unitypackage.Extension)
	if !ok || rest == "" {
		return semver.Version{}, false
	}
	v, err := semver.Parse(rest)
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}
