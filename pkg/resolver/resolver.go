// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/uniget/uniget/pkg/manifest"
	"github.com/uniget/uniget/pkg/semver"
	"github.com/uniget/uniget/pkg/source"
	"github.com/uniget/uniget/pkg/unitypackage"
)

type (
	// Resolver locates, extracts and descends into packages.
	Resolver struct {
		fs     afero.Fs
		logger *log.Logger
		github source.Adapter
		nuget  source.Adapter
	}

	// Option configures a Resolver.
	Option func(*Resolver)

	// RestoreOptions controls Restore.
	RestoreOptions struct {
		// OutputDir defaults to the manifest's directory.
		OutputDir          string
		LocalRepositoryDir string
	}
)

// WithGitHub replaces the adapter used for "github:" sources.
func WithGitHub(a source.Adapter) Option {
	return func(r *Resolver) {
		r.github = a
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithFilesystem sets the filesystem used for manifests, archives and extraction.
func WithFilesystem(fsys afero.Fs) Option {
	return func(r *Resolver) {
		r.fs = fsys
	}
}

// New creates a Resolver. Without WithGitHub, GitHub releases are listed through the
// public API and downloads go through a retrying, circuit-broken fetcher into the cache.
func New(opts ...Option) *Resolver {
	r := &Resolver{nuget: source.NuGet{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "resolver"})
	}
	if r.github == nil {
		r.github = defaultGitHub(r.fs)
	}
	return r
}

func defaultGitHub(fsys afero.Fs) source.Adapter {
	root := filepath.Join(os.TempDir(), "uniget")
	client := source.NewGitHubClient()
	downloader := source.NewBreakerFetcher(source.NewFetcher(source.WithAuthFunc(client.AuthHeader)))
	return source.NewGitHub(client, downloader, &source.Cache{Fs: fsys, Root: root})
}

// Restore resolves every dependency declared by the manifest at manifestPath.
// A manifest without dependencies yields an empty PackageMap.
func (r *Resolver) Restore(ctx context.Context, manifestPath string, opts RestoreOptions) (*Context, error) {
	p, err := manifest.LoadFS(r.fs, manifestPath)
	if err != nil {
		return nil, err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(manifestPath)
	}
	rc := NewContext(outputDir, opts.LocalRepositoryDir)

	if !p.HasDependencies() {
		r.logger.Info("no dependencies", "manifest", manifestPath)
		return rc, nil
	}

	for id, spec := range p.Dependencies.All() {
		if err := r.Resolve(ctx, id, spec, rc); err != nil {
			return rc, err
		}
	}
	return rc, nil
}

// Resolve settles one package id and, recursively, the dependencies its descriptor
// declares.
func (r *Resolver) Resolve(ctx context.Context, id string, spec manifest.DependencySpec, rc *Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rng, err := semver.ParseRange(spec.Version)
	if err != nil {
		return &manifest.Error{Reason: fmt.Sprintf("dependency %s has an invalid version range", id), Err: err}
	}

	if committed, ok := rc.PackageMap.Get(id); ok {
		if !rng.Satisfies(committed) {
			return &ConflictError{ID: id, Committed: committed, Range: spec.Version}
		}
		r.logger.Debug("already resolved", "id", id, "version", committed.String())
		return nil
	}

	r.logger.Info("restoring", "id", id, "range", rng.String())

	archivePath, version, err := r.locate(ctx, id, spec, rng, rc)
	if err != nil {
		return err
	}

	filter, err := unitypackage.MakeFilter(spec.Includes, spec.Excludes)
	if err != nil {
		return &manifest.Error{Reason: fmt.Sprintf("dependency %s has an invalid filter", id), Err: err}
	}

	descriptor := unitypackage.DescriptorPath(id)
	keep := func(target string) bool {
		return target == descriptor || filter(target)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := unitypackage.Extract(r.fs, archivePath, rc.OutputDir, unitypackage.ExtractOptions{
		Filter:       keep,
		DescriptorID: id,
		SkipExtra:    spec.ExcludeExtra,
	})
	if err != nil {
		return err
	}
	r.logger.Debug("extracted", "id", id, "version", version.String(), "files", len(result.Files))

	rc.PackageMap.commit(id, version)

	return r.descend(ctx, id, rc)
}

// locate finds the archive for id. A satisfying package in the local repository
// wins over the declared source.
func (r *Resolver) locate(ctx context.Context, id string, spec manifest.DependencySpec, rng semver.Range, rc *Context) (string, semver.Version, error) {
	localRef := source.Ref{Kind: source.KindLocal}

	if rc.LocalRepositoryDir != "" {
		local := &source.LocalRepository{Fs: r.fs, Dir: rc.LocalRepositoryDir}
		path, v, found, err := r.pick(ctx, local, localRef, id, rng)
		switch {
		case err != nil && strings.EqualFold(strings.TrimSpace(spec.Source), string(source.KindLocal)):
			return "", semver.Version{}, err
		case err != nil:
			r.logger.Warn("cannot scan local repository", "dir", rc.LocalRepositoryDir, "err", err)
		case found:
			r.logger.Debug("found in local repository", "id", id, "version", v.String())
			return path, v, nil
		}
	}

	ref, err := source.ParseSource(spec.Source)
	if err != nil {
		var srcErr *source.Error
		if errors.As(err, &srcErr) && srcErr.ID == "" {
			srcErr.ID = id
		}
		return "", semver.Version{}, err
	}

	var adapter source.Adapter
	switch ref.Kind {
	case source.KindLocal:
		if rc.LocalRepositoryDir == "" {
			return "", semver.Version{}, &source.Error{Source: spec.Source, ID: id, Reason: "local source needs a local repository directory"}
		}
		return "", semver.Version{}, &source.Error{
			Source: spec.Source,
			ID:     id,
			Reason: fmt.Sprintf("cannot find a package matching %q in %s", rng.String(), rc.LocalRepositoryDir),
			Err:    source.ErrNoCandidate,
		}
	case source.KindGitHub:
		adapter = r.github
	case source.KindNuGet:
		adapter = r.nuget
	}

	path, v, found, err := r.pick(ctx, adapter, ref, id, rng)
	if err != nil {
		return "", semver.Version{}, err
	}
	if !found {
		return "", semver.Version{}, &source.Error{
			Source: ref.String(),
			ID:     id,
			Reason: fmt.Sprintf("no release asset matches %q", rng.String()),
			Err:    source.ErrNoCandidate,
		}
	}
	r.logger.Debug("selected", "id", id, "version", v.String(), "source", ref.String())
	return path, v, nil
}

func (r *Resolver) pick(ctx context.Context, a source.Adapter, ref source.Ref, id string, rng semver.Range) (path string, v semver.Version, found bool, err error) {
	candidates, err := a.ListCandidates(ctx, ref, id)
	if err != nil {
		return "", semver.Version{}, false, err
	}
	c, ok := source.Select(rng, candidates)
	if !ok {
		return "", semver.Version{}, false, nil
	}
	path, err = a.Fetch(ctx, ref, id, c)
	if err != nil {
		return "", semver.Version{}, false, err
	}
	return path, c.Version, true, nil
}

// descend reads the extracted descriptor of id, adopts its merged dependencies and
// resolves its declared dependencies in order.
func (r *Resolver) descend(ctx context.Context, id string, rc *Context) error {
	descPath := filepath.Join(rc.OutputDir, filepath.FromSlash(unitypackage.DescriptorPath(id)))
	if exists, _ := afero.Exists(r.fs, descPath); !exists {
		r.logger.Debug("no package descriptor", "id", id)
		return nil
	}

	p, err := manifest.LoadFS(r.fs, descPath)
	if err != nil {
		r.logger.Warn("cannot load package descriptor", "id", id, "path", descPath, "err", err)
		return nil
	}

	for depID, merged := range p.MergedDependencies.All() {
		v, err := semver.Parse(merged.Version)
		if err != nil {
			return &manifest.Error{Path: descPath, Reason: fmt.Sprintf("merged dependency %s has an invalid version", depID), Err: err}
		}
		if committed, ok := rc.PackageMap.Get(depID); ok {
			if !committed.Equal(v) {
				return &ConflictError{ID: depID, Committed: committed, Range: merged.Version}
			}
			continue
		}
		r.logger.Debug("adopting merged dependency", "id", depID, "version", v.String(), "from", id)
		rc.PackageMap.commit(depID, v)
	}

	for depID, spec := range p.Dependencies.All() {
		if err := r.Resolve(ctx, depID, spec, rc); err != nil {
			return err
		}
	}
	return nil
}
