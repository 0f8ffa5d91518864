// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uniget/uniget/internal/config"
	"github.com/uniget/uniget/internal/issue"
	"github.com/uniget/uniget/internal/testutil"
	"github.com/uniget/uniget/pkg/manifest"
	"github.com/uniget/uniget/pkg/remove"
	"github.com/uniget/uniget/pkg/resolver"
	"github.com/uniget/uniget/pkg/semver"
	"github.com/uniget/uniget/pkg/source"
	"github.com/uniget/uniget/pkg/unitypackage"
)

// stubConfig serves a fixed configuration.
type stubConfig struct {
	cfg  *config.Config
	path string
	err  error
}

func (s *stubConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.cfg == nil {
		return config.DefaultConfig(), nil
	}
	return s.cfg, nil
}

func (s *stubConfig) Resolve(config.LoadOptions) (string, error) {
	return s.path, nil
}

// offlineGitHub fails every lookup so tests never reach the network.
type offlineGitHub struct{}

func (offlineGitHub) ListCandidates(_ context.Context, ref source.Ref, id string) ([]source.Candidate, error) {
	return nil, &source.Error{Source: ref.String(), ID: id, Reason: "offline"}
}

func (offlineGitHub) Fetch(_ context.Context, ref source.Ref, id string, _ source.Candidate) (string, error) {
	return "", &source.Error{Source: ref.String(), ID: id, Reason: "offline"}
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, cfg ConfigProvider, args ...string) cliResult {
	t.Helper()

	if cfg == nil {
		cfg = &stubConfig{}
	}
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{Config: cfg, GitHub: offlineGitHub{}, Stdout: &stdout, Stderr: &stderr})

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	if err != nil {
		app.renderError(err)
	}
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func buildRepo(t *testing.T) string {
	t.Helper()

	repo := t.TempDir()
	testutil.MustBuildPackage(t, repo, testutil.PackageFixture{
		ID:           "DepA",
		Version:      "1.0.0",
		Dependencies: manifest.NewDependencies([]string{"DepB"}, []manifest.DependencySpec{{Version: "1.x", Source: "local"}}),
		Files:        map[string]string{"Assets/UnityPackages/DepA/A.txt": "A"},
	})
	for _, v := range []string{"1.0.0", "1.1.0"} {
		testutil.MustBuildPackage(t, repo, testutil.PackageFixture{
			ID:      "DepB",
			Version: v,
			Files:   map[string]string{"Assets/UnityPackages/DepB/B.txt": v},
		})
	}
	return repo
}

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, "UnityPackages.json")
	testutil.MustWriteFile(t, p, content)
	return p
}

func TestRestoreCommand(t *testing.T) {
	t.Parallel()

	repo := buildRepo(t)
	project := t.TempDir()
	manifestPath := writeManifest(t, project, `{"id": "App", "dependencies": {"DepA": {"version": "1.0.0", "source": "local"}}}`)

	res := runCLI(t, nil, "restore", manifestPath, "-l", repo)
	if res.err != nil {
		t.Fatalf("restore failed: %v\n%s", res.err, res.stderr)
	}

	if !strings.Contains(res.stdout, "Restored 2 package(s)") {
		t.Errorf("stdout = %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "DepB 1.1.0") {
		t.Errorf("stdout should list DepB 1.1.0: %q", res.stdout)
	}
	testutil.AssertExists(t, filepath.Join(project, "Assets", "UnityPackages", "DepA", "A.txt"))
	if got := testutil.MustReadFile(t, filepath.Join(project, "Assets", "UnityPackages", "DepB", "B.txt")); got != "1.1.0" {
		t.Errorf("B.txt = %q", got)
	}
}

func TestRestoreCommand_LocalRepositoryFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.LocalRepository = buildRepo(t)

	project := t.TempDir()
	out := t.TempDir()
	manifestPath := writeManifest(t, project, `{"dependencies": {"DepB": {"version": "1.0.0", "source": "local"}}}`)

	res := runCLI(t, &stubConfig{cfg: cfg}, "restore", manifestPath, "-o", out)
	if res.err != nil {
		t.Fatalf("restore failed: %v\n%s", res.err, res.stderr)
	}
	testutil.AssertExists(t, filepath.Join(out, "Assets", "UnityPackages", "DepB", "B.txt"))
	testutil.AssertNotExists(t, filepath.Join(project, "Assets"))
}

func TestRestoreCommand_NothingToRestore(t *testing.T) {
	t.Parallel()

	manifestPath := writeManifest(t, t.TempDir(), `{"id": "App"}`)

	res := runCLI(t, nil, "restore", manifestPath)
	if res.err != nil {
		t.Fatalf("restore failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Nothing to restore") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestRestoreCommand_Failures(t *testing.T) {
	t.Parallel()

	repo := buildRepo(t)

	tests := []struct {
		name      string
		manifest  string
		wantIssue issue.Id
		wantErr   error
	}{
		{
			name:      "conflict",
			manifest:  `{"dependencies": {"DepA": {"version": "1.0.0", "source": "local"}, "DepB": {"version": "1.0.0", "source": "local"}}}`,
			wantIssue: issue.VersionConflictId,
			wantErr:   resolver.ErrConflict,
		},
		{
			name:      "no candidate",
			manifest:  `{"dependencies": {"DepC": {"version": "1.0.0", "source": "local"}}}`,
			wantIssue: issue.SourceUnavailableId,
			wantErr:   source.ErrNoCandidate,
		},
		{
			name:      "github offline",
			manifest:  `{"dependencies": {"DepC": {"version": "1.0.0", "source": "github:owner/repo"}}}`,
			wantIssue: issue.SourceUnavailableId,
			wantErr:   source.ErrSource,
		},
		{
			name:      "invalid range",
			manifest:  `{"dependencies": {"DepB": {"version": "abc", "source": "local"}}}`,
			wantIssue: issue.ManifestInvalidId,
			wantErr:   manifest.ErrManifest,
		},
		{
			name:      "broken json",
			manifest:  `{"dependencies": `,
			wantIssue: issue.ManifestInvalidId,
			wantErr:   manifest.ErrManifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			manifestPath := writeManifest(t, t.TempDir(), tt.manifest)
			res := runCLI(t, nil, "restore", manifestPath, "-l", repo)
			if res.err == nil {
				t.Fatal("restore should fail")
			}
			if !errors.Is(res.err, tt.wantErr) {
				t.Errorf("error = %v, want %v", res.err, tt.wantErr)
			}
			if id, ok := classifyError(res.err); !ok || id != tt.wantIssue {
				t.Errorf("classifyError() = %d, %v; want %d", id, ok, tt.wantIssue)
			}
			if !strings.Contains(res.stderr, "Error:") || !strings.Contains(res.stderr, "failed to restore dependencies") {
				t.Errorf("stderr = %q", res.stderr)
			}
		})
	}
}

func TestPackCommand(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	out := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(project, "Readme.txt"), "hello")
	manifestPath := writeManifest(t, project, `{"id": "Tool", "version": "2.1.0", "files": ["Readme.txt"]}`)

	res := runCLI(t, nil, "pack", manifestPath, "-o", out)
	if res.err != nil {
		t.Fatalf("pack failed: %v\n%s", res.err, res.stderr)
	}

	want := filepath.Join(out, "Tool.2.1.0.unitypackage")
	testutil.AssertExists(t, want)
	if !strings.Contains(res.stdout, "Packed "+want) {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestPackCommand_Dependencies(t *testing.T) {
	t.Parallel()

	repo := buildRepo(t)
	project := t.TempDir()
	out := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(project, "Main.txt"), "main")
	manifestPath := writeManifest(t, project, `{
		"id": "Bundle",
		"version": "1.0.0",
		"dependencies": {"DepA": {"version": "1.0.0", "source": "local"}},
		"files": ["Main.txt", "$dependencies$"]
	}`)

	res := runCLI(t, nil, "pack", manifestPath, "-o", out, "-l", repo)
	if res.err != nil {
		t.Fatalf("pack failed: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "Merged dependencies:") || !strings.Contains(res.stdout, "DepB 1.1.0") {
		t.Errorf("stdout = %q", res.stdout)
	}

	// The bundle restores without the repository.
	consumer := t.TempDir()
	consumerManifest := writeManifest(t, consumer, `{"dependencies": {"Bundle": {"version": "1.0.0", "source": "local"}}}`)
	res = runCLI(t, nil, "restore", consumerManifest, "-l", out)
	if res.err != nil {
		t.Fatalf("restore failed: %v\n%s", res.err, res.stderr)
	}
	testutil.AssertExists(t, filepath.Join(consumer, "Assets", "UnityPackages", "DepB", "B.txt"))
}

func TestPackCommand_InvalidManifest(t *testing.T) {
	t.Parallel()

	manifestPath := writeManifest(t, t.TempDir(), `{"id": "Tool", "version": "1.0.0"}`)

	res := runCLI(t, nil, "pack", manifestPath)
	if !errors.Is(res.err, manifest.ErrManifest) {
		t.Fatalf("error = %v, want ErrManifest", res.err)
	}
	if id, _ := classifyError(res.err); id != issue.ManifestInvalidId {
		t.Errorf("classifyError() = %d", id)
	}
}

func TestRemoveCommand(t *testing.T) {
	t.Parallel()

	repo := buildRepo(t)
	project := t.TempDir()
	manifestPath := writeManifest(t, project, `{"dependencies": {"DepA": {"version": "1.0.0", "source": "local"}}}`)
	if res := runCLI(t, nil, "restore", manifestPath, "-l", repo); res.err != nil {
		t.Fatalf("restore failed: %v", res.err)
	}

	res := runCLI(t, nil, "remove", project)
	if res.err != nil {
		t.Fatalf("remove failed: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "Removed 2 package(s)") {
		t.Errorf("stdout = %q", res.stdout)
	}
	testutil.AssertNotExists(t, filepath.Join(project, "Assets", "UnityPackages"))

	res = runCLI(t, nil, "remove", project)
	if res.err != nil {
		t.Fatalf("second remove failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "No restored packages") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestRemoveCommand_NoAssets(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil, "remove", t.TempDir())
	if !errors.Is(res.err, remove.ErrNoAssets) {
		t.Fatalf("error = %v, want ErrNoAssets", res.err)
	}
	if id, _ := classifyError(res.err); id != issue.ProjectLayoutId {
		t.Errorf("classifyError() = %d", id)
	}
}

func TestMissingArguments(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"restore", "pack", "remove"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, nil, name)
			var exitErr *ExitError
			if !errors.As(res.err, &exitErr) || exitErr.Code != 1 {
				t.Fatalf("error = %v, want ExitError with code 1", res.err)
			}
			if !strings.Contains(res.stderr, "Usage:") {
				t.Errorf("usage not printed: %q", res.stderr)
			}
		})
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.CacheDir = "/var/cache/uniget"
	cfg.GitHub.Token = "secret"

	res := runCLI(t, &stubConfig{cfg: cfg, path: "/etc/uniget/config.cue"}, "config", "show")
	if res.err != nil {
		t.Fatalf("config show failed: %v", res.err)
	}
	for _, want := range []string{
		"Config file: /etc/uniget/config.cue",
		"cache_dir: /var/cache/uniget",
		"github.api_url: https://api.github.com",
		"github.token: (set)",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
	if strings.Contains(res.stdout, "secret") {
		t.Error("config show must not print the token")
	}
}

func TestConfigShow_LoadFailure(t *testing.T) {
	t.Parallel()

	loadErr := issue.NewErrorContext().
		WithOperation("load configuration").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(errors.New("syntax error")).
		BuildError()

	res := runCLI(t, &stubConfig{err: loadErr}, "config", "show")
	if res.err == nil {
		t.Fatal("config show should fail")
	}
	if !strings.Contains(res.stderr, "Warning:") {
		t.Errorf("the pre-run should warn about the config: %q", res.stderr)
	}
	if id, _ := classifyError(res.err); id != issue.ConfigLoadFailedId {
		t.Errorf("classifyError() = %d", id)
	}
}

func TestConfigDump(t *testing.T) {
	t.Parallel()

	res := runCLI(t, nil, "config", "dump")
	if res.err != nil {
		t.Fatalf("config dump failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, `api_url: "https://api.github.com"`) {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
		ok   bool
	}{
		{"rate limited", fmt.Errorf("list: %w", &source.RateLimitError{}), issue.RateLimitedId, true},
		{"rate limit inside source error", &source.Error{Source: "github:a/b", Err: source.ErrRateLimited}, issue.RateLimitedId, true},
		{"conflict", &resolver.ConflictError{ID: "A", Committed: semver.MustParse("1.0.0"), Range: "2.x"}, issue.VersionConflictId, true},
		{"archive", &unitypackage.FormatError{Path: "x.unitypackage", Reason: "truncated"}, issue.ArchiveCorruptId, true},
		{"manifest", &manifest.Error{Path: "UnityPackages.json"}, issue.ManifestInvalidId, true},
		{"explicit issue wins", issue.NewErrorContext().WithOperation("x").WithIssue(issue.ConfigLoadFailedId).Wrap(resolver.ErrConflict).BuildError(), issue.ConfigLoadFailedId, true},
		{"unknown", errors.New("boom"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, ok := classifyError(tt.err)
			if id != tt.want || ok != tt.ok {
				t.Errorf("classifyError() = %d, %v; want %d, %v", id, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	if got := (&ExitError{Code: 2, Err: cause}).Error(); got != "boom" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(&ExitError{Code: 1, Err: cause}, cause) {
		t.Error("Unwrap lost the cause")
	}
}
