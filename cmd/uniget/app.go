// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/uniget/uniget/internal/config"
	"github.com/uniget/uniget/pkg/resolver"
	"github.com/uniget/uniget/pkg/source"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Resolve(opts config.LoadOptions) (string, error)
	}

	// App is the composition root of the CLI. Command handlers read the loaded
	// configuration and logger from it and build the domain services through it.
	App struct {
		Config ConfigProvider
		// GitHub replaces the adapter built from configuration when set.
		GitHub source.Adapter
		stdout io.Writer
		stderr io.Writer

		cfg        *config.Config
		logger     *log.Logger
		verbose    bool
		configPath string
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config ConfigProvider
		GitHub source.Adapter
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		GitHub: deps.GitHub,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		cfg:    config.DefaultConfig(),
		logger: newLogger(deps.Stderr, false),
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{Prefix: "uniget", Level: level})
}

// loadConfig reads the configuration and applies ui.verbose when the flag was
// not given. A broken file is reported and defaults are used instead.
func (a *App) loadConfig(ctx context.Context) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		io.WriteString(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose)+"\n") //nolint:errcheck
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg

	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}
	a.logger = newLogger(a.stderr, a.verbose)
}

// localRepository returns the -l value, falling back to local_repository.
func (a *App) localRepository(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.LocalRepository
}

// newResolver builds a resolver whose GitHub adapter follows the github and
// fetch settings. force re-downloads cached assets.
func (a *App) newResolver(force bool) (*resolver.Resolver, error) {
	logger := a.logger.WithPrefix("resolver")
	if a.GitHub != nil {
		return resolver.New(resolver.WithGitHub(a.GitHub), resolver.WithLogger(logger)), nil
	}

	cacheDir, err := config.CacheDir(a.cfg)
	if err != nil {
		return nil, err
	}

	gh := a.cfg.GitHub
	client := source.NewGitHubClient(
		source.WithBaseURL(gh.APIURL),
		source.WithToken(gh.Token),
		source.WithUserAgent(gh.UserAgent),
	)
	fetcher := source.NewFetcher(
		source.WithAuthFunc(client.AuthHeader),
		source.WithFetchUserAgent(gh.UserAgent),
		source.WithMaxRetries(a.cfg.Fetch.MaxRetries),
		source.WithBaseDelay(a.cfg.Fetch.BaseDelay),
		source.WithTimeout(a.cfg.Fetch.Timeout),
	)
	adapter := source.NewGitHub(client, source.NewBreakerFetcher(fetcher), source.NewCache(cacheDir))
	adapter.Force = force

	logger.Debug("github adapter", "api", gh.APIURL, "cache", cacheDir, "force", force)
	return resolver.New(resolver.WithGitHub(adapter), resolver.WithLogger(logger)), nil
}
