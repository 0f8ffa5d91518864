// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/uniget/uniget/internal/issue"
	"github.com/uniget/uniget/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "uniget"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema string

// envBindings maps config keys to the environment variables that override them.
// The first variable set wins.
var envBindings = map[string][]string{
	"cache_dir":        {"UNIGET_CACHE_DIR"},
	"local_repository": {"UNIGET_LOCAL_REPOSITORY"},
	"github.token":     {"UNIGET_GITHUB_TOKEN", "GITHUB_TOKEN"},
	"github.api_url":   {"UNIGET_GITHUB_API_URL"},
}

// ConfigDir returns the uniget configuration directory: %APPDATA% on Windows,
// ~/Library/Application Support on macOS, $XDG_CONFIG_HOME (or ~/.config)
// elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	return platformDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the directory holding downloaded packages: %APPDATA% on
// Windows, ~/Library/Application Support on macOS, $XDG_DATA_HOME (or
// ~/.local/share) elsewhere.
func DataDir() (string, error) {
	return platformDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformDir(xdgVar, xdgDefault string) (string, error) {
	var base string

	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv(xdgVar)
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, xdgDefault)
		}
	}

	return filepath.Join(base, AppName), nil
}

// CacheDir returns cfg.CacheDir, or the cache folder under DataDir when unset.
func CacheDir(cfg *Config) (string, error) {
	if cfg != nil && cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// loadWithOptions loads defaults, then the first config file found, then the
// environment overrides. The resolved file path is empty when no file exists.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("local_repository", defaults.LocalRepository)
	v.SetDefault("github.api_url", defaults.GitHub.APIURL)
	v.SetDefault("github.token", defaults.GitHub.Token)
	v.SetDefault("github.user_agent", defaults.GitHub.UserAgent)
	v.SetDefault("fetch.max_retries", defaults.Fetch.MaxRetries)
	v.SetDefault("fetch.base_delay", defaults.Fetch.BaseDelay)
	v.SetDefault("fetch.timeout", defaults.Fetch.Timeout)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	for key, vars := range envBindings {
		if err := v.BindEnv(append([]string{key}, vars...)...); err != nil {
			return nil, "", fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	resolvedPath, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'uniget config dump' to see a valid file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the UNIGET_* environment variables").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// findConfigFile picks the explicit file, the file in the config directory or
// ./config.cue, in that order. Only an explicit file must exist.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'uniget config init' to create the default file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}

	for _, candidate := range []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		ConfigFileName + "." + ConfigFileExt,
	} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates the file at path against #Config and merges it
// into v. Fields stay optional, so the value is not required to be concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()
	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	unified, err := cueutil.UnifyWithSchema(ctx, configSchema, "#Config", userValue, path, false)
	if err != nil {
		return err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default file into the config directory
// unless one exists, and returns its path.
func CreateDefaultConfig() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cfgPath) {
		return cfgPath, nil
	}

	return cfgPath, writeConfig(cfgDir, cfgPath, DefaultConfig())
}

// Save writes cfg to the config directory, replacing any existing file.
func Save(cfg *Config) error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return writeConfig(cfgDir, filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), cfg)
}

func writeConfig(dir, path string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a config file. Empty optional strings are left
// out; the token is never written.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// uniget configuration file\n")
	sb.WriteString("// Environment variables UNIGET_CACHE_DIR, UNIGET_LOCAL_REPOSITORY,\n")
	sb.WriteString("// UNIGET_GITHUB_TOKEN (or GITHUB_TOKEN) and UNIGET_GITHUB_API_URL override it.\n\n")

	if cfg.CacheDir != "" {
		fmt.Fprintf(&sb, "cache_dir: %q\n", cfg.CacheDir)
	}
	if cfg.LocalRepository != "" {
		fmt.Fprintf(&sb, "local_repository: %q\n", cfg.LocalRepository)
	}

	sb.WriteString("\ngithub: {\n")
	fmt.Fprintf(&sb, "\tapi_url: %q\n", cfg.GitHub.APIURL)
	if cfg.GitHub.UserAgent != "" {
		fmt.Fprintf(&sb, "\tuser_agent: %q\n", cfg.GitHub.UserAgent)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nfetch: {\n")
	fmt.Fprintf(&sb, "\tmax_retries: %d\n", cfg.Fetch.MaxRetries)
	fmt.Fprintf(&sb, "\tbase_delay: %q\n", cfg.Fetch.BaseDelay.String())
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Fetch.Timeout.String())
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
