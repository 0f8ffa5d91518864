// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultGitHubAPIURL is the public GitHub REST endpoint.
	DefaultGitHubAPIURL = "https://api.github.com"
)

// ErrInvalidConfig is wrapped by every validation failure of a loaded Config.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// ColorScheme selects the palette used for help pages and styled output.
	ColorScheme string

	// Config is the user configuration.
	Config struct {
		// CacheDir holds downloaded packages. Empty means DataDir()/cache.
		CacheDir string `json:"cache_dir" mapstructure:"cache_dir"`
		// LocalRepository is the default for the -l flag.
		LocalRepository string       `json:"local_repository" mapstructure:"local_repository"`
		GitHub          GitHubConfig `json:"github" mapstructure:"github"`
		Fetch           FetchConfig  `json:"fetch" mapstructure:"fetch"`
		UI              UIConfig     `json:"ui" mapstructure:"ui"`
	}

	GitHubConfig struct {
		APIURL    string `json:"api_url" mapstructure:"api_url"`
		Token     string `json:"token" mapstructure:"token"`
		UserAgent string `json:"user_agent" mapstructure:"user_agent"`
	}

	// FetchConfig tunes asset downloads.
	FetchConfig struct {
		// MaxRetries counts attempts after the first one.
		MaxRetries int           `json:"max_retries" mapstructure:"max_retries"`
		BaseDelay  time.Duration `json:"base_delay" mapstructure:"base_delay"`
		Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:    DefaultGitHubAPIURL,
			UserAgent: "uniget",
		},
		Fetch: FetchConfig{
			MaxRetries: 3,
			BaseDelay:  500 * time.Millisecond,
			Timeout:    10 * time.Minute,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate reports values the schema cannot rule out, such as durations
// supplied through the environment.
func (c *Config) Validate() error {
	var errs []error
	if c.Fetch.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_retries: must not be negative, got %d", c.Fetch.MaxRetries))
	}
	if c.Fetch.BaseDelay < 0 {
		errs = append(errs, fmt.Errorf("fetch.base_delay: must not be negative, got %s", c.Fetch.BaseDelay))
	}
	if c.Fetch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout: must not be negative, got %s", c.Fetch.Timeout))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (s ColorScheme) Validate() error {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return fmt.Errorf("ui.color_scheme: unknown scheme %q", string(s))
	}
}

// GlamourStyle maps the scheme to a glamour standard style name.
func (s ColorScheme) GlamourStyle() string {
	switch s {
	case ColorSchemeDark:
		return "dark"
	case ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
