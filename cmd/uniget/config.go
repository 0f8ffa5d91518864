// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/uniget/uniget/internal/config"
	"github.com/uniget/uniget/internal/issue"
)

// newConfigCommand creates the `uniget config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage uniget configuration",
		Long: `Manage uniget configuration.

Configuration is stored in:
  - Linux: ~/.config/uniget/config.cue
  - macOS: ~/Library/Application Support/uniget/config.cue
  - Windows: %APPDATA%\uniget\config.cue`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				return showConfig(cmd, app)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				return showConfigPath(app)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create default configuration file",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := config.CreateDefaultConfig()
				if err != nil {
					return issue.NewErrorContext().
						WithOperation("create configuration").
						WithIssue(issue.ConfigLoadFailedId).
						Wrap(err).
						BuildError()
				}
				fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Output the effective configuration as CUE",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.configPath})
				if err != nil {
					return err
				}
				fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
				return nil
			},
		},
	)

	return cfgCmd
}

// showConfig loads the configuration again so that a broken file fails the
// command instead of only printing a warning.
func showConfig(cmd *cobra.Command, app *App) error {
	opts := config.LoadOptions{ConfigFilePath: app.configPath}
	cfg, err := app.Config.Load(cmd.Context(), opts)
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, err := app.Config.Resolve(opts)
	if err != nil || path == "" {
		fmt.Fprintf(w, "%s: %s\n", IDStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", IDStyle.Render("Config file"), path)
	}

	cacheDir, err := config.CacheDir(cfg)
	if err != nil {
		slog.Warn("failed to determine cache directory", "error", err)
	}

	token := SubtitleStyle.Render("(not set)")
	if cfg.GitHub.Token != "" {
		token = SuccessStyle.Render("(set)")
	}

	rows := [][2]string{
		{"cache_dir", cacheDir},
		{"local_repository", cfg.LocalRepository},
		{"github.api_url", cfg.GitHub.APIURL},
		{"github.user_agent", cfg.GitHub.UserAgent},
		{"fetch.max_retries", strconv.Itoa(cfg.Fetch.MaxRetries)},
		{"fetch.base_delay", cfg.Fetch.BaseDelay.String()},
		{"fetch.timeout", cfg.Fetch.Timeout.String()},
		{"ui.color_scheme", string(cfg.UI.ColorScheme)},
		{"ui.verbose", strconv.FormatBool(cfg.UI.Verbose)},
	}

	fmt.Fprintln(w)
	for _, row := range rows {
		value := SuccessStyle.Render(row[1])
		if row[1] == "" {
			value = SubtitleStyle.Render("(none)")
		}
		fmt.Fprintf(w, "%s: %s\n", IDStyle.Render(row[0]), value)
	}
	fmt.Fprintf(w, "%s: %s\n", IDStyle.Render("github.token"), token)

	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	if app.configPath != "" {
		fmt.Fprintf(w, "Config file: %s\n", app.configPath)
	} else {
		fmt.Fprintf(w, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	}

	if dataDir, err := config.DataDir(); err == nil {
		fmt.Fprintf(w, "Data directory: %s\n", dataDir)
	}
	return nil
}
