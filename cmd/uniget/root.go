// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "uniget",
		Short: "Dependency manager for Unity packages",
		Long: TitleStyle.Render("uniget") + SubtitleStyle.Render(" - dependency manager for Unity packages") + `

uniget restores the packages a project declares in its UnityPackages.json,
resolving versions from a local repository or from GitHub release assets,
and packs projects into .unitypackage files with a descriptor that lists
their files and dependencies.

` + SubtitleStyle.Render("Examples:") + `
  uniget restore UnityPackages.json            Restore into the project
  uniget restore UnityPackages.json -l ./pkgs  Prefer a local repository
  uniget pack UnityPackages.json -o ./out      Build <id>.<version>.unitypackage
  uniget remove .                              Delete restored packages`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app.loadConfig(cmd.Context())
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/uniget/config.cue)")

	rootCmd.AddCommand(
		newRestoreCommand(app),
		newPackCommand(app),
		newRemoveCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the command tree and exits with the status of the failure, if any.
// It is called by main.main.
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(_ io.Writer, _ fang.Styles, err error) {
			app.renderError(err)
		}),
	)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
