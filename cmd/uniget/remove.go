// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uniget/uniget/internal/issue"
	"github.com/uniget/uniget/pkg/remove"
)

func newRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project-dir>",
		Short: "Delete restored packages from a project",
		Long: `Delete every package restored into the project.

The descriptors under Assets/UnityPackages name the files each package
placed. Those files and their metas are deleted, then empty folders under
Assets/UnityPackages are pruned. Files added by hand are kept.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := remove.Remove(args[0], remove.Options{Logger: app.logger.WithPrefix("remove")})
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("remove packages").
					WithResource(args[0]).
					Wrap(err).
					BuildError()
			}

			w := app.stdout
			if len(report.Packages) == 0 {
				fmt.Fprintln(w, SubtitleStyle.Render("No restored packages"))
				return nil
			}
			fmt.Fprintf(w, "%s Removed %d package(s), %d file(s), %d folder(s)\n",
				SuccessStyle.Render("✓"), len(report.Packages), len(report.Files), len(report.Folders))
			for _, id := range report.Packages {
				fmt.Fprintf(w, "  %s\n", IDStyle.Render(id))
			}
			return nil
		},
	}
}
