// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uniget/uniget/internal/issue"
	"github.com/uniget/uniget/pkg/pack"
)

func newPackCommand(app *App) *cobra.Command {
	var (
		outputDir string
		localRepo string
	)

	packCmd := &cobra.Command{
		Use:   "pack <project-file>",
		Short: "Build a .unitypackage from a project",
		Long: `Build "<id>.<version>.unitypackage" from the files listed in the project file.

Files without a .meta sidecar get one generated. A "$dependencies$" entry
restores the project's dependencies and vendors them into the package; their
versions are recorded in the descriptor as mergedDependencies.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.newResolver(false)
			if err != nil {
				return err
			}

			result, err := pack.Pack(cmd.Context(), args[0], pack.Options{
				OutputDir:          outputDir,
				LocalRepositoryDir: app.localRepository(localRepo),
				Logger:             app.logger.WithPrefix("pack"),
				Resolver:           r,
			})
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("pack project").
					WithResource(args[0]).
					Wrap(err).
					BuildError()
			}

			w := app.stdout
			fmt.Fprintf(w, "%s Packed %s (%d files)\n", SuccessStyle.Render("✓"), result.Path, len(result.Files))
			if result.Merged != nil && result.Merged.Len() > 0 {
				fmt.Fprintln(w, SubtitleStyle.Render("Merged dependencies:"))
				for _, id := range result.Merged.Order {
					v, _ := result.Merged.Get(id)
					fmt.Fprintf(w, "  %s%s\n", IDStyle.Render(id), versionStyle.Render(v.String()))
				}
			}
			return nil
		},
	}

	packCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the created package (default is the project file's directory)")
	packCmd.Flags().StringVarP(&localRepo, "local", "l", "", "local repository directory (default is local_repository from config)")

	return packCmd
}
