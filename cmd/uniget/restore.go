// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/uniget/uniget/internal/issue"
	"github.com/uniget/uniget/pkg/resolver"
)

func newRestoreCommand(app *App) *cobra.Command {
	var (
		outputDir     string
		localRepo     string
		forceDownload bool
	)

	restoreCmd := &cobra.Command{
		Use:   "restore <project-file>",
		Short: "Restore the dependencies of a project",
		Long: `Restore every dependency declared in the project file, recursively.

Each package is looked up in the local repository first, then in its declared
source, and extracted into the output directory (the project file's directory
by default). The first declaration of a package decides its version; later
declarations must accept it.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.newResolver(forceDownload)
			if err != nil {
				return err
			}

			rc, err := r.Restore(cmd.Context(), args[0], resolver.RestoreOptions{
				OutputDir:          outputDir,
				LocalRepositoryDir: app.localRepository(localRepo),
			})
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("restore dependencies").
					WithResource(args[0]).
					Wrap(err).
					BuildError()
			}

			printRestored(app.stdout, rc)
			return nil
		},
	}

	restoreCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to extract packages into (default is the project file's directory)")
	restoreCmd.Flags().StringVarP(&localRepo, "local", "l", "", "local repository directory (default is local_repository from config)")
	restoreCmd.Flags().BoolVar(&forceDownload, "force-download", false, "download GitHub assets even when cached")

	return restoreCmd
}

func printRestored(w io.Writer, rc *resolver.Context) {
	pm := rc.PackageMap
	if pm.Len() == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("Nothing to restore"))
		return
	}

	fmt.Fprintf(w, "%s Restored %d package(s) into %s\n", SuccessStyle.Render("✓"), pm.Len(), filepath.Clean(rc.OutputDir))
	for _, id := range pm.Order {
		v, _ := pm.Get(id)
		fmt.Fprintf(w, "  %s%s\n", IDStyle.Render(id), versionStyle.Render(v.String()))
	}
}
