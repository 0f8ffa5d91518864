// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uniget/uniget/internal/issue"
	"github.com/uniget/uniget/pkg/manifest"
	"github.com/uniget/uniget/pkg/remove"
	"github.com/uniget/uniget/pkg/resolver"
	"github.com/uniget/uniget/pkg/source"
	"github.com/uniget/uniget/pkg/unitypackage"
)

// classifyError maps a failure to the catalog page that explains it. The
// boolean is false for errors no page covers.
func classifyError(err error) (issue.Id, bool) {
	if id, ok := issue.IssueOf(err); ok {
		return id, true
	}

	switch {
	case errors.Is(err, source.ErrRateLimited):
		return issue.RateLimitedId, true
	case errors.Is(err, resolver.ErrConflict):
		return issue.VersionConflictId, true
	case errors.Is(err, source.ErrSource):
		return issue.SourceUnavailableId, true
	case errors.Is(err, unitypackage.ErrArchiveFormat):
		return issue.ArchiveCorruptId, true
	case errors.Is(err, manifest.ErrManifest):
		return issue.ManifestInvalidId, true
	case errors.Is(err, remove.ErrNoAssets):
		return issue.ProjectLayoutId, true
	}
	return 0, false
}

// renderError prints err and, when a catalog page covers it, the page.
func (a *App) renderError(err error) {
	fmt.Fprintf(a.stderr, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.verbose))

	id, ok := classifyError(err)
	if !ok {
		return
	}
	rendered, renderErr := issue.Get(id).Render(a.cfg.UI.ColorScheme.GlamourStyle())
	if renderErr != nil {
		a.logger.Debug("cannot render help", "issue", id, "error", renderErr)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// formatErrorForDisplay uses ActionableError.Format when available so that
// suggestions and, in verbose mode, the error chain are shown.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// exactArgs is cobra.ExactArgs that prints the usage before failing with exit
// status 1.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			_ = cmd.Usage()
			return &ExitError{Code: 1, Err: err}
		}
		return nil
	}
}
