package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/usecase"
)

func newCleanCommand(c *app.Container) *cobra.Command {
	var (
		in  usecase.CleanWorkspacesInput
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove orphaned and stale workspaces",
		Long: `Clean removes worktrees no session refers to (inside the worktrees
directory, or anywhere with --force) and, with --max-age-days, sessions older
than that together with their worktrees.

beforeDestroy hooks run in each worktree first. Failures are reported but do
not stop the rest of the cleanup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}
			uc := c.CleanWorkspacesUseCase()
			w := cmd.OutOrStdout()

			// Always preview first; the real run only happens after confirmation.
			preview := in
			preview.DryRun = true
			planned, err := uc.Execute(cmd.Context(), preview)
			if err != nil {
				return err
			}

			if len(planned.CleanedPaths) == 0 {
				_, _ = fmt.Fprintln(w, "Nothing to clean.")
				return nil
			}

			_, _ = fmt.Fprintln(w, "Workspaces to be removed:")
			for _, p := range planned.CleanedPaths {
				_, _ = fmt.Fprintf(w, "  - %s\n", p)
			}
			_, _ = fmt.Fprintln(w)

			if in.DryRun {
				_, _ = fmt.Fprintln(w, "Dry run: no changes made.")
				return nil
			}

			if !yes {
				ok, err := confirmFunc(
					fmt.Sprintf("Remove %d workspace(s)?", planned.CleanedCount),
					"Worktrees are deleted; branches and commits are kept.",
				)
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(w, "Aborted.")
					return nil
				}
			}

			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(w, "Cleaned %d workspace(s).\n", out.CleanedCount)
			for _, e := range out.Errors {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", e)
			}
			if len(out.Errors) > 0 {
				return fmt.Errorf("%d workspace(s) could not be removed", len(out.Errors))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&in.MaxAgeDays, "max-age-days", 0, "Also remove sessions older than this many days")
	cmd.Flags().BoolVar(&in.DryRun, "dry-run", false, "Display only, no deletion")
	cmd.Flags().BoolVar(&in.Force, "force", false, "Include orphans outside the worktrees dir and discard uncommitted changes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}
