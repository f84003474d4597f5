package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
)

func newPruneCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Forget worktrees whose directories were deleted",
		Long:  `Prune runs "git worktree prune" in the main repository.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}
			if err := c.PruneWorktreesUseCase().Execute(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Pruned stale worktree entries.")
			return nil
		},
	}
}
