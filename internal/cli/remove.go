package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/usecase"
)

func newRemoveCommand(c *app.Container) *cobra.Command {
	var (
		force bool
		yes   bool
	)

	cmd := &cobra.Command{
		Use:     "remove <taskId>",
		Aliases: []string{"rm"},
		Short:   "Remove a task's workspace",
		Long: `Remove runs beforeDestroy hooks, deletes the task's worktree and forgets
its session. The branch is kept.

A worktree that was already deleted by hand is pruned from git instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}
			taskID := args[0]
			w := cmd.OutOrStdout()

			session, err := c.Sessions.FindByTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			if session == nil {
				return fmt.Errorf("task %s: %w", taskID, domain.ErrSessionNotFound)
			}

			if !yes {
				ok, err := confirmFunc(
					fmt.Sprintf("Remove worktree at %s?", session.WorktreePath),
					fmt.Sprintf("Branch %s and its commits are kept.", session.Branch),
				)
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(w, "Aborted.")
					return nil
				}
			}

			out, err := c.RemoveTaskUseCase().Execute(cmd.Context(), usecase.RemoveTaskInput{TaskID: taskID, Force: force})
			if err != nil {
				return err
			}

			if out.WorktreeRemoved {
				_, _ = fmt.Fprintf(w, "Removed workspace %s for task %s.\n", out.WorktreePath, out.TaskID)
			} else {
				_, _ = fmt.Fprintf(w, "Worktree %s was already gone; forgot task %s.\n", out.WorktreePath, out.TaskID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even with uncommitted changes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}
