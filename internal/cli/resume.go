package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/usecase"
)

// newResumeCommand creates the resume command.
func newResumeCommand(c *app.Container) *cobra.Command {
	var in usecase.ResumeTaskInput

	cmd := &cobra.Command{
		Use:   "resume <taskId>",
		Short: "Reopen the terminal for an existing workspace",
		Long: `Reopen a terminal in the worktree of an existing task workspace,
continuing its stored opencode conversation.

Without a usable terminal the command prints how to continue by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}
			in.TaskID = args[0]

			out, err := c.ResumeTaskUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := out.Session
			_, _ = fmt.Fprintf(w, "Task %s: %s\n", s.TaskID, s.TaskName)
			_, _ = fmt.Fprintf(w, "  branch:   %s\n", s.Branch)
			_, _ = fmt.Fprintf(w, "  worktree: %s\n", s.WorktreePath)
			if out.TerminalOpened {
				_, _ = fmt.Fprintln(w, "Opened terminal.")
				return nil
			}
			_, _ = fmt.Fprintf(w, "Continue with:\n  cd %s && %s\n",
				domain.ShellQuote(s.WorktreePath), domain.OpencodeCommand(s.OpencodeSessionID, ""))
			return nil
		},
	}

	cmd.Flags().BoolVar(&in.NoTerminal, "no-terminal", false, "Only print the workspace, do not open a terminal")
	cmd.Flags().StringArrayVar(&in.TerminalCommands, "cmd", nil, "Extra command to run in the terminal (repeatable)")

	return cmd
}
