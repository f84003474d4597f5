package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/usecase"
)

// newStartTaskCommand creates the start-task command, the entry point used by
// the dashboard and other tools. The result is always printed as JSON; a
// failed workspace is data, not a command error.
func newStartTaskCommand(c *app.Container) *cobra.Command {
	var in usecase.StartTaskInput

	cmd := &cobra.Command{
		Use:   "start-task",
		Short: "Create (or reopen) the workspace for a task",
		Long: `Create the workspace for a task: derive a branch name, add a worktree
under the configured worktrees directory, record the session, run afterCreate
hooks and open a terminal on the opencode conversation.

If the task already has a workspace, it is reported with status "existing"
and its terminal is reopened.

The result is printed as JSON:
  {"status":"created|existing|failed","branch":...,"worktreePath":...,
   "taskId":...,"taskName":...,"opencodeSessionId":...,"message":...}

The exit code is 0 for every status; check "status".`,
		Example: `  transmute start-task --id T-42 --title "Add OAuth login" --session ses_abc123
  transmute start-task --id T-43 --title "Broken links" --type fix --no-terminal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}

			out := c.StartTaskUseCase().Execute(cmd.Context(), in)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&in.TaskID, "id", "", "Task identifier (required)")
	cmd.Flags().StringVar(&in.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "Task priority")
	cmd.Flags().StringVar(&in.Type, "type", "", "Branch type: feat, fix, refactor, docs, chore, test")
	cmd.Flags().StringVar(&in.Slug, "slug", "", "Branch slug to use instead of deriving one")
	cmd.Flags().StringVar(&in.BaseBranch, "base", "", "Base branch (default from config)")
	cmd.Flags().StringVar(&in.OpencodeSessionID, "session", "", "opencode session id to link to the workspace")
	cmd.Flags().StringArrayVar(&in.TerminalCommands, "cmd", nil, "Extra command to run in the terminal (repeatable)")
	cmd.Flags().StringToStringVar(&in.Env, "env", nil, "Extra terminal environment KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&in.NoTerminal, "no-terminal", false, "Do not open a terminal")
	cmd.Flags().BoolVar(&in.NoHooks, "no-hooks", false, "Do not run afterCreate hooks")

	return cmd
}
