package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/tui"
	"github.com/taskforge/transmute/internal/usecase"
)

// newListCommand creates the list command.
func newListCommand(c *app.Container) *cobra.Command {
	var (
		status string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workspaces",
		Long: `List task workspaces and stray worktrees.

Status is one of:
  active    the session's worktree exists
  missing   the session is recorded but its worktree is gone
  orphaned  a worktree no session refers to`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}

			out, err := c.ListSessionsUseCase().Execute(cmd.Context(), usecase.ListSessionsInput{Status: status})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			if len(out.Sessions) == 0 {
				_, _ = fmt.Fprintln(w, "No workspaces.")
				return nil
			}
			return printSessionTable(w, out.Sessions)
		},
	}

	cmd.Flags().StringVar(&status, "status", usecase.StatusAll, "Filter by status: active, missing, orphaned, all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func printSessionTable(w io.Writer, sessions []usecase.SessionInfo) error {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			dash(s.TaskID),
			string(s.Status),
			s.Branch,
			shortTip(s.Tip),
			s.WorktreePath,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tui.Colors.Muted)).
		Headers("TASK", "STATUS", "BRANCH", "TIP", "WORKTREE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return cell.Bold(true).Foreground(tui.Colors.Primary)
			}
			if col == 1 && row >= 0 && row < len(sessions) {
				return cell.Foreground(tui.StatusColor(sessions[row].Status))
			}
			return cell
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortTip(tip string) string {
	if len(tip) > 7 {
		return tip[:7]
	}
	return dash(tip)
}
