package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/tui"
)

// newTUICommand creates the tui command (same as running `transmute` without arguments).
func newTUICommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse workspaces interactively",
		Long: `Launch the workspace browser.

Keys: enter resumes the selected workspace, r refreshes, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}
			return launchTUIFunc(c)
		},
	}
}

func launchTUI(c *app.Container) error {
	model := tui.New(c.ListSessionsUseCase(), c.ResumeTaskUseCase())
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
