// Package cli provides the command-line interface for transmute.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/domain"
)

// Command group IDs.
const (
	groupWorkspace   = "workspace"
	groupMaintenance = "maintenance"
	groupSetup       = "setup"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for transmute.
// It receives the container for dependency injection and version for display.
// c may be nil when running outside a git repository.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "transmute",
		Short: "Task workspaces backed by git worktrees",
		Long: `transmute turns a task into an isolated workspace: a git branch named
from the task, a worktree checked out on it, setup hooks run inside it, and a
terminal opened on an opencode conversation.

1 task = 1 branch = 1 worktree = 1 opencode session.

Run without arguments to browse existing workspaces.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// config show prints its own warnings
			if c == nil || c.AppConfig == nil || cmd.Name() == "show" {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}
			return launchTUIFunc(c)
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupWorkspace, Title: "Workspace Commands:"},
		&cobra.Group{ID: groupMaintenance, Title: "Maintenance Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	startCmd := newStartTaskCommand(c)
	startCmd.GroupID = groupWorkspace

	resumeCmd := newResumeCommand(c)
	resumeCmd.GroupID = groupWorkspace

	listCmd := newListCommand(c)
	listCmd.GroupID = groupWorkspace

	nameCmd := newNameCommand(c)
	nameCmd.GroupID = groupWorkspace

	tuiCmd := newTUICommand(c)
	tuiCmd.GroupID = groupWorkspace

	removeCmd := newRemoveCommand(c)
	removeCmd.GroupID = groupMaintenance

	cleanCmd := newCleanCommand(c)
	cleanCmd.GroupID = groupMaintenance

	pruneCmd := newPruneCommand(c)
	pruneCmd.GroupID = groupMaintenance

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(
		startCmd,
		resumeCmd,
		listCmd,
		nameCmd,
		tuiCmd,
		removeCmd,
		cleanCmd,
		pruneCmd,
		configCmd,
	)

	root.SetVersionTemplate("transmute version {{.Version}}\n")

	return root
}

// requireContainer reports a helpful error when a command needs a repository.
func requireContainer(c *app.Container) error {
	if c == nil {
		return fmt.Errorf("transmute must be run inside a git repository: %w", domain.ErrNoGitRepo)
	}
	return nil
}
