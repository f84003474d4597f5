package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/testutil"
	"github.com/taskforge/transmute/internal/usecase"
)

// =============================================================================
// Resume Command Tests
// =============================================================================

func TestResumeCommand_OpensTerminal(t *testing.T) {
	c, deps := newTestContainer()
	s := deps.seed("T-1")

	out, _, err := execute(t, c, "resume", "T-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Task T-1: Task T-1")
	assert.Contains(t, out, "Opened terminal.")
	require.Len(t, deps.terminal.Opened, 1)
	assert.Equal(t, s.WorktreePath, deps.terminal.Opened[0].Cwd)
}

func TestResumeCommand_NoTerminalPrintsCommand(t *testing.T) {
	c, deps := newTestContainer()
	deps.seed("T-1")

	out, _, err := execute(t, c, "resume", "T-1", "--no-terminal")

	require.NoError(t, err)
	assert.Contains(t, out, "cd '/repo/worktrees/feat-T-1' && opencode --session 'ses_T-1'")
	assert.Empty(t, deps.terminal.Opened)
}

func TestResumeCommand_NotFound(t *testing.T) {
	c, _ := newTestContainer()

	_, _, err := execute(t, c, "resume", "nope")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestResumeCommand_RequiresTaskID(t *testing.T) {
	c, _ := newTestContainer()

	_, _, err := execute(t, c, "resume")

	assert.Error(t, err)
}

// =============================================================================
// List Command Tests
// =============================================================================

func TestListCommand_Table(t *testing.T) {
	c, deps := newTestContainer()
	deps.seed("T-1")
	deps.worktrees.Worktrees = append(deps.worktrees.Worktrees, domain.Worktree{Path: "/repo/worktrees/stray", Branch: "stray"})

	out, _, err := execute(t, c, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "TASK")
	assert.Contains(t, out, "T-1")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "stray")
	assert.Contains(t, out, "orphaned")
}

func TestListCommand_JSONWithStatus(t *testing.T) {
	c, deps := newTestContainer()
	deps.seed("T-1")
	deps.sessions.State.Upsert(domain.Session{
		TaskID:            "T-2",
		TaskName:          "Gone",
		Branch:            "feat/T-2",
		WorktreePath:      "/repo/worktrees/feat-T-2",
		OpencodeSessionID: "ses_T-2",
	})

	out, _, err := execute(t, c, "list", "--status", "missing", "--json")

	require.NoError(t, err)
	var res usecase.ListSessionsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Sessions, 1)
	assert.Equal(t, "T-2", res.Sessions[0].TaskID)
	assert.Equal(t, domain.SessionMissing, res.Sessions[0].Status)
}

func TestListCommand_Empty(t *testing.T) {
	c, _ := newTestContainer()

	out, _, err := execute(t, c, "list")

	require.NoError(t, err)
	assert.Equal(t, "No workspaces.\n", out)
}

func TestListCommand_InvalidStatus(t *testing.T) {
	c, _ := newTestContainer()

	_, _, err := execute(t, c, "list", "--status", "bogus")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// =============================================================================
// Clean Command Tests
// =============================================================================

func withOrphan(deps *testDeps) {
	deps.worktrees.Worktrees = append(deps.worktrees.Worktrees, domain.Worktree{Path: "/repo/worktrees/stray", Branch: "stray"})
}

func TestCleanCommand_DryRun(t *testing.T) {
	c, deps := newTestContainer()
	withOrphan(deps)
	asked := stubConfirm(t, true)

	out, _, err := execute(t, c, "clean", "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "/repo/worktrees/stray (Orphaned worktree) [DRY RUN]")
	assert.Contains(t, out, "Dry run: no changes made.")
	assert.Empty(t, deps.worktrees.RemovedPaths)
	assert.Empty(t, *asked)
}

func TestCleanCommand_Yes(t *testing.T) {
	c, deps := newTestContainer()
	withOrphan(deps)
	asked := stubConfirm(t, false)

	out, _, err := execute(t, c, "clean", "--yes")

	require.NoError(t, err)
	assert.Contains(t, out, "Cleaned 1 workspace(s).")
	assert.Equal(t, []string{"/repo/worktrees/stray"}, deps.worktrees.RemovedPaths)
	assert.Empty(t, *asked)
}

func TestCleanCommand_Confirmed(t *testing.T) {
	c, deps := newTestContainer()
	withOrphan(deps)
	asked := stubConfirm(t, true)

	_, _, err := execute(t, c, "clean")

	require.NoError(t, err)
	assert.Equal(t, []string{"Remove 1 workspace(s)?"}, *asked)
	assert.Len(t, deps.worktrees.RemovedPaths, 1)
}

func TestCleanCommand_Declined(t *testing.T) {
	c, deps := newTestContainer()
	withOrphan(deps)
	stubConfirm(t, false)

	out, _, err := execute(t, c, "clean")

	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
	assert.Empty(t, deps.worktrees.RemovedPaths)
}

func TestCleanCommand_NothingToClean(t *testing.T) {
	c, _ := newTestContainer()

	out, _, err := execute(t, c, "clean")

	require.NoError(t, err)
	assert.Equal(t, "Nothing to clean.\n", out)
}

func TestCleanCommand_ReportsFailures(t *testing.T) {
	c, deps := newTestContainer()
	withOrphan(deps)
	deps.worktrees.RemoveErr = errors.New("locked")

	_, stderr, err := execute(t, c, "clean", "--yes")

	require.Error(t, err)
	assert.Contains(t, stderr, "Failed to remove /repo/worktrees/stray")
}

// =============================================================================
// Remove Command Tests
// =============================================================================

func TestRemoveCommand_Yes(t *testing.T) {
	c, deps := newTestContainer()
	deps.seed("T-1")
	asked := stubConfirm(t, false)

	out, _, err := execute(t, c, "remove", "T-1", "--yes")

	require.NoError(t, err)
	assert.Empty(t, *asked)
	assert.Nil(t, deps.sessions.State.Find("T-1"))
	// The mock worktree path does not exist on disk, so git's record is pruned.
	assert.True(t, deps.worktrees.PruneCalled)
	assert.Contains(t, out, "already gone")
}

func TestRemoveCommand_Declined(t *testing.T) {
	c, deps := newTestContainer()
	deps.seed("T-1")
	asked := stubConfirm(t, false)

	out, _, err := execute(t, c, "remove", "T-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"Remove worktree at /repo/worktrees/feat-T-1?"}, *asked)
	assert.Contains(t, out, "Aborted.")
	assert.NotNil(t, deps.sessions.State.Find("T-1"))
}

func TestRemoveCommand_NotFound(t *testing.T) {
	c, _ := newTestContainer()
	stubConfirm(t, true)

	_, _, err := execute(t, c, "remove", "nope")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

// =============================================================================
// Prune / Name Command Tests
// =============================================================================

func TestPruneCommand(t *testing.T) {
	c, deps := newTestContainer()

	out, _, err := execute(t, c, "prune")

	require.NoError(t, err)
	assert.True(t, deps.worktrees.PruneCalled)
	assert.Contains(t, out, "Pruned")
}

func TestPruneCommand_Error(t *testing.T) {
	c, deps := newTestContainer()
	deps.worktrees.PruneErr = errors.New("prune failed")

	_, _, err := execute(t, c, "prune")

	assert.ErrorContains(t, err, "prune failed")
}

func TestNameCommand(t *testing.T) {
	c, deps := newTestContainer()

	out, _, err := execute(t, c, "name", "--id", "T-1", "--title", "Add OAuth Login")

	require.NoError(t, err)
	assert.Contains(t, out, "branch:   feat/t-1-add-oauth-login")
	assert.Contains(t, out, "worktree: /repo/worktrees/feat-t-1-add-oauth-login")
	assert.Empty(t, deps.worktrees.CreateCalls, "preview must not touch git")
}

func TestNameCommand_JSON(t *testing.T) {
	c, _ := newTestContainer()

	out, _, err := execute(t, c, "name", "--title", "Broken links", "--type", "fix", "--json")

	require.NoError(t, err)
	var res usecase.PreviewBranchNameOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "fix/broken-links", res.Branch)
	assert.Equal(t, domain.BranchFix, res.Type)
}

func TestNameCommand_RequiresInput(t *testing.T) {
	c, _ := newTestContainer()

	_, _, err := execute(t, c, "name")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// =============================================================================
// Config Command Tests
// =============================================================================

func TestConfigShowCommand_JSON(t *testing.T) {
	c, _ := newTestContainer()

	out, stderr, err := execute(t, c, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Using built-in defaults")
	var cfg domain.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "./worktrees", cfg.WorktreesDir)
	assert.Equal(t, domain.TerminalWezterm, cfg.Terminal)
}

func TestConfigShowCommand_YAMLWithSourceAndWarnings(t *testing.T) {
	c, _ := newTestContainer()
	loader := testutil.NewMockConfigLoader()
	loader.Config.Source = "/repo/transmute.config.yaml"
	loader.Config.Warnings = []string{"something odd"}
	c.ConfigLoader = loader

	out, stderr, err := execute(t, c, "config", "show", "--format", "yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "worktreesDir: ./worktrees")
	assert.Contains(t, stderr, "# Loaded from /repo/transmute.config.yaml")
	assert.Contains(t, stderr, "Warning: something odd")
}

func TestConfigShowCommand_TOML(t *testing.T) {
	c, _ := newTestContainer()

	out, _, err := execute(t, c, "config", "show", "--format", "toml")

	require.NoError(t, err)
	assert.Contains(t, out, "worktreesDir")
	assert.Contains(t, out, "[hooks]")
}

func TestConfigShowCommand_UnknownFormat(t *testing.T) {
	c, _ := newTestContainer()

	_, _, err := execute(t, c, "config", "show", "--format", "ini")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigTerminalsCommand(t *testing.T) {
	c, _ := newTestContainer()
	exec := testutil.NewMockCommandExecutor()
	exec.On("wezterm --version", &domain.ExecResult{Stdout: "wezterm 20240203\n"}, nil)
	exec.On("tmux -V", nil, errors.New("not found"))
	exec.On("kitty --version", nil, errors.New("not found"))
	c.Executor = exec

	out, _, err := execute(t, c, "config", "terminals")

	require.NoError(t, err)
	assert.Contains(t, out, "* wezterm  available")
	assert.Contains(t, out, "  tmux     not available")
	assert.Contains(t, out, "  kitty    not available")
}

func TestConfigTerminalsCommand_SuggestsAvailableTerminal(t *testing.T) {
	c, _ := newTestContainer()
	exec := testutil.NewMockCommandExecutor()
	exec.On("wezterm --version", nil, errors.New("not found"))
	exec.On("tmux -V", &domain.ExecResult{Stdout: "tmux 3.4\n"}, nil)
	exec.On("kitty --version", nil, errors.New("not found"))
	c.Executor = exec

	out, _, err := execute(t, c, "config", "terminals")

	require.NoError(t, err)
	assert.Contains(t, out, "* wezterm  not available")
	assert.Contains(t, out, `wezterm is not available here; set "terminal": "tmux" to use tmux.`)
}
