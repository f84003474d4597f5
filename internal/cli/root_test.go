package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/testutil"
)

const testRepoRoot = "/repo"

// testDeps holds the mocks behind a test container.
type testDeps struct {
	sessions  *testutil.MockSessionRepository
	worktrees *testutil.MockWorktreeManager
	hooks     *testutil.MockHookRunner
	terminal  *testutil.MockTerminalAdapter
	logger    *testutil.MockLogger
	config    *domain.Config
}

// newTestContainer creates an app.Container with mock dependencies.
func newTestContainer() (*app.Container, *testDeps) {
	cfg := domain.NewDefaultConfig()
	cfg.UseAIBranchNaming = false

	deps := &testDeps{
		sessions:  testutil.NewMockSessionRepository(),
		worktrees: testutil.NewMockWorktreeManager(testRepoRoot),
		hooks:     &testutil.MockHookRunner{},
		terminal:  testutil.NewMockTerminalAdapter(),
		logger:    &testutil.MockLogger{},
		config:    cfg,
	}

	c := app.NewWithDeps(
		app.Config{RepoRoot: testRepoRoot, WorkingDir: testRepoRoot},
		cfg,
		deps.sessions,
		deps.worktrees,
		&testutil.MockClock{NowTime: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
		deps.logger,
	)
	c.Hooks = deps.hooks
	c.Terminal = deps.terminal
	c.Inspector = &testutil.MockRepoInspector{}
	return c, deps
}

// seed stores a session whose worktree is registered with git.
func (d *testDeps) seed(taskID string) domain.Session {
	s := domain.Session{
		TaskID:            taskID,
		TaskName:          "Task " + taskID,
		Branch:            "feat/" + taskID,
		WorktreePath:      testRepoRoot + "/worktrees/feat-" + taskID,
		CreatedAt:         "2025-03-01T00:00:00.000Z",
		OpencodeSessionID: "ses_" + taskID,
	}
	d.sessions.State.Upsert(s)
	d.worktrees.Worktrees = append(d.worktrees.Worktrees, domain.Worktree{Path: s.WorktreePath, Branch: s.Branch})
	return s
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, c *app.Container, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand(c, "test-version")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// stubConfirm replaces the confirmation prompt for one test.
func stubConfirm(t *testing.T, answer bool) *[]string {
	t.Helper()
	original := confirmFunc
	t.Cleanup(func() { confirmFunc = original })

	var asked []string
	confirmFunc = func(title, _ string) (bool, error) {
		asked = append(asked, title)
		return answer, nil
	}
	return &asked
}

func TestNewRootCommand_NoArgs_LaunchesTUI(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	called := false
	launchTUIFunc = func(_ *app.Container) error {
		called = true
		return nil
	}

	c, _ := newTestContainer()
	_, _, err := execute(t, c)

	assert.NoError(t, err)
	assert.True(t, called, "launchTUIFunc should be called when no arguments are provided")
}

func TestNewRootCommand_NoArgs_OutsideRepository(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	called := false
	launchTUIFunc = func(_ *app.Container) error {
		called = true
		return nil
	}

	_, _, err := execute(t, nil)

	assert.ErrorIs(t, err, domain.ErrNoGitRepo)
	assert.False(t, called)
}

func TestNewRootCommand_WithHelp_ShowsHelp(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	called := false
	launchTUIFunc = func(_ *app.Container) error {
		called = true
		return nil
	}

	out, _, err := execute(t, nil, "--help")

	assert.NoError(t, err)
	assert.False(t, called, "launchTUIFunc should NOT be called when --help is provided")
	assert.Contains(t, out, "Workspace Commands:")
	assert.Contains(t, out, "start-task")
	assert.Contains(t, out, "Maintenance Commands:")
}

func TestNewRootCommand_Version(t *testing.T) {
	out, _, err := execute(t, nil, "--version")

	assert.NoError(t, err)
	assert.Equal(t, "transmute version test-version\n", out)
}

func TestNewRootCommand_PrintsConfigWarnings(t *testing.T) {
	c, deps := newTestContainer()
	deps.config.Warnings = []string{"invalid config transmute.config.json: bad; using defaults"}

	_, stderr, err := execute(t, c, "list")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning: invalid config transmute.config.json")
}

func TestNewRootCommand_CommandsNeedRepository(t *testing.T) {
	for _, args := range [][]string{
		{"start-task", "--id", "1", "--title", "x"},
		{"resume", "1"},
		{"list"},
		{"clean"},
		{"remove", "1"},
		{"prune"},
		{"name", "--title", "x"},
		{"config", "show"},
		{"config", "terminals"},
		{"tui"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, _, err := execute(t, nil, args...)
			assert.ErrorIs(t, err, domain.ErrNoGitRepo)
		})
	}
}
