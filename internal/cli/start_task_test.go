package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/usecase"
)

func decodeStartOutput(t *testing.T, out string) usecase.StartTaskOutput {
	t.Helper()
	var res usecase.StartTaskOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res), "output: %s", out)
	return res
}

func TestStartTaskCommand_Created(t *testing.T) {
	c, deps := newTestContainer()

	out, _, err := execute(t, c, "start-task",
		"--id", "T-1", "--title", "Add login", "--description", "OAuth please", "--session", "ses_1")

	require.NoError(t, err)
	res := decodeStartOutput(t, out)
	assert.Equal(t, domain.WorkspaceCreated, res.Status)
	assert.Equal(t, "feat/t-1-add-login", res.Branch)
	assert.Equal(t, "/repo/worktrees/feat-t-1-add-login", res.WorktreePath)
	assert.Equal(t, "T-1", res.TaskID)
	assert.Equal(t, "ses_1", res.OpencodeSessionID)

	require.NotNil(t, deps.sessions.State.Find("T-1"))
	require.Len(t, deps.terminal.Opened, 1)
	assert.Equal(t, "/repo/worktrees/feat-t-1-add-login", deps.terminal.Opened[0].Cwd)
}

func TestStartTaskCommand_Flags(t *testing.T) {
	c, deps := newTestContainer()

	out, _, err := execute(t, c, "start-task",
		"--id", "T-2", "--title", "Broken links", "--type", "fix", "--slug", "links",
		"--base", "develop", "--session", "ses_2", "--no-terminal", "--no-hooks")

	require.NoError(t, err)
	res := decodeStartOutput(t, out)
	assert.Equal(t, "fix/links", res.Branch)

	require.Len(t, deps.worktrees.CreateCalls, 1)
	assert.Equal(t, "develop", deps.worktrees.CreateCalls[0].BaseBranch)
	assert.Empty(t, deps.terminal.Opened)
	assert.Empty(t, deps.hooks.Executed)
}

func TestStartTaskCommand_TerminalCommandsAndEnv(t *testing.T) {
	c, deps := newTestContainer()

	_, _, err := execute(t, c, "start-task",
		"--id", "T-3", "--title", "Env", "--session", "ses_3",
		"--cmd", "make dev", "--env", "PORT=3001")

	require.NoError(t, err)
	require.Len(t, deps.terminal.Opened, 1)
	opened := deps.terminal.Opened[0]
	assert.Contains(t, opened.Commands, "make dev")
	assert.Equal(t, "3001", opened.Env["PORT"])
}

func TestStartTaskCommand_FailureIsData(t *testing.T) {
	c, deps := newTestContainer()
	deps.worktrees.CreateErr = domain.NewBranchExistsError("feat/t-4-dup")

	out, _, err := execute(t, c, "start-task", "--id", "T-4", "--title", "Dup", "--session", "ses_4")

	require.NoError(t, err, "a failed workspace is reported, not returned")
	res := decodeStartOutput(t, out)
	assert.Equal(t, domain.WorkspaceFailed, res.Status)
	assert.Contains(t, res.Message, string(domain.CodeBranchExists))
}

func TestStartTaskCommand_MissingTitle(t *testing.T) {
	c, _ := newTestContainer()

	out, _, err := execute(t, c, "start-task", "--id", "T-5")

	require.NoError(t, err)
	res := decodeStartOutput(t, out)
	assert.Equal(t, domain.WorkspaceFailed, res.Status)
	assert.Contains(t, res.Message, "title")
}

func TestStartTaskCommand_Existing(t *testing.T) {
	c, deps := newTestContainer()
	deps.seed("T-6")

	out, _, err := execute(t, c, "start-task", "--id", "T-6", "--title", "Again", "--session", "ses_other")

	require.NoError(t, err)
	res := decodeStartOutput(t, out)
	assert.Equal(t, domain.WorkspaceExisting, res.Status)
	assert.Equal(t, "ses_T-6", res.OpencodeSessionID)
	assert.Empty(t, deps.worktrees.CreateCalls)
}

func TestStartTaskCommand_UnknownFlag(t *testing.T) {
	c, _ := newTestContainer()

	_, _, err := execute(t, c, "start-task", "--bogus")

	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNoGitRepo))
}
