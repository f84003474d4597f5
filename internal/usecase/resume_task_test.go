package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/testutil"
)

func seededSessions(sessions ...domain.Session) *testutil.MockSessionRepository {
	repo := testutil.NewMockSessionRepository()
	for _, s := range sessions {
		repo.State.Upsert(s)
	}
	return repo
}

func sessionFixture(taskID, path string) domain.Session {
	return domain.Session{
		TaskID:            taskID,
		TaskName:          "Task " + taskID,
		Branch:            "feat/" + taskID,
		WorktreePath:      path,
		CreatedAt:         "2025-01-01T00:00:00.000Z",
		OpencodeSessionID: "ses_" + taskID,
	}
}

func TestResumeTask_Execute(t *testing.T) {
	repo := seededSessions(sessionFixture("1", "/repo/worktrees/feat-1"))
	term := testutil.NewMockTerminalAdapter()

	out, err := NewResumeTask(repo, term, &testutil.MockLogger{}).Execute(context.Background(), ResumeTaskInput{TaskID: "1"})

	require.NoError(t, err)
	assert.Equal(t, "feat/1", out.Session.Branch)
	assert.True(t, out.TerminalOpened)
	require.Len(t, term.Opened, 1)
	assert.Equal(t, []string{"opencode --session 'ses_1'"}, term.Opened[0].Commands)
	assert.Equal(t, "/repo/worktrees/feat-1", term.Opened[0].Cwd)
}

func TestResumeTask_Execute_NoTerminal(t *testing.T) {
	repo := seededSessions(sessionFixture("1", "/p"))
	term := testutil.NewMockTerminalAdapter()

	out, err := NewResumeTask(repo, term, &testutil.MockLogger{}).Execute(context.Background(), ResumeTaskInput{TaskID: "1", NoTerminal: true})

	require.NoError(t, err)
	assert.False(t, out.TerminalOpened)
	assert.Empty(t, term.Opened)
}

func TestResumeTask_Execute_NotFound(t *testing.T) {
	_, err := NewResumeTask(testutil.NewMockSessionRepository(), nil, &testutil.MockLogger{}).
		Execute(context.Background(), ResumeTaskInput{TaskID: "nope"})

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestResumeTask_Execute_Errors(t *testing.T) {
	uc := NewResumeTask(testutil.NewMockSessionRepository(), nil, &testutil.MockLogger{})
	_, err := uc.Execute(context.Background(), ResumeTaskInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	repo := testutil.NewMockSessionRepository()
	repo.LoadErr = errors.New("broken")
	_, err = NewResumeTask(repo, nil, &testutil.MockLogger{}).Execute(context.Background(), ResumeTaskInput{TaskID: "1"})
	assert.ErrorContains(t, err, "broken")
}
