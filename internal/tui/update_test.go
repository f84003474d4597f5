package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/usecase"
)

type fakeLister struct {
	err      error
	sessions []usecase.SessionInfo
	calls    int
}

func (f *fakeLister) Execute(_ context.Context, in usecase.ListSessionsInput) (*usecase.ListSessionsOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ListSessionsOutput{Sessions: f.sessions}, nil
}

type fakeResumer struct {
	err     error
	opened  bool
	resumed []string
}

func (f *fakeResumer) Execute(_ context.Context, in usecase.ResumeTaskInput) (*usecase.ResumeTaskOutput, error) {
	f.resumed = append(f.resumed, in.TaskID)
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ResumeTaskOutput{
		Session: domain.Session{
			TaskID:            in.TaskID,
			WorktreePath:      "/repo/worktrees/feat-" + in.TaskID,
			OpencodeSessionID: "ses_" + in.TaskID,
		},
		TerminalOpened: f.opened,
	}, nil
}

func testSessions() []usecase.SessionInfo {
	return []usecase.SessionInfo{
		{TaskID: "T-1", TaskName: "First", Branch: "feat/t-1-first", WorktreePath: "/repo/worktrees/feat-t-1-first", Status: domain.SessionActive},
		{TaskID: "T-2", TaskName: "Second", Branch: "fix/t-2-second", WorktreePath: "/repo/worktrees/fix-t-2-second", Status: domain.SessionMissing},
		{Branch: "stray", WorktreePath: "/repo/worktrees/stray", Status: domain.SessionOrphaned},
	}
}

func loadedModel(t *testing.T, resumer *fakeResumer) *Model {
	t.Helper()
	m := New(&fakeLister{sessions: testSessions()}, resumer)
	updated, _ := m.Update(MsgSessionsLoaded{Sessions: testSessions()})
	result, ok := updated.(*Model)
	require.True(t, ok, "Update should return *Model")
	return result
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// findMsg runs cmd and returns the first non-batch message, descending into batches.
func findMsg[T any](cmd tea.Cmd) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	switch msg := cmd().(type) {
	case T:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if found, ok := findMsg[T](c); ok {
				return found, true
			}
		}
	}
	return zero, false
}

func TestLoadSessions(t *testing.T) {
	lister := &fakeLister{sessions: testSessions()}
	m := New(lister, &fakeResumer{})

	msg, ok := findMsg[MsgSessionsLoaded](m.Init())
	require.True(t, ok)
	assert.Len(t, msg.Sessions, 3)
	assert.Equal(t, 1, lister.calls)
}

func TestLoadSessions_Error(t *testing.T) {
	m := New(&fakeLister{err: errors.New("boom")}, &fakeResumer{})

	msg, ok := findMsg[MsgError](m.loadSessions())
	require.True(t, ok)
	assert.EqualError(t, msg.Err, "boom")

	updated, _ := m.Update(msg)
	result := updated.(*Model)
	assert.False(t, result.loading)
	assert.EqualError(t, result.err, "boom")
}

func TestUpdate_MsgSessionsLoaded(t *testing.T) {
	m := loadedModel(t, &fakeResumer{})

	assert.False(t, m.loading)
	assert.Len(t, m.sessions, 3)
	require.NotNil(t, m.SelectedSession())
	assert.Equal(t, "T-1", m.SelectedSession().TaskID)
}

func TestUpdate_MsgSessionsLoaded_ClampsCursor(t *testing.T) {
	m := loadedModel(t, &fakeResumer{})
	m.table.SetCursor(2)

	updated, _ := m.Update(MsgSessionsLoaded{Sessions: testSessions()[:1]})
	result := updated.(*Model)

	require.NotNil(t, result.SelectedSession())
	assert.Equal(t, "T-1", result.SelectedSession().TaskID)
}

func TestUpdate_EmptyListHasNoSelection(t *testing.T) {
	m := New(&fakeLister{}, &fakeResumer{})
	updated, _ := m.Update(MsgSessionsLoaded{})
	result := updated.(*Model)

	assert.Nil(t, result.SelectedSession())

	_, cmd := result.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestUpdate_QuitKey(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyCtrlC}} {
		m := loadedModel(t, &fakeResumer{})
		_, cmd := m.Update(k)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "key %q should quit", k.String())
	}
}

func TestUpdate_RefreshKey(t *testing.T) {
	lister := &fakeLister{sessions: testSessions()}
	m := New(lister, &fakeResumer{})
	m.loading = false
	m.status = "old status"

	updated, cmd := m.Update(keyRunes("r"))
	result := updated.(*Model)

	assert.True(t, result.loading)
	assert.Empty(t, result.status)
	msg, ok := findMsg[MsgSessionsLoaded](cmd)
	require.True(t, ok)
	assert.Len(t, msg.Sessions, 3)
	assert.Equal(t, 1, lister.calls)
}

func TestUpdate_EnterResumesSelected(t *testing.T) {
	resumer := &fakeResumer{opened: true}
	m := loadedModel(t, resumer)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := updated.(*Model)
	assert.Contains(t, result.status, "Resuming task T-1")

	msg, ok := findMsg[MsgTaskResumed](cmd)
	require.True(t, ok)
	assert.Equal(t, []string{"T-1"}, resumer.resumed)
	assert.True(t, msg.TerminalOpened)

	updated, _ = result.Update(msg)
	assert.Equal(t, "Opened terminal for task T-1", updated.(*Model).status)
}

func TestUpdate_ResumeWithoutTerminalShowsCommand(t *testing.T) {
	m := loadedModel(t, &fakeResumer{})

	updated, _ := m.Update(MsgTaskResumed{
		TaskID:            "T-1",
		WorktreePath:      "/repo/worktrees/feat-t-1",
		OpencodeSessionID: "ses_1",
	})
	status := updated.(*Model).status

	assert.Contains(t, status, "cd '/repo/worktrees/feat-t-1'")
	assert.Contains(t, status, "opencode --session 'ses_1'")
}

func TestUpdate_EnterAfterMovingDown(t *testing.T) {
	resumer := &fakeResumer{opened: true}
	m := loadedModel(t, resumer)

	updated, _ := m.Update(keyRunes("j"))
	result := updated.(*Model)
	require.Equal(t, "T-2", result.SelectedSession().TaskID)

	_, cmd := result.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, ok := findMsg[MsgTaskResumed](cmd)
	require.True(t, ok)
	assert.Equal(t, []string{"T-2"}, resumer.resumed)
}

func TestUpdate_EnterOnOrphanDoesNotResume(t *testing.T) {
	resumer := &fakeResumer{}
	m := loadedModel(t, resumer)
	m.table.SetCursor(2)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, resumer.resumed)
	assert.Contains(t, updated.(*Model).status, "has no session to resume")
}

func TestUpdate_ResumeError(t *testing.T) {
	resumer := &fakeResumer{err: domain.ErrSessionNotFound}
	m := loadedModel(t, resumer)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := findMsg[MsgError](cmd)
	require.True(t, ok)

	updated, _ := m.Update(msg)
	assert.ErrorIs(t, updated.(*Model).err, domain.ErrSessionNotFound)
}

func TestUpdate_HelpToggle(t *testing.T) {
	m := loadedModel(t, &fakeResumer{})
	assert.False(t, m.help.ShowAll)

	updated, _ := m.Update(keyRunes("?"))
	assert.True(t, updated.(*Model).help.ShowAll)
}

func TestUpdate_WindowSize(t *testing.T) {
	m := loadedModel(t, &fakeResumer{})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	result := updated.(*Model)

	assert.Equal(t, 120, result.width)
	assert.Equal(t, 40, result.height)
	assert.Equal(t, 120, result.help.Width)
}

func TestColumns_MinimumPathWidth(t *testing.T) {
	cols := columns(10)
	require.Len(t, cols, 4)
	assert.Equal(t, 20, cols[3].Width)
}
