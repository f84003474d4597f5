// Package tui implements the interactive workspace browser.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskforge/transmute/internal/usecase"
)

// SessionLister lists workspaces. Implemented by *usecase.ListSessions.
type SessionLister interface {
	Execute(ctx context.Context, in usecase.ListSessionsInput) (*usecase.ListSessionsOutput, error)
}

// TaskResumer reopens a workspace terminal. Implemented by *usecase.ResumeTask.
type TaskResumer interface {
	Execute(ctx context.Context, in usecase.ResumeTaskInput) (*usecase.ResumeTaskOutput, error)
}

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies
	lister  SessionLister
	resumer TaskResumer
	err     error

	// State
	sessions []usecase.SessionInfo
	status   string

	// Components
	keys    KeyMap
	styles  Styles
	help    help.Model
	table   table.Model
	spinner spinner.Model

	width   int
	height  int
	loading bool
}

// New creates a new TUI Model.
func New(lister SessionLister, resumer TaskResumer) *Model {
	styles := DefaultStyles()

	t := table.New(
		table.WithColumns(columns(0)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(styles.Table),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &Model{
		lister:  lister,
		resumer: resumer,
		keys:    DefaultKeyMap(),
		styles:  styles,
		help:    help.New(),
		table:   t,
		spinner: sp,
		loading: true,
	}
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadSessions())
}

// loadSessions returns a command that reads the workspace list.
func (m *Model) loadSessions() tea.Cmd {
	return func() tea.Msg {
		out, err := m.lister.Execute(context.Background(), usecase.ListSessionsInput{Status: usecase.StatusAll})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgSessionsLoaded{Sessions: out.Sessions}
	}
}

// resumeTask returns a command that reopens the terminal of a workspace.
func (m *Model) resumeTask(taskID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.resumer.Execute(context.Background(), usecase.ResumeTaskInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskResumed{
			TaskID:            out.Session.TaskID,
			WorktreePath:      out.Session.WorktreePath,
			OpencodeSessionID: out.Session.OpencodeSessionID,
			TerminalOpened:    out.TerminalOpened,
		}
	}
}

// SelectedSession returns the highlighted workspace, or nil when the list is empty.
func (m *Model) SelectedSession() *usecase.SessionInfo {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.sessions) {
		return nil
	}
	return &m.sessions[i]
}

// columns sizes the table for the given terminal width.
func columns(width int) []table.Column {
	const (
		taskW   = 12
		statusW = 9
		minPath = 20
	)
	branchW := 36
	pathW := width - taskW - statusW - branchW - 8
	if pathW < minPath {
		pathW = minPath
	}
	return []table.Column{
		{Title: "TASK", Width: taskW},
		{Title: "STATUS", Width: statusW},
		{Title: "BRANCH", Width: branchW},
		{Title: "WORKTREE", Width: pathW},
	}
}

func sessionRows(sessions []usecase.SessionInfo) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		task := s.TaskID
		if task == "" {
			task = "-"
		}
		rows = append(rows, table.Row{task, string(s.Status), s.Branch, s.WorktreePath})
	}
	return rows
}
