package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskforge/transmute/internal/domain"
)

// chromeLines is the number of lines around the table: title, detail, status and help.
const chromeLines = 7

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-chromeLines, 3))
		return m, nil

	case MsgSessionsLoaded:
		m.loading = false
		m.err = nil
		m.sessions = msg.Sessions
		m.table.SetRows(sessionRows(msg.Sessions))
		if c := m.table.Cursor(); c >= len(msg.Sessions) || c < 0 {
			m.table.SetCursor(max(len(msg.Sessions)-1, 0))
		}
		return m, nil

	case MsgTaskResumed:
		if msg.TerminalOpened {
			m.status = fmt.Sprintf("Opened terminal for task %s", msg.TaskID)
		} else {
			m.status = fmt.Sprintf("No terminal available; run: cd %s && %s",
				domain.ShellQuote(msg.WorktreePath), domain.OpencodeCommand(msg.OpencodeSessionID, ""))
		}
		return m, nil

	case MsgError:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.status = ""
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.loadSessions())

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Resume):
		s := m.SelectedSession()
		if s == nil {
			return m, nil
		}
		if s.TaskID == "" {
			m.status = fmt.Sprintf("%s has no session to resume", s.WorktreePath)
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Resuming task %s...", s.TaskID)
		return m, m.resumeTask(s.TaskID)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}
