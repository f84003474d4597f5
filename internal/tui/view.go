package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI.
func (m *Model) View() string {
	sections := []string{m.styles.Title.Render("transmute · workspaces"), ""}

	switch {
	case m.loading && len(m.sessions) == 0:
		sections = append(sections, m.spinner.View()+" Loading workspaces...")
	case len(m.sessions) == 0:
		sections = append(sections, m.styles.Muted.Render("No workspaces. Create one with `transmute start-task`."))
	default:
		sections = append(sections, m.table.View(), m.detailLine())
	}

	switch {
	case m.err != nil:
		sections = append(sections, m.styles.Error.Render("Error: "+m.err.Error()))
	case m.status != "":
		sections = append(sections, m.styles.Status.Render(m.status))
	default:
		sections = append(sections, "")
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// detailLine describes the selected workspace.
func (m *Model) detailLine() string {
	s := m.SelectedSession()
	if s == nil {
		return ""
	}
	line := statusBadge(s.Status)
	if s.TaskName != "" {
		line += " " + m.styles.Detail.Render(s.TaskName)
	}
	if s.Tip != "" {
		tip := s.Tip
		if len(tip) > 7 {
			tip = tip[:7]
		}
		line += m.styles.Muted.Render(fmt.Sprintf("@ %s", tip))
	}
	if s.CreatedAt != "" {
		line += m.styles.Muted.Render("created " + s.CreatedAt)
	}
	return line
}
