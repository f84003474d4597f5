package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskforge/transmute/internal/domain"
)

// Colors defines the color palette shared by the TUI and the list command.
var Colors = struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Text      lipgloss.Color
	Selected  lipgloss.Color

	// Session status colors
	Active   lipgloss.Color
	Missing  lipgloss.Color
	Orphaned lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow
	Text:      lipgloss.Color("#DFE6E9"), // Light gray
	Selected:  lipgloss.Color("#FFEAA7"), // Pale yellow

	Active:   lipgloss.Color("#00B894"),
	Missing:  lipgloss.Color("#D63031"),
	Orphaned: lipgloss.Color("#FDCB6E"),
}

// StatusColor returns the color for a session status.
func StatusColor(s domain.SessionStatus) lipgloss.Color {
	switch s {
	case domain.SessionActive:
		return Colors.Active
	case domain.SessionMissing:
		return Colors.Missing
	case domain.SessionOrphaned:
		return Colors.Orphaned
	}
	return Colors.Muted
}

// Styles contains the lipgloss styles used by the session browser.
type Styles struct {
	Title   lipgloss.Style
	Detail  lipgloss.Style
	Muted   lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Spinner lipgloss.Style
	Table   table.Styles
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	t := table.DefaultStyles()
	t.Header = t.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Colors.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(Colors.Primary)
	t.Selected = t.Selected.
		Foreground(Colors.Selected).
		Background(lipgloss.Color("")).
		Bold(true)

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Text).
			Background(Colors.Primary).
			Padding(0, 1),
		Detail:  lipgloss.NewStyle().Foreground(Colors.Secondary).PaddingLeft(1),
		Muted:   lipgloss.NewStyle().Foreground(Colors.Muted).PaddingLeft(1),
		Status:  lipgloss.NewStyle().Foreground(Colors.Success).PaddingLeft(1),
		Error:   lipgloss.NewStyle().Foreground(Colors.Error).PaddingLeft(1),
		Spinner: lipgloss.NewStyle().Foreground(Colors.Primary),
		Table:   t,
	}
}

// statusBadge renders a colored status marker.
func statusBadge(s domain.SessionStatus) string {
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Render("● " + string(s))
}
