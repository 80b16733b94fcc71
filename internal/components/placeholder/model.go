// Package placeholder renders the sidebar panels that have no terminal
// rendering. They still dock, move and resize like any other panel.
package placeholder

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/theme"
)

// Model is a stand-in panel for surfaces that only exist in the web app.
type Model struct {
	components.Base

	id layout.PanelID
}

// New creates a placeholder for the given panel id.
func New(id layout.PanelID) *Model {
	return &Model{id: id}
}

// ID returns the panel identifier.
func (m *Model) ID() layout.PanelID {
	return m.id
}

// Title returns the panel title.
func (m *Model) Title() string {
	return strings.ToUpper(string(m.id))
}

// Init initializes the panel.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update ignores all input; the panel is informational.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	return nil
}

// View renders the pointer at the web app.
func (m *Model) View() string {
	w, h := m.Size()
	if w == 0 || h == 0 {
		return ""
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextSecondary).Render(m.Title()+" lives in the web app"),
		lipgloss.NewStyle().Foreground(theme.TextMuted).Render("Open your workspace in the browser"),
	)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, body)
}
