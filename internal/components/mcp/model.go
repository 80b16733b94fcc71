// Package mcp shows the MCP servers configured for this workspace and
// whether their commands resolve on PATH.
package mcp

import (
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/config"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/theme"
)

// CheckedMsg carries the availability of each configured server command.
type CheckedMsg struct {
	Available map[string]bool
}

// Model is the MCP servers sidebar panel.
type Model struct {
	components.Base

	servers   []config.MCPServer
	available map[string]bool
	checked   bool
	cursor    int
	offset    int
}

// New creates the MCP panel from the configured server list.
func New(servers []config.MCPServer) *Model {
	return &Model{
		servers: servers,
	}
}

// ID returns the panel identifier.
func (m *Model) ID() layout.PanelID {
	return layout.PanelMCP
}

// Title returns the panel title.
func (m *Model) Title() string {
	return "MCP"
}

// Hints returns the bottom-border key hints.
func (m *Model) Hints() string {
	return "r:recheck"
}

// Init checks which server commands resolve.
func (m *Model) Init() tea.Cmd {
	return m.check()
}

// check resolves every server command on PATH off the update loop.
func (m *Model) check() tea.Cmd {
	if len(m.servers) == 0 {
		return nil
	}
	servers := m.servers
	return func() tea.Msg {
		available := make(map[string]bool, len(servers))
		for _, s := range servers {
			_, err := exec.LookPath(s.Command)
			available[s.Name] = err == nil
		}
		return CheckedMsg{Available: available}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case CheckedMsg:
		m.available = msg.Available
		m.checked = true
		return nil

	case tea.KeyMsg:
		if !m.Focused() {
			return nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
	case "down", "j":
		if m.cursor < len(m.servers)-1 {
			m.cursor++
			m.ensureVisible()
		}
	case "g":
		m.cursor = 0
		m.offset = 0
	case "G":
		if len(m.servers) > 0 {
			m.cursor = len(m.servers) - 1
			m.ensureVisible()
		}
	case "r":
		m.checked = false
		return m.check()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.offset -= 3
		if m.offset < 0 {
			m.offset = 0
		}
	case tea.MouseButtonWheelDown:
		max := len(m.servers) - m.visibleHeight()
		if max < 0 {
			max = 0
		}
		m.offset += 3
		if m.offset > max {
			m.offset = max
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		idx := m.offset + msg.Y
		if idx >= 0 && idx < len(m.servers) {
			m.cursor = idx
		}
	}
	return nil
}

// View renders the server list.
func (m *Model) View() string {
	w, h := m.Size()
	if w == 0 || h == 0 {
		return ""
	}

	if len(m.servers) == 0 {
		body := lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextSecondary).Render("No MCP servers configured"),
			lipgloss.NewStyle().Foreground(theme.TextMuted).Render("Add servers under mcp: in config.yaml"),
		)
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, body)
	}

	var lines []string
	for i := m.offset; i < len(m.servers) && len(lines) < h; i++ {
		lines = append(lines, m.renderServer(m.servers[i], i == m.cursor))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderServer(server config.MCPServer, selected bool) string {
	w, _ := m.Size()

	line := m.statusDot(server.Name) + " " + server.Name +
		" " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(server.Command)

	style := lipgloss.NewStyle().MaxWidth(w)
	if selected {
		return theme.FileTreeSelected.Width(w).Render(style.Render(line))
	}
	return style.Render(line)
}

// statusDot reflects whether the server's command resolved on PATH.
func (m *Model) statusDot(name string) string {
	if !m.checked {
		return lipgloss.NewStyle().Foreground(theme.TextMuted).Render("○")
	}
	if m.available[name] {
		return lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("●")
	}
	return lipgloss.NewStyle().Foreground(theme.ColorError).Render("●")
}

// Servers returns the configured servers.
func (m *Model) Servers() []config.MCPServer {
	return m.servers
}

// Selected returns the server under the cursor.
func (m *Model) Selected() (config.MCPServer, bool) {
	if m.cursor < 0 || m.cursor >= len(m.servers) {
		return config.MCPServer{}, false
	}
	return m.servers[m.cursor], true
}

// SetSize updates the panel's dimensions.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.ensureVisible()
}

func (m *Model) visibleHeight() int {
	_, h := m.Size()
	return h
}

func (m *Model) ensureVisible() {
	h := m.visibleHeight()
	if h <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// ScrollPercent returns the list scroll position as a percentage.
func (m *Model) ScrollPercent() float64 {
	h := m.visibleHeight()
	max := len(m.servers) - h
	if max <= 0 {
		return 100
	}
	return float64(m.offset) / float64(max) * 100
}
