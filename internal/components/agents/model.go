// Package agents lists the remote coding agent sessions for the signed-in
// user.
package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/api"
	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/theme"
)

// LoadedMsg carries the result of an agent list refresh.
type LoadedMsg struct {
	Agents []api.Agent
	Err    error
}

const loadTimeout = 5 * time.Second

// Model is the agents sidebar panel.
type Model struct {
	components.Base

	client  *api.Client
	agents  []api.Agent
	cursor  int
	offset  int
	loading bool
	err     error
	spinner spinner.Model
}

// New creates the agents panel. A nil client renders the signed-out state.
func New(client *api.Client) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.SpinnerStyle

	return &Model{
		client:  client,
		spinner: sp,
	}
}

// ID returns the panel identifier.
func (m *Model) ID() layout.PanelID {
	return layout.PanelAgents
}

// Title returns the panel title.
func (m *Model) Title() string {
	return "AGENTS"
}

// Hints returns the bottom-border key hints.
func (m *Model) Hints() string {
	return "r:refresh"
}

// Init starts the first refresh.
func (m *Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh reloads the agent list.
func (m *Model) Refresh() tea.Cmd {
	if m.client == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.spinner.Tick, loadAgents(m.client))
}

func loadAgents(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		agents, err := client.ListAgents(ctx)
		return LoadedMsg{Agents: agents, Err: err}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.agents = msg.Agents
			if m.cursor >= len(m.agents) {
				m.cursor = len(m.agents) - 1
			}
			if m.cursor < 0 {
				m.cursor = 0
			}
			m.ensureVisible()
		}
		return nil

	case spinner.TickMsg:
		if !m.loading {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

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
		if m.cursor < len(m.agents)-1 {
			m.cursor++
			m.ensureVisible()
		}
	case "g":
		m.cursor = 0
		m.offset = 0
	case "G":
		if len(m.agents) > 0 {
			m.cursor = len(m.agents) - 1
			m.ensureVisible()
		}
	case "r":
		return m.Refresh()
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
		max := len(m.agents) - m.visibleHeight()
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
		if idx >= 0 && idx < len(m.agents) {
			m.cursor = idx
		}
	}
	return nil
}

// View renders the agent list.
func (m *Model) View() string {
	w, h := m.Size()
	if w == 0 || h == 0 {
		return ""
	}

	if m.client == nil || errors.Is(m.err, api.ErrAuthRequired) {
		return m.renderNotice("Sign in to see your agents", "Run: podex login")
	}

	if m.loading && len(m.agents) == 0 {
		return m.spinner.View() + " Loading agents..."
	}

	if m.err != nil {
		return m.renderNotice("Could not load agents", m.err.Error())
	}

	if len(m.agents) == 0 {
		return lipgloss.NewStyle().
			Width(w).
			Height(h).
			Foreground(theme.TextMuted).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No active agents")
	}

	var lines []string
	for i := m.offset; i < len(m.agents) && len(lines) < m.visibleHeight(); i++ {
		lines = append(lines, m.renderAgent(m.agents[i], i == m.cursor))
	}
	for len(lines) < m.visibleHeight() {
		lines = append(lines, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderNotice(title, detail string) string {
	w, h := m.Size()
	body := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextSecondary).Render(title),
		lipgloss.NewStyle().Foreground(theme.TextMuted).Render(detail),
	)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) renderAgent(agent api.Agent, selected bool) string {
	w, _ := m.Size()

	name := agent.Name
	if name == "" {
		name = agent.ID
	}

	line := fmt.Sprintf("%s %s", statusIcon(agent.Status), name)
	if agent.Model != "" {
		line += " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(agent.Model)
	}
	if !agent.UpdatedAt.IsZero() {
		line += " " + lipgloss.NewStyle().Foreground(theme.TextMuted).Render(relAge(agent.UpdatedAt))
	}

	style := lipgloss.NewStyle().MaxWidth(w)
	if selected {
		return theme.FileTreeSelected.Width(w).Render(style.Render(line))
	}
	return style.Render(line)
}

// statusIcon colors a dot by the remote session state.
func statusIcon(status string) string {
	var color lipgloss.Color
	switch status {
	case "running":
		color = theme.ColorSuccess
	case "idle", "queued", "paused":
		color = theme.ColorWarning
	case "failed", "error":
		color = theme.ColorError
	default:
		color = theme.TextMuted
	}
	return lipgloss.NewStyle().Foreground(color).Render("●")
}

// relAge formats how long ago t was, compactly.
func relAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// Agents returns the loaded agent sessions.
func (m *Model) Agents() []api.Agent {
	return m.agents
}

// Loading reports whether a refresh is in flight.
func (m *Model) Loading() bool {
	return m.loading
}

// Selected returns the agent under the cursor.
func (m *Model) Selected() (api.Agent, bool) {
	if m.cursor < 0 || m.cursor >= len(m.agents) {
		return api.Agent{}, false
	}
	return m.agents[m.cursor], true
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
	max := len(m.agents) - h
	if max <= 0 {
		return 100
	}
	return float64(m.offset) / float64(max) * 100
}
