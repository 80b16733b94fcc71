// Package bottompanel is the tabbed utility surface above the status bar:
// an application event log, collected problems, and a terminal tab that
// shares the terminal strip's session.
package bottompanel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/components/terminal"
	"github.com/podexhq/podex/internal/settings"
	"github.com/podexhq/podex/internal/theme"
)

const (
	maxOutputLines = 500
	maxProblems    = 200
)

// tabOrder is the cycling order for the tab bar.
var tabOrder = []string{settings.TabOutput, settings.TabProblems, settings.TabTerminal}

// Problem is one collected component error.
type Problem struct {
	Source  string
	Message string
	Time    time.Time
}

// Model is the bottom utility panel.
type Model struct {
	components.Base

	active string

	output      viewport.Model
	outputLines []string

	problemsVP viewport.Model
	problems   []Problem

	// Shared with the terminal strip; the panel never owns the session.
	term *terminal.Model

	ready bool
}

// New creates the bottom panel. The terminal model is shared with the strip
// and may be nil in tests.
func New(active string, term *terminal.Model) *Model {
	if !settings.ValidTab(active) {
		active = settings.TabTerminal
	}
	return &Model{
		active: active,
		term:   term,
	}
}

// Init initializes the panel.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Title returns the chrome title for the active tab.
func (m *Model) Title() string {
	return strings.ToUpper(m.active)
}

// Hints returns the bottom-border key hints.
func (m *Model) Hints() string {
	return "alt+j:switch tab"
}

// ActiveTab returns the active tab name.
func (m *Model) ActiveTab() string {
	return m.active
}

// SetActiveTab switches tabs. The returned command starts the shared shell
// when the terminal tab becomes active and nothing is running yet.
func (m *Model) SetActiveTab(tab string) tea.Cmd {
	if !settings.ValidTab(tab) || tab == m.active {
		return nil
	}
	m.active = tab
	m.syncFocus()
	if tab == settings.TabTerminal {
		return m.ensureTerminal()
	}
	return nil
}

// CycleTab advances to the next tab and returns its name along with any
// start command.
func (m *Model) CycleTab() (string, tea.Cmd) {
	idx := 0
	for i, tab := range tabOrder {
		if tab == m.active {
			idx = i
			break
		}
	}
	next := tabOrder[(idx+1)%len(tabOrder)]
	cmd := m.SetActiveTab(next)
	return next, cmd
}

// Activate prepares the active tab when the panel becomes visible, starting
// the shared shell if the terminal tab is showing.
func (m *Model) Activate() tea.Cmd {
	if m.active == settings.TabTerminal {
		return m.ensureTerminal()
	}
	return nil
}

// ensureTerminal starts the shared shell if it is idle.
func (m *Model) ensureTerminal() tea.Cmd {
	if m.term == nil || m.term.Running() {
		return nil
	}
	w, _ := m.Size()
	m.term.SetSize(w, m.contentHeight())
	return m.term.Update(terminal.StartMsg{})
}

// Terminal exposes the shared terminal session.
func (m *Model) Terminal() *terminal.Model {
	return m.term
}

// AppendOutput adds a timestamped line to the event log.
func (m *Model) AppendOutput(line string) {
	stamp := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(time.Now().Format("15:04:05"))
	m.outputLines = append(m.outputLines, stamp+" "+line)
	if len(m.outputLines) > maxOutputLines {
		m.outputLines = m.outputLines[len(m.outputLines)-maxOutputLines:]
	}
	if m.ready {
		m.output.SetContent(strings.Join(m.outputLines, "\n"))
		m.output.GotoBottom()
	}
}

// ClearOutput empties the event log.
func (m *Model) ClearOutput() {
	m.outputLines = nil
	if m.ready {
		m.output.SetContent("")
	}
}

// ReportProblem records a component error.
func (m *Model) ReportProblem(source, message string) {
	m.problems = append(m.problems, Problem{
		Source:  source,
		Message: message,
		Time:    time.Now(),
	})
	if len(m.problems) > maxProblems {
		m.problems = m.problems[len(m.problems)-maxProblems:]
	}
	if m.ready {
		m.problemsVP.SetContent(m.renderProblems())
		m.problemsVP.GotoBottom()
	}
}

// ClearProblems drops all collected problems.
func (m *Model) ClearProblems() {
	m.problems = nil
	if m.ready {
		m.problemsVP.SetContent("")
	}
}

// ProblemCount returns how many problems are collected.
func (m *Model) ProblemCount() int {
	return len(m.problems)
}

// Problems returns the collected problems.
func (m *Model) Problems() []Problem {
	return m.problems
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
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
	switch m.active {
	case settings.TabTerminal:
		if m.term != nil {
			return m.term.Update(msg)
		}
		return nil

	case settings.TabProblems:
		if msg.String() == "c" {
			m.ClearProblems()
			return nil
		}
		var cmd tea.Cmd
		m.problemsVP, cmd = m.problemsVP.Update(msg)
		return cmd

	default:
		if msg.String() == "c" {
			m.ClearOutput()
			return nil
		}
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return cmd
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	// Row 0 is the tab bar; clicks there switch tabs.
	if msg.Y == 0 {
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress {
			if tab, ok := m.tabAt(msg.X); ok {
				return m.SetActiveTab(tab)
			}
		}
		return nil
	}

	// Content-local coordinates for the sub-surface.
	msg.Y--

	switch m.active {
	case settings.TabTerminal:
		if m.term != nil {
			return m.term.Update(msg)
		}
		return nil

	case settings.TabProblems:
		var cmd tea.Cmd
		m.problemsVP, cmd = m.problemsVP.Update(msg)
		return cmd

	default:
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return cmd
	}
}

// tabAt maps an x position on the tab bar to a tab name.
func (m *Model) tabAt(x int) (string, bool) {
	start := 1
	for i, label := range m.tabLabels() {
		end := start + len(label)
		if x >= start && x < end {
			return tabOrder[i], true
		}
		start = end + 3
	}
	return "", false
}

// tabLabels returns the display labels in tab order. The problems label
// carries its count so the badge stays clickable at the same offset it is
// rendered.
func (m *Model) tabLabels() []string {
	labels := make([]string, len(tabOrder))
	for i, tab := range tabOrder {
		label := strings.ToUpper(tab)
		if tab == settings.TabProblems && len(m.problems) > 0 {
			label = fmt.Sprintf("%s (%d)", label, len(m.problems))
		}
		labels[i] = label
	}
	return labels
}

// View renders the tab bar and the active surface.
func (m *Model) View() string {
	w, h := m.Size()
	if w == 0 || h == 0 {
		return ""
	}

	var content string
	switch m.active {
	case settings.TabTerminal:
		if m.term != nil {
			content = m.term.View()
		} else {
			content = lipgloss.NewStyle().
				Foreground(theme.TextMuted).
				Italic(true).
				Render("Terminal unavailable")
		}
	case settings.TabProblems:
		if len(m.problems) == 0 {
			content = lipgloss.NewStyle().
				Width(w).
				Height(m.contentHeight()).
				Foreground(theme.TextMuted).
				Align(lipgloss.Center, lipgloss.Center).
				Render("No problems detected")
		} else {
			content = m.problemsVP.View()
		}
	default:
		if len(m.outputLines) == 0 {
			content = lipgloss.NewStyle().
				Width(w).
				Height(m.contentHeight()).
				Foreground(theme.TextMuted).
				Align(lipgloss.Center, lipgloss.Center).
				Render("No output yet")
		} else {
			content = m.output.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabBar(w), content)
}

func (m *Model) renderTabBar(width int) string {
	activeStyle := lipgloss.NewStyle().
		Foreground(theme.ColorFocus).
		Bold(true)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(theme.TextMuted)
	sepStyle := lipgloss.NewStyle().
		Foreground(theme.TextDim)

	parts := make([]string, 0, len(tabOrder)*2)
	for i, label := range m.tabLabels() {
		if i > 0 {
			parts = append(parts, sepStyle.Render(" │ "))
		}
		if tabOrder[i] == m.active {
			parts = append(parts, activeStyle.Render(label))
		} else {
			parts = append(parts, inactiveStyle.Render(label))
		}
	}

	bar := " " + strings.Join(parts, "")
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgStrip).
		Render(bar)
}

func (m *Model) renderProblems() string {
	marker := lipgloss.NewStyle().Foreground(theme.ColorError).Render("●")
	sourceStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary).Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	lines := make([]string, 0, len(m.problems))
	for _, p := range m.problems {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			marker,
			timeStyle.Render(p.Time.Format("15:04:05")),
			sourceStyle.Render(p.Source),
			p.Message,
		))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) contentHeight() int {
	_, h := m.Size()
	if h <= 1 {
		return 0
	}
	return h - 1
}

// Focus gives focus to the panel and the active surface.
func (m *Model) Focus() {
	m.Base.Focus()
	m.syncFocus()
}

// Blur removes focus from the panel and the terminal.
func (m *Model) Blur() {
	m.Base.Blur()
	if m.term != nil {
		m.term.Blur()
	}
}

// syncFocus keeps the shared terminal's focus in step with the active tab.
func (m *Model) syncFocus() {
	if m.term == nil {
		return
	}
	if m.Focused() && m.active == settings.TabTerminal {
		m.term.Focus()
	} else {
		m.term.Blur()
	}
}

// SetSize updates the panel's dimensions.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)

	ch := m.contentHeight()
	if !m.ready {
		m.output = viewport.New(width, ch)
		m.output.MouseWheelEnabled = true
		m.problemsVP = viewport.New(width, ch)
		m.problemsVP.MouseWheelEnabled = true
		m.ready = true
		if len(m.outputLines) > 0 {
			m.output.SetContent(strings.Join(m.outputLines, "\n"))
			m.output.GotoBottom()
		}
		if len(m.problems) > 0 {
			m.problemsVP.SetContent(m.renderProblems())
			m.problemsVP.GotoBottom()
		}
	} else {
		m.output.Width = width
		m.output.Height = ch
		m.problemsVP.Width = width
		m.problemsVP.Height = ch
	}

	if m.active == settings.TabTerminal && m.term != nil {
		m.term.SetSize(width, ch)
	}
}

// ScrollPercent reports scroll position for the log surfaces. The terminal
// manages its own scrollback, so the indicator is hidden there.
func (m *Model) ScrollPercent() float64 {
	switch m.active {
	case settings.TabOutput:
		if len(m.outputLines) == 0 {
			return -1
		}
		return m.output.ScrollPercent() * 100
	case settings.TabProblems:
		if len(m.problems) == 0 {
			return -1
		}
		return m.problemsVP.ScrollPercent() * 100
	default:
		return -1
	}
}
