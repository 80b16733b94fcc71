package diff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/git"
	"github.com/podexhq/podex/internal/theme"
)

// DiffLoadedMsg is sent when a diff has been loaded.
type DiffLoadedMsg struct {
	Path string
	Diff string
	Err  error
}

const loadTimeout = 2 * time.Second

// Model renders a unified git diff with line numbers and per-line styling.
type Model struct {
	components.Base

	viewport viewport.Model
	path     string
	diff     string
	ready    bool
	err      error
}

// New creates a new diff viewer model.
func New() *Model {
	return &Model{}
}

// Init initializes the diff viewer.
func (m *Model) Init() tea.Cmd {
	return nil
}

// LoadDiff returns a command that loads the diff for path. When staged is
// true the staged diff is loaded instead of the worktree diff. An empty path
// loads the diff for the whole tree.
func LoadDiff(provider git.Provider, path string, staged bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var (
			diff string
			err  error
		)
		if staged {
			diff, err = provider.GetStagedDiff(ctx, path)
		} else {
			diff, err = provider.GetDiff(ctx, path)
		}
		return DiffLoadedMsg{Path: path, Diff: diff, Err: err}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DiffLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.diff = ""
			m.viewport.SetContent(m.renderError(msg.Err))
			return nil
		}
		m.path = msg.Path
		m.diff = msg.Diff
		m.err = nil
		m.viewport.SetContent(m.renderDiff())
		m.viewport.GotoTop()
		return nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd

	case tea.KeyMsg:
		if !m.Focused() {
			return nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	return nil
}

// View renders the diff viewer.
func (m *Model) View() string {
	if !m.ready || (m.diff == "" && m.err == nil) {
		return m.renderPlaceholder()
	}
	return m.viewport.View()
}

func (m *Model) renderPlaceholder() string {
	w, h := m.Size()
	return lipgloss.NewStyle().
		Width(w).
		Height(h).
		Foreground(theme.TextMuted).
		Align(lipgloss.Center, lipgloss.Center).
		Render("No changes to display")
}

func (m *Model) renderError(err error) string {
	return lipgloss.NewStyle().
		Foreground(theme.ColorError).
		Bold(true).
		Render("Error: " + err.Error())
}

func (m *Model) renderDiff() string {
	lines := strings.Split(m.diff, "\n")
	var b strings.Builder

	sepStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	for i, line := range lines {
		b.WriteString(theme.DiffLineNumberStyle.Render(fmt.Sprintf("%4d", i+1)))
		b.WriteString(sepStyle.Render(" │ "))
		b.WriteString(styleDiffLine(line))
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// styleDiffLine picks a style based on the unified diff line prefix. File
// headers (+++/---) must be checked before added/removed lines.
func styleDiffLine(line string) string {
	if line == "" {
		return ""
	}

	switch line[0] {
	case '+':
		if strings.HasPrefix(line, "+++") {
			return theme.DiffHunkStyle.Render(line)
		}
		return theme.DiffAddedStyle.Background(theme.BgDiffAdded).Render(line)
	case '-':
		if strings.HasPrefix(line, "---") {
			return theme.DiffHunkStyle.Render(line)
		}
		return theme.DiffRemovedStyle.Background(theme.BgDiffRemoved).Render(line)
	case '@':
		return theme.DiffHunkStyle.Background(theme.BgDiffHunk).Render(line)
	case 'd':
		if strings.HasPrefix(line, "diff ") {
			return lipgloss.NewStyle().
				Foreground(theme.ColorSecondary).
				Bold(true).
				Render(line)
		}
	case 'i', 'n', 's', 'o', 'r':
		if strings.HasPrefix(line, "index ") ||
			strings.HasPrefix(line, "new file") ||
			strings.HasPrefix(line, "similarity") ||
			strings.HasPrefix(line, "rename") ||
			strings.HasPrefix(line, "old mode") ||
			strings.HasPrefix(line, "new mode") {
			return lipgloss.NewStyle().
				Foreground(theme.TextMuted).
				Render(line)
		}
	}

	return theme.DiffContextStyle.Render(line)
}

// SetContent sets the diff content directly.
func (m *Model) SetContent(diff string, path string) {
	m.diff = diff
	m.path = path
	m.err = nil
	m.viewport.SetContent(m.renderDiff())
	m.viewport.GotoTop()
}

// Path returns the current file path.
func (m *Model) Path() string {
	return m.path
}

// Diff returns the current diff content.
func (m *Model) Diff() string {
	return m.diff
}

// HasContent returns true if there's diff content to display.
func (m *Model) HasContent() bool {
	return m.diff != ""
}

// Clear clears the diff viewer.
func (m *Model) Clear() {
	m.path = ""
	m.diff = ""
	m.err = nil
	m.viewport.SetContent("")
}

// SetSize updates the component's dimensions.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)

	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.viewport.MouseWheelEnabled = true
		m.viewport.MouseWheelDelta = 3
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}

	if m.diff != "" {
		m.viewport.SetContent(m.renderDiff())
	}
}

// ScrollPercent returns the current scroll position as a percentage (0-100).
func (m *Model) ScrollPercent() float64 {
	return m.viewport.ScrollPercent() * 100
}
