// Package search finds files in the workspace by name.
package search

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/theme"
)

// Messages
type (
	// ResultsMsg carries the matches for a finished search.
	ResultsMsg struct {
		Query     string
		Paths     []string
		Truncated bool
		Err       error
	}

	// SelectMsg asks the app to open a result.
	SelectMsg struct {
		Path string
	}
)

const maxResults = 200

// skipDirs are never descended into during the walk.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"__pycache__":  true,
	".cache":       true,
	"dist":         true,
	"build":        true,
}

// Model is the workspace file search panel.
type Model struct {
	components.Base

	input textinput.Model
	root  string

	results   []string
	lastQuery string
	truncated bool
	loading   bool
	searched  bool
	err       error

	cursor int
	offset int
}

// New creates the search panel rooted at the workspace directory.
func New(root string) *Model {
	if root == "" {
		root, _ = os.Getwd()
	}

	ti := textinput.New()
	ti.Placeholder = "Search workspace files..."
	ti.Prompt = "❯ "
	ti.CharLimit = 200

	return &Model{
		input: ti,
		root:  root,
	}
}

// ID returns the panel identifier.
func (m *Model) ID() layout.PanelID {
	return layout.PanelSearch
}

// Title returns the panel title.
func (m *Model) Title() string {
	return "SEARCH"
}

// Hints returns the bottom-border key hints.
func (m *Model) Hints() string {
	return "enter:search/open  esc:clear"
}

// Init initializes the panel.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ResultsMsg:
		m.loading = false
		// Stale results from an earlier query are dropped.
		if msg.Query != strings.TrimSpace(m.input.Value()) && msg.Query != m.lastQuery {
			return nil
		}
		m.searched = true
		m.err = msg.Err
		m.lastQuery = msg.Query
		m.results = msg.Paths
		m.truncated = msg.Truncated
		m.cursor = 0
		m.offset = 0
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
	switch msg.Type {
	case tea.KeyEnter:
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return nil
		}
		// A changed query searches; an unchanged one opens the selection.
		if query != m.lastQuery || !m.searched {
			m.loading = true
			return runSearch(m.root, query)
		}
		if m.cursor >= 0 && m.cursor < len(m.results) {
			path := filepath.Join(m.root, m.results[m.cursor])
			return func() tea.Msg {
				return SelectMsg{Path: path}
			}
		}
		return nil

	case tea.KeyEsc:
		m.input.SetValue("")
		m.results = nil
		m.lastQuery = ""
		m.loading = false
		m.searched = false
		m.err = nil
		m.cursor = 0
		m.offset = 0
		return nil

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
		return nil

	case tea.KeyDown:
		if m.cursor < len(m.results)-1 {
			m.cursor++
			m.ensureVisible()
		}
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.offset -= 3
		if m.offset < 0 {
			m.offset = 0
		}
	case tea.MouseButtonWheelDown:
		max := len(m.results) - m.listHeight()
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
		// Rows 0 and 1 are the input and status lines.
		idx := m.offset + msg.Y - 2
		if idx >= 0 && idx < len(m.results) {
			m.cursor = idx
			path := filepath.Join(m.root, m.results[idx])
			return func() tea.Msg {
				return SelectMsg{Path: path}
			}
		}
	}
	return nil
}

// runSearch walks the workspace off the update loop collecting files whose
// relative path contains the query, case-insensitively.
func runSearch(root, query string) tea.Cmd {
	return func() tea.Msg {
		needle := strings.ToLower(query)
		var matches []string
		truncated := false

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			name := d.Name()
			if d.IsDir() {
				if path == root {
					return nil
				}
				if skipDirs[name] || strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			if strings.Contains(strings.ToLower(rel), needle) {
				matches = append(matches, rel)
				if len(matches) >= maxResults {
					truncated = true
					return filepath.SkipAll
				}
			}
			return nil
		})

		sort.Strings(matches)
		return ResultsMsg{Query: query, Paths: matches, Truncated: truncated, Err: err}
	}
}

// View renders the input, status line and results.
func (m *Model) View() string {
	w, h := m.Size()
	if w == 0 || h == 0 {
		return ""
	}

	rows := []string{m.input.View(), m.renderStatus(w)}

	listHeight := m.listHeight()
	count := 0
	for i := m.offset; i < len(m.results) && count < listHeight; i++ {
		rows = append(rows, m.renderResult(m.results[i], i == m.cursor))
		count++
	}
	for count < listHeight {
		rows = append(rows, "")
		count++
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderStatus(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.TextMuted).MaxWidth(width)

	switch {
	case m.loading:
		return style.Render("Searching...")
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(theme.ColorError).MaxWidth(width).
			Render("Search failed: " + m.err.Error())
	case !m.searched:
		return style.Render("Type a name and press enter")
	case len(m.results) == 0:
		return style.Render("No files match " + m.lastQuery)
	case m.truncated:
		return style.Render(pluralResults(len(m.results)) + " (truncated)")
	default:
		return style.Render(pluralResults(len(m.results)))
	}
}

func pluralResults(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func (m *Model) renderResult(rel string, selected bool) string {
	w, _ := m.Size()

	dir, base := filepath.Split(rel)
	line := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(dir) + base

	style := lipgloss.NewStyle().MaxWidth(w)
	if selected {
		return theme.FileTreeSelected.Width(w).Render(style.Render(line))
	}
	return style.Render(line)
}

// Results returns the current matches, relative to the root.
func (m *Model) Results() []string {
	return m.results
}

// Root returns the search root.
func (m *Model) Root() string {
	return m.root
}

// SetRoot points the panel at a new workspace root and clears any results.
func (m *Model) SetRoot(root string) {
	m.root = root
	m.results = nil
	m.lastQuery = ""
	m.loading = false
	m.searched = false
	m.err = nil
	m.cursor = 0
	m.offset = 0
	m.input.SetValue("")
}

// Focus gives focus to the panel and its input.
func (m *Model) Focus() {
	m.Base.Focus()
	m.input.Focus()
}

// Blur removes focus from the panel and its input.
func (m *Model) Blur() {
	m.Base.Blur()
	m.input.Blur()
}

// SetSize updates the panel's dimensions.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.input.Width = width - 4
	m.ensureVisible()
}

func (m *Model) listHeight() int {
	_, h := m.Size()
	if h <= 2 {
		return 0
	}
	return h - 2
}

func (m *Model) ensureVisible() {
	h := m.listHeight()
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

// ScrollPercent returns the result list scroll position as a percentage.
func (m *Model) ScrollPercent() float64 {
	h := m.listHeight()
	max := len(m.results) - h
	if max <= 0 {
		return 100
	}
	return float64(m.offset) / float64(max) * 100
}
