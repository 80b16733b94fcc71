package gitpanel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/git"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/theme"
)

// Messages
type (
	// StageToggleMsg is sent when user toggles staging for a file.
	StageToggleMsg struct {
		Path     string
		IsStaged bool // Current state (will be toggled)
	}

	// OpenCommitMsg is sent when user wants to open the commit dialog.
	OpenCommitMsg struct{}

	// OpenDiffMsg is sent when user wants to preview a file's changes.
	OpenDiffMsg struct {
		Path   string
		Staged bool
	}

	// OpenFileMsg is sent when user wants to open a file in the viewer.
	OpenFileMsg struct {
		Path string
	}

	// RefreshRequestMsg asks the app for a fresh git status.
	RefreshRequestMsg struct{}
)

// FileEntry represents a file in the git panel list.
type FileEntry struct {
	Path     string
	Status   git.FileStatus
	IsStaged bool
}

// KeyMap defines the key bindings for the git panel.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Toggle   key.Binding
	Commit   key.Binding
	Diff     key.Binding
	Open     key.Binding
	Refresh  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
		),
		Commit: key.NewBinding(
			key.WithKeys("c"),
		),
		Diff: key.NewBinding(
			key.WithKeys("enter", "d"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
		),
	}
}

// Model is the git changes panel.
type Model struct {
	components.Base

	gitStatus *git.Status
	entries   []FileEntry // Staged first, then by path
	cursor    int
	offset    int

	keys KeyMap
}

// New creates a git panel.
func New() *Model {
	return &Model{
		keys: DefaultKeyMap(),
	}
}

// ID identifies this panel in layout state.
func (m *Model) ID() layout.PanelID {
	return layout.PanelGit
}

// Title returns the panel title.
func (m *Model) Title() string {
	return "GIT"
}

// Hints returns the key hints shown while the panel has focus.
func (m *Model) Hints() string {
	return "space:stage  enter:diff  c:commit"
}

// Init implements the panel lifecycle, nothing to start.
func (m *Model) Init() tea.Cmd {
	return nil
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
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.PageUp):
		_, h := m.Size()
		m.moveCursor(-h / 2)

	case key.Matches(msg, m.keys.PageDown):
		_, h := m.Size()
		m.moveCursor(h / 2)

	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
		m.offset = 0

	case key.Matches(msg, m.keys.End):
		if len(m.entries) > 0 {
			m.cursor = len(m.entries) - 1
			m.ensureVisible()
		}

	case key.Matches(msg, m.keys.Toggle):
		return m.handleToggle()

	case key.Matches(msg, m.keys.Commit):
		// Committing needs something in the index
		if m.hasStagedFiles() {
			return func() tea.Msg { return OpenCommitMsg{} }
		}

	case key.Matches(msg, m.keys.Diff):
		if entry, ok := m.selectedEntry(); ok {
			return func() tea.Msg {
				return OpenDiffMsg{Path: entry.Path, Staged: entry.IsStaged}
			}
		}

	case key.Matches(msg, m.keys.Open):
		if entry, ok := m.selectedEntry(); ok {
			return func() tea.Msg {
				return OpenFileMsg{Path: entry.Path}
			}
		}

	case key.Matches(msg, m.keys.Refresh):
		return func() tea.Msg { return RefreshRequestMsg{} }
	}

	return nil
}

// handleMouse handles wheel scrolling and click-to-preview. Coordinates
// are panel-local: row 0 is the summary header.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(-3)
		return nil
	case tea.MouseButtonWheelDown:
		m.moveCursor(3)
		return nil
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		clickedIdx := m.offset + msg.Y - 1
		if clickedIdx >= 0 && clickedIdx < len(m.entries) {
			m.cursor = clickedIdx
			entry := m.entries[m.cursor]
			return func() tea.Msg {
				return OpenDiffMsg{Path: entry.Path, Staged: entry.IsStaged}
			}
		}
	}
	return nil
}

func (m *Model) handleToggle() tea.Cmd {
	entry, ok := m.selectedEntry()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		return StageToggleMsg{
			Path:     entry.Path,
			IsStaged: entry.IsStaged,
		}
	}
}

func (m *Model) selectedEntry() (FileEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return FileEntry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	viewportHeight := m.listHeight()
	if viewportHeight <= 0 {
		return
	}

	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+viewportHeight {
		m.offset = m.cursor - viewportHeight + 1
	}
}

// listHeight returns the rows available for entries, after the header.
func (m *Model) listHeight() int {
	_, h := m.Size()
	return h - 1
}

// View renders the summary header and the change list.
func (m *Model) View() string {
	w, h := m.Size()
	if w <= 0 || h <= 0 {
		return ""
	}

	lines := []string{m.renderHeader()}

	if len(m.entries) == 0 {
		if h > 1 {
			lines = append(lines, theme.TextMutedStyle.Render("Working tree clean"))
		}
		return strings.Join(lines, "\n")
	}

	viewportHeight := m.listHeight()
	for i := m.offset; i < len(m.entries) && len(lines)-1 < viewportHeight; i++ {
		lines = append(lines, m.renderEntry(m.entries[i], i == m.cursor))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader() string {
	staged := m.StagedCount()
	unstaged := m.UnstagedCount()
	return theme.TextSecondaryStyle.Render(fmt.Sprintf("%d staged, %d changed", staged, unstaged))
}

func (m *Model) renderEntry(entry FileEntry, selected bool) string {
	w, _ := m.Size()

	var indicator string
	if entry.IsStaged {
		indicator = "●"
	} else {
		indicator = "○"
	}

	statusCode := strings.TrimSpace(entry.Status.Display())
	if statusCode == "" {
		statusCode = " "
	}

	// Truncate long paths from the left so the basename stays visible
	path := entry.Path
	prefixLen := 5 // "● M "
	maxPathLen := w - prefixLen
	if len(path) > maxPathLen && maxPathLen > 3 {
		path = "..." + path[len(path)-maxPathLen+3:]
	}

	plainLine := indicator + " " + statusCode + " " + path

	lineLen := prefixLen + len(path)
	if lineLen < w {
		plainLine += strings.Repeat(" ", w-lineLen)
	}

	if selected {
		return theme.FileTreeSelected.Width(w).Render(plainLine)
	}

	var indicatorStyle lipgloss.Style
	if entry.IsStaged {
		indicatorStyle = theme.GitStatusAdded
	} else {
		indicatorStyle = theme.GitStatusModified
	}

	return indicatorStyle.Render(indicator) + " " + statusCode + " " + path + strings.Repeat(" ", max(0, w-lineLen))
}

// SetGitStatus updates the git status and rebuilds the file list.
func (m *Model) SetGitStatus(status *git.Status) {
	m.gitStatus = status
	m.rebuildEntries()
}

func (m *Model) rebuildEntries() {
	m.entries = nil

	if m.gitStatus == nil {
		m.cursor = 0
		m.offset = 0
		return
	}

	for path, status := range m.gitStatus.Files {
		if !status.HasChanges() {
			continue
		}

		m.entries = append(m.entries, FileEntry{
			Path:     path,
			Status:   status,
			IsStaged: status.IsStaged(),
		})
	}

	// Staged files first, then by path
	sort.Slice(m.entries, func(i, j int) bool {
		if m.entries[i].IsStaged != m.entries[j].IsStaged {
			return m.entries[i].IsStaged
		}
		return m.entries[i].Path < m.entries[j].Path
	})

	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) hasStagedFiles() bool {
	for _, entry := range m.entries {
		if entry.IsStaged {
			return true
		}
	}
	return false
}

// StagedCount returns the number of staged files.
func (m *Model) StagedCount() int {
	count := 0
	for _, entry := range m.entries {
		if entry.IsStaged {
			count++
		}
	}
	return count
}

// UnstagedCount returns the number of unstaged files.
func (m *Model) UnstagedCount() int {
	count := 0
	for _, entry := range m.entries {
		if !entry.IsStaged {
			count++
		}
	}
	return count
}

// Entries returns the current change list.
func (m *Model) Entries() []FileEntry {
	return m.entries
}

// SetSize updates the panel's dimensions and keeps the cursor visible.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.ensureVisible()
}

// ScrollPercent returns the scroll position as a percentage (0-100).
func (m *Model) ScrollPercent() float64 {
	maxOffset := len(m.entries) - m.listHeight()
	if maxOffset <= 0 {
		return 100
	}
	return float64(m.offset) / float64(maxOffset) * 100
}
