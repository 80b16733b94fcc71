// Package content routes the center pane between the file viewer and the
// diff view.
package content

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/components/content/diff"
	"github.com/podexhq/podex/internal/components/content/viewer"
	"github.com/podexhq/podex/internal/git"
)

// Mode determines what the content pane displays.
type Mode int

const (
	ModeViewer Mode = iota
	ModeDiff
)

func (m Mode) String() string {
	switch m {
	case ModeViewer:
		return "VIEWER"
	case ModeDiff:
		return "DIFF"
	default:
		return "UNKNOWN"
	}
}

// Messages
type (
	// SetModeMsg changes the content pane mode.
	SetModeMsg struct {
		Mode Mode
	}

	// OpenFileMsg requests opening a file in the viewer.
	OpenFileMsg struct {
		Path string
	}

	// OpenDiffMsg requests showing the diff for a file. An empty path shows
	// the diff for the whole tree.
	OpenDiffMsg struct {
		Path   string
		Staged bool
	}
)

// Model is the content pane component that routes between views.
type Model struct {
	components.Base

	mode   Mode
	viewer *viewer.Model
	diff   *diff.Model

	provider    git.Provider
	currentPath string
}

// New creates a new content pane model. The provider is used to load diffs
// and may be nil when the workspace is not a repository.
func New(provider git.Provider) *Model {
	return &Model{
		mode:     ModeViewer,
		viewer:   viewer.New(),
		diff:     diff.New(),
		provider: provider,
	}
}

// Init initializes the content pane.
func (m *Model) Init() tea.Cmd {
	return m.viewer.Init()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SetModeMsg:
		m.setMode(msg.Mode)
		return nil

	case OpenFileMsg:
		m.setMode(ModeViewer)
		m.currentPath = msg.Path
		return viewer.LoadFile(msg.Path)

	case OpenDiffMsg:
		if m.provider == nil {
			return nil
		}
		m.setMode(ModeDiff)
		return diff.LoadDiff(m.provider, msg.Path, msg.Staged)

	case viewer.FileLoadedMsg:
		return m.viewer.Update(msg)

	case diff.DiffLoadedMsg:
		return m.diff.Update(msg)

	case tea.KeyMsg:
		if m.Focused() && m.mode == ModeDiff && msg.Type == tea.KeyEsc {
			m.setMode(ModeViewer)
			return nil
		}
		return m.active().Update(msg)

	case tea.MouseMsg:
		return m.active().Update(msg)
	}

	return m.active().Update(msg)
}

// active returns the sub-component for the current mode.
func (m *Model) active() subModel {
	if m.mode == ModeDiff {
		return m.diff
	}
	return m.viewer
}

// subModel is the part of the viewer and diff surface the router drives.
type subModel interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
	Focus()
	Blur()
	SetSize(width, height int)
	ScrollPercent() float64
}

// View renders the content pane.
func (m *Model) View() string {
	w, h := m.Size()
	if w == 0 || h == 0 {
		return ""
	}
	return m.active().View()
}

// Title returns the pane title for the current mode.
func (m *Model) Title() string {
	switch m.mode {
	case ModeDiff:
		if m.diff.Path() != "" {
			return "DIFF " + filepath.Base(m.diff.Path())
		}
		return "DIFF"
	default:
		if m.currentPath != "" {
			return filepath.Base(m.currentPath)
		}
		return "EDITOR"
	}
}

// Hints returns the key hints for the current mode.
func (m *Model) Hints() string {
	switch m.mode {
	case ModeDiff:
		return "esc:close diff"
	default:
		if m.viewer.IsSearching() {
			return "enter:next  esc:close"
		}
		return "/:search  y:copy"
	}
}

// Mode returns the current mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// SetMode sets the display mode.
func (m *Model) SetMode(mode Mode) {
	m.setMode(mode)
}

func (m *Model) setMode(mode Mode) {
	if m.mode == mode {
		return
	}
	if m.Focused() {
		m.active().Blur()
	}
	m.mode = mode
	if m.Focused() {
		m.active().Focus()
	}
}

// CurrentPath returns the path of the file open in the viewer, if any.
func (m *Model) CurrentPath() string {
	return m.currentPath
}

// Viewer exposes the file viewer sub-component.
func (m *Model) Viewer() *viewer.Model {
	return m.viewer
}

// Diff exposes the diff sub-component.
func (m *Model) Diff() *diff.Model {
	return m.diff
}

// Clear resets both views, for example when the workspace root changes.
func (m *Model) Clear() {
	m.setMode(ModeViewer)
	m.currentPath = ""
	m.viewer.Clear()
	m.diff.Clear()
}

// Focus gives focus to this component and the active view.
func (m *Model) Focus() {
	m.Base.Focus()
	m.active().Focus()
}

// Blur removes focus from this component and both views.
func (m *Model) Blur() {
	m.Base.Blur()
	m.viewer.Blur()
	m.diff.Blur()
}

// SetSize updates the component's dimensions.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.viewer.SetSize(width, height)
	m.diff.SetSize(width, height)
}

// ScrollPercent returns the scroll position of the current view.
func (m *Model) ScrollPercent() float64 {
	return m.active().ScrollPercent()
}
