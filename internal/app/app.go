// Package app assembles the Podex workbench: dockable sidebar panels around
// a content pane, the terminal strip, the bottom utility panel and the
// status bar, all driven by the layout manager and persisted through the
// settings store.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/podexhq/podex/internal/announce"
	"github.com/podexhq/podex/internal/api"
	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/components/agents"
	"github.com/podexhq/podex/internal/components/bottompanel"
	"github.com/podexhq/podex/internal/components/content"
	"github.com/podexhq/podex/internal/components/content/diff"
	"github.com/podexhq/podex/internal/components/content/viewer"
	"github.com/podexhq/podex/internal/components/filetree"
	"github.com/podexhq/podex/internal/components/gitpanel"
	"github.com/podexhq/podex/internal/components/mcp"
	"github.com/podexhq/podex/internal/components/placeholder"
	"github.com/podexhq/podex/internal/components/search"
	"github.com/podexhq/podex/internal/components/terminal"
	"github.com/podexhq/podex/internal/config"
	"github.com/podexhq/podex/internal/git"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/settings"
	"github.com/podexhq/podex/internal/theme"
)

// Version is the application version, set at build time via ldflags.
var Version = "dev"

const (
	gitTickInterval   = 10 * time.Second
	gitDebounceWindow = 2 * time.Second
	gitStatusTimeout  = 2 * time.Second
	gitActionTimeout  = 5 * time.Second
	fileChangeWindow  = 500 * time.Millisecond
	quitDoubleTap     = 400 * time.Millisecond

	// sidebarWidthStep is the pixel delta for one keyboard resize step.
	sidebarWidthStep = 20
	// panelHeightStep is the weight delta for one panel resize step.
	panelHeightStep = 5
)

// watchSkipDirs are directory names the workspace watcher never descends
// into. The same set is skipped by the search panel.
var watchSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"__pycache__":  true,
	".cache":       true,
	"dist":         true,
	"build":        true,
}

// Options carries the wired collaborators into the root model. Config,
// Store and Manager are required; the rest degrade gracefully when nil.
type Options struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     *settings.Store
	Manager   *layout.Manager
	Announcer *announce.Announcer
	Client    *api.Client
	Syncer    *api.Syncer
	// Events delivers announcer and settings watcher notifications into
	// the update loop.
	Events chan tea.Msg
}

// dragState tracks an in-progress sidebar divider drag. The width is
// committed to the layout manager on release.
type dragState struct {
	side   layout.Side
	cols   int
	active bool
}

// Model is the root application model.
type Model struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *settings.Store
	manager   *layout.Manager
	announcer *announce.Announcer
	client    *api.Client
	syncer    *api.Syncer
	events    chan tea.Msg

	// Surfaces. The panels map holds every dockable panel keyed by its
	// layout id; the typed fields alias the ones with app-level wiring.
	panels   map[layout.PanelID]components.Panel
	files    *filetree.Model
	gitPanel *gitpanel.Model
	agents   *agents.Model
	mcp      *mcp.Model
	search   *search.Model
	content  *content.Model
	term     *terminal.Model
	bottom   *bottompanel.Model

	focus     Focus
	prevFocus Focus

	view          layout.ViewState
	theme         string
	reducedMotion bool

	geo    layout.Geometry
	width  int
	height int
	ready  bool

	keys          KeyMap
	help          help.Model
	showHelp      bool
	showQuit      bool
	lastQuitPress time.Time
	showPicker    bool
	pickerIndex   int
	showCommit    bool
	commitInput   textinput.Model

	gitProvider    git.Provider
	gitStatus      *git.Status
	isGitRepo      bool
	workDir        string
	gitRefreshTime time.Time

	watcher        *fsnotify.Watcher
	pendingChanges map[string]fsnotify.Op
	fileDebouncing bool

	drag dragState
}

// New creates the root model from the wired collaborators and the persisted
// settings snapshot.
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	announcer := opts.Announcer
	if announcer == nil {
		announcer = announce.New(nil)
	}

	snap := opts.Store.Get()
	theme.SetTheme(snap.Theme)

	workDir := opts.Config.Workspace.Root
	if workDir == "" {
		workDir, _ = os.Getwd()
	}

	provider := git.NewShellProvider(workDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("file watcher unavailable", zap.Error(err))
		watcher = nil
	}

	// One terminal session shared between the strip and the bottom
	// panel's terminal tab.
	term := terminal.New()
	bottom := bottompanel.New(snap.ActivePanel, term)

	files := filetree.New(workDir)
	gitPanel := gitpanel.New()
	agentsPanel := agents.New(opts.Client)
	mcpPanel := mcp.New(opts.Config.MCP.Servers)
	searchPanel := search.New(workDir)

	panels := map[layout.PanelID]components.Panel{
		layout.PanelFiles:  files,
		layout.PanelGit:    gitPanel,
		layout.PanelAgents: agentsPanel,
		layout.PanelMCP:    mcpPanel,
		layout.PanelSearch: searchPanel,
	}
	for _, id := range layout.KnownPanels() {
		if _, ok := panels[id]; !ok {
			panels[id] = placeholder.New(id)
		}
	}

	commitInput := textinput.New()
	commitInput.Placeholder = "Commit message"
	commitInput.CharLimit = 200
	commitInput.Width = 46

	m := &Model{
		cfg:       opts.Config,
		logger:    logger,
		store:     opts.Store,
		manager:   opts.Manager,
		announcer: announcer,
		client:    opts.Client,
		syncer:    opts.Syncer,
		events:    opts.Events,

		panels:   panels,
		files:    files,
		gitPanel: gitPanel,
		agents:   agentsPanel,
		mcp:      mcpPanel,
		search:   searchPanel,
		content:  content.New(provider),
		term:     term,
		bottom:   bottom,

		view: layout.ViewState{
			TerminalVisible: snap.TerminalVisible,
			TerminalHeight:  snap.TerminalHeight,
			PanelVisible:    snap.PanelVisible,
			PanelHeight:     snap.PanelHeight,
			FocusMode:       snap.FocusMode,
		},
		theme:         snap.Theme,
		reducedMotion: snap.PrefersReducedMotion,

		keys: DefaultKeyMap(),
		help: help.New(),

		gitProvider: provider,
		isGitRepo:   provider.IsRepo(),
		workDir:     workDir,

		watcher:        watcher,
		pendingChanges: make(map[string]fsnotify.Op),

		commitInput: commitInput,
	}

	ring := m.focusRing()
	m.focus = Focus{Region: RegionContent}
	if len(ring) > 0 {
		m.focus = ring[0]
	}
	m.prevFocus = m.focus
	if s := m.surface(m.focus); s != nil {
		s.Focus()
	}

	return m
}

// Init starts the panels, the git poll and the workspace watcher.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range layout.KnownPanels() {
		if cmd := m.panels[id].Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, m.content.Init(), m.bottom.Init())
	cmds = append(cmds, m.refreshGitStatus(), gitTick())

	if m.watcher != nil && m.workDir != "" {
		m.addWatchRecursive(m.workDir)
		cmds = append(cmds, m.watchCmd())
	}

	// Restore the shell if the strip or the terminal tab was open when
	// the previous session ended.
	if m.view.TerminalVisible && !m.term.Running() {
		cmds = append(cmds, terminal.StartShell())
	} else if m.view.PanelVisible {
		if cmd := m.bottom.Activate(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if cmd := m.awaitEvent(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width - 8
		m.recalcLayout()
		return m, nil

	case GitStatusMsg:
		// Skip no-op updates to avoid re-render flicker.
		if m.isGitRepo == msg.IsRepo && gitStatusEqual(m.gitStatus, msg.Status) {
			return m, nil
		}
		m.isGitRepo = msg.IsRepo
		m.gitStatus = msg.Status
		if msg.Status != nil {
			m.files.SetGitStatus(msg.Status)
			m.gitPanel.SetGitStatus(msg.Status)
		}
		return m, nil

	case gitTickMsg:
		next := gitTick()
		if cmd := m.refreshGitDebounced(); cmd != nil {
			return m, tea.Batch(cmd, next)
		}
		return m, next

	case gitRefreshMsg:
		return m, m.refreshGitStatus()

	case commitFinishedMsg:
		if msg.err != nil {
			m.reportProblem("git", msg.err)
		} else {
			m.bottom.AppendOutput("git commit completed")
		}
		return m, m.refreshGitStatus()

	case FileChangeMsg:
		cmds = append(cmds, m.watchCmd())
		if msg.Path == "" {
			return m, tea.Batch(cmds...)
		}
		if msg.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(msg.Path); err == nil && info.IsDir() {
				name := filepath.Base(msg.Path)
				if !strings.HasPrefix(name, ".") && !watchSkipDirs[name] {
					m.watcher.Add(msg.Path)
				}
			}
		}
		m.pendingChanges[msg.Path] = msg.Op
		if cmd := m.scheduleFileDebounce(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case fileDebounceMsg:
		m.fileDebouncing = false
		dirs := make(map[string]bool)
		for path := range m.pendingChanges {
			dirs[filepath.Dir(path)] = true
		}
		m.pendingChanges = make(map[string]fsnotify.Op)
		for dir := range dirs {
			if cmd := m.files.RefreshDir(dir); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		if cmd := m.refreshGitDebounced(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case AnnounceChangedMsg:
		// The status bar reads the announcer directly; receiving the
		// event is enough to trigger a render.
		return m, m.awaitEvent()

	case SettingsReloadedMsg:
		cmd := m.adoptSettings(msg.Settings)
		return m, tea.Batch(cmd, m.awaitEvent())

	case ErrorMsg:
		m.reportProblem(msg.Scope, msg.Err)
		return m, nil

	case tea.KeyMsg:
		if m.showQuit {
			return m, m.handleQuitKey(msg)
		}
		if m.showCommit {
			return m, m.handleCommitKey(msg)
		}
		if m.showPicker {
			return m, m.handlePickerKey(msg)
		}
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m, m.routeToFocused(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case filetree.LoadedMsg:
		return m, m.files.Update(msg)

	case filetree.SelectMsg:
		if msg.IsDir {
			return m, nil
		}
		return m, m.openFile(msg.Path)

	case filetree.StageToggleMsg:
		return m, m.stageToggle(msg.Path, msg.IsStaged)

	case gitpanel.StageToggleMsg:
		return m, m.stageToggle(msg.Path, msg.IsStaged)

	case gitpanel.OpenCommitMsg:
		m.showCommit = true
		m.commitInput.SetValue("")
		m.commitInput.Focus()
		return m, textinput.Blink

	case gitpanel.OpenDiffMsg:
		m.setFocus(Focus{Region: RegionContent})
		return m, m.content.Update(content.OpenDiffMsg{Path: msg.Path, Staged: msg.Staged})

	case gitpanel.OpenFileMsg:
		return m, m.openFile(filepath.Join(m.workDir, msg.Path))

	case gitpanel.RefreshRequestMsg:
		return m, m.refreshGitStatus()

	case search.ResultsMsg:
		return m, m.search.Update(msg)

	case search.SelectMsg:
		return m, m.openFile(msg.Path)

	case agents.LoadedMsg:
		return m, m.agents.Update(msg)

	case spinner.TickMsg:
		return m, m.agents.Update(msg)

	case mcp.CheckedMsg:
		return m, m.mcp.Update(msg)

	case content.OpenFileMsg, content.OpenDiffMsg, content.SetModeMsg:
		return m, m.content.Update(msg)

	case viewer.FileLoadedMsg:
		return m, m.content.Update(msg)

	case diff.DiffLoadedMsg:
		return m, m.content.Update(msg)

	case terminal.OutputMsg, terminal.StartMsg:
		return m, m.term.Update(msg)

	case terminal.ExitMsg:
		cmd := m.term.Update(msg)
		m.bottom.AppendOutput("shell session ended")
		return m, tea.Batch(cmd, m.refreshGitStatus())
	}

	// Cursor blinks and other component ticks follow focus.
	if m.showCommit {
		var cmd tea.Cmd
		m.commitInput, cmd = m.commitInput.Update(msg)
		return m, cmd
	}
	return m, m.routeToFocused(msg)
}

// handleGlobalKey dispatches application-level bindings. The second return
// reports whether the key was consumed.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		now := time.Now()
		if now.Sub(m.lastQuitPress) < quitDoubleTap {
			return tea.Quit, true
		}
		m.lastQuitPress = now
		m.showQuit = true
		return nil, true

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keys.FocusNext):
		m.cycleFocus(1)
		return nil, true

	case key.Matches(msg, m.keys.FocusPrev):
		m.cycleFocus(-1)
		return nil, true

	case key.Matches(msg, m.keys.ToggleLeft):
		if m.shellHasKeys() {
			// The shell keeps ctrl+b; tmux users need their prefix.
			return nil, false
		}
		m.manager.ToggleSidebar(layout.SideLeft)
		m.recalcLayout()
		m.ensureFocusVisible()
		return nil, true

	case key.Matches(msg, m.keys.ToggleRight):
		m.manager.ToggleSidebar(layout.SideRight)
		m.recalcLayout()
		m.ensureFocusVisible()
		return nil, true

	case key.Matches(msg, m.keys.NarrowSidebar):
		m.resizeSidebar(-sidebarWidthStep)
		return nil, true

	case key.Matches(msg, m.keys.WidenSidebar):
		m.resizeSidebar(sidebarWidthStep)
		return nil, true

	case key.Matches(msg, m.keys.GrowPanel):
		m.resizeFocusedPanel(panelHeightStep)
		return nil, true

	case key.Matches(msg, m.keys.ShrinkPanel):
		m.resizeFocusedPanel(-panelHeightStep)
		return nil, true

	case key.Matches(msg, m.keys.MovePanel):
		if m.focus.Region == RegionSidebar {
			if side, ok := m.manager.PanelSide(m.focus.Panel); ok {
				m.manager.MovePanel(m.focus.Panel, side.Opposite())
				m.recalcLayout()
				m.ensureFocusVisible()
			}
		}
		return nil, true

	case key.Matches(msg, m.keys.ClosePanel):
		if m.focus.Region == RegionSidebar {
			m.manager.RemovePanel(m.focus.Panel)
			m.recalcLayout()
			m.setFocus(Focus{Region: RegionContent})
		}
		return nil, true

	case key.Matches(msg, m.keys.AddPanel):
		m.showPicker = true
		m.pickerIndex = 0
		return nil, true

	case key.Matches(msg, m.keys.ResetLayout):
		m.manager.Reset()
		m.recalcLayout()
		m.ensureFocusVisible()
		m.bottom.AppendOutput("sidebar layout reset")
		return nil, true

	case key.Matches(msg, m.keys.ToggleTerminal):
		return m.toggleTerminalStrip(), true

	case key.Matches(msg, m.keys.TogglePanel):
		return m.toggleBottomPanel(), true

	case key.Matches(msg, m.keys.CycleTab):
		if !m.view.PanelVisible {
			return nil, true
		}
		_, cmd := m.bottom.CycleTab()
		m.persistView()
		return cmd, true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = nextTheme(m.theme)
		theme.SetTheme(m.theme)
		m.persistView()
		m.announce("Theme set to " + m.theme)
		return nil, true

	case key.Matches(msg, m.keys.FocusMode):
		m.view.FocusMode = !m.view.FocusMode
		m.persistView()
		m.recalcLayout()
		if m.view.FocusMode {
			m.setFocus(Focus{Region: RegionContent})
			m.announce("Focus mode on")
		} else {
			m.announce("Focus mode off")
		}
		return nil, true

	case key.Matches(msg, m.keys.ReducedMotion):
		m.reducedMotion = !m.reducedMotion
		m.persistView()
		if m.reducedMotion {
			m.announce("Reduced motion on")
		} else {
			m.announce("Reduced motion off")
		}
		return nil, true
	}

	return nil, false
}

// shellHasKeys reports whether keystrokes currently belong to the embedded
// shell rather than the application.
func (m *Model) shellHasKeys() bool {
	if !m.term.Running() {
		return false
	}
	if m.focus.Region == RegionTerminal {
		return true
	}
	return m.focus.Region == RegionPanel && m.bottom.ActiveTab() == settings.TabTerminal
}

func (m *Model) handleQuitKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter", "ctrl+q":
		return tea.Quit
	case "n", "N", "esc":
		m.showQuit = false
	}
	return nil
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	known := layout.KnownPanels()
	switch msg.String() {
	case "esc":
		m.showPicker = false
	case "up", "k":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "down", "j":
		if m.pickerIndex < len(known)-1 {
			m.pickerIndex++
		}
	case "enter":
		id := known[m.pickerIndex]
		side := layout.SideLeft
		if m.focus.Region == RegionSidebar {
			if s, ok := m.manager.PanelSide(m.focus.Panel); ok {
				side = s
			}
		}
		m.showPicker = false
		m.manager.AddPanel(id, side)
		m.recalcLayout()
		m.setFocus(Focus{Region: RegionSidebar, Panel: id})
	}
	return nil
}

func (m *Model) handleCommitKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.showCommit = false
		m.commitInput.Blur()
		return nil
	case "enter":
		message := strings.TrimSpace(m.commitInput.Value())
		if message == "" {
			return nil
		}
		m.showCommit = false
		m.commitInput.Blur()
		// Suspend the TUI so GPG or commit hooks can use the tty.
		cmd := exec.Command("git", "commit", "-m", message)
		cmd.Dir = m.workDir
		return tea.ExecProcess(cmd, func(err error) tea.Msg {
			return commitFinishedMsg{err: err}
		})
	}

	var cmd tea.Cmd
	m.commitInput, cmd = m.commitInput.Update(msg)
	return cmd
}

// toggleTerminalStrip shows, focuses or hides the terminal strip.
func (m *Model) toggleTerminalStrip() tea.Cmd {
	if m.view.TerminalVisible && m.focus.Region != RegionTerminal {
		m.setFocus(Focus{Region: RegionTerminal})
		return nil
	}

	m.view.TerminalVisible = !m.view.TerminalVisible
	m.persistView()
	m.recalcLayout()

	if m.view.TerminalVisible {
		m.setFocus(Focus{Region: RegionTerminal})
		if !m.term.Running() {
			return terminal.StartShell()
		}
		return nil
	}
	m.setFocus(m.fallbackFocus())
	return nil
}

// toggleBottomPanel shows, focuses or hides the bottom utility panel.
func (m *Model) toggleBottomPanel() tea.Cmd {
	if m.view.PanelVisible && m.focus.Region != RegionPanel {
		m.setFocus(Focus{Region: RegionPanel})
		return nil
	}

	m.view.PanelVisible = !m.view.PanelVisible
	m.persistView()
	m.recalcLayout()

	if m.view.PanelVisible {
		m.setFocus(Focus{Region: RegionPanel})
		return m.bottom.Activate()
	}
	m.setFocus(m.fallbackFocus())
	return nil
}

// resizeSidebar adjusts the width of the sidebar holding focus, defaulting
// to the left one.
func (m *Model) resizeSidebar(delta int) {
	side := layout.SideLeft
	if m.focus.Region == RegionSidebar {
		if s, ok := m.manager.PanelSide(m.focus.Panel); ok {
			side = s
		}
	}
	sb := m.manager.SidebarFor(side)
	m.manager.SetSidebarWidth(side, sb.Width+delta)
	m.recalcLayout()
}

// resizeFocusedPanel adjusts the height weight of the focused sidebar panel.
func (m *Model) resizeFocusedPanel(delta float64) {
	if m.focus.Region != RegionSidebar {
		return
	}
	side, ok := m.manager.PanelSide(m.focus.Panel)
	if !ok {
		return
	}
	sb := m.manager.SidebarFor(side)
	for i, slot := range sb.Panels {
		if slot.Panel == m.focus.Panel {
			m.manager.SetPanelHeight(side, i, slot.Height+delta)
			break
		}
	}
	m.recalcLayout()
}

// persistView writes the app-level view preferences to the settings store
// and schedules a remote sync.
func (m *Model) persistView() {
	view := m.view
	themeName := m.theme
	reduced := m.reducedMotion
	tab := m.bottom.ActiveTab()
	m.store.Update(func(s *settings.Settings) {
		s.TerminalVisible = view.TerminalVisible
		s.TerminalHeight = view.TerminalHeight
		s.PanelVisible = view.PanelVisible
		s.PanelHeight = view.PanelHeight
		s.FocusMode = view.FocusMode
		s.Theme = themeName
		s.PrefersReducedMotion = reduced
		s.ActivePanel = tab
	})
	if m.syncer != nil {
		m.syncer.Request()
	}
}

// adoptSettings applies a snapshot another process wrote to disk. Nothing
// here echoes back to the store or the server.
func (m *Model) adoptSettings(s settings.Settings) tea.Cmd {
	m.manager.Replace(s.SidebarLayout)
	m.view.TerminalVisible = s.TerminalVisible
	m.view.TerminalHeight = s.TerminalHeight
	m.view.PanelVisible = s.PanelVisible
	m.view.PanelHeight = s.PanelHeight
	m.view.FocusMode = s.FocusMode
	m.theme = s.Theme
	theme.SetTheme(m.theme)
	m.reducedMotion = s.PrefersReducedMotion

	var cmds []tea.Cmd
	if cmd := m.bottom.SetActiveTab(s.ActivePanel); cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.recalcLayout()
	m.ensureFocusVisible()
	if m.view.TerminalVisible && !m.term.Running() {
		cmds = append(cmds, terminal.StartShell())
	}
	m.bottom.AppendOutput("settings reloaded from disk")
	return tea.Batch(cmds...)
}

func (m *Model) announce(text string) {
	if m.announcer != nil {
		m.announcer.Announce(text)
	}
}

func (m *Model) reportProblem(scope string, err error) {
	if err == nil {
		return
	}
	m.logger.Error("component error", zap.String("scope", scope), zap.Error(err))
	m.bottom.ReportProblem(scope, err.Error())
}

// nextTheme cycles dark -> light -> system -> dark.
func nextTheme(cur string) string {
	switch cur {
	case settings.ThemeDark:
		return settings.ThemeLight
	case settings.ThemeLight:
		return settings.ThemeSystem
	default:
		return settings.ThemeDark
	}
}

// openFile focuses the content pane and loads path into the viewer.
func (m *Model) openFile(path string) tea.Cmd {
	m.setFocus(Focus{Region: RegionContent})
	return m.content.Update(content.OpenFileMsg{Path: path})
}

// stageToggle stages or unstages path and then requests a status refresh.
func (m *Model) stageToggle(path string, staged bool) tea.Cmd {
	provider := m.gitProvider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gitActionTimeout)
		defer cancel()
		var err error
		if staged {
			err = provider.Unstage(ctx, path)
		} else {
			err = provider.Stage(ctx, path)
		}
		if err != nil {
			return ErrorMsg{Scope: "git", Err: err}
		}
		return gitRefreshMsg{}
	}
}

// refreshGitStatus fetches the current git status off the update loop.
func (m *Model) refreshGitStatus() tea.Cmd {
	provider := m.gitProvider
	return func() tea.Msg {
		if !provider.IsRepo() {
			return GitStatusMsg{IsRepo: false}
		}
		ctx, cancel := context.WithTimeout(context.Background(), gitStatusTimeout)
		defer cancel()
		status, _ := provider.GetStatus(ctx)
		return GitStatusMsg{Status: status, IsRepo: true}
	}
}

// refreshGitDebounced refreshes only when the debounce window has passed.
func (m *Model) refreshGitDebounced() tea.Cmd {
	now := time.Now()
	if now.Sub(m.gitRefreshTime) < gitDebounceWindow {
		return nil
	}
	m.gitRefreshTime = now
	return m.refreshGitStatus()
}

func gitTick() tea.Cmd {
	return tea.Tick(gitTickInterval, func(time.Time) tea.Msg {
		return gitTickMsg{}
	})
}

// gitStatusEqual compares two status snapshots so identical poll results
// do not trigger renders.
func gitStatusEqual(a, b *git.Status) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Branch != b.Branch || a.IsDirty != b.IsDirty || a.Ahead != b.Ahead || a.Behind != b.Behind {
		return false
	}
	if len(a.Files) != len(b.Files) || len(a.Untracked) != len(b.Untracked) {
		return false
	}
	for path, sa := range a.Files {
		sb, ok := b.Files[path]
		if !ok || sa != sb {
			return false
		}
	}
	return true
}

// addWatchRecursive registers watches for root and its subdirectories,
// skipping dependency and VCS directories.
func (m *Model) addWatchRecursive(root string) {
	if m.watcher == nil {
		return
	}
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if watchSkipDirs[name] {
			return filepath.SkipDir
		}
		if path != root && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		m.watcher.Add(path)
		return nil
	})
}

// watchCmd blocks until the next file system event.
func (m *Model) watchCmd() tea.Cmd {
	watcher := m.watcher
	if watcher == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				return FileChangeMsg{Path: event.Name, Op: event.Op}
			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

// scheduleFileDebounce arms the quiet-window timer for pending file events.
func (m *Model) scheduleFileDebounce() tea.Cmd {
	if m.fileDebouncing {
		return nil
	}
	m.fileDebouncing = true
	return tea.Tick(fileChangeWindow, func(time.Time) tea.Msg {
		return fileDebounceMsg{}
	})
}

// awaitEvent reads the next out-of-loop event. Re-armed after every receipt.
func (m *Model) awaitEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		return <-ch
	}
}

// routeToFocused forwards a message to the focused surface.
func (m *Model) routeToFocused(msg tea.Msg) tea.Cmd {
	switch m.focus.Region {
	case RegionSidebar:
		if p, ok := m.panels[m.focus.Panel]; ok {
			return p.Update(msg)
		}
	case RegionContent:
		return m.content.Update(msg)
	case RegionTerminal:
		return m.term.Update(msg)
	case RegionPanel:
		return m.bottom.Update(msg)
	}
	return nil
}

// focusable is the slice of the panel contract the focus ring needs; the
// content pane, terminal and bottom panel satisfy it without being
// dockable panels.
type focusable interface {
	Focus()
	Blur()
}

func (m *Model) surface(f Focus) focusable {
	switch f.Region {
	case RegionSidebar:
		if p, ok := m.panels[f.Panel]; ok {
			return p
		}
	case RegionContent:
		return m.content
	case RegionTerminal:
		return m.term
	case RegionPanel:
		return m.bottom
	}
	return nil
}

// focusRing lists the focusable surfaces in tab order: left sidebar top to
// bottom, content, right sidebar, then the bottom surfaces.
func (m *Model) focusRing() []Focus {
	if m.view.FocusMode {
		return []Focus{{Region: RegionContent}}
	}
	st := m.manager.State()
	var ring []Focus
	if !st.Left.Collapsed {
		for _, slot := range st.Left.Panels {
			ring = append(ring, Focus{Region: RegionSidebar, Panel: slot.Panel})
		}
	}
	ring = append(ring, Focus{Region: RegionContent})
	if !st.Right.Collapsed {
		for _, slot := range st.Right.Panels {
			ring = append(ring, Focus{Region: RegionSidebar, Panel: slot.Panel})
		}
	}
	if m.view.TerminalVisible {
		ring = append(ring, Focus{Region: RegionTerminal})
	}
	if m.view.PanelVisible {
		ring = append(ring, Focus{Region: RegionPanel})
	}
	return ring
}

func (m *Model) cycleFocus(dir int) {
	ring := m.focusRing()
	if len(ring) == 0 {
		return
	}
	cur := -1
	for i, f := range ring {
		if f == m.focus {
			cur = i
			break
		}
	}
	if cur < 0 {
		m.setFocus(ring[0])
		return
	}
	m.setFocus(ring[(cur+dir+len(ring))%len(ring)])
}

// ensureFocusVisible moves focus to the content pane when the focused
// surface is no longer part of the ring.
func (m *Model) ensureFocusVisible() {
	for _, f := range m.focusRing() {
		if f == m.focus {
			return
		}
	}
	m.setFocus(Focus{Region: RegionContent})
}

// fallbackFocus returns the previous focus if it is still visible,
// otherwise the content pane.
func (m *Model) fallbackFocus() Focus {
	for _, f := range m.focusRing() {
		if f == m.prevFocus {
			return m.prevFocus
		}
	}
	return Focus{Region: RegionContent}
}

func (m *Model) setFocus(target Focus) {
	if target == m.focus {
		if s := m.surface(target); s != nil {
			s.Focus()
		}
		return
	}
	if s := m.surface(m.focus); s != nil {
		s.Blur()
	}
	m.prevFocus = m.focus
	m.focus = target
	if s := m.surface(target); s != nil {
		s.Focus()
	}
}

// Focus returns the currently focused surface.
func (m *Model) Focus() Focus {
	return m.focus
}

// TerminalVisible reports whether the terminal strip is shown.
func (m *Model) TerminalVisible() bool {
	return m.view.TerminalVisible
}

// PanelVisible reports whether the bottom utility panel is shown.
func (m *Model) PanelVisible() bool {
	return m.view.PanelVisible
}

// recalcLayout recomputes the cell geometry and resizes every surface.
func (m *Model) recalcLayout() {
	if !m.ready {
		return
	}
	m.geo = layout.Calculate(m.width, m.height, m.layoutState(), m.view)
	m.updateSizes()
}

// layoutState returns the manager snapshot with any in-progress divider
// drag applied on top.
func (m *Model) layoutState() layout.State {
	st := m.manager.State()
	if m.drag.active {
		px := layout.WidthForCols(m.drag.cols, m.width)
		if m.drag.side == layout.SideRight {
			st.Right.Width = px
		} else {
			st.Left.Width = px
		}
	}
	return st
}

func inner(n int) int {
	n -= 2
	if n < 0 {
		return 0
	}
	return n
}

func (m *Model) updateSizes() {
	g := m.geo
	st := m.layoutState()

	if g.LeftCols > 0 {
		m.sizeSidebar(st.Left, g.LeftCols)
	}
	if g.RightCols > 0 {
		m.sizeSidebar(st.Right, g.RightCols)
	}
	m.content.SetSize(inner(g.CenterCols), inner(g.MainRows))

	// The bottom panel is sized before the strip so the shared terminal
	// session ends up sized for the strip whenever both are visible.
	if g.PanelRows > 0 {
		m.bottom.SetSize(inner(g.TotalWidth), inner(g.PanelRows))
	}
	if g.TerminalRows > 0 {
		m.term.SetSize(inner(g.TotalWidth), inner(g.TerminalRows))
	}
}

func (m *Model) sizeSidebar(sb layout.Sidebar, cols int) {
	rows := layout.SlotRows(sb, m.geo.MainRows)
	if len(rows) != len(sb.Panels) {
		return
	}
	for i, slot := range sb.Panels {
		if p, ok := m.panels[slot.Panel]; ok {
			p.SetSize(inner(cols), inner(rows[i]))
		}
	}
}

// hit is the result of mapping screen coordinates onto a surface. x and y
// are content-local; inside reports whether they fall within the inner box
// rather than on the border.
type hit struct {
	focus  Focus
	x, y   int
	inside bool
}

func (m *Model) hitTest(x, y int) (hit, bool) {
	g := m.geo
	if x < 0 || y < 0 || x >= g.TotalWidth {
		return hit{}, false
	}

	mainEnd := g.MainRows
	termEnd := mainEnd + g.TerminalRows
	panelEnd := termEnd + g.PanelRows

	switch {
	case y < mainEnd:
		return m.hitMainBand(x, y)
	case y < termEnd:
		h := hit{focus: Focus{Region: RegionTerminal}, x: x - 1, y: y - mainEnd - 1}
		h.inside = h.x >= 0 && h.x < inner(g.TotalWidth) && h.y >= 0 && h.y < inner(g.TerminalRows)
		return h, true
	case y < panelEnd:
		h := hit{focus: Focus{Region: RegionPanel}, x: x - 1, y: y - termEnd - 1}
		h.inside = h.x >= 0 && h.x < inner(g.TotalWidth) && h.y >= 0 && h.y < inner(g.PanelRows)
		return h, true
	default:
		// Status bar.
		return hit{}, false
	}
}

func (m *Model) hitMainBand(x, y int) (hit, bool) {
	g := m.geo
	st := m.layoutState()

	if g.LeftCols > 0 && x < g.LeftCols {
		return m.hitSidebar(st.Left, 0, g.LeftCols, x, y)
	}
	if g.RightCols > 0 && x >= g.TotalWidth-g.RightCols {
		return m.hitSidebar(st.Right, g.TotalWidth-g.RightCols, g.RightCols, x, y)
	}

	h := hit{focus: Focus{Region: RegionContent}, x: x - g.LeftCols - 1, y: y - 1}
	h.inside = h.x >= 0 && h.x < inner(g.CenterCols) && h.y >= 0 && h.y < inner(g.MainRows)
	return h, true
}

func (m *Model) hitSidebar(sb layout.Sidebar, originX, cols, x, y int) (hit, bool) {
	rows := layout.SlotRows(sb, m.geo.MainRows)
	top := 0
	for i, r := range rows {
		if y >= top+r {
			top += r
			continue
		}
		h := hit{
			focus: Focus{Region: RegionSidebar, Panel: sb.Panels[i].Panel},
			x:     x - originX - 1,
			y:     y - top - 1,
		}
		h.inside = h.x >= 0 && h.x < inner(cols) && h.y >= 0 && h.y < inner(r)
		return h, true
	}
	return hit{}, false
}

// dividerAt reports whether (x, y) sits on a draggable sidebar divider.
func (m *Model) dividerAt(x, y int) (layout.Side, bool) {
	g := m.geo
	if y >= g.MainRows || m.view.FocusMode {
		return "", false
	}
	if g.LeftCols > 0 && (x == g.LeftCols-1 || x == g.LeftCols) {
		return layout.SideLeft, true
	}
	if g.RightCols > 0 && (x == g.TotalWidth-g.RightCols || x == g.TotalWidth-g.RightCols-1) {
		return layout.SideRight, true
	}
	return "", false
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if h, ok := m.hitTest(msg.X, msg.Y); ok {
			return m.routeMouse(h, msg)
		}
		return nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if side, ok := m.dividerAt(msg.X, msg.Y); ok {
			m.drag = dragState{side: side, cols: m.sidebarCols(side), active: true}
			return nil
		}
		h, ok := m.hitTest(msg.X, msg.Y)
		if !ok {
			return nil
		}
		if h.focus != m.focus {
			m.setFocus(h.focus)
		}
		return m.routeMouse(h, msg)

	case msg.Action == tea.MouseActionMotion:
		if m.drag.active {
			m.dragTo(msg.X)
			return nil
		}
		if h, ok := m.hitTest(msg.X, msg.Y); ok {
			return m.routeMouse(h, msg)
		}
		return nil

	case msg.Action == tea.MouseActionRelease:
		if m.drag.active {
			m.drag.active = false
			m.manager.SetSidebarWidth(m.drag.side, layout.WidthForCols(m.drag.cols, m.width))
			m.recalcLayout()
			return nil
		}
		if h, ok := m.hitTest(msg.X, msg.Y); ok {
			return m.routeMouse(h, msg)
		}
		return nil
	}
	return nil
}

func (m *Model) sidebarCols(side layout.Side) int {
	if side == layout.SideRight {
		return m.geo.RightCols
	}
	return m.geo.LeftCols
}

// dragTo previews the divider drag at column x; the width is committed on
// release.
func (m *Model) dragTo(x int) {
	var cols int
	if m.drag.side == layout.SideLeft {
		cols = x + 1
	} else {
		cols = m.width - x
	}
	if cols < layout.MinSidebarCols {
		cols = layout.MinSidebarCols
	}
	if maxCols := m.width * layout.MaxSidebarShare / 100; cols > maxCols {
		cols = maxCols
	}
	m.drag.cols = cols
	m.recalcLayout()
}

// routeMouse delivers a mouse event in content-local coordinates.
func (m *Model) routeMouse(h hit, msg tea.MouseMsg) tea.Cmd {
	if !h.inside {
		return nil
	}
	msg.X = h.x
	msg.Y = h.y
	switch h.focus.Region {
	case RegionSidebar:
		if p, ok := m.panels[h.focus.Panel]; ok {
			return p.Update(msg)
		}
	case RegionContent:
		return m.content.Update(msg)
	case RegionTerminal:
		return m.term.Update(msg)
	case RegionPanel:
		return m.bottom.Update(msg)
	}
	return nil
}

// View renders the workbench.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showQuit {
		return m.renderQuitDialog()
	}
	if m.showPicker {
		return m.renderPicker()
	}
	if m.showCommit {
		return m.renderCommitDialog()
	}

	g := m.geo
	st := m.layoutState()

	var columns []string
	if g.LeftCols > 0 {
		columns = append(columns, m.renderSidebar(st.Left, g.LeftCols))
	}
	if g.CenterCols > 0 {
		columns = append(columns, m.renderContent(g.CenterCols, g.MainRows))
	}
	if g.RightCols > 0 {
		columns = append(columns, m.renderSidebar(st.Right, g.RightCols))
	}

	bands := []string{lipgloss.JoinHorizontal(lipgloss.Top, columns...)}
	if g.TerminalRows > 0 {
		bands = append(bands, m.renderTerminalStrip(g.TotalWidth, g.TerminalRows))
	}
	if g.PanelRows > 0 {
		bands = append(bands, m.renderBottomPanel(g.TotalWidth, g.PanelRows))
	}
	bands = append(bands, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, bands...)
}

func (m *Model) renderSidebar(sb layout.Sidebar, cols int) string {
	rows := layout.SlotRows(sb, m.geo.MainRows)
	if len(rows) != len(sb.Panels) {
		return ""
	}

	parts := make([]string, 0, len(sb.Panels))
	for i, slot := range sb.Panels {
		p, ok := m.panels[slot.Panel]
		if !ok {
			continue
		}
		focused := m.focus.Region == RegionSidebar && m.focus.Panel == slot.Panel
		opts := theme.PanelTitleOptions{
			Title:         p.Title(),
			ScrollPercent: p.ScrollPercent(),
		}
		if focused {
			opts.BottomHints = p.Hints()
		}
		parts = append(parts, theme.RenderPanelWithTitle(p.View(), opts, cols, rows[i], focused))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderContent(width, height int) string {
	focused := m.focus.Region == RegionContent
	opts := theme.PanelTitleOptions{
		Title:         m.content.Title(),
		ScrollPercent: m.content.ScrollPercent(),
	}
	if focused {
		opts.BottomHints = m.content.Hints()
	}
	return theme.RenderPanelWithTitle(m.content.View(), opts, width, height, focused)
}

func (m *Model) renderTerminalStrip(width, height int) string {
	focused := m.focus.Region == RegionTerminal
	opts := theme.PanelTitleOptions{
		Title:         "TERMINAL",
		ShowStatus:    true,
		StatusRunning: m.term.Running(),
		ScrollPercent: -1,
	}
	return theme.RenderPanelWithTitle(m.term.View(), opts, width, height, focused)
}

func (m *Model) renderBottomPanel(width, height int) string {
	focused := m.focus.Region == RegionPanel
	opts := theme.PanelTitleOptions{
		Title:         m.bottom.Title(),
		ScrollPercent: m.bottom.ScrollPercent(),
	}
	if focused {
		opts.BottomHints = m.bottom.Hints()
	}
	if m.bottom.ActiveTab() == settings.TabTerminal {
		opts.ShowStatus = true
		opts.StatusRunning = m.term.Running()
	}
	return theme.RenderPanelWithTitle(m.bottom.View(), opts, width, height, focused)
}

func (m *Model) renderStatusBar() string {
	var left string

	if m.isGitRepo && m.gitStatus != nil && m.gitStatus.Branch != "" {
		branch := lipgloss.NewStyle().Foreground(theme.ColorSecondary).
			Render(theme.GitBranchIcon + " " + m.gitStatus.Branch)
		var dirty, aheadBehind string
		if m.gitStatus.IsDirty {
			dirty = lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(" ●")
		}
		if m.gitStatus.Ahead > 0 {
			aheadBehind += lipgloss.NewStyle().Foreground(theme.ColorSuccess).
				Render(" ↑" + strconv.Itoa(m.gitStatus.Ahead))
		}
		if m.gitStatus.Behind > 0 {
			aheadBehind += lipgloss.NewStyle().Foreground(theme.ColorError).
				Render(" ↓" + strconv.Itoa(m.gitStatus.Behind))
		}
		left = " " + branch + dirty + aheadBehind
	}

	// The announcement live region replaces the focus label while active.
	if msg := m.announcer.Current(); msg != "" {
		left += theme.AnnouncementStyle.Render(msg)
	} else {
		left += theme.StatusBarSection.Render(m.focus.Label())
	}

	right := theme.StatusBarSection.Render(m.syncLabel()) +
		theme.StatusBarSection.Render(m.theme) +
		theme.StatusBarHighlight.Render(Version) +
		theme.StatusBarSection.Render("^H help  ^Q quit")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) syncLabel() string {
	switch {
	case m.client == nil || !m.client.Authenticated():
		return "signed out"
	case m.syncer == nil:
		return "sync off"
	default:
		return "synced"
	}
}

func (m *Model) renderHelp() string {
	m.help.ShowAll = true
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.StatusBarHighlight.Render("PODEX KEYS"),
		"",
		m.help.View(m.keys),
		"",
		theme.TextMutedStyle.Render("press any key to close"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		theme.OverlayStyle.Render(body))
}

func (m *Model) renderQuitDialog() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.StatusBarHighlight.Render("Quit Podex?"),
		"",
		theme.TextMutedStyle.Render("[y] quit    [n] stay"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		theme.OverlayStyle.Render(body))
}

func (m *Model) renderPicker() string {
	known := layout.KnownPanels()
	lines := make([]string, 0, len(known)+4)
	lines = append(lines, theme.StatusBarHighlight.Render("ADD PANEL"), "")

	for i, id := range known {
		row := "  " + string(id)
		if i == m.pickerIndex {
			row = lipgloss.NewStyle().Foreground(theme.ColorFocus).Bold(true).
				Render("❯ " + string(id))
		}
		if side, ok := m.manager.PanelSide(id); ok {
			row += theme.TextMutedStyle.Render("  " + string(side))
		}
		lines = append(lines, row)
	}

	lines = append(lines, "", theme.TextMutedStyle.Render("enter:add  esc:cancel"))
	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		theme.OverlayStyle.Render(body))
}

func (m *Model) renderCommitDialog() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.StatusBarHighlight.Render("COMMIT CHANGES"),
		"",
		theme.TextMutedStyle.Render(fmt.Sprintf("Staged files: %d", m.gitPanel.StagedCount())),
		"",
		m.commitInput.View(),
		"",
		theme.TextMutedStyle.Render("enter:commit  esc:cancel"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		theme.OverlayStyle.Render(body))
}

// Close releases the watcher and stops the embedded shell. Called after the
// program loop exits.
func (m *Model) Close() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.term.Stop()
}
