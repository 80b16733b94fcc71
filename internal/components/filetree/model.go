package filetree

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/git"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/theme"
)

// indentStr is the per-level indentation. Sidebar panels are narrow,
// so two spaces keeps deep trees readable.
const indentStr = "  "

// Messages
type (
	// LoadedMsg is sent when children have been loaded.
	LoadedMsg struct {
		Path     string
		Children []*Node
		Err      error
	}

	// SelectMsg is sent when a file is selected (to open it).
	SelectMsg struct {
		Path  string
		IsDir bool
	}

	// StageToggleMsg is sent when user wants to toggle staging for a file.
	StageToggleMsg struct {
		Path     string
		IsStaged bool // Current state (will be toggled)
	}
)

// KeyMap defines the key bindings for the file tree.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Toggle   key.Binding
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
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
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
	}
}

// Model is the file tree panel.
type Model struct {
	components.Base

	root       *Node
	visible    []*Node // Flattened visible nodes
	cursor     int     // Current cursor position
	offset     int     // Scroll offset for viewport
	showHidden bool
	loading    map[string]bool // Paths currently being loaded

	gitStatus     *git.Status // Current git status
	statusVersion uint64      // Bumped on every git status update
	workDir       string      // Working directory for relative paths

	// Cached directory git badges, rebuilt when git status updates.
	dirBadges map[string]string

	// Search/filter functionality
	searching   bool            // Whether search mode is active
	searchInput textinput.Model // Text input for search query
	searchQuery string          // Current filter (persists after exiting search mode)
	matchCount  int             // Number of matching files

	keys KeyMap
}

// New creates a file tree panel rooted at the given directory. An
// empty path falls back to the current working directory.
func New(path string) *Model {
	if path == "" {
		path, _ = os.Getwd()
	}

	ti := textinput.New()
	ti.Placeholder = "Search files..."
	ti.Prompt = ""
	ti.CharLimit = 100

	m := &Model{
		loading:     make(map[string]bool),
		dirBadges:   make(map[string]string),
		keys:        DefaultKeyMap(),
		workDir:     path,
		showHidden:  true,
		searchInput: ti,
	}

	if path != "" {
		if root, err := NewRootNode(path); err == nil {
			m.root = root
		}
	}

	return m
}

// ID identifies this panel in layout state.
func (m *Model) ID() layout.PanelID {
	return layout.PanelFiles
}

// Title returns the panel title.
func (m *Model) Title() string {
	return "FILES"
}

// Hints returns the key hints shown while the panel has focus.
func (m *Model) Hints() string {
	if m.searching {
		return "enter:apply  esc:cancel"
	}
	return "enter:open  space:stage  /:search"
}

// Init loads the root directory.
func (m *Model) Init() tea.Cmd {
	if m.root == nil {
		return nil
	}
	return m.loadChildren(m.root.Path)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	// LoadedMsg should always be handled regardless of focus
	case LoadedMsg:
		return m.handleLoaded(msg)

	case tea.KeyMsg:
		if !m.Focused() {
			return nil
		}
		// When searching, route most keys to the search input
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		// Always handled - the app decides which panel gets the event
		return m.handleMouse(msg)
	}

	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Check for search activation
	if msg.String() == "/" {
		m.searching = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return textinput.Blink
	}

	// Escape clears an applied filter
	if msg.Type == tea.KeyEscape && m.searchQuery != "" {
		m.searchQuery = ""
		m.rebuildVisible()
		return nil
	}

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
		if len(m.visible) > 0 {
			m.cursor = len(m.visible) - 1
			m.ensureVisible()
		}

	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Right):
		return m.handleSelect()

	case key.Matches(msg, m.keys.Left):
		m.handleBack()

	case key.Matches(msg, m.keys.Toggle):
		return m.handleToggle()
	}

	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		// Confirm search and exit search mode
		m.searching = false
		m.searchQuery = m.searchInput.Value()
		m.searchInput.Blur()
		m.rebuildVisible()
		// Jump to first match if there is one
		if len(m.visible) > 0 {
			m.cursor = 0
			m.offset = 0
		}
		return nil

	case tea.KeyEscape:
		// Cancel search, clear filter, exit search mode
		m.searching = false
		m.searchQuery = ""
		m.searchInput.Blur()
		m.rebuildVisible()
		return nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Apply filter as user types
	m.searchQuery = m.searchInput.Value()
	m.rebuildVisible()

	return cmd
}

// handleMouse handles wheel scrolling and click-to-select. Coordinates
// are panel-local: (0, 0) is the first content row.
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
		clickedIdx := m.offset + msg.Y
		if clickedIdx >= 0 && clickedIdx < len(m.visible) {
			m.cursor = clickedIdx
			return m.handleSelect()
		}
	}
	return nil
}

func (m *Model) handleLoaded(msg LoadedMsg) tea.Cmd {
	delete(m.loading, msg.Path)

	if msg.Err != nil || m.root == nil {
		return nil
	}

	node := m.root.FindByPath(msg.Path)
	if node == nil {
		return nil
	}

	node.Children = msg.Children
	node.Loaded = true

	// Children were built off-tree, reattach them
	for _, child := range node.Children {
		child.Parent = node
		child.Depth = node.Depth + 1
	}

	m.rebuildVisible()
	return nil
}

func (m *Model) handleSelect() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}

	node := m.visible[m.cursor]

	if node.IsDir {
		if node.Expanded {
			node.Collapse()
			m.rebuildVisible()
		} else {
			if !node.Loaded && !m.loading[node.Path] {
				m.loading[node.Path] = true
				node.Expanded = true
				m.rebuildVisible()
				return m.loadChildren(node.Path)
			}
			node.Expanded = true
			m.rebuildVisible()
		}
		return nil
	}

	// File selected - ask the app to open it
	return func() tea.Msg {
		return SelectMsg{Path: node.Path, IsDir: false}
	}
}

func (m *Model) handleBack() {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return
	}

	node := m.visible[m.cursor]

	// If on expanded directory, collapse it
	if node.IsDir && node.Expanded {
		node.Collapse()
		m.rebuildVisible()
		return
	}

	// Otherwise go to parent
	if node.Parent != nil && node.Parent != m.root {
		for i, n := range m.visible {
			if n == node.Parent {
				m.cursor = i
				m.ensureVisible()
				break
			}
		}
	}
}

func (m *Model) handleToggle() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}

	node := m.visible[m.cursor]
	if node.IsDir {
		node.Toggle()
		if node.Expanded && !node.Loaded && !m.loading[node.Path] {
			m.loading[node.Path] = true
			m.rebuildVisible()
			return m.loadChildren(node.Path)
		}
		m.rebuildVisible()
		return nil
	}

	// File: emit a staging toggle when it has git changes
	if m.gitStatus != nil && m.workDir != "" {
		relPath, err := filepath.Rel(m.workDir, node.Path)
		if err == nil {
			if status, ok := m.gitStatus.Files[relPath]; ok && status.HasChanges() {
				isStaged := status.IsStaged()
				return func() tea.Msg {
					return StageToggleMsg{
						Path:     node.Path,
						IsStaged: isStaged,
					}
				}
			}
		}
	}

	return nil
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	viewportHeight := m.contentHeight()
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

// contentHeight returns the rows available for tree lines, after the
// search bar when one is shown.
func (m *Model) contentHeight() int {
	_, h := m.Size()
	if m.searching || m.searchQuery != "" {
		h--
	}
	return h
}

func (m *Model) rebuildVisible() {
	if m.root == nil {
		m.visible = nil
		return
	}

	allNodes := m.root.Flatten(m.showHidden)

	if m.searchQuery != "" {
		m.visible, m.matchCount = filterNodes(allNodes, m.searchQuery)
	} else {
		m.visible = allNodes
		m.matchCount = 0
	}

	// Keep cursor in bounds
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// filterNodes keeps files whose name contains the query, plus their
// ancestor directories so matches stay reachable in the tree. Ancestors
// are auto-expanded. When nothing matches the full tree is shown.
func filterNodes(nodes []*Node, query string) ([]*Node, int) {
	if query == "" {
		return nodes, 0
	}

	query = strings.ToLower(query)
	matchingPaths := make(map[string]bool)
	matchCount := 0

	for _, node := range nodes {
		if !node.IsDir && strings.Contains(strings.ToLower(node.Name), query) {
			matchCount++
			matchingPaths[node.Path] = true
			parent := node.Parent
			for parent != nil {
				matchingPaths[parent.Path] = true
				parent.Expanded = true
				parent = parent.Parent
			}
		}
	}

	if matchCount == 0 {
		return nodes, 0
	}

	var result []*Node
	for _, node := range nodes {
		if matchingPaths[node.Path] {
			result = append(result, node)
		}
	}

	return result, matchCount
}

func (m *Model) loadChildren(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := os.ReadDir(path)
		if err != nil {
			return LoadedMsg{Path: path, Err: err}
		}

		children := make([]*Node, 0, len(entries))
		for _, entry := range entries {
			childPath := filepath.Join(path, entry.Name())
			info, err := entry.Info()
			if err != nil {
				continue
			}

			child := &Node{
				Path:    childPath,
				Name:    entry.Name(),
				IsDir:   entry.IsDir(),
				Depth:   0, // Reattached in handleLoaded
				Size:    info.Size(),
				ModTime: info.ModTime().Unix(),
			}
			children = append(children, child)
		}

		sortChildren(children)

		return LoadedMsg{Path: path, Children: children}
	}
}

// View renders the visible slice of the tree.
func (m *Model) View() string {
	w, h := m.Size()
	if w <= 0 || h <= 0 {
		return ""
	}

	contentHeight := m.contentHeight()

	var lines []string
	for i := m.offset; i < len(m.visible) && len(lines) < contentHeight; i++ {
		node := m.visible[i]
		lines = append(lines, m.renderNode(node, i == m.cursor, w))
	}

	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	if m.searching || m.searchQuery != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderSearchBar())
	}

	return content
}

// renderSearchBar renders the search input or the applied filter line.
func (m *Model) renderSearchBar() string {
	if m.searching {
		return "/" + m.searchInput.View()
	}

	bar := lipgloss.NewStyle().Foreground(theme.ColorAccent).Render("/ " + m.searchQuery)
	if m.matchCount > 0 {
		bar += theme.TextMutedStyle.Render(" (" + strconv.Itoa(m.matchCount) + " matches)")
	}
	return bar
}

func (m *Model) renderNode(node *Node, selected bool, maxWidth int) string {
	indent := strings.Repeat(indentStr, node.Depth)

	t := theme.CurrentTheme()
	var icon string
	if node.IsDir {
		icon = t.GetDirIcon(node.Name, node.Expanded)
	} else {
		icon = t.GetFileIcon(node.Extension())
	}

	name := node.Name
	if node.IsDir {
		name += "/"
	}

	badge := m.gitBadge(node)

	line := indent + icon + " " + name

	// Truncate if too long, leaving room for the badge
	badgeWidth := lipgloss.Width(badge)
	availableWidth := maxWidth - badgeWidth - 1
	if availableWidth > 1 && lipgloss.Width(line) > availableWidth {
		line = lipgloss.NewStyle().MaxWidth(availableWidth-1).Render(line) + "…"
	}

	var style lipgloss.Style
	if selected {
		style = theme.FileTreeSelected.Width(maxWidth - badgeWidth - 1)
	} else if node.IsDir {
		style = theme.FileTreeDir
	} else {
		style = theme.FileTreeFile
	}

	if m.loading[node.Path] {
		line += " " + theme.SpinnerStyle.Render("⠋")
	}

	result := style.Render(line)

	if badge != "" {
		result += " " + badge
	}

	return result
}

// gitBadge returns the styled git status badge for a node, using the
// node's cache while it is current.
func (m *Model) gitBadge(node *Node) string {
	if node.badgeVersion == m.statusVersion {
		return node.badge
	}
	m.refreshBadge(node)
	return node.badge
}

// renderFileBadge returns a two-column badge for a file's git status:
// staged code in green, worktree code in the state's own color.
func renderFileBadge(status git.FileStatus) string {
	var result string

	switch status.Staging {
	case git.StatusModified, git.StatusAdded, git.StatusDeleted, git.StatusRenamed, git.StatusCopied:
		result += theme.GitStatusAdded.Render(status.Staging.String())
	}

	switch status.Worktree {
	case git.StatusModified:
		result += theme.GitStatusModified.Render("M")
	case git.StatusDeleted:
		result += theme.GitStatusDeleted.Render("D")
	case git.StatusUntracked:
		result += theme.GitStatusUntracked.Render("?")
	case git.StatusUnmerged:
		result += theme.GitStatusConflict.Render("!")
	}

	return result
}

// SetRoot sets the root directory.
func (m *Model) SetRoot(path string) error {
	root, err := NewRootNode(path)
	if err != nil {
		return err
	}
	m.root = root
	m.workDir = root.Path
	m.cursor = 0
	m.offset = 0
	m.visible = nil
	return nil
}

// Root returns the root path.
func (m *Model) Root() string {
	if m.root == nil {
		return ""
	}
	return m.root.Path
}

// SelectedPath returns the currently selected path.
func (m *Model) SelectedPath() string {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return ""
	}
	return m.visible[m.cursor].Path
}

// SelectedNode returns the currently selected node.
func (m *Model) SelectedNode() *Node {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

// SetShowHidden sets whether to show hidden files.
func (m *Model) SetShowHidden(show bool) {
	m.showHidden = show
	m.rebuildVisible()
}

// ShowHidden returns whether hidden files are shown.
func (m *Model) ShowHidden() bool {
	return m.showHidden
}

// RefreshDir reloads the given directory. A file path refreshes its
// parent; paths outside the tree are ignored.
func (m *Model) RefreshDir(path string) tea.Cmd {
	if m.root == nil {
		return nil
	}

	path = filepath.Clean(path)

	dirPath := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		// Path is gone or is a file, refresh the parent directory
		dirPath = filepath.Dir(path)
	}

	if dirPath == m.root.Path {
		if m.root.Loaded {
			return m.loadChildren(m.root.Path)
		}
		return nil
	}

	node := m.root.FindByPath(dirPath)

	// Not loaded into the tree yet, but under our root: refresh root
	if node == nil {
		if rel, err := filepath.Rel(m.root.Path, dirPath); err == nil && !filepath.IsAbs(rel) && !strings.HasPrefix(rel, "..") {
			if m.root.Loaded {
				return m.loadChildren(m.root.Path)
			}
		}
		return nil
	}

	if !node.IsDir {
		if node.Parent == nil {
			return nil
		}
		node = node.Parent
	}

	if node.Loaded {
		return m.loadChildren(node.Path)
	}

	return nil
}

// SetSize updates the panel's dimensions and keeps the cursor visible.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.ensureVisible()
}

// SetGitStatus updates the git status badges shown next to tree nodes.
func (m *Model) SetGitStatus(status *git.Status) {
	m.gitStatus = status
	m.statusVersion++

	m.dirBadges = make(map[string]string)
	if status != nil && m.workDir != "" {
		m.buildDirBadges(status)
	}

	for _, node := range m.visible {
		m.refreshBadge(node)
	}
}

// buildDirBadges precomputes the dot badge for every directory that
// contains changed files: untracked wins, then all-staged, then mixed.
func (m *Model) buildDirBadges(status *git.Status) {
	type dirState struct {
		hasUntracked bool
		hasUnstaged  bool
	}
	dirs := make(map[string]dirState)

	for path, fileStatus := range status.Files {
		untracked := fileStatus.Staging == git.StatusUntracked || fileStatus.Worktree == git.StatusUntracked
		unstaged := fileStatus.Worktree != git.StatusUnmodified

		dir := filepath.Dir(path)
		for dir != "." && dir != "" && dir != string(filepath.Separator) {
			ds := dirs[dir]
			ds.hasUntracked = ds.hasUntracked || untracked
			ds.hasUnstaged = ds.hasUnstaged || unstaged
			dirs[dir] = ds
			dir = filepath.Dir(dir)
		}
	}

	for dir, ds := range dirs {
		fullPath := filepath.Join(m.workDir, dir)
		switch {
		case ds.hasUntracked:
			m.dirBadges[fullPath] = theme.GitStatusUntracked.Render("●")
		case ds.hasUnstaged:
			m.dirBadges[fullPath] = theme.GitStatusModified.Render("●")
		default:
			m.dirBadges[fullPath] = theme.GitStatusAdded.Render("●")
		}
	}
}

// refreshBadge recomputes and caches the git badge for a node.
func (m *Model) refreshBadge(node *Node) {
	node.badgeVersion = m.statusVersion
	node.badge = ""

	if m.gitStatus == nil || m.workDir == "" {
		return
	}

	relPath, err := filepath.Rel(m.workDir, node.Path)
	if err != nil {
		return
	}

	if status, ok := m.gitStatus.Files[relPath]; ok {
		node.badge = renderFileBadge(status)
		return
	}

	if node.IsDir {
		if cached, ok := m.dirBadges[node.Path]; ok {
			node.badge = cached
		}
	}
}

// ScrollPercent returns the scroll position as a percentage (0-100).
func (m *Model) ScrollPercent() float64 {
	if len(m.visible) == 0 {
		return 100
	}
	viewportHeight := m.contentHeight()
	if viewportHeight <= 0 {
		return 100
	}
	maxOffset := len(m.visible) - viewportHeight
	if maxOffset <= 0 {
		return 100
	}
	return float64(m.offset) / float64(maxOffset) * 100
}
