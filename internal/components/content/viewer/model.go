package viewer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/selection"
	"github.com/podexhq/podex/internal/theme"
)

// FileLoadedMsg is sent when a file has been loaded.
type FileLoadedMsg struct {
	Path    string
	Content string
	Err     error
}

// lineNumberWidth is the gutter width: 4 digits plus " │ ".
const lineNumberWidth = 7

// Model is the syntax-highlighted file viewer.
type Model struct {
	components.Base

	viewport viewport.Model
	path     string
	content  string
	ready    bool
	err      error

	// Search
	searching    bool
	searchInput  textinput.Model
	searchQuery  string
	searchRegex  *regexp.Regexp
	matchLines   []int // Line numbers (0-indexed) with matches
	currentMatch int   // Current match index (-1 if none)

	// Text selection
	selection selection.Model
}

// New creates a file viewer.
func New() *Model {
	ti := textinput.New()
	ti.Placeholder = "regex pattern..."
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 30

	return &Model{
		searchInput:  ti,
		currentMatch: -1,
		selection:    selection.New(),
	}
}

// Init implements the component lifecycle, nothing to start.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case FileLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.content = ""
			m.viewport.SetContent(renderError(msg.Err))
		} else {
			m.path = msg.Path
			m.content = msg.Content
			m.err = nil
			// A new file invalidates search and selection state
			m.clearSearch()
			m.selection.Clear()
			m.viewport.SetContent(m.renderContent())
			m.viewport.GotoTop()
		}
		return nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.Focused() {
			return nil
		}
		return m.handleKey(msg)
	}

	return nil
}

// handleMouse handles wheel scrolling and drag selection. Coordinates
// are component-local: (0, 0) is the first content cell.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	line, col := m.textPosition(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		m.updateSelectionContent()
		m.selection.Start(line, col)
		m.viewport.SetContent(m.renderContent())

	case tea.MouseActionMotion:
		if m.selection.Selection.Active {
			m.selection.Extend(line, col)
			m.viewport.SetContent(m.renderContent())
		}

	case tea.MouseActionRelease:
		if m.selection.Selection.Active {
			m.selection.Extend(line, col)
			m.selection.Finish()
			m.viewport.SetContent(m.renderContent())
		}
	}

	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Copy when text is selected
	if selection.IsCopyKey(msg.String()) && m.selection.HasSelection() {
		_ = m.selection.CopyToClipboard()
		m.selection.Clear()
		m.viewport.SetContent(m.renderContent())
		return nil
	}

	if msg.String() == "ctrl+a" && m.content != "" {
		m.updateSelectionContent()
		m.selection.SelectAll()
		m.viewport.SetContent(m.renderContent())
		return nil
	}

	if msg.Type == tea.KeyEscape && m.selection.HasSelection() {
		m.selection.Clear()
		m.viewport.SetContent(m.renderContent())
		return nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	// Escape clears the previous search highlights
	if msg.Type == tea.KeyEscape && len(m.matchLines) > 0 {
		m.clearSearch()
		m.viewport.SetContent(m.renderContent())
		return nil
	}

	switch msg.String() {
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return textinput.Blink

	case "n":
		if len(m.matchLines) > 0 {
			m.currentMatch = (m.currentMatch + 1) % len(m.matchLines)
			m.scrollToCurrentMatch()
			m.viewport.SetContent(m.renderContent())
			return nil
		}

	case "p":
		if len(m.matchLines) > 0 {
			m.currentMatch--
			if m.currentMatch < 0 {
				m.currentMatch = len(m.matchLines) - 1
			}
			m.scrollToCurrentMatch()
			m.viewport.SetContent(m.renderContent())
			return nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEscape:
		// Close the input, keep existing highlights
		m.searching = false
		m.searchInput.Blur()
		return nil

	case tea.KeyEnter:
		query := m.searchInput.Value()
		if query != m.searchQuery {
			m.performSearch(query)
		} else if len(m.matchLines) > 0 {
			m.currentMatch = (m.currentMatch + 1) % len(m.matchLines)
			m.scrollToCurrentMatch()
		}
		m.searching = false
		m.searchInput.Blur()
		m.viewport.SetContent(m.renderContent())
		return nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return cmd
}

// View renders the viewer, with the search bar below when active.
func (m *Model) View() string {
	if !m.ready || (m.path == "" && m.content == "" && m.err == nil) {
		return m.renderPlaceholder()
	}

	if m.searching {
		w, h := m.Size()

		oldHeight := m.viewport.Height
		m.viewport.Height = h - 1
		content := m.viewport.View()
		m.viewport.Height = oldHeight

		return lipgloss.JoinVertical(lipgloss.Left, content, m.renderSearchBar(w))
	}

	return m.viewport.View()
}

func (m *Model) renderPlaceholder() string {
	w, h := m.Size()
	style := lipgloss.NewStyle().
		Width(w).
		Height(h).
		Foreground(theme.TextMuted).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render("Select a file to view its contents")
}

func renderError(err error) string {
	return theme.TextH2.Foreground(theme.ColorError).Render("Error: " + err.Error())
}

func (m *Model) renderContent() string {
	if m.content == "" {
		return theme.TextMutedStyle.Italic(true).Render("(empty file)")
	}

	highlighted := m.highlightSyntax()

	matchSet := make(map[int]bool)
	for _, ln := range m.matchLines {
		matchSet[ln] = true
	}
	currentMatchLine := -1
	if m.currentMatch >= 0 && m.currentMatch < len(m.matchLines) {
		currentMatchLine = m.matchLines[m.currentMatch]
	}

	hasSelection := m.selection.HasVisibleSelection()

	rawLines := strings.Split(m.content, "\n")
	highlightedLines := strings.Split(highlighted, "\n")

	var result strings.Builder

	lineNumStyle := theme.DiffLineNumberStyle
	sepStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	matchLineNumStyle := lipgloss.NewStyle().Foreground(theme.ColorWarning).Bold(true)
	currentMatchLineNumStyle := lipgloss.NewStyle().Foreground(theme.ColorSuccess).Bold(true)

	for i := 0; i < len(highlightedLines); i++ {
		var lineNum string
		var lineContent string
		sep := sepStyle.Render(" │ ")

		switch {
		case i == currentMatchLine:
			lineNum = currentMatchLineNumStyle.Render(fmt.Sprintf("%4d", i+1))
			sep = currentMatchLineNumStyle.Render(" │ ")
			lineContent = m.highlightMatchesInLine(rawLine(rawLines, highlightedLines, i), true)

		case matchSet[i]:
			lineNum = matchLineNumStyle.Render(fmt.Sprintf("%4d", i+1))
			sep = matchLineNumStyle.Render(" │ ")
			lineContent = m.highlightMatchesInLine(rawLine(rawLines, highlightedLines, i), false)

		case hasSelection && i < len(rawLines) && lineIntersectsSelection(&m.selection, i):
			// Selected lines render from the raw text so the highlight
			// range stays byte-accurate
			lineNum = lineNumStyle.Render(fmt.Sprintf("%4d", i+1))
			lineContent = selection.RenderWithSelection(rawLines[i], i, &m.selection, 0)

		default:
			lineNum = lineNumStyle.Render(fmt.Sprintf("%4d", i+1))
			lineContent = highlightedLines[i]
		}

		result.WriteString(lineNum)
		result.WriteString(sep)
		result.WriteString(lineContent)
		if i < len(highlightedLines)-1 {
			result.WriteString("\n")
		}
	}

	return result.String()
}

func rawLine(raw, highlighted []string, i int) string {
	if i < len(raw) {
		return raw[i]
	}
	return highlighted[i]
}

// lineIntersectsSelection reports whether any part of the line falls
// inside the selection range.
func lineIntersectsSelection(sel *selection.Model, line int) bool {
	s := sel.Selection
	lo, hi := s.Start.Line, s.End.Line
	if lo > hi {
		lo, hi = hi, lo
	}
	return line >= lo && line <= hi
}

// highlightMatchesInLine highlights all regex matches within a line.
func (m *Model) highlightMatchesInLine(line string, isCurrent bool) string {
	if m.searchRegex == nil {
		return line
	}

	matches := m.searchRegex.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return line
	}

	bg := theme.ColorWarning
	if isCurrent {
		bg = theme.ColorSuccess
	}
	matchStyle := lipgloss.NewStyle().
		Background(bg).
		Foreground(lipgloss.Color("0"))

	var result strings.Builder
	lastEnd := 0

	for _, match := range matches {
		start, end := match[0], match[1]
		if start > lastEnd {
			result.WriteString(line[lastEnd:start])
		}
		result.WriteString(matchStyle.Render(line[start:end]))
		lastEnd = end
	}
	if lastEnd < len(line) {
		result.WriteString(line[lastEnd:])
	}

	return result.String()
}

// highlightSyntax returns the content with terminal syntax colors.
func (m *Model) highlightSyntax() string {
	var lexer chroma.Lexer
	if m.path != "" {
		lexer = lexers.Match(filepath.Base(m.path))
	}
	if lexer == nil {
		lexer = lexers.Analyse(m.content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, m.content)
	if err != nil {
		return m.content
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return m.content
	}

	return buf.String()
}

// LoadFile loads a file into the viewer.
func LoadFile(path string) tea.Cmd {
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return FileLoadedMsg{Path: path, Err: err}
		}
		return FileLoadedMsg{Path: path, Content: string(content)}
	}
}

// SetContent sets the content directly (for non-file content).
func (m *Model) SetContent(content string) {
	m.content = content
	m.path = ""
	m.err = nil
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Path returns the current file path.
func (m *Model) Path() string {
	return m.path
}

// Content returns the current content.
func (m *Model) Content() string {
	return m.content
}

// Clear clears the viewer.
func (m *Model) Clear() {
	m.path = ""
	m.content = ""
	m.err = nil
	m.selection.Clear()
	m.clearSearch()
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

	if m.content != "" {
		m.viewport.SetContent(m.renderContent())
	}
}

// ScrollPercent returns the scroll position as a percentage (0-100).
func (m *Model) ScrollPercent() float64 {
	return m.viewport.ScrollPercent() * 100
}

// IsSearching returns whether the viewer is in search mode.
func (m *Model) IsSearching() bool {
	return m.searching
}

// HasActiveSearch returns whether a search query is applied (for n/p
// navigation).
func (m *Model) HasActiveSearch() bool {
	return m.searchQuery != ""
}

// renderSearchBar renders the search input bar.
func (m *Model) renderSearchBar(width int) string {
	prefix := lipgloss.NewStyle().
		Foreground(theme.ColorAccent).
		Bold(true).
		Render("/")

	var matchInfo string
	if m.searchQuery != "" {
		if len(m.matchLines) == 0 {
			matchInfo = lipgloss.NewStyle().
				Foreground(theme.ColorError).
				Render(" [no matches]")
		} else {
			matchInfo = lipgloss.NewStyle().
				Foreground(theme.ColorSuccess).
				Render(" [" + strconv.Itoa(m.currentMatch+1) + "/" + strconv.Itoa(len(m.matchLines)) + "]")
		}
	}

	bar := prefix + m.searchInput.View() + matchInfo
	style := lipgloss.NewStyle().
		Background(theme.BgStrip).
		Width(width)

	return style.Render(bar)
}

// performSearch searches for the regex pattern in the content.
func (m *Model) performSearch(query string) {
	m.searchQuery = query
	m.matchLines = nil
	m.currentMatch = -1
	m.searchRegex = nil

	if query == "" {
		return
	}

	// Case-insensitive regex, falling back to a literal match when the
	// pattern does not compile
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		re, err = regexp.Compile(regexp.QuoteMeta(query))
		if err != nil {
			return
		}
	}
	m.searchRegex = re

	lines := strings.Split(m.content, "\n")
	for i, line := range lines {
		if re.MatchString(line) {
			m.matchLines = append(m.matchLines, i)
		}
	}

	if len(m.matchLines) > 0 {
		m.currentMatch = 0
		m.scrollToCurrentMatch()
	}
}

// scrollToCurrentMatch scrolls the viewport to center the current match.
func (m *Model) scrollToCurrentMatch() {
	if m.currentMatch < 0 || m.currentMatch >= len(m.matchLines) {
		return
	}

	targetLine := m.matchLines[m.currentMatch] - m.viewport.Height/2
	if targetLine < 0 {
		targetLine = 0
	}
	m.viewport.SetYOffset(targetLine)
}

// clearSearch clears the search state.
func (m *Model) clearSearch() {
	m.searching = false
	m.searchQuery = ""
	m.searchRegex = nil
	m.matchLines = nil
	m.currentMatch = -1
	m.searchInput.SetValue("")
	m.searchInput.Blur()
}

// textPosition converts component-local screen coordinates to a text
// line and column, accounting for scroll offset and the line-number
// gutter.
func (m *Model) textPosition(x, y int) (line, col int) {
	line = y + m.viewport.YOffset
	if line < 0 {
		line = 0
	}

	col = x - lineNumberWidth
	if col < 0 {
		col = 0
	}

	return line, col
}

// updateSelectionContent mirrors the current content into the selection
// model so extraction matches what is on screen.
func (m *Model) updateSelectionContent() {
	if m.content == "" {
		m.selection.SetContent(nil)
		return
	}
	m.selection.SetContent(strings.Split(m.content, "\n"))
}

// HasSelection returns true if there is an active text selection.
func (m *Model) HasSelection() bool {
	return m.selection.HasSelection()
}

// SelectedText returns the currently selected text.
func (m *Model) SelectedText() string {
	return m.selection.Text()
}
