// Package selection implements mouse-driven text selection for read-only
// views, with clipboard copy.
package selection

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/podexhq/podex/internal/theme"
)

// Position is a character position in the displayed text.
type Position struct {
	Line   int // 0-indexed line
	Column int // 0-indexed column
}

// Selection is a range between an anchor and the current drag position.
type Selection struct {
	Active   bool // drag in progress
	Start    Position
	End      Position
	Complete bool // mouse released
}

// Model holds selection state plus the content it indexes into.
type Model struct {
	Selection Selection
	content   []string
}

// New creates an empty selection model.
func New() Model {
	return Model{}
}

// SetContent sets the lines the selection indexes into.
func (m *Model) SetContent(lines []string) {
	m.content = lines
}

// Start anchors a new selection at the given position.
func (m *Model) Start(line, col int) {
	m.Selection = Selection{
		Active: true,
		Start:  Position{Line: line, Column: col},
		End:    Position{Line: line, Column: col},
	}
}

// Extend moves the selection end during a drag.
func (m *Model) Extend(line, col int) {
	if !m.Selection.Active {
		return
	}
	m.Selection.End = Position{Line: line, Column: col}
}

// Finish marks the selection complete on mouse release.
func (m *Model) Finish() {
	if !m.Selection.Active {
		return
	}
	m.Selection.Complete = true
	m.Selection.Active = false
}

// Clear drops any selection.
func (m *Model) Clear() {
	m.Selection = Selection{}
}

// SelectAll selects the entire content.
func (m *Model) SelectAll() {
	if len(m.content) == 0 {
		return
	}
	last := len(m.content) - 1
	m.Selection = Selection{
		Complete: true,
		Start:    Position{},
		End:      Position{Line: last, Column: len(m.content[last])},
	}
}

// HasSelection reports a completed, non-empty selection.
func (m Model) HasSelection() bool {
	return m.Selection.Complete && m.Selection.Start != m.Selection.End
}

// HasVisibleSelection reports any non-empty selection, in-progress included.
func (m Model) HasVisibleSelection() bool {
	if !m.Selection.Active && !m.Selection.Complete {
		return false
	}
	return m.Selection.Start != m.Selection.End
}

// Text returns the selected text.
func (m Model) Text() string {
	if !m.HasSelection() || len(m.content) == 0 {
		return ""
	}

	start, end := m.normalizeRange()
	if start.Line >= len(m.content) {
		return ""
	}
	if start.Line < 0 {
		start.Line = 0
	}
	if end.Line >= len(m.content) {
		end.Line = len(m.content) - 1
		end.Column = len(m.content[end.Line])
	}

	if start.Line == end.Line {
		line := m.content[start.Line]
		lo := clamp(start.Column, 0, len(line))
		hi := clamp(end.Column, 0, len(line))
		if lo > hi {
			lo, hi = hi, lo
		}
		return line[lo:hi]
	}

	var b strings.Builder

	first := m.content[start.Line]
	b.WriteString(first[clamp(start.Column, 0, len(first)):])
	b.WriteString("\n")

	for i := start.Line + 1; i < end.Line; i++ {
		b.WriteString(m.content[i])
		b.WriteString("\n")
	}

	last := m.content[end.Line]
	b.WriteString(last[:clamp(end.Column, 0, len(last))])

	return b.String()
}

// CopyToClipboard copies the selected text to the system clipboard.
func (m Model) CopyToClipboard() error {
	text := m.Text()
	if text == "" {
		return nil
	}
	return clipboard.WriteAll(text)
}

// IsSelected reports whether the character at (line, col) is inside the
// selection. The end position itself is exclusive.
func (m Model) IsSelected(line, col int) bool {
	if !m.Selection.Complete && !m.Selection.Active {
		return false
	}

	start, end := m.normalizeRange()

	if line < start.Line || (line == start.Line && col < start.Column) {
		return false
	}
	if line > end.Line || (line == end.Line && col >= end.Column) {
		return false
	}
	return true
}

func (m Model) normalizeRange() (Position, Position) {
	start, end := m.Selection.Start, m.Selection.End
	if start.Line > end.Line || (start.Line == end.Line && start.Column > end.Column) {
		start, end = end, start
	}
	return start, end
}

// IsCopyKey reports whether a key should copy the selection. Cmd+C never
// reaches the app on macOS, so ctrl+c (with a selection), vim-style y, and
// ctrl+y all copy.
func IsCopyKey(key string) bool {
	switch key {
	case "ctrl+c", "y", "ctrl+y":
		return true
	default:
		return false
	}
}

// SelectionStyle returns the style for selected text.
func SelectionStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(theme.BgSelection).
		Foreground(theme.TextSelection)
}

// RenderWithSelection renders one line with selection highlighting applied.
// offset accounts for line-number gutters and other prefixes.
func RenderWithSelection(line string, lineNum int, sel *Model, offset int) string {
	if sel == nil || (!sel.Selection.Active && !sel.Selection.Complete) {
		return line
	}

	start, end := sel.normalizeRange()
	if lineNum < start.Line || lineNum > end.Line {
		return line
	}

	selStart := 0
	selEnd := len(line)
	if lineNum == start.Line {
		selStart = start.Column - offset
	}
	if lineNum == end.Line {
		selEnd = end.Column - offset
	}

	selStart = clamp(selStart, 0, len(line))
	selEnd = clamp(selEnd, 0, len(line))
	if selStart >= selEnd {
		return line
	}

	style := SelectionStyle()
	var b strings.Builder
	b.WriteString(line[:selStart])
	b.WriteString(style.Render(line[selStart:selEnd]))
	b.WriteString(line[selEnd:])
	return b.String()
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
