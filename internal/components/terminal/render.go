package terminal

import (
	"fmt"
	"strings"

	"github.com/hinshun/vt10x"
)

// renderVT renders the virtual terminal screen. Consecutive cells sharing a
// style are batched into one escape sequence to keep redraws cheap.
func (m *Model) renderVT() string {
	if m.vt == nil {
		return ""
	}

	m.vt.Lock()
	defer m.vt.Unlock()

	cols, rows := m.vt.Size()
	if cols <= 0 || rows <= 0 {
		return ""
	}

	if m.scrollOffset > 0 && len(m.scrollback) > 0 {
		return m.renderWithScrollback(cols, rows)
	}

	return m.renderLiveScreen(cols, rows)
}

func (m *Model) renderLiveScreen(cols, rows int) string {
	cursor := m.vt.Cursor()
	cursorVisible := m.vt.CursorVisible() && m.Focused()
	hasSelection := m.selection.Selection.Active || m.selection.Selection.Complete

	var result strings.Builder
	result.Grow(rows * cols * 2)

	for row := 0; row < rows; row++ {
		if row > 0 {
			result.WriteByte('\n')
		}

		var currentFG, currentBG vt10x.Color
		var currentMode int16
		var currentCursor, currentSelected bool
		var batch strings.Builder
		firstCell := true

		flush := func() {
			if batch.Len() == 0 {
				return
			}
			result.WriteString(buildANSI(currentFG, currentBG, currentMode, currentCursor, currentSelected))
			result.WriteString(batch.String())
			result.WriteString("\x1b[0m")
			batch.Reset()
		}

		for col := 0; col < cols; col++ {
			glyph := m.vt.Cell(col, row)
			ch := glyph.Char
			if ch == 0 {
				ch = ' '
			}

			isCursor := cursorVisible && col == cursor.X && row == cursor.Y
			isSelected := hasSelection && m.selection.IsSelected(row, col)

			if !firstCell && (glyph.FG != currentFG || glyph.BG != currentBG ||
				glyph.Mode != currentMode || isCursor != currentCursor || isSelected != currentSelected) {
				flush()
			}

			currentFG = glyph.FG
			currentBG = glyph.BG
			currentMode = glyph.Mode
			currentCursor = isCursor
			currentSelected = isSelected
			firstCell = false

			batch.WriteRune(ch)
		}
		flush()
	}

	return result.String()
}

// renderWithScrollback shows history lines above whatever fits of the live
// screen.
func (m *Model) renderWithScrollback(cols, rows int) string {
	var lines []string

	start := len(m.scrollback) - m.scrollOffset
	if start < 0 {
		start = 0
	}

	for i := start; i < len(m.scrollback) && len(lines) < rows; i++ {
		lines = append(lines, m.scrollback[i])
	}

	if len(lines) < rows {
		screenRows := rows - len(lines)
		for row := 0; row < screenRows; row++ {
			lines = append(lines, m.renderScreenLine(cols, row))
		}
	}

	for len(lines) < rows {
		lines = append(lines, strings.Repeat(" ", cols))
	}

	return strings.Join(lines, "\n")
}

// renderScreenLine renders a single line from the vt screen with styling
// but without cursor or selection marks.
func (m *Model) renderScreenLine(cols, row int) string {
	var result strings.Builder
	var currentFG, currentBG vt10x.Color
	var currentMode int16
	var batch strings.Builder
	firstCell := true

	flush := func() {
		if batch.Len() == 0 {
			return
		}
		result.WriteString(buildANSI(currentFG, currentBG, currentMode, false, false))
		result.WriteString(batch.String())
		result.WriteString("\x1b[0m")
		batch.Reset()
	}

	for col := 0; col < cols; col++ {
		glyph := m.vt.Cell(col, row)
		ch := glyph.Char
		if ch == 0 {
			ch = ' '
		}

		if !firstCell && (glyph.FG != currentFG || glyph.BG != currentBG || glyph.Mode != currentMode) {
			flush()
		}

		currentFG = glyph.FG
		currentBG = glyph.BG
		currentMode = glyph.Mode
		firstCell = false

		batch.WriteRune(ch)
	}
	flush()

	return result.String()
}

// screenLinePlain returns a screen line without styling, trimmed of
// trailing blanks, for scroll detection and selection.
func (m *Model) screenLinePlain(cols, row int) string {
	var result strings.Builder
	for col := 0; col < cols; col++ {
		ch := m.vt.Cell(col, row).Char
		if ch == 0 {
			ch = ' '
		}
		result.WriteRune(ch)
	}
	return strings.TrimRight(result.String(), " ")
}

// buildANSI builds the escape sequence for a cell style. Cursor and
// selection overrides win over the cell's own attributes.
func buildANSI(fg, bg vt10x.Color, mode int16, isCursor, isSelected bool) string {
	var codes []string

	if isCursor || isSelected {
		codes = append(codes, "7")
	} else {
		if mode&0x01 != 0 {
			codes = append(codes, "7")
		}
		if mode&0x02 != 0 {
			codes = append(codes, "4")
		}
		if mode&0x04 != 0 {
			codes = append(codes, "1")
		}
		if mode&0x10 != 0 {
			codes = append(codes, "3")
		}
		if fgCode := colorToANSI(fg, true); fgCode != "" {
			codes = append(codes, fgCode)
		}
		if bgCode := colorToANSI(bg, false); bgCode != "" {
			codes = append(codes, bgCode)
		}
	}

	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

// colorToANSI converts a vt10x color to an SGR fragment. Values at or above
// 0x01000000 are the terminal defaults and map to no code at all.
func colorToANSI(c vt10x.Color, isFG bool) string {
	if c >= 0x01000000 {
		return ""
	}

	base := 38
	if !isFG {
		base = 48
	}

	if c < 256 {
		return fmt.Sprintf("%d;5;%d", base, c)
	}

	r := (c >> 16) & 0xFF
	g := (c >> 8) & 0xFF
	b := c & 0xFF
	return fmt.Sprintf("%d;2;%d;%d;%d", base, r, g, b)
}

// stripANSI removes escape sequences from a rendered scrollback line.
func stripANSI(s string) string {
	var result strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && !((s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z')) {
				i++
			}
			if i < len(s) {
				i++
			}
		} else {
			result.WriteByte(s[i])
			i++
		}
	}
	return result.String()
}
