package layout

// Geometry constants. Stored widths and heights are pixels shared with the
// web client; the reference workspace size anchors the pixel-to-cell scaling.
const (
	ReferenceWidth  = 1440
	ReferenceHeight = 900

	StatusBarHeight = 1

	MinSidebarCols = 20
	MinContentCols = 20
	MinStripRows   = 3
	MinMainRows    = 3

	// MaxSidebarShare caps one sidebar at this share of the terminal width
	// (percent), so two wide sidebars cannot squeeze out the content area.
	MaxSidebarShare = 40
)

// ViewState carries the visibility settings that shape the workbench beyond
// the sidebar layout itself.
type ViewState struct {
	TerminalVisible bool
	TerminalHeight  int // pixels
	PanelVisible    bool
	PanelHeight     int // pixels
	FocusMode       bool
}

// Geometry holds the computed cell arrangement for one terminal size.
type Geometry struct {
	TotalWidth  int
	TotalHeight int

	// Column split of the main row band.
	LeftCols   int
	RightCols  int
	CenterCols int

	// Row bands from top to bottom: main, terminal strip, bottom panel,
	// status bar.
	MainRows     int
	TerminalRows int
	PanelRows    int
	StatusRows   int
}

// Calculate maps the pixel-valued layout state onto a terminal grid. Focus
// mode hides both sidebars and the bottom surfaces. A collapsed or empty
// sidebar gets zero columns.
func Calculate(width, height int, st State, view ViewState) Geometry {
	g := Geometry{
		TotalWidth:  width,
		TotalHeight: height,
		StatusRows:  StatusBarHeight,
	}

	rows := height - g.StatusRows
	if rows < 0 {
		rows = 0
	}

	if view.FocusMode {
		g.CenterCols = width
		g.MainRows = rows
		return g
	}

	if sidebarVisible(st.Left) {
		g.LeftCols = colsForWidth(st.Left.Width, width)
	}
	if sidebarVisible(st.Right) {
		g.RightCols = colsForWidth(st.Right.Width, width)
	}

	// Content area gets whatever remains; shave the sidebars when the
	// terminal is too narrow for all three bands.
	g.CenterCols = width - g.LeftCols - g.RightCols
	for g.CenterCols < MinContentCols && (g.LeftCols > MinSidebarCols || g.RightCols > MinSidebarCols) {
		if g.LeftCols >= g.RightCols && g.LeftCols > MinSidebarCols {
			g.LeftCols--
		} else if g.RightCols > MinSidebarCols {
			g.RightCols--
		}
		g.CenterCols = width - g.LeftCols - g.RightCols
	}
	if g.CenterCols < 0 {
		g.CenterCols = 0
	}

	if view.TerminalVisible {
		g.TerminalRows = rowsForHeight(view.TerminalHeight, rows)
	}
	if view.PanelVisible {
		g.PanelRows = rowsForHeight(view.PanelHeight, rows)
	}

	// Keep a usable main band even on short terminals.
	for g.MainRows = rows - g.TerminalRows - g.PanelRows; g.MainRows < MinMainRows; g.MainRows = rows - g.TerminalRows - g.PanelRows {
		if g.TerminalRows > MinStripRows {
			g.TerminalRows--
		} else if g.PanelRows > MinStripRows {
			g.PanelRows--
		} else {
			break
		}
	}
	if g.MainRows < 0 {
		g.MainRows = 0
	}

	return g
}

// SlotRows distributes rows across a sidebar's slots proportionally to their
// normalized heights. The remainder goes to the last slot so the total is
// exact.
func SlotRows(sb Sidebar, rows int) []int {
	if len(sb.Panels) == 0 || rows <= 0 {
		return nil
	}

	out := make([]int, len(sb.Panels))
	used := 0
	for i, slot := range sb.Panels {
		if i == len(sb.Panels)-1 {
			break
		}
		r := int(float64(rows) * slot.Height / 100.0)
		if r < 1 {
			r = 1
		}
		out[i] = r
		used += r
	}
	last := rows - used
	if last < 0 {
		last = 0
	}
	out[len(out)-1] = last
	return out
}

func sidebarVisible(sb Sidebar) bool {
	return !sb.Collapsed && len(sb.Panels) > 0
}

// colsForWidth scales a pixel width to columns against the reference
// workspace width, clamped to the sidebar column bounds.
func colsForWidth(px, termWidth int) int {
	cols := px * termWidth / ReferenceWidth
	if cols < MinSidebarCols {
		cols = MinSidebarCols
	}
	if maxCols := termWidth * MaxSidebarShare / 100; cols > maxCols {
		cols = maxCols
	}
	return cols
}

// rowsForHeight scales a pixel height to rows against the reference
// workspace height, clamped to a usable strip size.
func rowsForHeight(px, totalRows int) int {
	r := px * totalRows / ReferenceHeight
	if r < MinStripRows {
		r = MinStripRows
	}
	if maxRows := totalRows / 2; r > maxRows {
		r = maxRows
	}
	return r
}

// WidthForCols converts a rendered column count back to the pixel width that
// produces it, used when the user drags a sidebar divider. Rounds up so the
// cols -> pixels -> cols roundtrip is stable.
func WidthForCols(cols, termWidth int) int {
	if termWidth <= 0 {
		return MinSidebarWidth
	}
	return clampWidth((cols*ReferenceWidth + termWidth - 1) / termWidth)
}
