package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		height    int
		mutate    func(*State)
		view      ViewState
		wantLeft  int
		wantRight int
		wantTerm  int
	}{
		{
			name:   "default layout on a wide terminal",
			width:  200,
			height: 50,
			// 280px of 1440 -> 38 cols; 360px -> 50 cols.
			wantLeft:  38,
			wantRight: 50,
		},
		{
			name:   "collapsed left sidebar gets no columns",
			width:  200,
			height: 50,
			mutate: func(st *State) {
				st.Left.Collapsed = true
			},
			wantLeft:  0,
			wantRight: 50,
		},
		{
			name:   "empty sidebar gets no columns",
			width:  200,
			height: 50,
			mutate: func(st *State) {
				st.Right.Panels = nil
			},
			wantLeft:  38,
			wantRight: 0,
		},
		{
			name:   "narrow terminal respects sidebar minimum",
			width:  80,
			height: 30,
			// 280*80/1440 = 15, below the 20 column floor.
			wantLeft:  20,
			wantRight: 20,
		},
		{
			name:   "terminal strip carves rows out of the main band",
			width:  200,
			height: 50,
			view:   ViewState{TerminalVisible: true, TerminalHeight: 240},
			// 240px of 900 over 49 main rows -> 13 rows.
			wantLeft:  38,
			wantRight: 50,
			wantTerm:  13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultState()
			if tt.mutate != nil {
				tt.mutate(&st)
			}

			g := Calculate(tt.width, tt.height, st, tt.view)

			assert.Equal(t, tt.width, g.TotalWidth)
			assert.Equal(t, tt.height, g.TotalHeight)
			assert.Equal(t, tt.wantLeft, g.LeftCols, "LeftCols")
			assert.Equal(t, tt.wantRight, g.RightCols, "RightCols")
			assert.Equal(t, tt.wantTerm, g.TerminalRows, "TerminalRows")
			assert.Equal(t, tt.width, g.LeftCols+g.CenterCols+g.RightCols, "columns must cover the terminal")
			assert.Equal(t, tt.height, g.MainRows+g.TerminalRows+g.PanelRows+g.StatusRows, "rows must cover the terminal")
			assert.Equal(t, StatusBarHeight, g.StatusRows)
		})
	}
}

func TestCalculateFocusMode(t *testing.T) {
	g := Calculate(120, 40, DefaultState(), ViewState{
		FocusMode:       true,
		TerminalVisible: true,
		TerminalHeight:  240,
		PanelVisible:    true,
		PanelHeight:     200,
	})

	assert.Zero(t, g.LeftCols)
	assert.Zero(t, g.RightCols)
	assert.Equal(t, 120, g.CenterCols)
	assert.Zero(t, g.TerminalRows)
	assert.Zero(t, g.PanelRows)
	assert.Equal(t, 39, g.MainRows)
}

func TestSlotRows(t *testing.T) {
	t.Run("exact split with remainder to last", func(t *testing.T) {
		sb := Sidebar{Panels: []Slot{
			{Panel: PanelFiles, Height: 50},
			{Panel: PanelGit, Height: 50},
		}}

		rows := SlotRows(sb, 31)

		assert.Equal(t, []int{15, 16}, rows)
	})

	t.Run("proportional to weights", func(t *testing.T) {
		sb := Sidebar{Panels: []Slot{
			{Panel: PanelAgents, Height: 60},
			{Panel: PanelMCP, Height: 40},
		}}

		rows := SlotRows(sb, 40)

		assert.Equal(t, []int{24, 16}, rows)
	})

	t.Run("empty sidebar", func(t *testing.T) {
		assert.Nil(t, SlotRows(Sidebar{}, 40))
	})

	t.Run("no rows", func(t *testing.T) {
		sb := Sidebar{Panels: []Slot{{Panel: PanelFiles, Height: 100}}}
		assert.Nil(t, SlotRows(sb, 0))
	})

	t.Run("more panels than rows never goes negative", func(t *testing.T) {
		sb := Sidebar{Panels: []Slot{
			{Panel: PanelFiles, Height: 25},
			{Panel: PanelGit, Height: 25},
			{Panel: PanelSearch, Height: 25},
			{Panel: PanelSkills, Height: 25},
		}}

		rows := SlotRows(sb, 2)

		total := 0
		for _, r := range rows {
			assert.GreaterOrEqual(t, r, 0)
			total += r
		}
		assert.GreaterOrEqual(t, total, 2)
	})
}

func TestWidthForCols(t *testing.T) {
	// Dragging the divider to the rendered default width should land back on
	// a pixel value that renders the same number of columns.
	st := DefaultState()
	g := Calculate(200, 50, st, ViewState{})

	px := WidthForCols(g.LeftCols, 200)
	assert.Equal(t, g.LeftCols, colsForWidth(px, 200))

	assert.Equal(t, MinSidebarWidth, WidthForCols(1, 200))
	assert.Equal(t, MaxSidebarWidth, WidthForCols(199, 200))
	assert.Equal(t, MinSidebarWidth, WidthForCols(30, 0))
}
