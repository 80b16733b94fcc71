// Package layout owns the sidebar panel layout: which panels are docked on
// which side, their stacking order and relative height weights, and each
// sidebar's collapsed flag and pixel width. Pixel values are shared with the
// Podex web client through the synced ui_preferences record; geometry.go maps
// them onto the terminal grid.
package layout

// Side identifies one of the two fixed docking regions.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Title returns the capitalized side name for announcements.
func (s Side) Title() string {
	switch s {
	case SideLeft:
		return "Left"
	case SideRight:
		return "Right"
	}
	return string(s)
}

// PanelID names a dockable panel.
type PanelID string

const (
	PanelAgents     PanelID = "agents"
	PanelFiles      PanelID = "files"
	PanelGit        PanelID = "git"
	PanelGitHub     PanelID = "github"
	PanelPreview    PanelID = "preview"
	PanelMCP        PanelID = "mcp"
	PanelExtensions PanelID = "extensions"
	PanelSearch     PanelID = "search"
	PanelProblems   PanelID = "problems"
	PanelUsage      PanelID = "usage"
	PanelSentry     PanelID = "sentry"
	PanelSkills     PanelID = "skills"
)

// KnownPanels returns every dockable panel id, in picker order.
func KnownPanels() []PanelID {
	return []PanelID{
		PanelAgents,
		PanelFiles,
		PanelGit,
		PanelGitHub,
		PanelPreview,
		PanelMCP,
		PanelExtensions,
		PanelSearch,
		PanelProblems,
		PanelUsage,
		PanelSentry,
		PanelSkills,
	}
}

// IsValid reports whether id is one of the known panels.
func (id PanelID) IsValid() bool {
	for _, known := range KnownPanels() {
		if id == known {
			return true
		}
	}
	return false
}

// Sizing limits. Widths are pixels, heights are relative weights.
const (
	MinSidebarWidth = 200
	MaxSidebarWidth = 500
	MinPanelHeight  = 10
	MaxPanelHeight  = 90
)

// Slot records a panel's placement in a sidebar together with its relative
// height weight. The weights of a sidebar's slots are kept normalized so they
// sum to 100.
type Slot struct {
	Panel  PanelID `json:"panelId"`
	Height float64 `json:"height"`
}

// Sidebar is one docking region: collapsed flag, pixel width, and the ordered
// panel stack. Order determines vertical stacking.
type Sidebar struct {
	Collapsed bool   `json:"collapsed"`
	Width     int    `json:"width"`
	Panels    []Slot `json:"panels"`
}

// State is the full two-sided layout.
type State struct {
	Left  Sidebar `json:"left"`
	Right Sidebar `json:"right"`
}

// DefaultState returns the layout used on first run and after a reset.
func DefaultState() State {
	return State{
		Left: Sidebar{
			Collapsed: false,
			Width:     280,
			Panels: []Slot{
				{Panel: PanelFiles, Height: 50},
				{Panel: PanelGit, Height: 50},
			},
		},
		Right: Sidebar{
			Collapsed: false,
			Width:     360,
			Panels: []Slot{
				{Panel: PanelAgents, Height: 60},
				{Panel: PanelMCP, Height: 40},
			},
		},
	}
}

// Clone returns a deep copy of the state.
func (st State) Clone() State {
	out := st
	if st.Left.Panels != nil {
		out.Left.Panels = append([]Slot(nil), st.Left.Panels...)
	}
	if st.Right.Panels != nil {
		out.Right.Panels = append([]Slot(nil), st.Right.Panels...)
	}
	return out
}

// sidebar returns the config for side; unknown values map to left.
func (st *State) sidebar(side Side) *Sidebar {
	if side == SideRight {
		return &st.Right
	}
	return &st.Left
}

// panelSide reports which side holds id, searching left before right.
func (st *State) panelSide(id PanelID) (Side, bool) {
	if slotIndex(st.Left.Panels, id) >= 0 {
		return SideLeft, true
	}
	if slotIndex(st.Right.Panels, id) >= 0 {
		return SideRight, true
	}
	return "", false
}

// Sanitize returns a copy of st with the layout invariants enforced: widths
// clamped, duplicate panel ids dropped (first placement wins, left scanned
// before right), and heights renormalized. Used when adopting state from the
// settings file or a remote snapshot.
func Sanitize(st State) State {
	out := st.Clone()
	out.Left.Width = clampWidth(out.Left.Width)
	out.Right.Width = clampWidth(out.Right.Width)

	seen := make(map[PanelID]struct{})
	out.Left.Panels = dedupSlots(out.Left.Panels, seen)
	out.Right.Panels = dedupSlots(out.Right.Panels, seen)

	normalizeHeights(out.Left.Panels)
	normalizeHeights(out.Right.Panels)
	return out
}

// normalizeHeights rescales slot heights in place so they sum to 100. An
// empty list is left alone; an all-zero list is split evenly.
func normalizeHeights(panels []Slot) {
	if len(panels) == 0 {
		return
	}

	total := 0.0
	for _, p := range panels {
		total += p.Height
	}

	if total == 0 {
		even := 100.0 / float64(len(panels))
		for i := range panels {
			panels[i].Height = even
		}
		return
	}

	for i := range panels {
		panels[i].Height = panels[i].Height / total * 100
	}
}

func slotIndex(panels []Slot, id PanelID) int {
	for i, p := range panels {
		if p.Panel == id {
			return i
		}
	}
	return -1
}

// removeSlot deletes id from panels, preserving order. The second return
// value reports whether anything was removed.
func removeSlot(panels []Slot, id PanelID) ([]Slot, bool) {
	i := slotIndex(panels, id)
	if i < 0 {
		return panels, false
	}
	return append(panels[:i], panels[i+1:]...), true
}

func dedupSlots(panels []Slot, seen map[PanelID]struct{}) []Slot {
	if len(panels) == 0 {
		return panels
	}
	out := panels[:0]
	for _, p := range panels {
		if _, dup := seen[p.Panel]; dup {
			continue
		}
		seen[p.Panel] = struct{}{}
		out = append(out, p)
	}
	return out
}

func clampWidth(w int) int {
	if w < MinSidebarWidth {
		return MinSidebarWidth
	}
	if w > MaxSidebarWidth {
		return MaxSidebarWidth
	}
	return w
}

func clampHeight(h float64) float64 {
	if h < MinPanelHeight {
		return MinPanelHeight
	}
	if h > MaxPanelHeight {
		return MaxPanelHeight
	}
	return h
}
