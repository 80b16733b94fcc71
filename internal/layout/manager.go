package layout

import (
	"fmt"
	"sync"
)

// Hooks connects a Manager to its collaborators. Every field is optional; a
// nil hook is skipped.
type Hooks struct {
	// Announce publishes a screen-reader announcement.
	Announce func(message string)
	// OnChange receives a state snapshot after every mutation. The app uses
	// it to persist settings locally.
	OnChange func(State)
	// RequestSync asks for a debounced remote sync of preferences.
	RequestSync func()
}

// Manager owns the sidebar layout state. All mutations go through its
// methods, which keep the height-sum and panel-uniqueness invariants intact
// and fire the configured hooks. Invalid input (unknown panel, out-of-range
// index, no-op moves) is silently ignored; no operation can fail.
//
// Safe for concurrent use: hooks and the sync debouncer read snapshots from
// goroutines outside the UI loop.
type Manager struct {
	mu    sync.RWMutex
	state State
	hooks Hooks
}

// NewManager creates a manager starting from initial, which is sanitized so
// the invariants hold from the first read.
func NewManager(initial State, hooks Hooks) *Manager {
	return &Manager{state: Sanitize(initial), hooks: hooks}
}

// State returns a deep snapshot of the current layout.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// SidebarFor returns a snapshot of one side's config.
func (m *Manager) SidebarFor(side Side) Sidebar {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sb := *m.state.sidebar(side)
	sb.Panels = append([]Slot(nil), sb.Panels...)
	return sb
}

// Collapsed reports whether side is collapsed.
func (m *Manager) Collapsed(side Side) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.sidebar(side).Collapsed
}

// PanelSide reports which side currently holds id.
func (m *Manager) PanelSide(id PanelID) (Side, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.panelSide(id)
}

// ToggleSidebar flips the collapsed flag for side and announces the result.
func (m *Manager) ToggleSidebar(side Side) {
	m.mu.Lock()
	sb := m.state.sidebar(side)
	sb.Collapsed = !sb.Collapsed
	collapsed := sb.Collapsed
	snap := m.state.Clone()
	m.mu.Unlock()

	if collapsed {
		m.announce(side.Title() + " sidebar collapsed")
	} else {
		m.announce(side.Title() + " sidebar expanded")
	}
	m.emit(snap)
}

// SetSidebarCollapsed sets the collapsed flag directly. Idempotent, and
// unlike ToggleSidebar it does not announce.
func (m *Manager) SetSidebarCollapsed(side Side, collapsed bool) {
	m.mu.Lock()
	m.state.sidebar(side).Collapsed = collapsed
	snap := m.state.Clone()
	m.mu.Unlock()

	m.emit(snap)
}

// SetSidebarWidth stores width for side, clamped to
// [MinSidebarWidth, MaxSidebarWidth].
func (m *Manager) SetSidebarWidth(side Side, width int) {
	m.mu.Lock()
	m.state.sidebar(side).Width = clampWidth(width)
	snap := m.state.Clone()
	m.mu.Unlock()

	m.emit(snap)
}

// SetPanelHeight assigns height to the slot at index on side, clamped to
// [MinPanelHeight, MaxPanelHeight], then renormalizes that side. Out-of-range
// indices are ignored.
func (m *Manager) SetPanelHeight(side Side, index int, height float64) {
	m.mu.Lock()
	sb := m.state.sidebar(side)
	if index < 0 || index >= len(sb.Panels) {
		m.mu.Unlock()
		return
	}
	sb.Panels[index].Height = clampHeight(height)
	normalizeHeights(sb.Panels)
	snap := m.state.Clone()
	m.mu.Unlock()

	m.emit(snap)
}

// MovePanel relocates id to toSide, appending it at the bottom of the stack.
// A panel already on toSide, or one docked on neither side, leaves the state
// untouched.
func (m *Manager) MovePanel(id PanelID, toSide Side) {
	m.mu.Lock()
	from, ok := m.state.panelSide(id)
	if !ok || from == toSide {
		m.mu.Unlock()
		return
	}

	src := m.state.sidebar(from)
	dst := m.state.sidebar(toSide)
	src.Panels, _ = removeSlot(src.Panels, id)
	dst.Panels = append(dst.Panels, Slot{Panel: id, Height: 100})
	normalizeHeights(src.Panels)
	normalizeHeights(dst.Panels)
	snap := m.state.Clone()
	m.mu.Unlock()

	m.announce(fmt.Sprintf("%s moved to %s sidebar", id, toSide))
	m.emit(snap)
}

// RemovePanel closes id on whichever side holds it. Unknown panels are a
// no-op.
func (m *Manager) RemovePanel(id PanelID) {
	m.mu.Lock()
	side, ok := m.state.panelSide(id)
	if !ok {
		m.mu.Unlock()
		return
	}

	sb := m.state.sidebar(side)
	sb.Panels, _ = removeSlot(sb.Panels, id)
	normalizeHeights(sb.Panels)
	snap := m.state.Clone()
	m.mu.Unlock()

	m.announce(fmt.Sprintf("%s panel closed", id))
	m.emit(snap)
}

// AddPanel docks id at the bottom of side, removing any existing placement
// first so the panel exists exactly once. The target side is uncollapsed so
// the new panel is visible; the other side's collapsed flag is untouched.
func (m *Manager) AddPanel(id PanelID, side Side) {
	m.mu.Lock()
	m.state.Left.Panels, _ = removeSlot(m.state.Left.Panels, id)
	m.state.Right.Panels, _ = removeSlot(m.state.Right.Panels, id)

	target := m.state.sidebar(side)
	target.Panels = append(target.Panels, Slot{Panel: id, Height: 100})
	normalizeHeights(m.state.Left.Panels)
	normalizeHeights(m.state.Right.Panels)
	target.Collapsed = false
	snap := m.state.Clone()
	m.mu.Unlock()

	m.announce(fmt.Sprintf("%s added to %s sidebar", id, side))
	m.emit(snap)
}

// Reset replaces the layout with DefaultState.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.state = DefaultState()
	snap := m.state.Clone()
	m.mu.Unlock()

	m.announce("Sidebar layout reset to default")
	m.emit(snap)
}

// Replace adopts st (sanitized) as the new layout, e.g. when the settings
// file changes on disk or a remote snapshot arrives. Fires OnChange but not
// RequestSync, so adopted state is never echoed back to the server.
func (m *Manager) Replace(st State) {
	m.mu.Lock()
	m.state = Sanitize(st)
	snap := m.state.Clone()
	m.mu.Unlock()

	if m.hooks.OnChange != nil {
		m.hooks.OnChange(snap)
	}
}

func (m *Manager) announce(message string) {
	if m.hooks.Announce != nil {
		m.hooks.Announce(message)
	}
}

// emit runs the change and sync hooks. Every mutating operation syncs,
// including the structural ones, so the remote copy never drifts from the
// local file.
func (m *Manager) emit(snap State) {
	if m.hooks.OnChange != nil {
		m.hooks.OnChange(snap)
	}
	if m.hooks.RequestSync != nil {
		m.hooks.RequestSync()
	}
}
