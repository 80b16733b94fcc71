package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures hook activity for assertions.
type recorder struct {
	announcements []string
	changes       int
	syncs         int
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		Announce:    func(msg string) { r.announcements = append(r.announcements, msg) },
		OnChange:    func(State) { r.changes++ },
		RequestSync: func() { r.syncs++ },
	}
}

func newTestManager() (*Manager, *recorder) {
	rec := &recorder{}
	return NewManager(DefaultState(), rec.hooks()), rec
}

func assertInvariants(t *testing.T, st State) {
	t.Helper()

	if len(st.Left.Panels) > 0 {
		assert.InDelta(t, 100, heightSum(st.Left.Panels), 1e-6, "left heights must sum to 100")
	}
	if len(st.Right.Panels) > 0 {
		assert.InDelta(t, 100, heightSum(st.Right.Panels), 1e-6, "right heights must sum to 100")
	}

	seen := make(map[PanelID]int)
	for _, p := range st.Left.Panels {
		seen[p.Panel]++
	}
	for _, p := range st.Right.Panels {
		seen[p.Panel]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "%s docked %d times", id, n)
	}

	assert.GreaterOrEqual(t, st.Left.Width, MinSidebarWidth)
	assert.LessOrEqual(t, st.Left.Width, MaxSidebarWidth)
	assert.GreaterOrEqual(t, st.Right.Width, MinSidebarWidth)
	assert.LessOrEqual(t, st.Right.Width, MaxSidebarWidth)
}

func TestToggleSidebar(t *testing.T) {
	m, rec := newTestManager()

	m.ToggleSidebar(SideLeft)
	assert.True(t, m.Collapsed(SideLeft))
	assert.False(t, m.Collapsed(SideRight))

	m.ToggleSidebar(SideLeft)
	assert.False(t, m.Collapsed(SideLeft))

	assert.Equal(t, []string{"Left sidebar collapsed", "Left sidebar expanded"}, rec.announcements)
	assert.Equal(t, 2, rec.changes)
	assert.Equal(t, 2, rec.syncs)
}

func TestSetSidebarCollapsed(t *testing.T) {
	m, rec := newTestManager()

	m.SetSidebarCollapsed(SideRight, true)
	assert.True(t, m.Collapsed(SideRight))

	// Idempotent, still counts as a change, never announces.
	m.SetSidebarCollapsed(SideRight, true)
	assert.True(t, m.Collapsed(SideRight))
	assert.Empty(t, rec.announcements)
	assert.Equal(t, 2, rec.syncs)
}

func TestSetSidebarWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  int
	}{
		{name: "below minimum clamps up", width: 50, want: 200},
		{name: "above maximum clamps down", width: 9999, want: 500},
		{name: "in range kept", width: 333, want: 333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager()
			m.SetSidebarWidth(SideLeft, tt.width)
			assert.Equal(t, tt.want, m.SidebarFor(SideLeft).Width)
		})
	}
}

func TestSetPanelHeight(t *testing.T) {
	t.Run("resize renormalizes the side", func(t *testing.T) {
		m, _ := newTestManager()

		// files 50 -> 70, total 120, so files 58.33 and git 41.67.
		m.SetPanelHeight(SideLeft, 0, 70)

		left := m.SidebarFor(SideLeft)
		require.Len(t, left.Panels, 2)
		assert.Equal(t, PanelFiles, left.Panels[0].Panel)
		assert.InDelta(t, 58.33, left.Panels[0].Height, 0.01)
		assert.Equal(t, PanelGit, left.Panels[1].Panel)
		assert.InDelta(t, 41.67, left.Panels[1].Height, 0.01)
		assertInvariants(t, m.State())
	})

	t.Run("height clamped before renormalizing", func(t *testing.T) {
		m, _ := newTestManager()

		m.SetPanelHeight(SideRight, 0, 5000)

		right := m.SidebarFor(SideRight)
		// Clamp to 90 first: 90/(90+40)*100.
		assert.InDelta(t, 90.0/130*100, right.Panels[0].Height, 0.01)
		assert.InDelta(t, 40.0/130*100, right.Panels[1].Height, 0.01)
	})

	t.Run("out of range index is a no-op", func(t *testing.T) {
		m, rec := newTestManager()
		before := m.State()

		m.SetPanelHeight(SideLeft, 99, 50)
		m.SetPanelHeight(SideLeft, -1, 50)

		assert.Equal(t, before, m.State())
		assert.Zero(t, rec.changes)
		assert.Zero(t, rec.syncs)
	})
}

func TestMovePanel(t *testing.T) {
	t.Run("moves and renormalizes both sides", func(t *testing.T) {
		m, rec := newTestManager()

		m.MovePanel(PanelGit, SideRight)

		left := m.SidebarFor(SideLeft)
		right := m.SidebarFor(SideRight)
		assert.Equal(t, []PanelID{PanelFiles}, panelIDs(left.Panels))
		assert.Equal(t, []PanelID{PanelAgents, PanelMCP, PanelGit}, panelIDs(right.Panels))
		assert.InDelta(t, 100, left.Panels[0].Height, 1e-6)
		// Appended with weight 100 over a normalized 100: half the side.
		assert.InDelta(t, 50, right.Panels[2].Height, 1e-6)
		assert.Equal(t, []string{"git moved to right sidebar"}, rec.announcements)
		assert.Equal(t, 1, rec.syncs)
		assertInvariants(t, m.State())
	})

	t.Run("same side is a no-op", func(t *testing.T) {
		m, rec := newTestManager()
		before := m.State()

		m.MovePanel(PanelAgents, SideRight)

		assert.Equal(t, before, m.State())
		assert.Empty(t, rec.announcements)
		assert.Zero(t, rec.syncs)
	})

	t.Run("unknown panel is a no-op", func(t *testing.T) {
		m, rec := newTestManager()
		before := m.State()

		m.MovePanel(PanelSentry, SideLeft)

		assert.Equal(t, before, m.State())
		assert.Empty(t, rec.announcements)
	})
}

func TestRemovePanel(t *testing.T) {
	t.Run("removes and renormalizes the remainder", func(t *testing.T) {
		m, rec := newTestManager()

		m.RemovePanel(PanelAgents)

		right := m.SidebarFor(SideRight)
		assert.Equal(t, []PanelID{PanelMCP}, panelIDs(right.Panels))
		assert.InDelta(t, 100, right.Panels[0].Height, 1e-6)
		assert.Equal(t, []string{"agents panel closed"}, rec.announcements)
		assertInvariants(t, m.State())
	})

	t.Run("removing the last panel leaves an empty side", func(t *testing.T) {
		m, _ := newTestManager()

		m.RemovePanel(PanelFiles)
		m.RemovePanel(PanelGit)

		assert.Empty(t, m.SidebarFor(SideLeft).Panels)
		assertInvariants(t, m.State())
	})

	t.Run("unknown panel is a no-op", func(t *testing.T) {
		m, rec := newTestManager()
		before := m.State()

		m.RemovePanel(PanelUsage)

		assert.Equal(t, before, m.State())
		assert.Empty(t, rec.announcements)
		assert.Zero(t, rec.syncs)
	})
}

func TestAddPanel(t *testing.T) {
	t.Run("dedups across sides and uncollapses the target", func(t *testing.T) {
		m, rec := newTestManager()
		m.SetSidebarCollapsed(SideLeft, true)

		// agents starts on the right; adding it to the left must relocate it.
		m.AddPanel(PanelAgents, SideLeft)

		left := m.SidebarFor(SideLeft)
		right := m.SidebarFor(SideRight)
		assert.Equal(t, []PanelID{PanelFiles, PanelGit, PanelAgents}, panelIDs(left.Panels))
		assert.NotContains(t, panelIDs(right.Panels), PanelAgents)
		assert.False(t, left.Collapsed)
		assert.Contains(t, rec.announcements, "agents added to left sidebar")
		assertInvariants(t, m.State())
	})

	t.Run("other side's collapsed flag untouched", func(t *testing.T) {
		m, _ := newTestManager()
		m.SetSidebarCollapsed(SideRight, true)

		m.AddPanel(PanelSearch, SideLeft)

		assert.True(t, m.Collapsed(SideRight))
		assert.False(t, m.Collapsed(SideLeft))
	})

	t.Run("adding to an empty side", func(t *testing.T) {
		m, _ := newTestManager()
		m.RemovePanel(PanelFiles)
		m.RemovePanel(PanelGit)

		m.AddPanel(PanelSkills, SideLeft)

		left := m.SidebarFor(SideLeft)
		assert.Equal(t, []PanelID{PanelSkills}, panelIDs(left.Panels))
		assert.InDelta(t, 100, left.Panels[0].Height, 1e-6)
	})
}

func TestReset(t *testing.T) {
	m, rec := newTestManager()

	m.SetSidebarWidth(SideLeft, 444)
	m.MovePanel(PanelFiles, SideRight)
	m.ToggleSidebar(SideRight)
	m.SetPanelHeight(SideRight, 0, 80)

	m.Reset()

	assert.Equal(t, DefaultState(), m.State())
	assert.Contains(t, rec.announcements, "Sidebar layout reset to default")
}

func TestReplace(t *testing.T) {
	m, rec := newTestManager()

	dirty := State{
		Left:  Sidebar{Width: 10, Panels: []Slot{{Panel: PanelFiles, Height: 3}}},
		Right: Sidebar{Width: 800, Panels: []Slot{{Panel: PanelFiles, Height: 5}}},
	}
	m.Replace(dirty)

	st := m.State()
	assert.Equal(t, MinSidebarWidth, st.Left.Width)
	assert.Equal(t, MaxSidebarWidth, st.Right.Width)
	assert.Equal(t, []PanelID{PanelFiles}, panelIDs(st.Left.Panels))
	assert.Empty(t, st.Right.Panels)
	assertInvariants(t, st)

	// Adopted state must not be echoed back to the server.
	assert.Equal(t, 1, rec.changes)
	assert.Zero(t, rec.syncs)
}

// TestMutationSequenceInvariants drives a long scripted mutation sequence and
// checks the height-sum and uniqueness invariants after every step.
func TestMutationSequenceInvariants(t *testing.T) {
	m, _ := newTestManager()

	steps := []func(){
		func() { m.SetPanelHeight(SideLeft, 0, 70) },
		func() { m.MovePanel(PanelGit, SideRight) },
		func() { m.AddPanel(PanelSearch, SideLeft) },
		func() { m.AddPanel(PanelSkills, SideRight) },
		func() { m.SetPanelHeight(SideRight, 2, 5) },
		func() { m.RemovePanel(PanelAgents) },
		func() { m.MovePanel(PanelSearch, SideRight) },
		func() { m.SetSidebarWidth(SideRight, 9000) },
		func() { m.AddPanel(PanelGit, SideLeft) },
		func() { m.RemovePanel(PanelFiles) },
		func() { m.SetPanelHeight(SideLeft, 0, 90) },
		func() { m.MovePanel(PanelMCP, SideLeft) },
		func() { m.RemovePanel(PanelSkills) },
		func() { m.AddPanel(PanelPreview, SideRight) },
		func() { m.ToggleSidebar(SideLeft) },
		func() { m.Reset() },
	}

	for _, step := range steps {
		step()
		assertInvariants(t, m.State())
	}
}

func TestManagerStateIsSnapshot(t *testing.T) {
	m, _ := newTestManager()

	st := m.State()
	st.Left.Panels[0].Panel = PanelSentry
	st.Left.Width = 1

	fresh := m.State()
	assert.Equal(t, PanelFiles, fresh.Left.Panels[0].Panel)
	assert.Equal(t, 280, fresh.Left.Width)
}

func TestPanelSide(t *testing.T) {
	m, _ := newTestManager()

	side, ok := m.PanelSide(PanelFiles)
	assert.True(t, ok)
	assert.Equal(t, SideLeft, side)

	side, ok = m.PanelSide(PanelMCP)
	assert.True(t, ok)
	assert.Equal(t, SideRight, side)

	_, ok = m.PanelSide(PanelGitHub)
	assert.False(t, ok)
}
