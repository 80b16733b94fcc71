package terminal

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	assert.False(t, m.Running())
	assert.False(t, m.HasSelection())
	assert.NoError(t, m.ExitErr())
	assert.Nil(t, m.Init())
}

func TestStartCommands(t *testing.T) {
	t.Run("Start carries the program and args", func(t *testing.T) {
		msg := Start("git", "log", "--oneline")()

		start, ok := msg.(StartMsg)
		require.True(t, ok)
		assert.Equal(t, "git", start.Cmd)
		assert.Equal(t, []string{"log", "--oneline"}, start.Args)
	})

	t.Run("StartShell requests the default shell", func(t *testing.T) {
		msg := StartShell()()

		start, ok := msg.(StartMsg)
		require.True(t, ok)
		assert.Empty(t, start.Cmd)
	})
}

func TestView(t *testing.T) {
	t.Run("before first SetSize", func(t *testing.T) {
		m := New()
		assert.Contains(t, m.View(), "Initializing terminal")
	})

	t.Run("sized but idle", func(t *testing.T) {
		m := New()
		m.SetSize(80, 24)
		assert.Contains(t, m.View(), "No process running")
	})
}

func TestWheelScrollClampsToScrollback(t *testing.T) {
	m := New()
	m.SetSize(80, 24)
	m.scrollback = []string{"one", "two", "three", "four"}

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 3, m.scrollOffset)

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 4, m.scrollOffset, "cannot scroll past the oldest line")

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 0, m.scrollOffset, "scrolling down stops at the live view")
}

func TestPushScrollbackDeduplicates(t *testing.T) {
	m := New()

	m.pushScrollback("prompt $")
	m.pushScrollback("output")
	m.pushScrollback("prompt $")

	assert.Equal(t, []string{"prompt $", "output"}, m.scrollback)
}

func TestScreenToTextPosition(t *testing.T) {
	m := New()
	m.scrollback = []string{"a", "b", "c", "d", "e"}

	t.Run("live view maps directly", func(t *testing.T) {
		line, col := m.screenToTextPosition(4, 2)
		assert.Equal(t, 2, line)
		assert.Equal(t, 4, col)
	})

	t.Run("scrolled view offsets into history", func(t *testing.T) {
		m.scrollOffset = 3
		line, col := m.screenToTextPosition(1, 1)
		assert.Equal(t, 3, line)
		assert.Equal(t, 1, col)
	})
}

func TestKeyBytes(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []byte
	}{
		{"enter sends carriage return", tea.KeyMsg{Type: tea.KeyEnter}, []byte("\r")},
		{"backspace sends DEL", tea.KeyMsg{Type: tea.KeyBackspace}, []byte{127}},
		{"alt+backspace deletes a word", tea.KeyMsg{Type: tea.KeyBackspace, Alt: true}, []byte{27, 127}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, []byte("\t")},
		{"ctrl+c interrupts", tea.KeyMsg{Type: tea.KeyCtrlC}, []byte{3}},
		{"ctrl+d sends EOF", tea.KeyMsg{Type: tea.KeyCtrlD}, []byte{4}},
		{"ctrl+z suspends", tea.KeyMsg{Type: tea.KeyCtrlZ}, []byte{26}},
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, []byte("\x1b[A")},
		{"page down", tea.KeyMsg{Type: tea.KeyPgDown}, []byte("\x1b[6~")},
		{"plain runes pass through", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ls")}, []byte("ls")},
		{"alt+runes prefix escape", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f"), Alt: true}, []byte{27, 'f'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyBytes(tt.msg))
		})
	}

	t.Run("mouse sequence fragments are dropped", func(t *testing.T) {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("65;83;57M")}
		assert.Nil(t, keyBytes(msg))
	})
}

func TestEscapeFragmentDetection(t *testing.T) {
	assert.True(t, looksLikeEscapeFragment("["))
	assert.True(t, looksLikeEscapeFragment("[<"))
	assert.True(t, looksLikeEscapeFragment("[12;3"))
	assert.False(t, looksLikeEscapeFragment("ls"))
	assert.False(t, looksLikeEscapeFragment("[abc"))
}

func TestMouseSequenceDetection(t *testing.T) {
	assert.True(t, looksLikeMouseSequence("65;83;57M"))
	assert.True(t, looksLikeMouseSequence("0;45;12m"))
	assert.False(t, looksLikeMouseSequence("M"))
	assert.False(t, looksLikeMouseSequence("hello"))
	assert.False(t, looksLikeMouseSequence("rm -rf"))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "hello", stripANSI("\x1b[31mhello\x1b[0m"))
	assert.Equal(t, "plain", stripANSI("plain"))
	assert.Equal(t, "ab", stripANSI("a\x1b[38;5;120mb"))
}

func TestColorToANSI(t *testing.T) {
	t.Run("default colors produce no code", func(t *testing.T) {
		assert.Empty(t, colorToANSI(0x01000000, true))
	})

	t.Run("palette colors use 256-color form", func(t *testing.T) {
		assert.Equal(t, "38;5;120", colorToANSI(120, true))
		assert.Equal(t, "48;5;7", colorToANSI(7, false))
	})

	t.Run("larger values use truecolor form", func(t *testing.T) {
		assert.Equal(t, "38;2;255;0;128", colorToANSI(0xFF0080, true))
	})
}

func TestBuildANSI(t *testing.T) {
	t.Run("cursor and selection use reverse video", func(t *testing.T) {
		assert.Equal(t, "\x1b[7m", buildANSI(0x01000000, 0x01000000, 0, true, false))
		assert.Equal(t, "\x1b[7m", buildANSI(0x01000000, 0x01000000, 0, false, true))
	})

	t.Run("bold and underline combine", func(t *testing.T) {
		got := buildANSI(0x01000000, 0x01000000, 0x02|0x04, false, false)
		assert.Equal(t, "\x1b[4;1m", got)
	})

	t.Run("plain defaults produce nothing", func(t *testing.T) {
		assert.Empty(t, buildANSI(0x01000000, 0x01000000, 0, false, false))
	})
}

func TestUnfocusedIgnoresKeys(t *testing.T) {
	m := New()
	m.SetSize(80, 24)

	cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}
