package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		expected string
	}{
		{"dark", NameDark, NameDark},
		{"light", NameLight, NameLight},
		{"system falls back to dark", NameSystem, NameDark},
		{"unknown falls back to dark", "solarized", NameDark},
		{"empty falls back to dark", "", NameDark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.stored).Name)
		})
	}
}

func TestSetThemeSwitchesPalette(t *testing.T) {
	defer SetTheme(NameDark)

	SetTheme(NameLight)
	assert.Equal(t, NameLight, CurrentTheme().Name)
	assert.Equal(t, lipgloss.Color("#FFFFFF"), BgPrimary)

	SetTheme(NameDark)
	assert.Equal(t, NameDark, CurrentTheme().Name)
	assert.Equal(t, lipgloss.Color("#1E1E1E"), BgPrimary)
}

func TestGetFileIcon(t *testing.T) {
	tests := []struct {
		ext      string
		expected string
	}{
		{".go", "󰟓"},
		{".md", "󰍔"},
		{".json", ""},
		{".unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetFileIcon(tt.ext))
		})
	}
}

func TestGetDirIcon(t *testing.T) {
	t.Run("known directories return non-empty icons", func(t *testing.T) {
		for _, dir := range []string{".git", "node_modules", "src", "cmd"} {
			assert.NotEmpty(t, GetDirIcon(dir), "expected icon for %s", dir)
		}
	})

	t.Run("unknown directories return empty string", func(t *testing.T) {
		assert.Empty(t, GetDirIcon("random"))
	})
}

func TestThemeIconFallbacks(t *testing.T) {
	t.Run("nerd fonts disabled uses generic icons", func(t *testing.T) {
		th := DarkTheme()
		th.UseNerdFonts = false

		assert.Equal(t, IconFile, th.GetFileIcon(".go"))
		assert.Equal(t, IconDirExpanded, th.GetDirIcon("random", true))
		assert.Equal(t, IconDirCollapsed, th.GetDirIcon("random", false))
	})

	t.Run("special directory keeps its icon", func(t *testing.T) {
		th := DarkTheme()
		icon := th.GetDirIcon(".git", false)
		assert.NotEmpty(t, icon)
		assert.NotEqual(t, IconDirCollapsed, icon)
	})
}

func TestRenderPanelWithTitle(t *testing.T) {
	t.Run("fills the requested box", func(t *testing.T) {
		out := RenderPanelWithTitle("one\ntwo", PanelTitleOptions{
			Title:         "FILES",
			ScrollPercent: -1,
		}, 30, 6, false)

		lines := strings.Split(out, "\n")
		require.Len(t, lines, 6)
		for i, line := range lines {
			assert.Equal(t, 30, lipgloss.Width(line), "line %d width", i)
		}
		assert.Contains(t, stripAnsi(lines[0]), "FILES")
	})

	t.Run("bottom hints appear in the border", func(t *testing.T) {
		out := RenderPanelWithTitle("", PanelTitleOptions{
			Title:         "GIT",
			ScrollPercent: -1,
			BottomHints:   "s:stage",
		}, 40, 4, true)

		lines := strings.Split(out, "\n")
		assert.Contains(t, stripAnsi(lines[len(lines)-1]), "s:stage")
	})

	t.Run("degenerate sizes return empty", func(t *testing.T) {
		assert.Empty(t, RenderPanelWithTitle("x", PanelTitleOptions{Title: "T"}, 3, 5, false))
		assert.Empty(t, RenderPanelWithTitle("x", PanelTitleOptions{Title: "T"}, 20, 1, false))
	})
}

func TestFormatScrollIndicator(t *testing.T) {
	assert.Equal(t, "42%", FormatScrollIndicator(42.7))
	assert.Empty(t, FormatScrollIndicator(100))
	assert.Empty(t, FormatScrollIndicator(-1))
}

func TestGetGitStatusStyle(t *testing.T) {
	for _, code := range []rune{'M', 'A', 'D', '?', 'U', ' '} {
		_ = GetGitStatusStyle(code).Render("x")
	}
}
