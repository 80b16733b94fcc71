package theme

import "github.com/charmbracelet/lipgloss"

var current *Theme

func init() {
	ApplyTheme(DarkTheme())
}

// CurrentTheme returns the currently active theme.
func CurrentTheme() *Theme {
	return current
}

// Resolve maps a settings theme name to a concrete theme. "system" resolves
// to dark because a terminal cannot reliably report the OS preference, and
// unknown names fall back to dark as well.
func Resolve(name string) *Theme {
	switch name {
	case NameLight:
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// SetTheme resolves and applies a theme by name, returning what was applied.
func SetTheme(name string) *Theme {
	t := Resolve(name)
	ApplyTheme(t)
	return t
}

// ApplyTheme sets all the global color variables to match the theme and
// regenerates the derived styles.
func ApplyTheme(t *Theme) {
	current = t

	ColorPrimary = t.Colors.Primary
	ColorSecondary = t.Colors.Secondary
	ColorFocus = t.Colors.Focus
	ColorSuccess = t.Colors.Success
	ColorError = t.Colors.Error
	ColorWarning = t.Colors.Warning
	ColorAccent = t.Colors.Accent

	BgPrimary = t.Colors.BgPrimary
	BgPanel = t.Colors.BgPanel
	BgPanelActive = t.Colors.BgPanelActive
	BgStrip = t.Colors.BgStrip
	BgSelection = t.Colors.BgSelection
	TextSelection = t.Colors.TextSelection

	BgDiffAdded = t.Colors.BgDiffAdded
	BgDiffRemoved = t.Colors.BgDiffRemoved
	BgDiffHunk = t.Colors.BgDiffHunk

	TextPrimary = t.Colors.TextPrimary
	TextSecondary = t.Colors.TextSecondary
	TextMuted = t.Colors.TextMuted
	TextDim = t.Colors.TextDim

	regenerateStyles()
}

// DarkTheme is the default look.
func DarkTheme() *Theme {
	return &Theme{
		Name:         NameDark,
		UseNerdFonts: true,
		Colors: ColorPalette{
			Primary:       lipgloss.Color("#569CD6"),
			Secondary:     lipgloss.Color("#4EC9B0"),
			Focus:         lipgloss.Color("#C586C0"),
			Success:       lipgloss.Color("#6A9955"),
			Error:         lipgloss.Color("#F44747"),
			Warning:       lipgloss.Color("#D7BA7D"),
			Accent:        lipgloss.Color("#CE9178"),
			BgPrimary:     lipgloss.Color("#1E1E1E"),
			BgPanel:       lipgloss.Color("#252526"),
			BgPanelActive: lipgloss.Color("#2D2D30"),
			BgStrip:       lipgloss.Color("#181818"),
			BgSelection:   lipgloss.Color("#264F78"),
			TextSelection: lipgloss.Color("#FFFFFF"),
			BgDiffAdded:   lipgloss.Color("#203424"),
			BgDiffRemoved: lipgloss.Color("#3A2323"),
			BgDiffHunk:    lipgloss.Color("#1E2A3A"),
			TextPrimary:   lipgloss.Color("#D4D4D4"),
			TextSecondary: lipgloss.Color("#A9A9B3"),
			TextMuted:     lipgloss.Color("#808080"),
			TextDim:       lipgloss.Color("#5A5A5A"),
		},
	}
}

// LightTheme for bright rooms.
func LightTheme() *Theme {
	return &Theme{
		Name:         NameLight,
		UseNerdFonts: true,
		Colors: ColorPalette{
			Primary:       lipgloss.Color("#0066BF"),
			Secondary:     lipgloss.Color("#098658"),
			Focus:         lipgloss.Color("#AF00DB"),
			Success:       lipgloss.Color("#14804A"),
			Error:         lipgloss.Color("#CD3131"),
			Warning:       lipgloss.Color("#B89500"),
			Accent:        lipgloss.Color("#C05621"),
			BgPrimary:     lipgloss.Color("#FFFFFF"),
			BgPanel:       lipgloss.Color("#F3F3F3"),
			BgPanelActive: lipgloss.Color("#E8E8E8"),
			BgStrip:       lipgloss.Color("#ECECEC"),
			BgSelection:   lipgloss.Color("#ADD6FF"),
			TextSelection: lipgloss.Color("#000000"),
			BgDiffAdded:   lipgloss.Color("#E6FFEC"),
			BgDiffRemoved: lipgloss.Color("#FFEBE9"),
			BgDiffHunk:    lipgloss.Color("#DDF4FF"),
			TextPrimary:   lipgloss.Color("#1F1F1F"),
			TextSecondary: lipgloss.Color("#3B3B3B"),
			TextMuted:     lipgloss.Color("#6E6E6E"),
			TextDim:       lipgloss.Color("#A0A0A0"),
		},
	}
}
