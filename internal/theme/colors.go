package theme

import "github.com/charmbracelet/lipgloss"

// Semantic colors used throughout the UI. ApplyTheme rewrites these, so
// components must not capture them at init time.
var (
	ColorPrimary   = lipgloss.Color("#569CD6")
	ColorSecondary = lipgloss.Color("#4EC9B0")
	ColorFocus     = lipgloss.Color("#C586C0")
	ColorSuccess   = lipgloss.Color("#6A9955")
	ColorError     = lipgloss.Color("#F44747")
	ColorWarning   = lipgloss.Color("#D7BA7D")
	ColorAccent    = lipgloss.Color("#CE9178")
)

// Backgrounds, darkest to lightest in the dark theme.
var (
	BgPrimary     = lipgloss.Color("#1E1E1E")
	BgPanel       = lipgloss.Color("#252526")
	BgPanelActive = lipgloss.Color("#2D2D30")
	BgStrip       = lipgloss.Color("#181818")
)

// Selection highlighting.
var (
	BgSelection   = lipgloss.Color("#264F78")
	TextSelection = lipgloss.Color("#FFFFFF")
)

// Diff tints.
var (
	BgDiffAdded   = lipgloss.Color("#203424")
	BgDiffRemoved = lipgloss.Color("#3A2323")
	BgDiffHunk    = lipgloss.Color("#1E2A3A")
)

// Text hierarchy.
var (
	TextPrimary   = lipgloss.Color("#D4D4D4")
	TextSecondary = lipgloss.Color("#A9A9B3")
	TextMuted     = lipgloss.Color("#808080")
	TextDim       = lipgloss.Color("#5A5A5A")
)
