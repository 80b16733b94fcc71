package theme

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Border definitions
var (
	// HeavyBorder marks the focused panel
	HeavyBorder = lipgloss.Border{
		Top:         "━",
		Bottom:      "━",
		Left:        "┃",
		Right:       "┃",
		TopLeft:     "┏",
		TopRight:    "┓",
		BottomLeft:  "┗",
		BottomRight: "┛",
	}

	// RoundedBorder for everything else
	RoundedBorder = lipgloss.Border{
		Top:         "─",
		Bottom:      "─",
		Left:        "│",
		Right:       "│",
		TopLeft:     "╭",
		TopRight:    "╮",
		BottomLeft:  "╰",
		BottomRight: "╯",
	}

	// DoubleBorder for modal overlays
	DoubleBorder = lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}
)

// Panel styles
var (
	PanelInactive lipgloss.Style
	PanelFocused  lipgloss.Style
)

// Text styles, most to least prominent
var (
	TextH1             lipgloss.Style
	TextH2             lipgloss.Style
	TextBody           lipgloss.Style
	TextSecondaryStyle lipgloss.Style
	TextMutedStyle     lipgloss.Style
	TextDimStyle       lipgloss.Style
)

// File tree styles
var (
	FileTreeDir      lipgloss.Style
	FileTreeFile     lipgloss.Style
	FileTreeSelected lipgloss.Style
)

// Git status styles
var (
	GitStatusModified  lipgloss.Style
	GitStatusAdded     lipgloss.Style
	GitStatusDeleted   lipgloss.Style
	GitStatusUntracked lipgloss.Style
	GitStatusConflict  lipgloss.Style
	GitBranchStyle     lipgloss.Style
	GitAheadStyle      lipgloss.Style
	GitBehindStyle     lipgloss.Style
)

// Diff styles
var (
	DiffAddedStyle      lipgloss.Style
	DiffRemovedStyle    lipgloss.Style
	DiffContextStyle    lipgloss.Style
	DiffHunkStyle       lipgloss.Style
	DiffLineNumberStyle lipgloss.Style
)

// Status bar styles
var (
	StatusBarStyle     lipgloss.Style
	StatusBarSection   lipgloss.Style
	StatusBarHighlight lipgloss.Style

	// AnnouncementStyle renders the transient screen reader text in the
	// status bar.
	AnnouncementStyle lipgloss.Style
)

// Overlay and placeholder styles
var (
	OverlayStyle     lipgloss.Style
	PlaceholderStyle lipgloss.Style
	SpinnerStyle     lipgloss.Style
)

// regenerateStyles rebuilds all style variables from the current color
// values. Called whenever the theme changes.
func regenerateStyles() {
	PanelInactive = lipgloss.NewStyle().
		Border(RoundedBorder).
		BorderForeground(TextDim)

	PanelFocused = lipgloss.NewStyle().
		Border(HeavyBorder).
		BorderForeground(ColorPrimary)

	TextH1 = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	TextH2 = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary)

	TextBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	TextSecondaryStyle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	TextMutedStyle = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	TextDimStyle = lipgloss.NewStyle().
		Foreground(TextDim).
		Faint(true)

	FileTreeDir = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	FileTreeFile = lipgloss.NewStyle().
		Foreground(TextPrimary)

	FileTreeSelected = lipgloss.NewStyle().
		Foreground(ColorFocus).
		Bold(true)

	GitStatusModified = lipgloss.NewStyle().
		Foreground(ColorWarning)

	GitStatusAdded = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	GitStatusDeleted = lipgloss.NewStyle().
		Foreground(ColorError)

	GitStatusUntracked = lipgloss.NewStyle().
		Foreground(ColorAccent)

	GitStatusConflict = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	GitBranchStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	GitAheadStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	GitBehindStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	DiffAddedStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	DiffRemovedStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	DiffContextStyle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	DiffHunkStyle = lipgloss.NewStyle().
		Foreground(ColorFocus).
		Bold(true)

	DiffLineNumberStyle = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(4).
		Align(lipgloss.Right)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	StatusBarSection = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	StatusBarHighlight = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	AnnouncementStyle = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Bold(true).
		Padding(0, 1)

	OverlayStyle = lipgloss.NewStyle().
		Border(DoubleBorder).
		BorderForeground(ColorFocus).
		Padding(1, 2)

	PlaceholderStyle = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	SpinnerStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary)
}

// GetPanelStyle returns the border style for a panel's focus state.
func GetPanelStyle(focused bool) lipgloss.Style {
	if focused {
		return PanelFocused
	}
	return PanelInactive
}

// GetGitStatusStyle returns the style for a git status code.
func GetGitStatusStyle(code rune) lipgloss.Style {
	switch code {
	case 'M':
		return GitStatusModified
	case 'A', '+':
		return GitStatusAdded
	case 'D':
		return GitStatusDeleted
	case '?':
		return GitStatusUntracked
	case 'U', '!':
		return GitStatusConflict
	default:
		return TextBody
	}
}

// FormatScrollIndicator returns a scroll percentage for panel borders.
// Empty at the bottom or for invalid values.
func FormatScrollIndicator(percent float64) string {
	if percent >= 99.9 || percent < 0 {
		return ""
	}
	return fmt.Sprintf("%d%%", int(percent))
}

// FormatStatusIndicator returns a running/idle dot.
func FormatStatusIndicator(running bool) string {
	if running {
		return StatusRunning
	}
	return StatusIdle
}

// PanelTitleOptions configures what to show in panel borders.
type PanelTitleOptions struct {
	Title         string
	StatusRunning bool
	ShowStatus    bool
	ScrollPercent float64 // negative to hide
	BottomHints   string
}

// RenderPanelWithTitle renders content in a bordered panel with the title
// embedded in the top border and optional hints in the bottom one.
func RenderPanelWithTitle(content string, opts PanelTitleOptions, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return ""
	}

	var border lipgloss.Border
	var borderColor, titleColor lipgloss.Color
	if focused {
		border = HeavyBorder
		borderColor = ColorPrimary
		titleColor = ColorPrimary
	} else {
		border = RoundedBorder
		borderColor = TextDim
		titleColor = TextMuted
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(TextMuted)
	scrollStyle := lipgloss.NewStyle().Foreground(TextDim)
	statusStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	if !opts.StatusRunning {
		statusStyle = lipgloss.NewStyle().Foreground(TextDim)
	}

	innerWidth := width - 2

	topBorder := buildTopBorder(border, borderStyle, titleStyle, scrollStyle, statusStyle, opts, innerWidth)
	bottomBorder := buildBottomBorder(border, borderStyle, hintStyle, opts.BottomHints, innerWidth)

	contentHeight := height - 2
	if contentHeight < 0 {
		contentHeight = 0
	}

	contentLines := strings.Split(content, "\n")
	renderedLines := make([]string, contentHeight)

	// MaxWidth truncates without splitting ANSI sequences
	lineStyle := lipgloss.NewStyle().MaxWidth(innerWidth)

	for i := 0; i < contentHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		line = lineStyle.Render(line)
		lineLen := lipgloss.Width(line)
		if lineLen < innerWidth {
			line = line + strings.Repeat(" ", innerWidth-lineLen)
		}
		renderedLines[i] = borderStyle.Render(border.Left) + line + borderStyle.Render(border.Right)
	}

	var result strings.Builder
	result.WriteString(topBorder)
	result.WriteString("\n")
	result.WriteString(strings.Join(renderedLines, "\n"))
	result.WriteString("\n")
	result.WriteString(bottomBorder)

	return result.String()
}

func buildTopBorder(border lipgloss.Border, borderStyle, titleStyle, scrollStyle, statusStyle lipgloss.Style, opts PanelTitleOptions, innerWidth int) string {
	titleSegment := "[ " + titleStyle.Render(opts.Title)
	if opts.ShowStatus {
		titleSegment += " " + statusStyle.Render(FormatStatusIndicator(opts.StatusRunning))
	}
	titleSegment += " ]"

	var scrollSegment string
	if scrollText := FormatScrollIndicator(opts.ScrollPercent); opts.ScrollPercent >= 0 && scrollText != "" {
		scrollSegment = "[ " + scrollStyle.Render(scrollText) + " ]"
	}

	titleWidth := utf8.RuneCountInString(stripAnsi(titleSegment))
	scrollWidth := 0
	if scrollSegment != "" {
		scrollWidth = utf8.RuneCountInString(stripAnsi(scrollSegment))
	}

	leftFiller := 2
	rightFiller := innerWidth - leftFiller - titleWidth - scrollWidth
	if rightFiller < 0 {
		rightFiller = 0
	}

	var result strings.Builder
	result.WriteString(borderStyle.Render(border.TopLeft))
	result.WriteString(borderStyle.Render(strings.Repeat(border.Top, leftFiller)))
	result.WriteString(titleSegment)
	if scrollSegment != "" {
		result.WriteString(borderStyle.Render(strings.Repeat(border.Top, rightFiller)))
		result.WriteString(scrollSegment)
	} else {
		result.WriteString(borderStyle.Render(strings.Repeat(border.Top, rightFiller)))
	}
	result.WriteString(borderStyle.Render(border.TopRight))

	return result.String()
}

func buildBottomBorder(border lipgloss.Border, borderStyle, hintStyle lipgloss.Style, hints string, innerWidth int) string {
	if hints == "" {
		return borderStyle.Render(border.BottomLeft) +
			borderStyle.Render(strings.Repeat(border.Bottom, innerWidth)) +
			borderStyle.Render(border.BottomRight)
	}

	hintSegment := "[ " + hintStyle.Render(hints) + " ]"
	hintWidth := utf8.RuneCountInString(stripAnsi(hintSegment))

	leftFiller := 2
	rightFiller := innerWidth - leftFiller - hintWidth
	if rightFiller < 0 {
		rightFiller = 0
	}

	var result strings.Builder
	result.WriteString(borderStyle.Render(border.BottomLeft))
	result.WriteString(borderStyle.Render(strings.Repeat(border.Bottom, leftFiller)))
	result.WriteString(hintSegment)
	result.WriteString(borderStyle.Render(strings.Repeat(border.Bottom, rightFiller)))
	result.WriteString(borderStyle.Render(border.BottomRight))

	return result.String()
}

// stripAnsi removes ANSI escape sequences from a string.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
