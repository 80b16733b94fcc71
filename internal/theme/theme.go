// Package theme holds the visual identity of the client: two palettes, the
// lipgloss styles derived from them, and the icon tables. Styles live in
// package variables so a theme switch restyles every component at once.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme names as stored in settings.
const (
	NameDark   = "dark"
	NameLight  = "light"
	NameSystem = "system"
)

// Theme holds all visual configuration for the application.
type Theme struct {
	Name         string
	Colors       ColorPalette
	UseNerdFonts bool
}

// ColorPalette holds all color definitions for a theme.
type ColorPalette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Focus     lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Accent    lipgloss.Color

	BgPrimary     lipgloss.Color
	BgPanel       lipgloss.Color
	BgPanelActive lipgloss.Color
	BgStrip       lipgloss.Color
	BgSelection   lipgloss.Color
	TextSelection lipgloss.Color

	BgDiffAdded   lipgloss.Color
	BgDiffRemoved lipgloss.Color
	BgDiffHunk    lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextDim       lipgloss.Color
}

// GetFileIcon returns the icon for a file, respecting the UseNerdFonts setting.
func (t *Theme) GetFileIcon(ext string) string {
	if !t.UseNerdFonts {
		return IconFile
	}
	return GetFileIcon(ext)
}

// GetDirIcon returns the icon for a directory, respecting the UseNerdFonts setting.
func (t *Theme) GetDirIcon(name string, expanded bool) string {
	if !t.UseNerdFonts {
		if expanded {
			return IconDirExpanded
		}
		return IconDirCollapsed
	}

	if icon := GetDirIcon(name); icon != "" {
		return icon
	}

	if expanded {
		return IconDirExpanded
	}
	return IconDirCollapsed
}
