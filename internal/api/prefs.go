package api

import (
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/settings"
)

// UIPreferences is the slice of local settings mirrored to the user's
// account so web and terminal sessions agree on layout. Machine-local
// state (panel visibility, the active bottom tab) deliberately stays out.
type UIPreferences struct {
	Theme                string       `json:"theme"`
	SidebarLayout        layout.State `json:"sidebarLayout"`
	TerminalHeight       int          `json:"terminalHeight"`
	PanelHeight          int          `json:"panelHeight"`
	PrefersReducedMotion bool         `json:"prefersReducedMotion"`
	FocusMode            bool         `json:"focusMode"`
}

// PreferencesFrom extracts the synced subset of a settings snapshot.
func PreferencesFrom(s settings.Settings) UIPreferences {
	return UIPreferences{
		Theme:                s.Theme,
		SidebarLayout:        s.SidebarLayout.Clone(),
		TerminalHeight:       s.TerminalHeight,
		PanelHeight:          s.PanelHeight,
		PrefersReducedMotion: s.PrefersReducedMotion,
		FocusMode:            s.FocusMode,
	}
}
