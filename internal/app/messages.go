package app

import (
	"github.com/fsnotify/fsnotify"

	"github.com/podexhq/podex/internal/git"
	"github.com/podexhq/podex/internal/layout"
	"github.com/podexhq/podex/internal/settings"
)

// Region identifies which band of the workbench owns keyboard focus.
type Region int

const (
	RegionNone Region = iota
	RegionSidebar
	RegionContent
	RegionTerminal
	RegionPanel
)

// String returns the region name for the status bar and logs.
func (r Region) String() string {
	switch r {
	case RegionSidebar:
		return "sidebar"
	case RegionContent:
		return "editor"
	case RegionTerminal:
		return "terminal"
	case RegionPanel:
		return "panel"
	default:
		return "none"
	}
}

// Focus pinpoints the focused surface. Panel is meaningful only when Region
// is RegionSidebar.
type Focus struct {
	Region Region
	Panel  layout.PanelID
}

// Label returns the status bar text for the focused surface: the panel id
// for sidebar panels, the region name otherwise.
func (f Focus) Label() string {
	if f.Region == RegionSidebar {
		return string(f.Panel)
	}
	return f.Region.String()
}

// GitStatusMsg carries a fresh git status snapshot.
type GitStatusMsg struct {
	Status *git.Status
	IsRepo bool
}

// FileChangeMsg is one file system event from the workspace watcher.
type FileChangeMsg struct {
	Path string
	Op   fsnotify.Op
}

// AnnounceChangedMsg signals that the live announcement text changed; the
// announcer's notify hook pushes it through the event channel so the status
// bar re-renders.
type AnnounceChangedMsg struct{}

// SettingsReloadedMsg delivers a settings snapshot after another process
// rewrote the settings file.
type SettingsReloadedMsg struct {
	Settings settings.Settings
}

// ErrorMsg reports a component failure; the app logs it and files it under
// the problems tab.
type ErrorMsg struct {
	Scope string
	Err   error
}

// gitTickMsg drives the periodic git status poll.
type gitTickMsg struct{}

// gitRefreshMsg requests an immediate git status refresh, bypassing the
// poll debounce.
type gitRefreshMsg struct{}

// fileDebounceMsg fires after the file change quiet window to process the
// pending watcher events in one batch.
type fileDebounceMsg struct{}

// commitFinishedMsg is sent when the spawned git commit process exits.
type commitFinishedMsg struct {
	err error
}
