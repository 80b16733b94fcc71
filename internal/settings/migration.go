package settings

import (
	"encoding/json"

	"github.com/podexhq/podex/internal/layout"
)

// MigrationResult describes how an older settings document was upgraded.
type MigrationResult struct {
	WasMigrated bool
	FromVersion int
	ToVersion   int
	// Preserved lists the legacy fields whose values survived the upgrade.
	Preserved []string
}

// rawVersion extracts the version field from a raw document; absent or
// malformed versions count as 1, the pre-layout schema.
func rawVersion(raw map[string]any) int {
	v, ok := raw["version"]
	if !ok {
		return 1
	}
	f, ok := v.(float64)
	if !ok {
		return 1
	}
	return int(f)
}

// migrate upgrades a raw settings document to the current schema, starting
// from defaults and carrying over every recognizable field. The version 1
// schema had no sidebarLayout; its single "sidebarCollapsed" flag maps onto
// the left sidebar, leaving the right sidebar at its default.
func migrate(raw map[string]any) (Settings, MigrationResult) {
	out := DefaultSettings()
	result := MigrationResult{
		WasMigrated: true,
		FromVersion: rawVersion(raw),
		ToVersion:   SchemaVersion,
	}
	keep := func(field string) {
		result.Preserved = append(result.Preserved, field)
	}

	_, hasLayout := raw["sidebarLayout"]
	if collapsed, ok := raw["sidebarCollapsed"].(bool); ok && !hasLayout {
		out.SidebarLayout.Left.Collapsed = collapsed
		keep("sidebarCollapsed")
	}
	if hasLayout {
		if st, ok := decodeLayout(raw["sidebarLayout"]); ok {
			out.SidebarLayout = layout.Sanitize(st)
			keep("sidebarLayout")
		}
	}

	if theme, ok := raw["theme"].(string); ok && ValidTheme(theme) {
		out.Theme = theme
		keep("theme")
	}
	if v, ok := raw["terminalVisible"].(bool); ok {
		out.TerminalVisible = v
		keep("terminalVisible")
	}
	if h, ok := raw["terminalHeight"].(float64); ok && h > 0 {
		out.TerminalHeight = int(h)
		keep("terminalHeight")
	}
	if v, ok := raw["panelVisible"].(bool); ok {
		out.PanelVisible = v
		keep("panelVisible")
	}
	if h, ok := raw["panelHeight"].(float64); ok && h > 0 {
		out.PanelHeight = int(h)
		keep("panelHeight")
	}
	if tab, ok := raw["activePanel"].(string); ok && ValidTab(tab) {
		out.ActivePanel = tab
		keep("activePanel")
	}
	if v, ok := raw["prefersReducedMotion"].(bool); ok {
		out.PrefersReducedMotion = v
		keep("prefersReducedMotion")
	}
	if v, ok := raw["focusMode"].(bool); ok {
		out.FocusMode = v
		keep("focusMode")
	}

	return out, result
}

// decodeLayout remarshals a raw sidebarLayout value into a typed state.
func decodeLayout(v any) (layout.State, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return layout.State{}, false
	}
	var st layout.State
	if err := json.Unmarshal(data, &st); err != nil {
		return layout.State{}, false
	}
	return st, true
}
