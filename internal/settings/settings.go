// Package settings persists the client's UI preferences as a JSON document.
// Field names match the ui_preferences record the Podex web client writes, so
// both clients share one schema; pixel-valued sizes stay in pixels here and
// are mapped to cells at render time.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/podexhq/podex/internal/layout"
)

// SchemaVersion is the current settings document version. Version 1 stored a
// single sidebarCollapsed flag; version 2 stores the full sidebar layout.
const SchemaVersion = 2

// Accepted theme names.
const (
	ThemeDark   = "dark"
	ThemeLight  = "light"
	ThemeSystem = "system"
)

// Bottom panel tabs.
const (
	TabOutput   = "output"
	TabProblems = "problems"
	TabTerminal = "terminal"
)

// Default pixel heights for the bottom surfaces.
const (
	DefaultTerminalHeight = 240
	DefaultPanelHeight    = 200
)

// Settings is the persisted UI state.
type Settings struct {
	Version              int          `json:"version"`
	Theme                string       `json:"theme"`
	SidebarLayout        layout.State `json:"sidebarLayout"`
	TerminalVisible      bool         `json:"terminalVisible"`
	TerminalHeight       int          `json:"terminalHeight"`
	PanelVisible         bool         `json:"panelVisible"`
	PanelHeight          int          `json:"panelHeight"`
	ActivePanel          string       `json:"activePanel"`
	PrefersReducedMotion bool         `json:"prefersReducedMotion"`
	FocusMode            bool         `json:"focusMode"`
}

// DefaultSettings returns the first-run settings.
func DefaultSettings() Settings {
	return Settings{
		Version:         SchemaVersion,
		Theme:           ThemeDark,
		SidebarLayout:   layout.DefaultState(),
		TerminalVisible: false,
		TerminalHeight:  DefaultTerminalHeight,
		PanelVisible:    false,
		PanelHeight:     DefaultPanelHeight,
		ActivePanel:     TabTerminal,
	}
}

// ValidTheme reports whether name is an accepted theme value.
func ValidTheme(name string) bool {
	switch name {
	case ThemeDark, ThemeLight, ThemeSystem:
		return true
	}
	return false
}

// ValidTab reports whether name is an accepted bottom panel tab.
func ValidTab(name string) bool {
	switch name {
	case TabOutput, TabProblems, TabTerminal:
		return true
	}
	return false
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "podex"), nil
}

// DefaultPath returns the settings file location,
// ~/.config/podex/ui-settings.json.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ui-settings.json"), nil
}

// Store owns the settings document. All reads and writes go through its
// methods; UI code never holds a shared mutable reference.
type Store struct {
	mu       sync.RWMutex
	path     string
	settings Settings
	logger   *zap.Logger
}

// NewStore creates a store persisting to path. The store starts at defaults
// until Load runs. A nil logger is replaced with a no-op logger.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, settings: DefaultSettings(), logger: logger}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file leaves the defaults in place;
// malformed documents fall back to defaults with a logged warning; documents
// with an older version are migrated and re-persisted. Failures never
// propagate: preferences must not take the UI down.
func (s *Store) Load() MigrationResult {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("settings file unreadable, using defaults",
				zap.String("path", s.path), zap.Error(err))
		}
		return MigrationResult{}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("settings file malformed, using defaults",
			zap.String("path", s.path), zap.Error(err))
		return MigrationResult{}
	}

	if rawVersion(raw) != SchemaVersion {
		migrated, result := migrate(raw)
		s.mu.Lock()
		s.settings = migrated
		s.mu.Unlock()

		s.logger.Info("migrated settings document",
			zap.Int("from", result.FromVersion), zap.Int("to", result.ToVersion))
		if err := s.Save(); err != nil {
			s.logger.Warn("failed to persist migrated settings", zap.Error(err))
		}
		return result
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("settings file malformed, using defaults",
			zap.String("path", s.path), zap.Error(err))
		return MigrationResult{}
	}
	sanitize(&loaded, raw)

	s.mu.Lock()
	s.settings = loaded
	s.mu.Unlock()
	return MigrationResult{}
}

// sanitize repairs a current-version document in place: layout invariants
// enforced, enum fields coerced to known values, absent or nonsense sizes
// restored to defaults.
func sanitize(st *Settings, raw map[string]any) {
	st.Version = SchemaVersion

	if _, present := raw["sidebarLayout"]; present {
		st.SidebarLayout = layout.Sanitize(st.SidebarLayout)
	} else {
		st.SidebarLayout = layout.DefaultState()
	}

	if !ValidTheme(st.Theme) {
		st.Theme = ThemeDark
	}
	if !ValidTab(st.ActivePanel) {
		st.ActivePanel = TabTerminal
	}
	if st.TerminalHeight <= 0 {
		st.TerminalHeight = DefaultTerminalHeight
	}
	if st.PanelHeight <= 0 {
		st.PanelHeight = DefaultPanelHeight
	}
}

// Get returns a deep copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.SidebarLayout = out.SidebarLayout.Clone()
	return out
}

// Update applies fn under the write lock and persists the result. Persistence
// failures are logged and absorbed.
func (s *Store) Update(fn func(*Settings)) {
	s.mu.Lock()
	fn(&s.settings)
	s.settings.Version = SchemaVersion
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		s.logger.Warn("failed to persist settings", zap.String("path", s.path), zap.Error(err))
	}
}

// SetSidebarLayout stores a layout snapshot and persists. Wired to the layout
// manager's change hook so every mutation lands on disk.
func (s *Store) SetSidebarLayout(st layout.State) {
	s.Update(func(cfg *Settings) {
		cfg.SidebarLayout = st.Clone()
	})
}

// Save writes the settings document with MkdirAll + indented JSON.
func (s *Store) Save() error {
	snap := s.Get()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
