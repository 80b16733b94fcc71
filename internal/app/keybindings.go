package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application-level key bindings. Panel-local keys
// (navigation, staging, search) live with their components.
type KeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding

	// Sidebar layout
	ToggleLeft    key.Binding
	ToggleRight   key.Binding
	NarrowSidebar key.Binding
	WidenSidebar  key.Binding
	GrowPanel     key.Binding
	ShrinkPanel   key.Binding
	MovePanel     key.Binding
	ClosePanel    key.Binding
	AddPanel      key.Binding
	ResetLayout   key.Binding

	// Bottom surfaces
	ToggleTerminal key.Binding
	TogglePanel    key.Binding
	CycleTab       key.Binding

	// View preferences
	CycleTheme    key.Binding
	FocusMode     key.Binding
	ReducedMotion key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "help"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next surface"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev surface"),
		),

		ToggleLeft: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "toggle left sidebar"),
		),
		ToggleRight: key.NewBinding(
			key.WithKeys("alt+b"),
			key.WithHelp("alt+b", "toggle right sidebar"),
		),
		NarrowSidebar: key.NewBinding(
			key.WithKeys("alt+["),
			key.WithHelp("alt+[", "narrow sidebar"),
		),
		WidenSidebar: key.NewBinding(
			key.WithKeys("alt+]"),
			key.WithHelp("alt+]", "widen sidebar"),
		),
		GrowPanel: key.NewBinding(
			key.WithKeys("alt+="),
			key.WithHelp("alt+=", "grow panel"),
		),
		ShrinkPanel: key.NewBinding(
			key.WithKeys("alt+-"),
			key.WithHelp("alt+-", "shrink panel"),
		),
		MovePanel: key.NewBinding(
			key.WithKeys("alt+m"),
			key.WithHelp("alt+m", "move panel across"),
		),
		ClosePanel: key.NewBinding(
			key.WithKeys("alt+w"),
			key.WithHelp("alt+w", "close panel"),
		),
		AddPanel: key.NewBinding(
			key.WithKeys("alt+a"),
			key.WithHelp("alt+a", "add panel"),
		),
		ResetLayout: key.NewBinding(
			key.WithKeys("alt+0"),
			key.WithHelp("alt+0", "reset layout"),
		),

		ToggleTerminal: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle terminal"),
		),
		TogglePanel: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("ctrl+j", "toggle bottom panel"),
		),
		CycleTab: key.NewBinding(
			key.WithKeys("alt+j"),
			key.WithHelp("alt+j", "cycle panel tab"),
		),

		CycleTheme: key.NewBinding(
			key.WithKeys("alt+t"),
			key.WithHelp("alt+t", "cycle theme"),
		),
		FocusMode: key.NewBinding(
			key.WithKeys("alt+z"),
			key.WithHelp("alt+z", "focus mode"),
		),
		ReducedMotion: key.NewBinding(
			key.WithKeys("alt+r"),
			key.WithHelp("alt+r", "reduced motion"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.FocusNext, k.ToggleTerminal, k.Quit}
}

// FullHelp returns the binding groups for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.FocusNext, k.FocusPrev, k.ToggleLeft, k.ToggleRight, k.ToggleTerminal, k.TogglePanel},
		{k.AddPanel, k.ClosePanel, k.MovePanel, k.ResetLayout, k.CycleTab},
		{k.NarrowSidebar, k.WidenSidebar, k.GrowPanel, k.ShrinkPanel},
		{k.CycleTheme, k.FocusMode, k.ReducedMotion, k.Help, k.Quit},
	}
}
