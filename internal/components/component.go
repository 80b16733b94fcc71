package components

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/podexhq/podex/internal/layout"
)

// Panel is implemented by every dockable sidebar panel. Panels are
// pointer models: Update mutates the receiver and returns only the
// command to run, unlike top-level tea.Model implementations.
type Panel interface {
	// ID returns the stable panel identifier used in layout state.
	ID() layout.PanelID
	// Title returns the text shown in the panel's title bar.
	Title() string

	// Init returns the command to run when the panel is first mounted.
	Init() tea.Cmd
	// Update handles a message and returns any follow-up command.
	Update(msg tea.Msg) tea.Cmd
	// View renders the panel's inner content. The caller draws the
	// border and title around it.
	View() string

	// Focus gives keyboard focus to this panel
	Focus()
	// Blur removes keyboard focus from this panel
	Blur()
	// Focused returns whether this panel currently has focus
	Focused() bool

	// SetSize updates the panel's inner dimensions
	SetSize(width, height int)
	// Size returns the panel's current inner dimensions
	Size() (width, height int)

	// Hints returns the key hints shown at the panel's bottom border
	// while it has focus. Empty means no hints.
	Hints() string
	// ScrollPercent reports scroll progress as a percentage in
	// [0, 100]. Values outside that range hide the indicator.
	ScrollPercent() float64
}

// Base provides common functionality for all panels and workbench
// components. Embed this in your model structs to get default
// implementations.
type Base struct {
	focused bool
	width   int
	height  int
}

// NewBase creates a new Base with the given dimensions.
func NewBase(width, height int) Base {
	return Base{
		width:  width,
		height: height,
	}
}

// Focus sets the focused state to true.
func (b *Base) Focus() {
	b.focused = true
}

// Blur sets the focused state to false.
func (b *Base) Blur() {
	b.focused = false
}

// Focused returns the current focus state.
func (b Base) Focused() bool {
	return b.focused
}

// SetSize updates the component's dimensions.
func (b *Base) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// Size returns the component's current dimensions.
func (b Base) Size() (width, height int) {
	return b.width, b.height
}

// Hints returns no key hints. Panels with hints override this.
func (b Base) Hints() string {
	return ""
}

// ScrollPercent reports that there is nothing to scroll. Panels with
// scrollable content override this.
func (b Base) ScrollPercent() float64 {
	return -1
}
