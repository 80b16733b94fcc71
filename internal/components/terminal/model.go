// Package terminal hosts an interactive process inside the UI. Output flows
// through a vt10x virtual terminal so full-screen programs render correctly.
package terminal

import (
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/creack/pty"
	"github.com/hinshun/vt10x"

	"github.com/podexhq/podex/internal/components"
	"github.com/podexhq/podex/internal/selection"
	"github.com/podexhq/podex/internal/theme"
)

// Messages
type (
	// OutputMsg contains output read from the PTY.
	OutputMsg struct {
		Data []byte
	}

	// ExitMsg is sent when the process exits.
	ExitMsg struct {
		Err error
	}

	// StartMsg requests starting a command. An empty Cmd starts the user's
	// shell.
	StartMsg struct {
		Cmd  string
		Args []string
	}
)

const maxScrollback = 10000

// Model runs a command on a PTY and renders its screen.
type Model struct {
	components.Base

	vt      vt10x.Terminal
	cmd     *exec.Cmd
	pty     *os.File
	mu      sync.Mutex
	running bool
	exitErr error

	// Lines that scrolled off the top. scrollOffset 0 means live view,
	// >0 means scrolled up that many lines.
	scrollback   []string
	scrollOffset int

	selection selection.Model
	ready     bool
}

// New creates a new terminal model. No process is started until a StartMsg
// arrives.
func New() *Model {
	return &Model{
		selection: selection.New(),
	}
}

// Init initializes the terminal.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Start returns a command that starts the given program in the terminal.
func Start(cmd string, args ...string) tea.Cmd {
	return func() tea.Msg {
		return StartMsg{Cmd: cmd, Args: args}
	}
}

// StartShell returns a command that starts the user's login shell.
func StartShell() tea.Cmd {
	return func() tea.Msg {
		return StartMsg{}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StartMsg:
		if m.running {
			return nil
		}
		return m.startProcess(msg.Cmd, msg.Args)

	case OutputMsg:
		m.mu.Lock()
		// New output snaps back to the live view.
		m.scrollOffset = 0
		if m.vt != nil {
			m.absorbOutput(msg.Data)
		}
		m.mu.Unlock()
		return m.ContinueReading()

	case ExitMsg:
		m.mu.Lock()
		m.running = false
		m.exitErr = msg.Err
		if m.pty != nil {
			m.pty.Close()
			m.pty = nil
		}
		m.cmd = nil
		m.mu.Unlock()
		return nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.Focused() {
			return nil
		}
		return m.handleKey(msg)
	}

	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonLeft:
		switch msg.Action {
		case tea.MouseActionPress:
			line, col := m.screenToTextPosition(msg.X, msg.Y)
			m.updateSelectionContent()
			m.selection.Start(line, col)
		case tea.MouseActionMotion:
			if m.selection.Selection.Active {
				line, col := m.screenToTextPosition(msg.X, msg.Y)
				m.selection.Extend(line, col)
			}
		case tea.MouseActionRelease:
			if m.selection.Selection.Active {
				line, col := m.screenToTextPosition(msg.X, msg.Y)
				m.selection.Extend(line, col)
				m.selection.Finish()
			}
		}

	case tea.MouseButtonWheelUp:
		m.scrollOffset += 3
		if max := len(m.scrollback); m.scrollOffset > max {
			m.scrollOffset = max
		}

	case tea.MouseButtonWheelDown:
		m.scrollOffset -= 3
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
	}

	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Ctrl+C copies when text is selected instead of interrupting.
	if selection.IsCopyKey(msg.String()) && m.selection.HasSelection() {
		_ = m.selection.CopyToClipboard()
		m.selection.Clear()
		return nil
	}

	if msg.Type == tea.KeyEscape && m.selection.HasSelection() {
		m.selection.Clear()
		return nil
	}

	if m.running && m.pty != nil {
		if input := keyBytes(msg); len(input) > 0 {
			m.pty.Write(input)
		}
	}
	return nil
}

// ctrlBytes maps control key presses to the byte the PTY expects. Ctrl+H,
// Ctrl+I and Ctrl+M arrive as backspace, tab and enter; Ctrl+Q stays free
// for the application.
var ctrlBytes = map[tea.KeyType]byte{
	tea.KeyCtrlA: 1, tea.KeyCtrlB: 2, tea.KeyCtrlC: 3, tea.KeyCtrlD: 4,
	tea.KeyCtrlE: 5, tea.KeyCtrlF: 6, tea.KeyCtrlG: 7, tea.KeyCtrlJ: 10,
	tea.KeyCtrlK: 11, tea.KeyCtrlL: 12, tea.KeyCtrlN: 14, tea.KeyCtrlO: 15,
	tea.KeyCtrlP: 16, tea.KeyCtrlR: 18, tea.KeyCtrlS: 19, tea.KeyCtrlT: 20,
	tea.KeyCtrlU: 21, tea.KeyCtrlV: 22, tea.KeyCtrlW: 23, tea.KeyCtrlX: 24,
	tea.KeyCtrlY: 25, tea.KeyCtrlZ: 26,
}

// keyBytes translates a key press into the byte sequence to write to the
// PTY. It returns nil for keys that should not be forwarded.
func keyBytes(msg tea.KeyMsg) []byte {
	if b, ok := ctrlBytes[msg.Type]; ok {
		return []byte{b}
	}

	switch msg.Type {
	case tea.KeyEnter:
		return []byte("\r")
	case tea.KeyBackspace:
		if msg.Alt {
			// ESC+DEL deletes the previous word.
			return []byte{27, 127}
		}
		return []byte{127}
	case tea.KeyTab:
		return []byte("\t")
	case tea.KeySpace:
		return []byte(" ")
	case tea.KeyEscape:
		return []byte{27}
	case tea.KeyUp:
		return []byte("\x1b[A")
	case tea.KeyDown:
		return []byte("\x1b[B")
	case tea.KeyRight:
		return []byte("\x1b[C")
	case tea.KeyLeft:
		return []byte("\x1b[D")
	case tea.KeyHome:
		return []byte("\x1b[H")
	case tea.KeyEnd:
		return []byte("\x1b[F")
	case tea.KeyPgUp:
		return []byte("\x1b[5~")
	case tea.KeyPgDown:
		return []byte("\x1b[6~")
	case tea.KeyDelete:
		return []byte("\x1b[3~")
	case tea.KeyRunes:
		runeStr := string(msg.Runes)
		if looksLikeMouseSequence(runeStr) || looksLikeEscapeFragment(runeStr) {
			return nil
		}
		if msg.Alt {
			var input []byte
			for _, r := range msg.Runes {
				input = append(input, 27)
				input = append(input, byte(r))
			}
			return input
		}
		return []byte(runeStr)
	}

	return nil
}

func (m *Model) startProcess(name string, args []string) tea.Cmd {
	w, h := m.Size()
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}

	if name == "" {
		name = os.Getenv("SHELL")
		if name == "" {
			name = "/bin/sh"
		}
	}

	m.vt = vt10x.New(vt10x.WithSize(w, h))

	m.cmd = exec.Command(name, args...)
	m.cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.Start(m.cmd)
	if err != nil {
		m.vt.Write([]byte("\x1b[31mError starting process: " + err.Error() + "\x1b[0m\n"))
		return nil
	}

	m.pty = ptmx
	m.running = true
	m.exitErr = nil

	pty.Setsize(m.pty, &pty.Winsize{
		Rows: uint16(h),
		Cols: uint16(w),
	})

	return m.readOutput()
}

// readOutput reads the next chunk from the PTY. The file and command are
// captured so the returned command is immune to later field changes.
func (m *Model) readOutput() tea.Cmd {
	ptmx := m.pty
	proc := m.cmd
	return func() tea.Msg {
		if ptmx == nil {
			return nil
		}

		// Large buffer reduces redraws with chatty programs.
		buf := make([]byte, 65536)
		n, err := ptmx.Read(buf)
		if err != nil {
			if err == io.EOF && proc != nil {
				return ExitMsg{Err: proc.Wait()}
			}
			return ExitMsg{Err: err}
		}

		return OutputMsg{Data: buf[:n]}
	}
}

// ContinueReading returns a command to read the next output chunk, or nil
// when no process is running.
func (m *Model) ContinueReading() tea.Cmd {
	if !m.running || m.pty == nil {
		return nil
	}
	return m.readOutput()
}

// absorbOutput writes data to the virtual terminal and captures lines that
// scroll off the top. Must be called with m.mu held.
func (m *Model) absorbOutput(data []byte) {
	cols, rows := m.vt.Size()

	oldPlain := make([]string, rows)
	oldRendered := make([]string, rows)
	for row := 0; row < rows; row++ {
		oldPlain[row] = m.screenLinePlain(cols, row)
		oldRendered[row] = m.renderScreenLine(cols, row)
	}

	m.vt.Write(data)

	// Find where the new top line sat in the old screen to derive how far
	// the content scrolled.
	newTop := m.screenLinePlain(cols, 0)
	scrollAmount := 0
	if strings.TrimSpace(newTop) != "" {
		for i := 1; i < rows; i++ {
			if strings.TrimSpace(oldPlain[i]) != "" && oldPlain[i] == newTop {
				scrollAmount = i
				break
			}
		}
	}

	if scrollAmount > 0 {
		for i := 0; i < scrollAmount; i++ {
			if strings.TrimSpace(oldPlain[i]) != "" {
				m.pushScrollback(oldRendered[i])
			}
		}
	} else if oldPlain[0] != newTop && strings.TrimSpace(oldPlain[0]) != "" {
		// The screen changed without a detectable scroll, which happens on
		// large chunks. Keep every old line rather than lose them.
		for i := 0; i < rows; i++ {
			if strings.TrimSpace(oldPlain[i]) != "" {
				m.pushScrollback(oldRendered[i])
			}
		}
	}

	if len(m.scrollback) > maxScrollback {
		m.scrollback = m.scrollback[len(m.scrollback)-maxScrollback:]
	}
}

// pushScrollback appends a line unless it matches a recent entry. Repeated
// full-screen redraws would otherwise flood the buffer with duplicates.
func (m *Model) pushScrollback(line string) {
	check := 20
	if check > len(m.scrollback) {
		check = len(m.scrollback)
	}
	for i := len(m.scrollback) - check; i < len(m.scrollback); i++ {
		if m.scrollback[i] == line {
			return
		}
	}
	m.scrollback = append(m.scrollback, line)
}

// View renders the terminal screen.
func (m *Model) View() string {
	w, h := m.Size()
	if !m.ready || w <= 0 || h <= 0 {
		return lipgloss.NewStyle().
			Foreground(theme.TextMuted).
			Render("Initializing terminal...")
	}

	if m.vt != nil {
		return m.renderVT()
	}

	return lipgloss.NewStyle().
		Foreground(theme.TextMuted).
		Italic(true).
		Render("No process running")
}

// SetSize updates the component's dimensions and resizes the PTY.
func (m *Model) SetSize(width, height int) {
	m.Base.SetSize(width, height)
	m.ready = true

	// Resizing snaps back to the live view.
	m.scrollOffset = 0

	if m.vt != nil && width > 0 && height > 0 {
		m.vt.Resize(width, height)
	}

	if m.running && m.pty != nil && width > 0 && height > 0 {
		pty.Setsize(m.pty, &pty.Winsize{
			Rows: uint16(height),
			Cols: uint16(width),
		})
	}
}

// Running returns whether a process is running.
func (m *Model) Running() bool {
	return m.running
}

// ExitErr returns the error from the last process exit, if any.
func (m *Model) ExitErr() error {
	return m.exitErr
}

// Stop kills the running process and releases the PTY.
func (m *Model) Stop() {
	if m.cmd != nil && m.cmd.Process != nil {
		m.cmd.Process.Kill()
	}
	if m.pty != nil {
		m.pty.Close()
		m.pty = nil
	}
	m.running = false
}

// screenToTextPosition converts content coordinates to a line and column in
// the text the selection model sees.
func (m *Model) screenToTextPosition(x, y int) (line, col int) {
	line = y
	if m.scrollOffset > 0 {
		start := len(m.scrollback) - m.scrollOffset
		if start < 0 {
			start = 0
		}
		line = start + y
	}
	return line, x
}

// updateSelectionContent snapshots the visible text into the selection
// model so drags and copies read consistent content.
func (m *Model) updateSelectionContent() {
	if m.vt == nil {
		m.selection.SetContent(nil)
		return
	}

	m.vt.Lock()
	defer m.vt.Unlock()

	cols, rows := m.vt.Size()
	if cols <= 0 || rows <= 0 {
		m.selection.SetContent(nil)
		return
	}

	var lines []string
	if m.scrollOffset > 0 && len(m.scrollback) > 0 {
		start := len(m.scrollback) - m.scrollOffset
		if start < 0 {
			start = 0
		}
		for i := start; i < len(m.scrollback) && len(lines) < rows; i++ {
			lines = append(lines, stripANSI(m.scrollback[i]))
		}
		for row := 0; len(lines) < rows; row++ {
			lines = append(lines, m.screenLinePlain(cols, row))
		}
	} else {
		for row := 0; row < rows; row++ {
			lines = append(lines, m.screenLinePlain(cols, row))
		}
	}

	m.selection.SetContent(lines)
}

// HasSelection returns true if there is an active text selection.
func (m *Model) HasSelection() bool {
	return m.selection.HasSelection()
}

// SelectedText returns the currently selected text.
func (m *Model) SelectedText() string {
	return m.selection.Text()
}

// looksLikeEscapeFragment reports whether s is a fragment of a split escape
// sequence that leaked through as runes.
func looksLikeEscapeFragment(s string) bool {
	if s == "[" || s == "<" || s == "[<" {
		return true
	}
	if len(s) > 0 && s[0] == '[' {
		for i := 1; i < len(s); i++ {
			c := s[i]
			if c != ';' && c != '<' && (c < '0' || c > '9') {
				return false
			}
		}
		return len(s) > 1
	}
	return false
}

// looksLikeMouseSequence reports whether s is a partial SGR mouse sequence,
// such as "65;83;57M", that should not reach the PTY.
func looksLikeMouseSequence(s string) bool {
	if len(s) < 3 {
		return false
	}
	last := s[len(s)-1]
	if last != 'M' && last != 'm' {
		return false
	}
	for i := 0; i < len(s)-1; i++ {
		c := s[i]
		if c != ';' && (c < '0' || c > '9') && c != '<' {
			return false
		}
	}
	return true
}
