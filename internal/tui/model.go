package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vfdctl/internal/display"
	"vfdctl/internal/protocol"
	"vfdctl/internal/render"
	"vfdctl/pkg/logging"
)

// For mocking in tests
var clipboardWriteAll = clipboard.WriteAll

// Config is what the preview needs from an open session.
type Config struct {
	Controller *display.Controller
	Renderer   *render.Renderer
	DebugMode  bool
}

// Model is the Bubble Tea model of the preview.
type Model struct {
	ctrl     *display.Controller
	renderer *render.Renderer
	keys     KeyMap
	debug    bool

	inputs [protocol.Rows]textinput.Model
	focus  int

	brightness int
	status     string
	err        error

	logChannel <-chan logging.LogEntry
	logs       []string
}

// logEntryMsg carries one record from the TUI log channel.
type logEntryMsg struct {
	entry logging.LogEntry
}

// NewModel builds the preview model. logChannel may be nil.
func NewModel(cfg Config, logChannel <-chan logging.LogEntry) Model {
	m := Model{
		ctrl:       cfg.Controller,
		renderer:   cfg.Renderer,
		keys:       DefaultKeyMap(),
		debug:      cfg.DebugMode,
		brightness: 4,
		logChannel: logChannel,
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%d> ", i+1)
		ti.Placeholder = fmt.Sprintf("line %d", i+1)
		ti.CharLimit = protocol.Width
		ti.Width = protocol.Width
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
	return m
}

// NewProgram creates the Bubble Tea program for the preview.
func NewProgram(cfg Config, logChannel <-chan logging.LogEntry) (*tea.Program, error) {
	if cfg.Controller == nil || cfg.Renderer == nil {
		return nil, fmt.Errorf("preview needs an open display session")
	}
	return tea.NewProgram(NewModel(cfg, logChannel), tea.WithAltScreen()), nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForLogs(m.logChannel))
}

// listenForLogs waits for the next log entry. It returns nil once the
// channel is closed so the loop ends with the program.
func listenForLogs(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return logEntryMsg{entry: entry}
	}
}

// Lines returns the current content of both editors.
func (m Model) Lines() [protocol.Rows]string {
	return [protocol.Rows]string{m.inputs[0].Value(), m.inputs[1].Value()}
}

// Screen returns what the display shows: the simulator when attached,
// otherwise the renderer's last frame.
func (m Model) Screen() [protocol.Rows]string {
	if sim := m.ctrl.Simulator(); sim != nil {
		return sim.Visible()
	}
	return m.renderer.Frame()
}
