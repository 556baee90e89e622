package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"vfdctl/internal/protocol"
	"vfdctl/pkg/logging"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case logEntryMsg:
		m.appendLog(msg.entry)
		return m, listenForLogs(m.logChannel)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus((m.focus + 1) % protocol.Rows)
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus((m.focus + protocol.Rows - 1) % protocol.Rows)
		case key.Matches(msg, m.keys.Clear):
			return m.clear(), nil
		case key.Matches(msg, m.keys.Brightness):
			return m.cycleBrightness(), nil
		case key.Matches(msg, m.keys.Copy):
			return m.copyScreen(), nil
		}
	}

	before := m.Lines()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.Lines() != before {
		m = m.writeFrame()
	}
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m Model) writeFrame() Model {
	lines := m.Lines()
	if err := m.renderer.WriteFrame(lines[0], lines[1]); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	stats := m.renderer.Stats()
	m.status = fmt.Sprintf("frame %d, %d commands sent", stats.Frames, stats.Commands)
	return m
}

func (m Model) clear() Model {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	if err := m.renderer.Clear(); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.status = "display cleared"
	return m
}

func (m Model) cycleBrightness() Model {
	next := m.brightness%4 + 1
	if err := m.ctrl.SetBrightness(next); err != nil {
		m.err = err
		return m
	}
	m.brightness = next
	m.err = nil
	m.status = fmt.Sprintf("brightness %d", next)
	return m
}

func (m Model) copyScreen() Model {
	screen := m.Screen()
	if err := clipboardWriteAll(strings.Join(screen[:], "\n")); err != nil {
		m.err = fmt.Errorf("failed to copy screen: %w", err)
		return m
	}
	m.err = nil
	m.status = "screen copied to clipboard"
	return m
}

func (m *Model) appendLog(entry logging.LogEntry) {
	if entry.Level < logging.LevelInfo && !m.debug {
		return
	}
	line := fmt.Sprintf("%s [%s] [%s] %s",
		entry.Timestamp.Format("15:04:05.000"),
		entry.Level.String(),
		entry.Subsystem,
		entry.Message)
	if entry.Err != nil {
		line = fmt.Sprintf("%s -- Error: %v", line, entry.Err)
	}
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}
