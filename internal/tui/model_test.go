package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vfdctl/internal/display"
	"vfdctl/internal/render"
	"vfdctl/pkg/logging"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	opts := display.DefaultOptions()
	opts.Sleep = func(time.Duration) {}
	ctrl, err := display.NewSimulatorOnly(opts)
	require.NoError(t, err)
	return NewModel(Config{Controller: ctrl, Renderer: render.New(ctrl, render.DefaultOptions())}, nil)
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func TestTypingRendersFrames(t *testing.T) {
	m := newTestModel(t)

	m = typeText(m, "HELLO")
	assert.NoError(t, m.ctrl.Simulator().AssertLineEquals(1, "HELLO"))

	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, 1, m.focus)
	m = typeText(m, "WORLD")

	assert.Equal(t, [2]string{"HELLO", "WORLD"}, m.Lines())
	assert.NoError(t, m.ctrl.Simulator().AssertLineEquals(2, "WORLD"))
	assert.Equal(t, 2, m.renderer.Stats().Frames)
	assert.Contains(t, m.status, "frame 2")

	m, _ = press(m, tea.KeyShiftTab)
	assert.Equal(t, 0, m.focus)
}

func TestClearResetsEditorsAndDisplay(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "ABC")

	m, _ = press(m, tea.KeyCtrlL)

	assert.Equal(t, [2]string{"", ""}, m.Lines())
	assert.NoError(t, m.ctrl.Simulator().AssertLineEquals(1, ""))
	assert.Equal(t, "display cleared", m.status)
}

func TestBrightnessCycles(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(m, tea.KeyCtrlB)
	assert.Equal(t, 1, m.brightness)
	assert.NoError(t, m.ctrl.Simulator().AssertBrightness(1))

	m, _ = press(m, tea.KeyCtrlB)
	assert.Equal(t, 2, m.brightness)
}

func TestCopyScreen(t *testing.T) {
	original := clipboardWriteAll
	defer func() { clipboardWriteAll = original }()

	var copied string
	clipboardWriteAll = func(text string) error {
		copied = text
		return nil
	}

	m := newTestModel(t)
	m = typeText(m, "COPY ME")
	m, _ = press(m, tea.KeyCtrlY)

	assert.Equal(t, "COPY ME             \n"+strings.Repeat(" ", 20), copied)
	assert.Equal(t, "screen copied to clipboard", m.status)

	clipboardWriteAll = func(string) error { return errors.New("no clipboard") }
	m, _ = press(m, tea.KeyCtrlY)
	assert.ErrorContains(t, m.err, "no clipboard")
	assert.Contains(t, m.View(), "failed to copy screen")
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := press(m, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestLogEntries(t *testing.T) {
	ch := make(chan logging.LogEntry, 1)
	m := newTestModel(t)
	m.logChannel = ch

	ch <- logging.LogEntry{Level: logging.LevelWarn, Subsystem: "CD5220", Message: "auto-clearing"}
	msg := listenForLogs(ch)()
	next, cmd := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, cmd, "keeps listening")
	require.Len(t, m.logs, 1)
	assert.Contains(t, m.logs[0], "[WARN] [CD5220] auto-clearing")

	m.appendLog(logging.LogEntry{Level: logging.LevelDebug, Message: "hidden"})
	assert.Len(t, m.logs, 1, "debug entries need debug mode")

	for i := 0; i < 10; i++ {
		m.appendLog(logging.LogEntry{Level: logging.LevelInfo, Message: "line"})
	}
	assert.Len(t, m.logs, maxLogLines)

	close(ch)
	assert.Nil(t, listenForLogs(ch)())
	assert.Nil(t, listenForLogs(nil))
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "ON SCREEN")

	view := m.View()
	assert.Contains(t, view, "vfdctl preview")
	assert.Contains(t, view, "ON SCREEN")
	assert.Contains(t, view, "mode normal")
	assert.Contains(t, view, "ctrl+l clear")
}

func TestNewProgramNeedsSession(t *testing.T) {
	_, err := NewProgram(Config{}, nil)
	assert.Error(t, err)
}
