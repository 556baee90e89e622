package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("vfdctl preview"))
	b.WriteString("\n\n")

	screen := m.Screen()
	style := screenStyle
	if sim := m.ctrl.Simulator(); sim != nil && !sim.DisplayOn() {
		style = screenOffStyle
	}
	b.WriteString(style.Render(strings.Join(screen[:], "\n")))
	b.WriteString("\n")

	info := m.ctrl.Info()
	b.WriteString(labelStyle.Render(fmt.Sprintf("mode %s · brightness %d · auto-clear %t", info.Mode, m.brightness, info.AutoClear)))
	b.WriteString("\n\n")

	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")

	if len(m.logs) > 0 {
		b.WriteString(logStyle.Render(strings.Join(m.logs, "\n")))
		b.WriteString("\n")
	}

	var help []string
	for _, k := range m.keys.ShortHelp() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(strings.Join(help, " · ")))
	return b.String()
}
