// Package preview draws the simulated 2x20 grid on a terminal.
package preview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FrameBorder mimics the bezel of the physical unit with plain ASCII so the
// preview survives logs and dumb terminals.
var FrameBorder = lipgloss.Border{
	Top:         "-",
	Bottom:      "-",
	Left:        "|",
	Right:       "|",
	TopLeft:     "+",
	TopRight:    "+",
	BottomLeft:  "+",
	BottomRight: "+",
}

var frameStyle = lipgloss.NewStyle().Border(FrameBorder)

// Option configures a Console.
type Option func(*Console)

// Verbose makes Observe redraw the frame even when the grid did not change.
func Verbose(v bool) Option {
	return func(c *Console) { c.verbose = v }
}

// InPlace makes consecutive frames overwrite each other instead of scrolling.
// Only useful when the writer is a terminal.
func InPlace(v bool) Option {
	return func(c *Console) { c.inPlace = v }
}

// Console writes framed snapshots of the grid to out.
type Console struct {
	out     io.Writer
	verbose bool
	inPlace bool

	last  [2]string
	seen  bool
	drawn int // lines of the last frame still directly above the cursor
}

func New(out io.Writer, opts ...Option) *Console {
	c := &Console{out: out}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Frame returns the boxed rendering of rows.
func Frame(rows [2]string) string {
	return frameStyle.Render(rows[0] + "\n" + rows[1])
}

// Render draws rows. After the first frame, and only in in-place mode, the
// previous frame is erased first.
func (c *Console) Render(rows [2]string) error {
	var b strings.Builder
	if c.inPlace {
		for i := 0; i < c.drawn; i++ {
			b.WriteString("\x1b[1A\x1b[2K")
		}
	}
	frame := Frame(rows)
	b.WriteString(frame)
	b.WriteString("\n")

	if _, err := io.WriteString(c.out, b.String()); err != nil {
		return fmt.Errorf("failed to draw preview: %w", err)
	}
	c.last = rows
	c.seen = true
	c.drawn = strings.Count(frame, "\n") + 1
	return nil
}

// Observe reports a command that has just been applied. When the grid
// changed the new frame is drawn; otherwise a single [non-visual] line with
// desc is printed, followed by the frame again in verbose mode.
func (c *Console) Observe(desc string, rows [2]string) error {
	if !c.seen || rows != c.last {
		return c.Render(rows)
	}
	if _, err := fmt.Fprintf(c.out, "[non-visual] %s\n", desc); err != nil {
		return fmt.Errorf("failed to draw preview: %w", err)
	}
	c.drawn = 0
	if c.verbose {
		return c.Render(rows)
	}
	return nil
}

// Reset forgets the last frame so the next Render starts on a fresh line.
func (c *Console) Reset() {
	c.seen = false
	c.drawn = 0
}
