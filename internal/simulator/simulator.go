// Package simulator models a CD5220 display by replaying the literal bytes a
// controller transmits. It decodes through protocol.Parse, the same table the
// encoder uses, so a test that inspects the simulator also checks the wire
// encoding of every command it sent.
package simulator

import (
	"fmt"
	"strings"

	"vfdctl/internal/protocol"
)

const (
	width = protocol.Width
	rows  = protocol.Rows

	defaultBrightness = 4
)

// ScrollRegime is the cursor-write regime chosen by ESC DC1/DC2/DC3.
type ScrollRegime int

const (
	RegimeOverwrite ScrollRegime = iota
	RegimeVertical
	RegimeHorizontal
)

// Simulator is an in-memory model of the visible grid and ancillary state.
// It is not safe for concurrent use.
type Simulator struct {
	grid [rows][width]byte

	// 0-based cursor position
	col int
	row int

	brightness    int
	displayOn     bool
	cursorVisible bool
	regime        ScrollRegime

	mode        protocol.Mode
	window      *protocol.Window
	viewportBuf string
	scrollText  string

	commands int
}

// New returns a simulator in the power-on state.
func New() *Simulator {
	s := &Simulator{}
	s.powerOn()
	return s
}

func (s *Simulator) powerOn() {
	s.clearGrid()
	s.brightness = defaultBrightness
	s.displayOn = true
	s.cursorVisible = false
	s.regime = RegimeOverwrite
	s.mode = protocol.ModeNormal
	s.window = nil
	s.viewportBuf = ""
	s.scrollText = ""
}

func (s *Simulator) clearGrid() {
	for r := range s.grid {
		s.blankRow(r)
	}
	s.col, s.row = 0, 0
}

func (s *Simulator) blankRow(r int) {
	for c := range s.grid[r] {
		s.grid[r][c] = ' '
	}
}

// Feed decodes b and applies every command in it. Commands decoded before a
// decode error are still applied.
func (s *Simulator) Feed(b []byte) error {
	cmds, err := protocol.Parse(b)
	for _, c := range cmds {
		s.Apply(c)
	}
	if err != nil {
		return fmt.Errorf("simulator could not decode %q: %w", protocol.Hex(b), err)
	}
	return nil
}

// Apply updates the model for a single decoded command.
func (s *Simulator) Apply(c protocol.Command) {
	s.commands++

	switch c.Op {
	case protocol.OpClear:
		s.clearGrid()
		s.mode = protocol.ModeNormal
		s.window = nil
		s.viewportBuf = ""
		s.scrollText = ""

	case protocol.OpInitialize:
		s.powerOn()

	case protocol.OpCancelLine:
		// CAN blanks the line holding the cursor and drops back to normal mode.
		s.blankRow(s.row)
		s.col = 0
		s.mode = protocol.ModeNormal
		s.viewportBuf = ""
		s.scrollText = ""

	case protocol.OpOverwriteMode:
		s.regime = RegimeOverwrite
	case protocol.OpVerticalScrollMode:
		s.regime = RegimeVertical
	case protocol.OpHorizontalScrollMode:
		s.regime = RegimeHorizontal
		if s.window != nil {
			s.mode = protocol.ModeViewport
			s.viewportBuf = ""
		}

	case protocol.OpCursorOn:
		s.cursorVisible = true
	case protocol.OpCursorOff:
		s.cursorVisible = false

	case protocol.OpSetCursor:
		s.col = clamp(c.Col-1, 0, width-1)
		s.row = clamp(c.Row-1, 0, rows-1)
		if s.mode == protocol.ModeViewport {
			s.viewportBuf = ""
		}
	case protocol.OpCursorUp:
		s.row = clamp(s.row-1, 0, rows-1)
	case protocol.OpCursorDown:
		s.row = clamp(s.row+1, 0, rows-1)
	case protocol.OpCursorLeft:
		s.col--
		if s.col < 0 {
			s.col = width - 1
			s.row = (s.row + rows - 1) % rows
		}
	case protocol.OpCursorRight:
		s.advance()
	case protocol.OpCursorHome:
		s.col, s.row = 0, 0

	case protocol.OpBrightness:
		if c.Level >= 1 && c.Level <= 4 {
			s.brightness = c.Level
		}
	case protocol.OpDisplayOn:
		s.displayOn = true
	case protocol.OpDisplayOff:
		s.displayOn = false

	case protocol.OpStringUpper, protocol.OpStringLower:
		r := 0
		if c.Op == protocol.OpStringLower {
			r = 1
		}
		copy(s.grid[r][:], protocol.FitRow(c.Text))
		s.col, s.row = 0, r
		s.mode = protocol.ModeString

	case protocol.OpMarquee:
		s.scrollText = c.Text
		copy(s.grid[0][:], protocol.FitRow(c.Text))
		s.col, s.row = 0, 0
		s.mode = protocol.ModeScroll

	case protocol.OpSetWindow:
		// The device ignores windows it cannot draw.
		if c.Window.Validate() != nil {
			break
		}
		w := c.Window
		s.window = &w
		s.viewportBuf = ""
	case protocol.OpClearWindow:
		if s.window != nil && s.window.Line == c.Window.Line {
			s.window = nil
		}
		s.viewportBuf = ""

	case protocol.OpInternationalFont, protocol.OpExtendedFont:
		// Font tables only change glyph shapes, which the grid does not model.

	case protocol.OpText:
		s.writeText(c.Text)
	}
}

func (s *Simulator) writeText(text string) {
	if s.mode == protocol.ModeViewport && s.window != nil && s.row == s.window.Line-1 {
		s.viewportBuf += text
		s.paintWindow(TailFit(s.viewportBuf, s.window.Width()))
		return
	}

	for i := 0; i < len(text); i++ {
		s.grid[s.row][s.col] = text[i]
		s.advance()
	}
}

func (s *Simulator) paintWindow(visible string) {
	w := s.window
	copy(s.grid[w.Line-1][w.Start-1:w.End], visible)
	s.row = w.Line - 1
	s.col = clamp(w.Start-1+len(strings.TrimRight(visible, " ")), 0, width-1)
}

// advance moves the cursor one cell right, wrapping to the next row past the
// last column. Past the bottom-right cell the vertical regime scrolls the
// rows up; the other regimes wrap to home.
func (s *Simulator) advance() {
	s.col++
	if s.col < width {
		return
	}
	s.col = 0
	s.row++
	if s.row < rows {
		return
	}
	if s.regime == RegimeVertical {
		s.grid[0] = s.grid[1]
		s.blankRow(1)
		s.row = rows - 1
		return
	}
	s.row = 0
}

// WriteAt writes text directly into the grid at 1-based (col,row) without
// going through the byte decoder or the mode model. Characters past the last
// column are dropped.
func (s *Simulator) WriteAt(col, row int, text string) error {
	if row < 1 || row > rows || col < 1 || col > width {
		return fmt.Errorf("position (%d,%d) is off the display", col, row)
	}
	text = protocol.Sanitize(text)
	for i := 0; i < len(text) && col-1+i < width; i++ {
		s.grid[row-1][col-1+i] = text[i]
	}
	return nil
}

// Reset returns the simulator to the power-on state.
func (s *Simulator) Reset() {
	s.powerOn()
	s.commands = 0
}

// TailFit returns the last n characters of text, right-padded with spaces to n.
func TailFit(text string, n int) string {
	if len(text) > n {
		return text[len(text)-n:]
	}
	return text + strings.Repeat(" ", n-len(text))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
