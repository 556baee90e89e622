package protocol

import "fmt"

const (
	// Width is the number of character cells per row.
	Width = 20
	// Rows is the number of rows on the display.
	Rows = 2
)

// Mode is the command-set regime the display is currently in.
type Mode int

const (
	// ModeNormal accepts every command.
	ModeNormal Mode = iota
	// ModeString is entered by the ESC Q A/B line writes.
	ModeString
	// ModeScroll is entered by the ESC Q D marquee.
	ModeScroll
	// ModeViewport is window-constrained horizontal scroll.
	ModeViewport
)

// String makes Mode satisfy the fmt.Stringer interface.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeString:
		return "string"
	case ModeScroll:
		return "scroll"
	case ModeViewport:
		return "viewport"
	default:
		return "unknown"
	}
}

// Window is a column range on one line, 1-based and inclusive.
type Window struct {
	Line  int `json:"line" yaml:"line"`
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Validate reports whether the window lies on the display.
func (w Window) Validate() error {
	if w.Line != 1 && w.Line != 2 {
		return fmt.Errorf("line must be 1 or 2, got %d", w.Line)
	}
	if w.Start < 1 || w.Start > w.End || w.End > Width {
		return fmt.Errorf("invalid window range: start=%d, end=%d", w.Start, w.End)
	}
	return nil
}

// Width returns the number of columns covered by the window.
func (w Window) Width() int {
	return w.End - w.Start + 1
}

// String renders the window as "line 1, cols 4-10".
func (w Window) String() string {
	return fmt.Sprintf("line %d, cols %d-%d", w.Line, w.Start, w.End)
}
