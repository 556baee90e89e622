package simulator

import (
	"fmt"
	"strings"

	"vfdctl/internal/protocol"
)

// Snapshot is a copy of the simulator state, suitable for JSON output.
type Snapshot struct {
	Lines         [rows]string     `json:"lines"`
	Mode          string           `json:"mode"`
	Brightness    int              `json:"brightness"`
	DisplayOn     bool             `json:"displayOn"`
	CursorVisible bool             `json:"cursorVisible"`
	CursorCol     int              `json:"cursorCol"`
	CursorRow     int              `json:"cursorRow"`
	Window        *protocol.Window `json:"window,omitempty"`
	ScrollText    string           `json:"scrollText,omitempty"`
}

// Line returns the 20-character content of row (1 or 2). It returns an empty
// string for any other row.
func (s *Simulator) Line(row int) string {
	if row < 1 || row > rows {
		return ""
	}
	return string(s.grid[row-1][:])
}

// Lines returns both rows.
func (s *Simulator) Lines() [rows]string {
	return [rows]string{s.Line(1), s.Line(2)}
}

// Visible returns what a viewer would see: both rows, or blanks while the
// display is switched off.
func (s *Simulator) Visible() [rows]string {
	if !s.displayOn {
		blank := strings.Repeat(" ", width)
		return [rows]string{blank, blank}
	}
	return s.Lines()
}

func (s *Simulator) Mode() protocol.Mode { return s.mode }
func (s *Simulator) Brightness() int     { return s.brightness }
func (s *Simulator) DisplayOn() bool     { return s.displayOn }
func (s *Simulator) CursorVisible() bool { return s.cursorVisible }
func (s *Simulator) Regime() ScrollRegime { return s.regime }

// ScrollText is the text of the running marquee, if any.
func (s *Simulator) ScrollText() string { return s.scrollText }

// Commands is the number of commands decoded since creation or Reset.
func (s *Simulator) Commands() int { return s.commands }

// Cursor returns the 1-based cursor position.
func (s *Simulator) Cursor() (col, row int) {
	return s.col + 1, s.row + 1
}

// ActiveWindow returns the mirrored window, if one is set.
func (s *Simulator) ActiveWindow() (protocol.Window, bool) {
	if s.window == nil {
		return protocol.Window{}, false
	}
	return *s.window, true
}

// Snapshot copies the current state.
func (s *Simulator) Snapshot() Snapshot {
	col, row := s.Cursor()
	snap := Snapshot{
		Lines:         s.Lines(),
		Mode:          s.mode.String(),
		Brightness:    s.brightness,
		DisplayOn:     s.displayOn,
		CursorVisible: s.cursorVisible,
		CursorCol:     col,
		CursorRow:     row,
		ScrollText:    s.scrollText,
	}
	if w, ok := s.ActiveWindow(); ok {
		snap.Window = &w
	}
	return snap
}

// AssertLineEquals checks row against want, padded with spaces to the full width.
func (s *Simulator) AssertLineEquals(row int, want string) error {
	if err := checkRow(row); err != nil {
		return err
	}
	expected := protocol.FitRow(want)
	if got := s.Line(row); got != expected {
		return fmt.Errorf("line %d: expected %q, got %q", row, expected, got)
	}
	return nil
}

// AssertLineContains checks that row contains sub.
func (s *Simulator) AssertLineContains(row int, sub string) error {
	if err := checkRow(row); err != nil {
		return err
	}
	if got := s.Line(row); !strings.Contains(got, sub) {
		return fmt.Errorf("line %d: %q does not contain %q", row, got, sub)
	}
	return nil
}

// AssertCharAt checks the character at 1-based (col,row).
func (s *Simulator) AssertCharAt(col, row int, want byte) error {
	if err := checkCell(col, row); err != nil {
		return err
	}
	if got := s.grid[row-1][col-1]; got != want {
		return fmt.Errorf("char at (%d,%d): expected %q, got %q", col, row, want, got)
	}
	return nil
}

// AssertRegionEquals checks a rectangular region whose top-left corner is
// (col,row). Each line of want covers one row; all lines must be the same
// length and fit on the display.
func (s *Simulator) AssertRegionEquals(col, row int, want ...string) error {
	if len(want) == 0 {
		return fmt.Errorf("region: no expected rows given")
	}
	n := len(want[0])
	for i, line := range want {
		if len(line) != n {
			return fmt.Errorf("region: row %d has width %d, expected %d", i+1, len(line), n)
		}
		if err := checkCell(col, row+i); err != nil {
			return err
		}
		if n > 0 {
			if err := checkCell(col+n-1, row+i); err != nil {
				return err
			}
		}
		got := string(s.grid[row+i-1][col-1 : col-1+n])
		if got != line {
			return fmt.Errorf("region at (%d,%d): expected %q, got %q", col, row+i, line, got)
		}
	}
	return nil
}

func (s *Simulator) AssertBrightness(want int) error {
	if s.brightness != want {
		return fmt.Errorf("brightness: expected %d, got %d", want, s.brightness)
	}
	return nil
}

func (s *Simulator) AssertDisplayOn(want bool) error {
	if s.displayOn != want {
		return fmt.Errorf("display on: expected %t, got %t", want, s.displayOn)
	}
	return nil
}

func (s *Simulator) AssertCursorVisible(want bool) error {
	if s.cursorVisible != want {
		return fmt.Errorf("cursor visible: expected %t, got %t", want, s.cursorVisible)
	}
	return nil
}

func checkRow(row int) error {
	if row < 1 || row > rows {
		return fmt.Errorf("row %d is off the display", row)
	}
	return nil
}

func checkCell(col, row int) error {
	if err := checkRow(row); err != nil {
		return err
	}
	if col < 1 || col > width {
		return fmt.Errorf("column %d is off the display", col)
	}
	return nil
}
