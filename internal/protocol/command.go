package protocol

import (
	"fmt"
	"strings"
)

// Command bytes for the CD5220.
const (
	ESC = 0x1B
	CLR = 0x0C // Clear display, home cursor
	CAN = 0x18 // Cancel current line
	CR  = 0x0D // String terminator

	cmdInit             = 0x40 // '@'
	cmdOverwrite        = 0x11
	cmdVerticalScroll   = 0x12
	cmdHorizontalScroll = 0x13
	cmdCursorVisible    = 0x5F // '_'
	cmdCursorPosition   = 0x6C // 'l'
	cmdCursorPrefix     = 0x5B // '['
	cmdBrightness       = 0x2A // '*'
	cmdDisplayOn        = 0x3D // '='
	cmdDisplayOff       = 0x3C // '<'
	cmdString           = 0x51 // 'Q'
	cmdWindow           = 0x57 // 'W'
	cmdIntlFont         = 0x66 // 'f'
	cmdExtFont          = 0x63 // 'c'

	// ESC Q selectors
	stringUpper  = 0x41 // 'A'
	stringLower  = 0x42 // 'B'
	stringScroll = 0x44 // 'D'

	// ESC [ selectors
	cursorUp    = 0x41
	cursorDown  = 0x42
	cursorRight = 0x43
	cursorLeft  = 0x44
	cursorHome  = 0x48
)

// Op identifies a logical display operation.
type Op int

const (
	OpText Op = iota
	OpClear
	OpCancelLine
	OpInitialize
	OpOverwriteMode
	OpVerticalScrollMode
	OpHorizontalScrollMode
	OpCursorOn
	OpCursorOff
	OpSetCursor
	OpCursorUp
	OpCursorDown
	OpCursorLeft
	OpCursorRight
	OpCursorHome
	OpBrightness
	OpDisplayOn
	OpDisplayOff
	OpStringUpper
	OpStringLower
	OpMarquee
	OpSetWindow
	OpClearWindow
	OpInternationalFont
	OpExtendedFont
)

var opNames = map[Op]string{
	OpText:                 "text",
	OpClear:                "clear",
	OpCancelLine:           "cancel line",
	OpInitialize:           "initialize",
	OpOverwriteMode:        "overwrite mode",
	OpVerticalScrollMode:   "vertical scroll mode",
	OpHorizontalScrollMode: "horizontal scroll mode",
	OpCursorOn:             "cursor on",
	OpCursorOff:            "cursor off",
	OpSetCursor:            "set cursor",
	OpCursorUp:             "cursor up",
	OpCursorDown:           "cursor down",
	OpCursorLeft:           "cursor left",
	OpCursorRight:          "cursor right",
	OpCursorHome:           "cursor home",
	OpBrightness:           "brightness",
	OpDisplayOn:            "display on",
	OpDisplayOff:           "display off",
	OpStringUpper:          "string upper",
	OpStringLower:          "string lower",
	OpMarquee:              "scroll marquee",
	OpSetWindow:            "set window",
	OpClearWindow:          "clear window",
	OpInternationalFont:    "international font",
	OpExtendedFont:         "extended font",
}

// String makes Op satisfy the fmt.Stringer interface.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one logical display operation. Only the fields relevant to Op
// are meaningful.
type Command struct {
	Op Op

	// Col and Row address the cursor for OpSetCursor, 1-based.
	Col int
	Row int

	// Level is the brightness for OpBrightness, 1-4.
	Level int

	// Window is the range for OpSetWindow; only Window.Line is used by OpClearWindow.
	Window Window

	// Font is the font id for the font selection ops.
	Font byte

	// Text is the payload for OpText, OpStringUpper, OpStringLower and OpMarquee.
	Text string
}

func Clear() Command                { return Command{Op: OpClear} }
func CancelLine() Command           { return Command{Op: OpCancelLine} }
func Initialize() Command           { return Command{Op: OpInitialize} }
func OverwriteMode() Command        { return Command{Op: OpOverwriteMode} }
func VerticalScrollMode() Command   { return Command{Op: OpVerticalScrollMode} }
func HorizontalScrollMode() Command { return Command{Op: OpHorizontalScrollMode} }
func CursorOn() Command             { return Command{Op: OpCursorOn} }
func CursorOff() Command            { return Command{Op: OpCursorOff} }
func CursorUp() Command             { return Command{Op: OpCursorUp} }
func CursorDown() Command           { return Command{Op: OpCursorDown} }
func CursorLeft() Command           { return Command{Op: OpCursorLeft} }
func CursorRight() Command          { return Command{Op: OpCursorRight} }
func CursorHome() Command           { return Command{Op: OpCursorHome} }
func DisplayOn() Command            { return Command{Op: OpDisplayOn} }
func DisplayOff() Command           { return Command{Op: OpDisplayOff} }

// SetCursor moves the cursor to col (1-20), row (1-2).
func SetCursor(col, row int) Command { return Command{Op: OpSetCursor, Col: col, Row: row} }

// Brightness selects a brightness level 1-4.
func Brightness(level int) Command { return Command{Op: OpBrightness, Level: level} }

// Text writes literal characters at the cursor.
func Text(s string) Command { return Command{Op: OpText, Text: Sanitize(s)} }

// StringUpper writes a full upper row in string mode.
func StringUpper(s string) Command { return Command{Op: OpStringUpper, Text: FitRow(s)} }

// StringLower writes a full lower row in string mode.
func StringLower(s string) Command { return Command{Op: OpStringLower, Text: FitRow(s)} }

// Marquee starts the hardware scroll of the upper row.
func Marquee(s string) Command { return Command{Op: OpMarquee, Text: Sanitize(s)} }

// SetWindow defines a window range; w must already be validated.
func SetWindow(w Window) Command { return Command{Op: OpSetWindow, Window: w} }

// ClearWindow removes the window range on line.
func ClearWindow(line int) Command {
	return Command{Op: OpClearWindow, Window: Window{Line: line}}
}

func InternationalFont(id byte) Command { return Command{Op: OpInternationalFont, Font: id} }
func ExtendedFont(id byte) Command      { return Command{Op: OpExtendedFont, Font: id} }

// Bytes is shorthand for Encode(c).
func (c Command) Bytes() []byte {
	return Encode(c)
}

// Encode returns the exact wire bytes for c.
func Encode(c Command) []byte {
	switch c.Op {
	case OpText:
		return []byte(Sanitize(c.Text))
	case OpClear:
		return []byte{CLR}
	case OpCancelLine:
		return []byte{CAN}
	case OpInitialize:
		return []byte{ESC, cmdInit}
	case OpOverwriteMode:
		return []byte{ESC, cmdOverwrite}
	case OpVerticalScrollMode:
		return []byte{ESC, cmdVerticalScroll}
	case OpHorizontalScrollMode:
		return []byte{ESC, cmdHorizontalScroll}
	case OpCursorOn:
		return []byte{ESC, cmdCursorVisible, 0x01}
	case OpCursorOff:
		return []byte{ESC, cmdCursorVisible, 0x00}
	case OpSetCursor:
		return []byte{ESC, cmdCursorPosition, byte(c.Col), byte(c.Row)}
	case OpCursorUp:
		return []byte{ESC, cmdCursorPrefix, cursorUp}
	case OpCursorDown:
		return []byte{ESC, cmdCursorPrefix, cursorDown}
	case OpCursorLeft:
		return []byte{ESC, cmdCursorPrefix, cursorLeft}
	case OpCursorRight:
		return []byte{ESC, cmdCursorPrefix, cursorRight}
	case OpCursorHome:
		return []byte{ESC, cmdCursorPrefix, cursorHome}
	case OpBrightness:
		return []byte{ESC, cmdBrightness, byte(c.Level)}
	case OpDisplayOn:
		return []byte{ESC, cmdDisplayOn}
	case OpDisplayOff:
		return []byte{ESC, cmdDisplayOff}
	case OpStringUpper:
		return stringCommand(stringUpper, FitRow(c.Text))
	case OpStringLower:
		return stringCommand(stringLower, FitRow(c.Text))
	case OpMarquee:
		return stringCommand(stringScroll, Sanitize(c.Text))
	case OpSetWindow:
		// The hardware takes 0-based column offsets.
		return []byte{ESC, cmdWindow, 0x01, byte(c.Window.Start - 1), byte(c.Window.End - 1), byte(c.Window.Line)}
	case OpClearWindow:
		return []byte{ESC, cmdWindow, 0x00, 0x00, 0x00, byte(c.Window.Line)}
	case OpInternationalFont:
		return []byte{ESC, cmdIntlFont, c.Font}
	case OpExtendedFont:
		return []byte{ESC, cmdExtFont, c.Font}
	default:
		return nil
	}
}

func stringCommand(selector byte, text string) []byte {
	b := make([]byte, 0, len(text)+4)
	b = append(b, ESC, cmdString, selector)
	b = append(b, text...)
	return append(b, CR)
}

// Describe returns a short human description of c for logs and previews.
func (c Command) Describe() string {
	switch c.Op {
	case OpText:
		return fmt.Sprintf("Raw write: '%s'", c.Text)
	case OpSetCursor:
		return fmt.Sprintf("Cursor: (%d,%d)", c.Col, c.Row)
	case OpBrightness:
		return fmt.Sprintf("Set brightness: %d", c.Level)
	case OpStringUpper, OpStringLower:
		return fmt.Sprintf("%s: '%s'", capitalize(c.Op.String()), strings.TrimRight(c.Text, " "))
	case OpMarquee:
		return fmt.Sprintf("Scroll marquee: '%s'", c.Text)
	case OpSetWindow:
		return fmt.Sprintf("Set window: %s", c.Window)
	case OpClearWindow:
		return fmt.Sprintf("Clear window: line %d", c.Window.Line)
	case OpInternationalFont, OpExtendedFont:
		return fmt.Sprintf("Set %s: %d", c.Op, c.Font)
	default:
		return capitalize(c.Op.String())
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Sanitize drops every byte outside printable ASCII.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isPrintable(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FitRow sanitizes s and truncates or space-pads it to exactly Width characters.
func FitRow(s string) string {
	s = Sanitize(s)
	if len(s) > Width {
		return s[:Width]
	}
	return s + strings.Repeat(" ", Width-len(s))
}

func isPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// Hex formats b as space-separated upper-case hex pairs.
func Hex(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
