package protocol

import (
	"errors"
	"fmt"
)

// ErrTruncated is wrapped by a DecodeError when the stream ends inside a command.
var ErrTruncated = errors.New("truncated command")

// DecodeError reports a byte sequence that is not part of the command set.
type DecodeError struct {
	Offset int
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode at offset %d: %s", e.Offset, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Parse decodes a complete byte stream into commands. Commands decoded before
// an error are returned together with it.
func Parse(b []byte) ([]Command, error) {
	var cmds []Command
	i := 0
	for i < len(b) {
		switch c := b[i]; {
		case c == CLR:
			cmds = append(cmds, Clear())
			i++
		case c == CAN:
			cmds = append(cmds, CancelLine())
			i++
		case c == ESC:
			cmd, n, err := parseEscape(b[i:])
			if err != nil {
				err.Offset += i
				return cmds, err
			}
			cmds = append(cmds, cmd)
			i += n
		case isPrintable(c):
			j := i
			for j < len(b) && isPrintable(b[j]) {
				j++
			}
			cmds = append(cmds, Command{Op: OpText, Text: string(b[i:j])})
			i = j
		default:
			return cmds, &DecodeError{Offset: i, Reason: fmt.Sprintf("unexpected byte 0x%02X", c)}
		}
	}
	return cmds, nil
}

// parseEscape decodes one ESC-prefixed command at the start of b and returns
// it with the number of bytes consumed. Offsets in errors are relative to b.
func parseEscape(b []byte) (Command, int, *DecodeError) {
	need := func(n int) *DecodeError {
		if len(b) < n {
			return &DecodeError{Offset: len(b), Reason: fmt.Sprintf("need %d bytes", n), Err: ErrTruncated}
		}
		return nil
	}

	if err := need(2); err != nil {
		return Command{}, 0, err
	}

	switch b[1] {
	case cmdInit:
		return Initialize(), 2, nil
	case cmdOverwrite:
		return OverwriteMode(), 2, nil
	case cmdVerticalScroll:
		return VerticalScrollMode(), 2, nil
	case cmdHorizontalScroll:
		return HorizontalScrollMode(), 2, nil
	case cmdDisplayOn:
		return DisplayOn(), 2, nil
	case cmdDisplayOff:
		return DisplayOff(), 2, nil

	case cmdCursorVisible:
		if err := need(3); err != nil {
			return Command{}, 0, err
		}
		switch b[2] {
		case 0x00:
			return CursorOff(), 3, nil
		case 0x01:
			return CursorOn(), 3, nil
		}
		return Command{}, 0, &DecodeError{Offset: 2, Reason: fmt.Sprintf("bad cursor visibility 0x%02X", b[2])}

	case cmdCursorPosition:
		if err := need(4); err != nil {
			return Command{}, 0, err
		}
		return SetCursor(int(b[2]), int(b[3])), 4, nil

	case cmdCursorPrefix:
		if err := need(3); err != nil {
			return Command{}, 0, err
		}
		switch b[2] {
		case cursorUp:
			return CursorUp(), 3, nil
		case cursorDown:
			return CursorDown(), 3, nil
		case cursorLeft:
			return CursorLeft(), 3, nil
		case cursorRight:
			return CursorRight(), 3, nil
		case cursorHome:
			return CursorHome(), 3, nil
		}
		return Command{}, 0, &DecodeError{Offset: 2, Reason: fmt.Sprintf("bad cursor movement 0x%02X", b[2])}

	case cmdBrightness:
		if err := need(3); err != nil {
			return Command{}, 0, err
		}
		return Brightness(int(b[2])), 3, nil

	case cmdString:
		if err := need(3); err != nil {
			return Command{}, 0, err
		}
		var op Op
		switch b[2] {
		case stringUpper:
			op = OpStringUpper
		case stringLower:
			op = OpStringLower
		case stringScroll:
			op = OpMarquee
		default:
			return Command{}, 0, &DecodeError{Offset: 2, Reason: fmt.Sprintf("bad string selector 0x%02X", b[2])}
		}
		for j := 3; j < len(b); j++ {
			if b[j] == CR {
				return Command{Op: op, Text: string(b[3:j])}, j + 1, nil
			}
		}
		return Command{}, 0, &DecodeError{Offset: len(b), Reason: "missing string terminator", Err: ErrTruncated}

	case cmdWindow:
		if err := need(6); err != nil {
			return Command{}, 0, err
		}
		line := int(b[5])
		switch b[2] {
		case 0x00:
			if line != 1 && line != 2 {
				return Command{}, 0, &DecodeError{Offset: 5, Reason: fmt.Sprintf("window line must be 1 or 2, got %d", line)}
			}
			return ClearWindow(line), 6, nil
		case 0x01:
			w := Window{Line: line, Start: int(b[3]) + 1, End: int(b[4]) + 1}
			if err := w.Validate(); err != nil {
				return Command{}, 0, &DecodeError{Offset: 3, Reason: err.Error()}
			}
			return SetWindow(w), 6, nil
		}
		return Command{}, 0, &DecodeError{Offset: 2, Reason: fmt.Sprintf("bad window flag 0x%02X", b[2])}

	case cmdIntlFont, cmdExtFont:
		if err := need(3); err != nil {
			return Command{}, 0, err
		}
		if b[1] == cmdIntlFont {
			return InternationalFont(b[2]), 3, nil
		}
		return ExtendedFont(b[2]), 3, nil
	}

	return Command{}, 0, &DecodeError{Offset: 1, Reason: fmt.Sprintf("unknown escape 0x%02X", b[1])}
}
