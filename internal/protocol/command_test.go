package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWireTable(t *testing.T) {
	pad := func(s string) []byte { return []byte(s + strings.Repeat(" ", Width-len(s))) }
	join := func(parts ...[]byte) []byte {
		var out []byte
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}

	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{"clear", Clear(), []byte{0x0C}},
		{"cancel line", CancelLine(), []byte{0x18}},
		{"initialize", Initialize(), []byte{0x1B, 0x40}},
		{"overwrite", OverwriteMode(), []byte{0x1B, 0x11}},
		{"vertical scroll", VerticalScrollMode(), []byte{0x1B, 0x12}},
		{"horizontal scroll", HorizontalScrollMode(), []byte{0x1B, 0x13}},
		{"cursor on", CursorOn(), []byte{0x1B, 0x5F, 0x01}},
		{"cursor off", CursorOff(), []byte{0x1B, 0x5F, 0x00}},
		{"set cursor", SetCursor(5, 2), []byte{0x1B, 0x6C, 0x05, 0x02}},
		{"cursor up", CursorUp(), []byte{0x1B, 0x5B, 0x41}},
		{"cursor down", CursorDown(), []byte{0x1B, 0x5B, 0x42}},
		{"cursor left", CursorLeft(), []byte{0x1B, 0x5B, 0x44}},
		{"cursor right", CursorRight(), []byte{0x1B, 0x5B, 0x43}},
		{"cursor home", CursorHome(), []byte{0x1B, 0x5B, 0x48}},
		{"brightness", Brightness(3), []byte{0x1B, 0x2A, 0x03}},
		{"display on", DisplayOn(), []byte{0x1B, 0x3D}},
		{"display off", DisplayOff(), []byte{0x1B, 0x3C}},
		{"string upper", StringUpper("HELLO"), join([]byte{0x1B, 0x51, 0x41}, pad("HELLO"), []byte{0x0D})},
		{"string lower", StringLower("WORLD"), join([]byte{0x1B, 0x51, 0x42}, pad("WORLD"), []byte{0x0D})},
		{"marquee", Marquee("SCROLLING"), join([]byte{0x1B, 0x51, 0x44}, []byte("SCROLLING"), []byte{0x0D})},
		{"set window", SetWindow(Window{Line: 1, Start: 4, End: 10}), []byte{0x1B, 0x57, 0x01, 0x03, 0x09, 0x01}},
		{"clear window", ClearWindow(2), []byte{0x1B, 0x57, 0x00, 0x00, 0x00, 0x02}},
		{"international font", InternationalFont(2), []byte{0x1B, 0x66, 0x02}},
		{"extended font", ExtendedFont(1), []byte{0x1B, 0x63, 0x01}},
		{"text", Text("AB"), []byte("AB")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.cmd))
			assert.Equal(t, tt.want, tt.cmd.Bytes())
		})
	}
}

func TestStringModeTruncatesAndPads(t *testing.T) {
	b := Encode(StringUpper(strings.Repeat("A", 25)))
	require.Len(t, b, 3+Width+1)
	assert.Equal(t, strings.Repeat("A", Width), string(b[3:3+Width]))

	b = Encode(StringLower(""))
	assert.Equal(t, strings.Repeat(" ", Width), string(b[3:3+Width]))
}

func TestSanitizeDropsNonPrintable(t *testing.T) {
	assert.Equal(t, "caf", Sanitize("café"))
	assert.Equal(t, "AB", Sanitize("A\x0cB"))
	assert.Equal(t, []byte("AB"), Encode(Command{Op: OpText, Text: "A\rB"}))
}

func TestFitRow(t *testing.T) {
	assert.Len(t, FitRow("x"), Width)
	assert.Equal(t, "01234567890123456789", FitRow("0123456789012345678901234"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Clear", Clear().Describe())
	assert.Equal(t, "Cursor: (3,2)", SetCursor(3, 2).Describe())
	assert.Equal(t, "String upper: 'HI'", StringUpper("HI").Describe())
	assert.Equal(t, "Set window: line 1, cols 4-10", SetWindow(Window{Line: 1, Start: 4, End: 10}).Describe())
}

func TestHex(t *testing.T) {
	assert.Equal(t, "1B 40", Hex([]byte{0x1B, 0x40}))
	assert.Equal(t, "", Hex(nil))
}

func TestWindowValidate(t *testing.T) {
	tests := []struct {
		name    string
		w       Window
		wantErr bool
	}{
		{"full row", Window{Line: 1, Start: 1, End: 20}, false},
		{"single column", Window{Line: 2, Start: 7, End: 7}, false},
		{"line zero", Window{Line: 0, Start: 1, End: 5}, true},
		{"line three", Window{Line: 3, Start: 1, End: 5}, true},
		{"start zero", Window{Line: 1, Start: 0, End: 5}, true},
		{"start after end", Window{Line: 1, Start: 6, End: 5}, true},
		{"end past width", Window{Line: 1, Start: 1, End: 21}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, 7, Window{Line: 1, Start: 4, End: 10}.Width())
}

func TestParseInvertsEncode(t *testing.T) {
	cmds := []Command{
		Initialize(), Clear(), Brightness(4), OverwriteMode(), CursorOff(),
		SetCursor(1, 2), Text("HELLO"), CursorRight(), CursorHome(),
		StringUpper("TOP"), StringLower("BOTTOM"), Marquee("RUNNING TEXT"),
		SetWindow(Window{Line: 2, Start: 5, End: 10}), HorizontalScrollMode(),
		ClearWindow(2), InternationalFont(3), ExtendedFont(0), DisplayOff(),
		DisplayOn(), CursorOn(), CancelLine(), VerticalScrollMode(),
		CursorUp(), CursorDown(), CursorLeft(),
	}

	var stream []byte
	for _, c := range cmds {
		stream = append(stream, Encode(c)...)
	}

	got, err := Parse(stream)
	require.NoError(t, err)
	assert.Equal(t, cmds, got)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		in        []byte
		offset    int
		truncated bool
		decoded   int
	}{
		{"lone escape", []byte{0x1B}, 1, true, 0},
		{"short cursor position", []byte{0x0C, 0x1B, 0x6C, 0x01}, 4, true, 1},
		{"unterminated string", []byte{0x1B, 0x51, 0x41, 'A'}, 4, true, 0},
		{"unknown escape", []byte{0x1B, 0x99}, 1, false, 0},
		{"bad window flag", []byte{0x1B, 0x57, 0x02, 0, 0, 1}, 2, false, 0},
		{"window start after end", []byte{0x1B, 0x57, 0x01, 0x0A, 0x02, 0x01, 0x1B, 0x13, 'A', 'B'}, 3, false, 0},
		{"window past last column", []byte{0x0C, 0x1B, 0x57, 0x01, 0x00, 0x40, 0x01}, 4, false, 1},
		{"window on third line", []byte{0x1B, 0x57, 0x01, 0x00, 0x05, 0x03}, 3, false, 0},
		{"clear window on third line", []byte{0x1B, 0x57, 0x00, 0x00, 0x00, 0x03}, 5, false, 0},
		{"stray carriage return", []byte{'A', 0x0D}, 1, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.Error(t, err)

			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, tt.offset, decErr.Offset)
			assert.Equal(t, tt.truncated, errors.Is(err, ErrTruncated))
			assert.Len(t, got, tt.decoded)
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "normal", ModeNormal.String())
	assert.Equal(t, "string", ModeString.String())
	assert.Equal(t, "scroll", ModeScroll.String())
	assert.Equal(t, "viewport", ModeViewport.String())
	assert.Equal(t, "unknown", Mode(9).String())
}
