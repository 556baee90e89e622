package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"vfdctl/internal/protocol"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("EOF")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &ValidationError{Field: "brightness", Message: "level must be 1-4, got 5"}, "invalid brightness: level must be 1-4, got 5"},
		{"state", &StateError{Op: "enter viewport", Message: "no window is set, call SetWindow first"}, "enter viewport: no window is set, call SetWindow first"},
		{"mode", &ModeError{Op: "brightness", Mode: protocol.ModeString}, "brightness requires normal mode, display is in string mode (clear first or enable auto-clear)"},
		{"transport", &TransportError{Op: "clear", Err: cause}, "transport failed during clear: EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}

	assert.ErrorIs(t, &TransportError{Op: "clear", Err: cause}, cause)
}

func TestCallConfigPick(t *testing.T) {
	assert.Equal(t, 7, int(newCallConfig(nil).pick(7)))
	assert.Equal(t, 0, int(newCallConfig([]CallOption{WithDelay(0)}).pick(7)))
}
