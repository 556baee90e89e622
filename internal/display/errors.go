package display

import (
	"fmt"

	"vfdctl/internal/protocol"
)

// ValidationError reports an argument outside its legal range. It is returned
// before any byte is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StateError reports an operation whose preconditions on the controller
// state are not met, such as entering viewport mode without a window.
type StateError struct {
	Op      string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// ModeError is returned by a normal-mode-only operation when the display is in
// another mode and auto-clear is disabled.
type ModeError struct {
	Op   string
	Mode protocol.Mode
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("%s requires normal mode, display is in %s mode (clear first or enable auto-clear)", e.Op, e.Mode)
}

// TransportError wraps a failure of the underlying byte channel.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failed during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
