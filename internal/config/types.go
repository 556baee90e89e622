package config

import (
	"time"
)

// Config is the top-level configuration structure for vfdctl.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Display  DisplayConfig  `yaml:"display"`
	Timing   TimingConfig   `yaml:"timing"`
	Renderer RendererConfig `yaml:"renderer"`
	MCP      MCPConfig      `yaml:"mcp"`
}

// SerialConfig selects the port the display is attached to.
type SerialConfig struct {
	Port     string `yaml:"port,omitempty"`     // e.g. "/dev/ttyUSB0", "COM3"
	BaudRate int    `yaml:"baudRate,omitempty"` // default: 9600
}

// DisplayConfig holds the controller switches. Pointer fields distinguish
// "not set in this file" from an explicit false when layers are merged.
type DisplayConfig struct {
	Hardware         *bool `yaml:"hardware,omitempty"`         // Write to the serial port (default: true)
	Simulator        *bool `yaml:"simulator,omitempty"`        // Mirror every command into the simulator
	ConsolePreview   *bool `yaml:"consolePreview,omitempty"`   // Draw the simulated grid after every command
	ConsoleVerbose   *bool `yaml:"consoleVerbose,omitempty"`   // Redraw even for non-visual commands
	AutoClear        *bool `yaml:"autoClear,omitempty"`        // Clear on mode conflicts instead of failing (default: true)
	WarnOnTransition *bool `yaml:"warnOnTransition,omitempty"` // Log a warning for every auto-clear (default: true)
}

// TimingConfig holds settling delays as Go duration strings ("10ms").
// Most units work with no delay at all.
type TimingConfig struct {
	BaseCommandDelay    *time.Duration `yaml:"baseCommandDelay,omitempty"`
	ModeTransitionDelay *time.Duration `yaml:"modeTransitionDelay,omitempty"`
	InitializationDelay *time.Duration `yaml:"initializationDelay,omitempty"`
}

// RendererConfig configures the frame renderer.
type RendererConfig struct {
	SkipUnchanged *bool   `yaml:"skipUnchanged,omitempty"` // default: true
	FrameRate     float64 `yaml:"frameRate,omitempty"`     // frames per second, default: 4
}

const (
	// MCPTransportSSE is the Server-Sent Events transport.
	MCPTransportSSE = "sse"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	Transport string `yaml:"transport,omitempty"` // "stdio" (default) or "sse"
	Host      string `yaml:"host,omitempty"`      // SSE bind host (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // SSE port (default: 8090)
}

// Bool returns a pointer to v, for building configs in code.
func Bool(v bool) *bool { return &v }

// Duration returns a pointer to d, for building configs in code.
func Duration(d time.Duration) *time.Duration { return &d }

// BoolValue dereferences p, returning def when p is nil.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// DurationValue dereferences p, returning def when p is nil.
func DurationValue(p *time.Duration, def time.Duration) time.Duration {
	if p == nil {
		return def
	}
	return *p
}
