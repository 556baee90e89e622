package config

import (
	"time"
)

// GetDefaultConfig returns the built-in configuration: hardware on at 9600
// baud, auto-clear with warnings, no command delays and a 200ms pause after
// initialization.
func GetDefaultConfig() Config {
	return Config{
		Serial: SerialConfig{
			BaudRate: 9600,
		},
		Display: DisplayConfig{
			Hardware:         Bool(true),
			Simulator:        Bool(false),
			ConsolePreview:   Bool(false),
			ConsoleVerbose:   Bool(false),
			AutoClear:        Bool(true),
			WarnOnTransition: Bool(true),
		},
		Timing: TimingConfig{
			BaseCommandDelay:    Duration(0),
			ModeTransitionDelay: Duration(0),
			InitializationDelay: Duration(200 * time.Millisecond),
		},
		Renderer: RendererConfig{
			SkipUnchanged: Bool(true),
			FrameRate:     4,
		},
		MCP: MCPConfig{
			Transport: MCPTransportStdio,
			Host:      "localhost",
			Port:      8090,
		},
	}
}
