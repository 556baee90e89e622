// Package config provides configuration management for vfdctl.
//
// This package implements a layered configuration system that allows users to
// customize how vfdctl talks to the display through YAML files. Configuration
// is loaded from multiple sources and merged in a specific order, with later
// sources overriding earlier ones.
//
// # Configuration Layers
//
// Configuration is loaded and merged in the following order:
//
//  1. Default Configuration (embedded in binary)
//     - Hardware on at 9600 baud, auto-clear with warnings
//     - No command delays, 200ms after initialization
//
//  2. User Configuration (~/.config/vfdctl/config.yaml)
//     - Usually holds the serial port of the attached display
//
//  3. Project Configuration (./.vfdctl/config.yaml)
//     - Per-directory settings, e.g. a simulator-only setup for a demo
//
//  4. Explicit file (--config)
//
// Command line flags are applied on top by internal/app.
//
// # Configuration Structure
//
//	serial:
//	  port: /dev/ttyUSB0
//	  baudRate: 9600
//
//	display:
//	  hardware: true
//	  simulator: false
//	  consolePreview: false
//	  consoleVerbose: false
//	  autoClear: true
//	  warnOnTransition: true
//
//	timing:
//	  baseCommandDelay: 0s
//	  modeTransitionDelay: 50ms
//	  initializationDelay: 200ms
//
//	renderer:
//	  skipUnchanged: true
//	  frameRate: 4
//
//	mcp:
//	  transport: stdio   # or "sse"
//	  host: localhost
//	  port: 8090
//
// # Timing
//
// Most units accept commands back to back. Slow or clone hardware may drop
// bytes after mode changes; raise modeTransitionDelay first, then
// baseCommandDelay.
//
// Boolean and duration fields are pointers so that a file can set a value to
// false or zero and still override an earlier layer.
package config
