package app

import (
	"io"

	"vfdctl/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath is an explicit --config file merged after the layered files.
	ConfigPath string

	// Debug settings
	Debug bool

	// Overrides from command line flags
	Overrides Overrides

	// ConsoleInPlace redraws the console preview over the previous frame.
	// Only set when stdout is a terminal.
	ConsoleInPlace bool

	// Out receives the console preview and --dump output. Defaults to stdout.
	Out io.Writer

	// Settings is the merged file configuration with overrides applied.
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(configPath string, debug bool, overrides Overrides) *Config {
	return &Config{
		ConfigPath: configPath,
		Debug:      debug,
		Overrides:  overrides,
	}
}

// Overrides are the command line flags that take precedence over every
// configuration file. Zero values leave the file setting alone.
type Overrides struct {
	Port             string
	BaudRate         int
	NoHardware       bool
	Simulator        bool
	Console          bool
	ConsoleVerbose   bool
	NoAutoClear      bool
	QuietTransitions bool

	// Dump prints every command as hex. It does not map to a config field.
	Dump bool
}

// Apply returns cfg with the overrides merged in.
func (o Overrides) Apply(cfg config.Config) config.Config {
	if o.Port != "" {
		cfg.Serial.Port = o.Port
	}
	if o.BaudRate != 0 {
		cfg.Serial.BaudRate = o.BaudRate
	}
	if o.NoHardware {
		cfg.Display.Hardware = config.Bool(false)
	}
	if o.Simulator {
		cfg.Display.Simulator = config.Bool(true)
	}
	if o.Console {
		cfg.Display.ConsolePreview = config.Bool(true)
	}
	if o.ConsoleVerbose {
		cfg.Display.ConsolePreview = config.Bool(true)
		cfg.Display.ConsoleVerbose = config.Bool(true)
	}
	if o.NoAutoClear {
		cfg.Display.AutoClear = config.Bool(false)
	}
	if o.QuietTransitions {
		cfg.Display.WarnOnTransition = config.Bool(false)
	}
	return cfg
}
