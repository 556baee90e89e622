package app

import (
	"fmt"
	"os"

	"vfdctl/internal/config"
	"vfdctl/pkg/logging"
)

// Application is the main application structure that bootstraps vfdctl
type Application struct {
	config *Config
}

// NewApplication initializes logging and loads the layered configuration
// with the command line overrides applied.
func NewApplication(cfg *Config) (*Application, error) {
	// Configure logging based on debug flag
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	// Logs go to stderr so --dump and the console preview own stdout.
	logging.InitForCLI(appLogLevel, os.Stderr)

	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	fileCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load vfdctl configuration")
		return nil, fmt.Errorf("failed to load vfdctl configuration: %w", err)
	}

	settings := cfg.Overrides.Apply(fileCfg)
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Settings = &settings
	logging.Debug("Bootstrap", "Configuration loaded (port=%q, baud=%d)", settings.Serial.Port, settings.Serial.BaudRate)

	return &Application{config: cfg}, nil
}

// Config returns the application configuration.
func (a *Application) Config() *Config { return a.config }

// Settings returns the merged configuration.
func (a *Application) Settings() config.Config { return *a.config.Settings }
