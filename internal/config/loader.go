package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"vfdctl/pkg/logging"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/vfdctl"
	projectConfigDir = ".vfdctl"
	configFileName   = "config.yaml"
)

// LoadConfig layers the default, user and project configuration. If
// explicitPath is not empty that file is merged last and must exist.
func LoadConfig(explicitPath string) (Config, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else {
		config, err = mergeIfExists(config, userConfigPath, "user")
		if err != nil {
			return Config{}, err
		}
	}

	// 3. Project configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else {
		config, err = mergeIfExists(config, projectConfigPath, "project")
		if err != nil {
			return Config{}, err
		}
	}

	// 4. Explicit --config file
	if explicitPath != "" {
		explicit, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
		config = mergeConfigs(config, explicit)
		logging.Debug("Config", "Loaded config from %s", explicitPath)
	}

	return config, nil
}

func mergeIfExists(config Config, path, layer string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error loading %s config from %s: %w", layer, path, err)
	}
	logging.Debug("Config", "Loaded %s config from %s", layer, path)
	return mergeConfigs(config, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config from a YAML file. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	f, err := os.Open(filePath)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		// An empty file decodes to io.EOF and means "no overrides".
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Only fields set
// in overlay replace base values.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	// Serial
	if overlay.Serial.Port != "" {
		merged.Serial.Port = overlay.Serial.Port
	}
	if overlay.Serial.BaudRate != 0 {
		merged.Serial.BaudRate = overlay.Serial.BaudRate
	}

	// Display switches
	mergeBool(&merged.Display.Hardware, overlay.Display.Hardware)
	mergeBool(&merged.Display.Simulator, overlay.Display.Simulator)
	mergeBool(&merged.Display.ConsolePreview, overlay.Display.ConsolePreview)
	mergeBool(&merged.Display.ConsoleVerbose, overlay.Display.ConsoleVerbose)
	mergeBool(&merged.Display.AutoClear, overlay.Display.AutoClear)
	mergeBool(&merged.Display.WarnOnTransition, overlay.Display.WarnOnTransition)

	// Timing
	if overlay.Timing.BaseCommandDelay != nil {
		merged.Timing.BaseCommandDelay = overlay.Timing.BaseCommandDelay
	}
	if overlay.Timing.ModeTransitionDelay != nil {
		merged.Timing.ModeTransitionDelay = overlay.Timing.ModeTransitionDelay
	}
	if overlay.Timing.InitializationDelay != nil {
		merged.Timing.InitializationDelay = overlay.Timing.InitializationDelay
	}

	// Renderer
	mergeBool(&merged.Renderer.SkipUnchanged, overlay.Renderer.SkipUnchanged)
	if overlay.Renderer.FrameRate != 0 {
		merged.Renderer.FrameRate = overlay.Renderer.FrameRate
	}

	// MCP
	if overlay.MCP.Transport != "" {
		merged.MCP.Transport = overlay.MCP.Transport
	}
	if overlay.MCP.Host != "" {
		merged.MCP.Host = overlay.MCP.Host
	}
	if overlay.MCP.Port != 0 {
		merged.MCP.Port = overlay.MCP.Port
	}

	return merged
}

func mergeBool(dst **bool, overlay *bool) {
	if overlay != nil {
		*dst = overlay
	}
}

// Validate checks values that cannot be caught by the YAML decoder.
func (c Config) Validate() error {
	if c.Serial.BaudRate < 0 {
		return fmt.Errorf("serial.baudRate must be positive, got %d", c.Serial.BaudRate)
	}
	if c.Renderer.FrameRate < 0 {
		return fmt.Errorf("renderer.frameRate must be positive, got %g", c.Renderer.FrameRate)
	}
	for name, d := range map[string]*time.Duration{
		"timing.baseCommandDelay":    c.Timing.BaseCommandDelay,
		"timing.modeTransitionDelay": c.Timing.ModeTransitionDelay,
		"timing.initializationDelay": c.Timing.InitializationDelay,
	} {
		if d != nil && *d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, *d)
		}
	}
	switch c.MCP.Transport {
	case "", MCPTransportStdio, MCPTransportSSE:
	default:
		return fmt.Errorf("mcp.transport must be %q or %q, got %q", MCPTransportStdio, MCPTransportSSE, c.MCP.Transport)
	}
	return nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
