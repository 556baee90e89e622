package app

import (
	"errors"
	"fmt"
	"io"

	"vfdctl/internal/config"
	"vfdctl/internal/display"
	"vfdctl/internal/render"
	"vfdctl/internal/transport"
	"vfdctl/pkg/logging"
)

// For mocking in tests
var openSerial = func(name string, baud int) (display.Transport, error) {
	port, err := transport.Open(name, baud)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Session is an open display: the controller and a renderer on top of it.
type Session struct {
	Controller *display.Controller
	Renderer   *render.Renderer
}

// DisplayOptions maps the merged configuration onto controller options. The
// transport is left for OpenSession to fill.
func DisplayOptions(cfg config.Config) display.Options {
	opts := display.DefaultOptions()
	opts.AutoClear = config.BoolValue(cfg.Display.AutoClear, opts.AutoClear)
	opts.WarnOnTransition = config.BoolValue(cfg.Display.WarnOnTransition, opts.WarnOnTransition)
	opts.Simulator = config.BoolValue(cfg.Display.Simulator, false)
	opts.ConsolePreview = config.BoolValue(cfg.Display.ConsolePreview, false)
	opts.ConsoleVerbose = config.BoolValue(cfg.Display.ConsoleVerbose, false)
	opts.BaseDelay = config.DurationValue(cfg.Timing.BaseCommandDelay, 0)
	opts.ModeTransitionDelay = config.DurationValue(cfg.Timing.ModeTransitionDelay, 0)
	opts.InitDelay = config.DurationValue(cfg.Timing.InitializationDelay, display.DefaultInitDelay)

	// Without hardware the simulator is the only place commands land.
	if !config.BoolValue(cfg.Display.Hardware, true) {
		opts.Simulator = true
	}
	return opts
}

// RenderOptions maps the renderer section onto renderer options.
func RenderOptions(cfg config.Config) render.Options {
	opts := render.DefaultOptions()
	opts.SkipUnchanged = config.BoolValue(cfg.Renderer.SkipUnchanged, opts.SkipUnchanged)
	if cfg.Renderer.FrameRate > 0 {
		opts.FrameRate = cfg.Renderer.FrameRate
	}
	return opts
}

// OpenSession opens the serial port (unless hardware is disabled), builds and
// initializes the controller and attaches a renderer.
func (a *Application) OpenSession() (*Session, error) {
	return openSession(*a.config.Settings, a.config.Overrides.Dump, a.config.ConsoleInPlace, a.config.Out)
}

func openSession(cfg config.Config, dump, inPlace bool, out io.Writer) (*Session, error) {
	opts := DisplayOptions(cfg)
	opts.ConsoleInPlace = inPlace
	opts.ConsoleOut = out

	var link display.Transport
	if config.BoolValue(cfg.Display.Hardware, true) {
		if cfg.Serial.Port == "" {
			return nil, errors.New("no serial port configured: use --port, set serial.port or run with --no-hardware")
		}
		port, err := openSerial(cfg.Serial.Port, cfg.Serial.BaudRate)
		if err != nil {
			return nil, err
		}
		logging.Info("Session", "Connected to %s at %d baud", cfg.Serial.Port, cfg.Serial.BaudRate)
		link = port
	}
	if dump {
		link = &transport.Dump{Out: out, Next: link}
	}
	opts.Transport = link

	ctrl, err := display.New(opts)
	if err != nil {
		if link != nil {
			_ = link.Close()
		}
		return nil, fmt.Errorf("failed to open display session: %w", err)
	}
	return &Session{
		Controller: ctrl,
		Renderer:   render.New(ctrl, RenderOptions(cfg)),
	}, nil
}

// Close releases the transport. Failures are logged by the controller.
func (s *Session) Close() error {
	return s.Controller.Close()
}
