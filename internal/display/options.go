package display

import (
	"io"
	"os"
	"time"

	"vfdctl/pkg/logging"
)

// DefaultInitDelay is the settling time after ESC @.
const DefaultInitDelay = 200 * time.Millisecond

// Transport is the byte channel to the physical display. Writes are
// best-effort; the device never acknowledges.
type Transport interface {
	Write(p []byte) (int, error)
	Flush() error
	Close() error
}

// Options configures a Controller. The zero value is a silent controller
// with no transport, no simulator, auto-clear disabled and no delays; most
// callers start from DefaultOptions.
type Options struct {
	// Transport is the hardware link. Nil runs without hardware.
	Transport Transport

	// Simulator attaches a simulator fed with every transmitted byte.
	Simulator bool

	// AutoClear clears the display when a normal-mode-only operation is
	// requested in another mode instead of returning a ModeError.
	AutoClear bool
	// WarnOnTransition logs a warning for every auto-clear.
	WarnOnTransition bool

	BaseDelay           time.Duration
	ModeTransitionDelay time.Duration
	InitDelay           time.Duration

	// ConsolePreview draws the simulated grid after every command. It
	// implies Simulator.
	ConsolePreview bool
	ConsoleVerbose bool
	ConsoleInPlace bool
	ConsoleOut     io.Writer

	Logger *logging.Logger

	// Sleep is used for every settling delay. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOptions returns the options the hardware is known to work with:
// auto-clear with warnings, no inter-command delay and a short pause after
// initialization.
func DefaultOptions() Options {
	return Options{
		AutoClear:        true,
		WarnOnTransition: true,
		InitDelay:        DefaultInitDelay,
	}
}

func (o Options) withDefaults() Options {
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.Logger == nil {
		o.Logger = logging.For("CD5220")
	}
	if o.ConsoleOut == nil {
		o.ConsoleOut = os.Stdout
	}
	if o.ConsolePreview {
		o.Simulator = true
	}
	return o
}

// CallOption overrides per-call behaviour of a Controller operation.
type CallOption func(*callConfig)

type callConfig struct {
	delay     *time.Duration
	charDelay *time.Duration
}

// WithDelay replaces the settling delay for every command the call sends.
// Zero disables the delay.
func WithDelay(d time.Duration) CallOption {
	return func(c *callConfig) { c.delay = &d }
}

// WithCharDelay makes WriteViewport send one character per command, pausing
// d between them.
func WithCharDelay(d time.Duration) CallOption {
	return func(c *callConfig) { c.charDelay = &d }
}

func newCallConfig(opts []CallOption) callConfig {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// pick returns the per-call delay override if one was given, else def.
func (c callConfig) pick(def time.Duration) time.Duration {
	if c.delay != nil {
		return *c.delay
	}
	return def
}
