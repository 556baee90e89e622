// Package display implements the CD5220 controller: it turns display intents
// into wire commands while tracking the mode the hardware is in, so that only
// legal sequences reach the device.
//
// Normal-only operations pass through EnsureNormal. In string, scroll or
// viewport mode they either clear the display first (AutoClear) or fail with a
// *ModeError. Mode and window state are only updated after the bytes have been
// written and flushed, so a *TransportError leaves the controller describing
// the last state the device is known to have reached.
package display

import (
	"fmt"
	"io"
	"time"

	"vfdctl/internal/preview"
	"vfdctl/internal/protocol"
	"vfdctl/internal/simulator"
	"vfdctl/pkg/logging"
)

// Controller drives a single display. It is not safe for concurrent use.
type Controller struct {
	opts      Options
	transport Transport
	sim       *simulator.Simulator
	console   *preview.Console
	log       *logging.Logger

	mode        protocol.Mode
	window      *protocol.Window
	viewportBuf string

	onClear []func()
	onWrite []func()
}

// New builds a controller, initializes the device and restores the default
// state (clear, brightness 4, overwrite mode, cursor off).
func New(opts Options) (*Controller, error) {
	opts = opts.withDefaults()

	c := &Controller{
		opts:      opts,
		transport: opts.Transport,
		log:       opts.Logger,
		mode:      protocol.ModeNormal,
	}
	if opts.Simulator {
		c.sim = simulator.New()
	}
	if opts.ConsolePreview {
		c.console = preview.New(opts.ConsoleOut,
			preview.Verbose(opts.ConsoleVerbose),
			preview.InPlace(opts.ConsoleInPlace))
	}

	c.log.Debug("Initializing controller (hardware=%t, simulator=%t)", c.transport != nil, c.sim != nil)
	if err := c.send(protocol.Initialize(), opts.InitDelay, callConfig{}); err != nil {
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	if err := c.RestoreDefaults(); err != nil {
		return nil, fmt.Errorf("failed to restore display defaults: %w", err)
	}
	return c, nil
}

// NewSimulatorOnly builds a controller with a simulator and no transport.
func NewSimulatorOnly(opts Options) (*Controller, error) {
	opts.Transport = nil
	opts.Simulator = true
	return New(opts)
}

// Mode returns the tracked display mode.
func (c *Controller) Mode() protocol.Mode { return c.mode }

// ActiveWindow returns the active window, if any.
func (c *Controller) ActiveWindow() (protocol.Window, bool) {
	if c.window == nil {
		return protocol.Window{}, false
	}
	return *c.window, true
}

// Simulator returns the attached simulator, or nil.
func (c *Controller) Simulator() *simulator.Simulator { return c.sim }

// AutoClear reports whether mode conflicts are resolved by clearing.
func (c *Controller) AutoClear() bool { return c.opts.AutoClear }

// OnClear registers fn to run after every clear, including auto-clears and
// initialization.
func (c *Controller) OnClear(fn func()) {
	c.onClear = append(c.onClear, fn)
}

// OnWrite registers fn to run after every command that changes the screen
// content or leaves normal mode, other than a clear.
func (c *Controller) OnWrite(fn func()) {
	c.onWrite = append(c.onWrite, fn)
}

// Close releases the transport.
func (c *Controller) Close() error {
	if c.transport == nil {
		return nil
	}
	c.log.Debug("Closing transport")
	if err := c.transport.Close(); err != nil {
		c.log.Error(err, "Error closing transport")
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// send encodes cmd, writes and flushes it, mirrors it into the simulator and
// preview and waits for the settling delay.
func (c *Controller) send(cmd protocol.Command, def time.Duration, cfg callConfig) error {
	b := cmd.Bytes()
	delay := cfg.pick(def)
	desc := cmd.Describe()

	c.log.Debug("Sending: %s | Bytes: %s | Delay: %s", desc, protocol.Hex(b), delay)

	if c.transport != nil {
		n, err := c.transport.Write(b)
		if err == nil && n < len(b) {
			err = io.ErrShortWrite
		}
		if err != nil {
			c.log.Error(err, "Command failed: %s", desc)
			return &TransportError{Op: cmd.Op.String(), Err: err}
		}
		if err := c.transport.Flush(); err != nil {
			c.log.Error(err, "Flush failed: %s", desc)
			return &TransportError{Op: cmd.Op.String(), Err: err}
		}
	}

	if c.sim != nil {
		if err := c.sim.Feed(b); err != nil {
			return err
		}
		if c.console != nil {
			if err := c.console.Observe(desc, c.sim.Lines()); err != nil {
				return err
			}
		}
	}

	if changesScreen(cmd.Op) {
		for _, fn := range c.onWrite {
			fn()
		}
	}

	if delay > 0 {
		c.opts.Sleep(delay)
	}
	return nil
}

func changesScreen(op protocol.Op) bool {
	switch op {
	case protocol.OpText, protocol.OpStringUpper, protocol.OpStringLower,
		protocol.OpMarquee, protocol.OpCancelLine, protocol.OpHorizontalScrollMode:
		return true
	}
	return false
}

// EnsureNormal makes sure the display is in normal mode before op runs. In any
// other mode it clears the display when auto-clear is on and fails with a
// *ModeError otherwise.
func (c *Controller) EnsureNormal(op string) error {
	if c.mode == protocol.ModeNormal {
		return nil
	}
	if !c.opts.AutoClear {
		if c.opts.WarnOnTransition {
			c.log.Error(nil, "%s requires normal mode. Currently in %s mode.", op, c.mode)
		}
		return &ModeError{Op: op, Mode: c.mode}
	}
	if c.opts.WarnOnTransition {
		c.log.Warn("%s requires normal mode. Auto-clearing from %s mode.", op, c.mode)
	}
	return c.Clear()
}

func (c *Controller) resetState() {
	c.mode = protocol.ModeNormal
	c.window = nil
	c.viewportBuf = ""
	for _, fn := range c.onClear {
		fn()
	}
}

// Clear blanks the display and returns to normal mode. The active window is
// dropped. Legal in every mode.
func (c *Controller) Clear(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	if err := c.send(protocol.Clear(), c.opts.BaseDelay, cfg); err != nil {
		return err
	}
	c.resetState()
	return nil
}

// CancelLine leaves string, scroll or viewport mode. The device blanks the
// line holding the cursor; the other line and the active window survive.
func (c *Controller) CancelLine(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	if err := c.send(protocol.CancelLine(), c.opts.BaseDelay, cfg); err != nil {
		return err
	}
	c.mode = protocol.ModeNormal
	c.viewportBuf = ""
	return nil
}

// Initialize resets the device to its power-on state and clears it.
func (c *Controller) Initialize(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	if err := c.send(protocol.Initialize(), c.opts.InitDelay, cfg); err != nil {
		return err
	}
	return c.Clear(opts...)
}

// RestoreDefaults is the canonical baseline: clear, brightness 4, overwrite
// mode, cursor off.
func (c *Controller) RestoreDefaults(opts ...CallOption) error {
	if err := c.Clear(opts...); err != nil {
		return err
	}
	if err := c.SetBrightness(4, opts...); err != nil {
		return err
	}
	if err := c.SetOverwriteMode(opts...); err != nil {
		return err
	}
	return c.CursorOff(opts...)
}

// normalOnly sends cmd after the normal mode gate.
func (c *Controller) normalOnly(op string, cmd protocol.Command, def time.Duration, cfg callConfig) error {
	if err := c.EnsureNormal(op); err != nil {
		return err
	}
	return c.send(cmd, def, cfg)
}

// SetOverwriteMode selects the overwrite regime: text past the bottom right
// wraps to the top left.
func (c *Controller) SetOverwriteMode(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("overwrite mode", protocol.OverwriteMode(), c.opts.ModeTransitionDelay, cfg)
}

// SetVerticalScrollMode selects the vertical scroll regime: text past the
// bottom right scrolls the rows up.
func (c *Controller) SetVerticalScrollMode(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("vertical scroll mode", protocol.VerticalScrollMode(), c.opts.ModeTransitionDelay, cfg)
}

// SetHorizontalScrollMode selects the horizontal scroll regime. With an
// active window the device treats this as entering viewport mode, and so does
// the controller.
func (c *Controller) SetHorizontalScrollMode(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	if err := c.normalOnly("horizontal scroll mode", protocol.HorizontalScrollMode(), c.opts.ModeTransitionDelay, cfg); err != nil {
		return err
	}
	if c.window != nil {
		c.mode = protocol.ModeViewport
		c.viewportBuf = ""
	}
	return nil
}

// SetBrightness sets the brightness level, 1 (dim) to 4 (bright).
func (c *Controller) SetBrightness(level int, opts ...CallOption) error {
	if level < 1 || level > 4 {
		return &ValidationError{Field: "brightness", Message: fmt.Sprintf("level must be 1-4, got %d", level)}
	}
	cfg := newCallConfig(opts)
	return c.normalOnly("brightness", protocol.Brightness(level), c.opts.BaseDelay, cfg)
}

// CursorOn shows the cursor.
func (c *Controller) CursorOn(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("cursor on", protocol.CursorOn(), c.opts.BaseDelay, cfg)
}

// CursorOff hides the cursor.
func (c *Controller) CursorOff(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("cursor off", protocol.CursorOff(), c.opts.BaseDelay, cfg)
}

func validatePosition(col, row int) error {
	if col < 1 || col > protocol.Width {
		return &ValidationError{Field: "column", Message: fmt.Sprintf("must be 1-%d, got %d", protocol.Width, col)}
	}
	if row < 1 || row > protocol.Rows {
		return &ValidationError{Field: "row", Message: fmt.Sprintf("must be 1-%d, got %d", protocol.Rows, row)}
	}
	return nil
}

// SetCursorPosition moves the cursor to the 1-based (col,row).
func (c *Controller) SetCursorPosition(col, row int, opts ...CallOption) error {
	if err := validatePosition(col, row); err != nil {
		return err
	}
	cfg := newCallConfig(opts)
	return c.normalOnly("cursor position", protocol.SetCursor(col, row), c.opts.BaseDelay, cfg)
}

// CursorUp moves the cursor one row up.
func (c *Controller) CursorUp(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("cursor up", protocol.CursorUp(), c.opts.BaseDelay, cfg)
}

// CursorDown moves the cursor one row down.
func (c *Controller) CursorDown(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("cursor down", protocol.CursorDown(), c.opts.BaseDelay, cfg)
}

// CursorLeft moves the cursor one column left, wrapping to the previous row.
func (c *Controller) CursorLeft(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("cursor left", protocol.CursorLeft(), c.opts.BaseDelay, cfg)
}

// CursorRight moves the cursor one column right, wrapping to the next row.
func (c *Controller) CursorRight(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("cursor right", protocol.CursorRight(), c.opts.BaseDelay, cfg)
}

// CursorHome moves the cursor to column 1 of row 1.
func (c *Controller) CursorHome(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("cursor home", protocol.CursorHome(), c.opts.BaseDelay, cfg)
}

// WriteAtCursor writes text at the current cursor position. Characters
// outside printable ASCII are dropped.
func (c *Controller) WriteAtCursor(text string, opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("write at cursor", protocol.Text(text), c.opts.BaseDelay, cfg)
}

// WritePositioned moves the cursor to (col,row) and writes text there.
func (c *Controller) WritePositioned(text string, col, row int, opts ...CallOption) error {
	if err := validatePosition(col, row); err != nil {
		return err
	}
	if err := c.EnsureNormal("positioned write"); err != nil {
		return err
	}
	cfg := newCallConfig(opts)
	if err := c.send(protocol.SetCursor(col, row), c.opts.BaseDelay, cfg); err != nil {
		return err
	}
	return c.send(protocol.Text(text), c.opts.BaseDelay, cfg)
}

// DisplayOn turns the display back on with its content intact.
func (c *Controller) DisplayOn(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("display on", protocol.DisplayOn(), c.opts.BaseDelay, cfg)
}

// DisplayOff blanks the display without clearing its content.
func (c *Controller) DisplayOff(opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("display off", protocol.DisplayOff(), c.opts.BaseDelay, cfg)
}

// SetInternationalFont selects an international character set by id.
func (c *Controller) SetInternationalFont(id byte, opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("font selection", protocol.InternationalFont(id), c.opts.BaseDelay, cfg)
}

// SetExtendedFont selects an extended character table by id.
func (c *Controller) SetExtendedFont(id byte, opts ...CallOption) error {
	cfg := newCallConfig(opts)
	return c.normalOnly("font selection", protocol.ExtendedFont(id), c.opts.BaseDelay, cfg)
}

func (c *Controller) writeString(cmd protocol.Command, cfg callConfig) error {
	if err := c.send(cmd, c.opts.BaseDelay, cfg); err != nil {
		return err
	}
	c.mode = protocol.ModeString
	c.viewportBuf = ""
	return nil
}

// WriteUpper replaces the upper line in string mode. Legal in every mode.
func (c *Controller) WriteUpper(text string, opts ...CallOption) error {
	return c.writeString(protocol.StringUpper(text), newCallConfig(opts))
}

// WriteLower replaces the lower line in string mode. Legal in every mode.
func (c *Controller) WriteLower(text string, opts ...CallOption) error {
	return c.writeString(protocol.StringLower(text), newCallConfig(opts))
}

// WriteBothLines writes the upper line then the lower line in string mode.
func (c *Controller) WriteBothLines(upper, lower string, opts ...CallOption) error {
	if err := c.WriteUpper(upper, opts...); err != nil {
		return err
	}
	return c.WriteLower(lower, opts...)
}

// ScrollMarquee starts the hardware marquee on the upper line. The device
// keeps scrolling on its own until the next clear or cancel.
func (c *Controller) ScrollMarquee(text string, opts ...CallOption) error {
	cfg := newCallConfig(opts)
	if err := c.send(protocol.Marquee(text), c.opts.BaseDelay, cfg); err != nil {
		return err
	}
	c.mode = protocol.ModeScroll
	c.viewportBuf = ""
	c.log.Info("Marquee started: %q", protocol.Sanitize(text))
	return nil
}

// SetWindow defines the viewport window on line covering columns start..end
// (1-based, inclusive). It replaces any previous window.
func (c *Controller) SetWindow(line, start, end int, opts ...CallOption) error {
	w := protocol.Window{Line: line, Start: start, End: end}
	if err := w.Validate(); err != nil {
		return &ValidationError{Field: "window", Message: err.Error()}
	}
	cfg := newCallConfig(opts)
	if err := c.normalOnly("window", protocol.SetWindow(w), c.opts.BaseDelay, cfg); err != nil {
		return err
	}
	c.window = &w
	c.viewportBuf = ""
	return nil
}

// ClearWindow removes the window on line. The active window is dropped if it
// is on that line.
func (c *Controller) ClearWindow(line int, opts ...CallOption) error {
	if line < 1 || line > protocol.Rows {
		return &ValidationError{Field: "window", Message: fmt.Sprintf("line must be 1 or 2, got %d", line)}
	}
	cfg := newCallConfig(opts)
	if err := c.normalOnly("window", protocol.ClearWindow(line), c.opts.BaseDelay, cfg); err != nil {
		return err
	}
	if c.window != nil && c.window.Line == line {
		c.window = nil
		c.viewportBuf = ""
	}
	return nil
}

// EnterViewport switches to viewport mode on the active window.
func (c *Controller) EnterViewport(opts ...CallOption) error {
	if c.window == nil {
		return &StateError{Op: "enter viewport", Message: "no window is set, call SetWindow first"}
	}
	if err := c.EnsureNormal("enter viewport"); err != nil {
		return err
	}
	if c.window == nil {
		return &StateError{Op: "enter viewport", Message: "the auto-clear dropped the window"}
	}
	if err := c.SetHorizontalScrollMode(opts...); err != nil {
		return err
	}
	c.log.Info("Viewport mode active on %s", c.window)
	return nil
}

// WriteViewport appends text to the window on line and shows the newest
// characters that fit, right-padded with spaces. With WithCharDelay the
// visible text is sent one character at a time.
func (c *Controller) WriteViewport(line int, text string, opts ...CallOption) error {
	if c.mode != protocol.ModeViewport || c.window == nil {
		return &StateError{Op: "viewport write", Message: fmt.Sprintf("display is in %s mode, call EnterViewport first", c.mode)}
	}
	if c.window.Line != line {
		return &StateError{Op: "viewport write", Message: fmt.Sprintf("no window on line %d", line)}
	}

	cfg := newCallConfig(opts)
	w := *c.window
	buf := c.viewportBuf + protocol.Sanitize(text)
	visible := simulator.TailFit(buf, w.Width())

	if err := c.send(protocol.SetCursor(w.Start, w.Line), c.opts.BaseDelay, cfg); err != nil {
		return err
	}

	if cfg.charDelay == nil {
		if err := c.send(protocol.Text(visible), c.opts.BaseDelay, cfg); err != nil {
			return err
		}
	} else {
		c.log.Debug("Viewport incremental write on %s: %q", w, visible)
		for i := 0; i < len(visible); i++ {
			if err := c.send(protocol.Text(visible[i:i+1]), c.opts.BaseDelay, cfg); err != nil {
				return err
			}
			if *cfg.charDelay > 0 {
				c.opts.Sleep(*cfg.charDelay)
			}
		}
	}

	c.viewportBuf = buf
	return nil
}

// DisplayMessage splits message over both lines. In string mode the lines
// are written with WriteUpper/WriteLower, otherwise the display is cleared and
// the lines are positioned in normal mode.
func (c *Controller) DisplayMessage(message string, stringMode bool, opts ...CallOption) error {
	message = protocol.Sanitize(message)
	var lines []string
	for i := 0; i < len(message) && len(lines) < protocol.Rows; i += protocol.Width {
		end := i + protocol.Width
		if end > len(message) {
			end = len(message)
		}
		lines = append(lines, message[i:end])
	}

	if stringMode {
		for i, l := range lines {
			write := c.WriteUpper
			if i == 1 {
				write = c.WriteLower
			}
			if err := write(l, opts...); err != nil {
				return err
			}
		}
		return nil
	}

	if err := c.Clear(opts...); err != nil {
		return err
	}
	for i, l := range lines {
		if err := c.WritePositioned(l, 1, i+1, opts...); err != nil {
			return err
		}
	}
	return nil
}
