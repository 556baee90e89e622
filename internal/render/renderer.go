// Package render sends whole frames to the display using as few commands as
// possible. Each frame is compared with the previous one and every run of
// changed columns costs exactly one cursor position plus one text command,
// however long the run is.
package render

import (
	"fmt"
	"io"
	"time"

	"vfdctl/internal/display"
	"vfdctl/internal/preview"
	"vfdctl/internal/protocol"
	"vfdctl/internal/simulator"
	"vfdctl/pkg/logging"
)

// DefaultFrameRate is the frame rate animations are paced at unless configured.
const DefaultFrameRate = 4.0

// Display is the part of display.Controller the renderer drives.
type Display interface {
	EnsureNormal(op string) error
	WritePositioned(text string, col, row int, opts ...display.CallOption) error
	Clear(opts ...display.CallOption) error
	OnClear(fn func())
	OnWrite(fn func())
}

// Options configures a Renderer.
type Options struct {
	// SkipUnchanged makes WriteFrame a no-op for a frame equal to the last one.
	SkipUnchanged bool
	FrameRate     float64
	Sleep         func(time.Duration)
	Logger        *logging.Logger
}

// DefaultOptions skips unchanged frames at DefaultFrameRate.
func DefaultOptions() Options {
	return Options{
		SkipUnchanged: true,
		FrameRate:     DefaultFrameRate,
	}
}

// Stats counts what the renderer has sent since creation.
type Stats struct {
	Frames   int `json:"frames"`
	Skipped  int `json:"skipped"`
	Runs     int `json:"runs"`
	Chars    int `json:"chars"`
	Commands int `json:"commands"`
}

// Renderer keeps the last frame written and diffs new frames against it.
type Renderer struct {
	disp    Display
	opts    Options
	log     *logging.Logger
	sim     *simulator.Simulator
	console *preview.Console

	prev    Frame
	pending Frame
	stats   Stats

	// stale is set when the display was written behind the renderer's back;
	// prev then no longer describes the screen.
	stale   bool
	writing bool
}

// New creates a renderer on d. The baseline starts blank and is reset
// whenever d is cleared. Writes to d that do not come from the renderer
// invalidate the baseline, and the next frame is repainted in full.
func New(d Display, opts Options) *Renderer {
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultFrameRate
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = logging.For("Renderer")
	}
	r := &Renderer{
		disp:    d,
		opts:    opts,
		log:     opts.Logger,
		prev:    BlankFrame(),
		pending: BlankFrame(),
	}
	d.OnClear(r.reset)
	d.OnWrite(r.invalidate)
	return r
}

func (r *Renderer) reset() {
	r.prev = BlankFrame()
	r.pending = BlankFrame()
	r.stale = false
	if r.sim != nil {
		r.sim.Reset()
	}
}

// WriteFrame brings the display to show line1 and line2.
func (r *Renderer) WriteFrame(line1, line2 string) error {
	next := NewFrame(line1, line2)
	if r.opts.SkipUnchanged && !r.stale && next == r.prev {
		r.stats.Skipped++
		return nil
	}

	// May auto-clear, which resets r.prev through the clear hook.
	if err := r.disp.EnsureNormal("frame render"); err != nil {
		return err
	}

	var runs [protocol.Rows][]Run
	for row := range next {
		if r.stale {
			runs[row] = []Run{{Col: 1, Text: next[row]}}
		} else {
			runs[row] = Diff(r.prev[row], next[row])
		}
	}
	if r.stale {
		r.log.Debug("Display changed outside the renderer, repainting")
	}

	r.writing = true
	defer func() { r.writing = false }()
	for row := range runs {
		for _, run := range runs[row] {
			if err := r.disp.WritePositioned(run.Text, run.Col, row+1); err != nil {
				r.stale = true
				return fmt.Errorf("failed to write frame run at (%d,%d): %w", run.Col, row+1, err)
			}
			r.stats.Runs++
			r.stats.Chars += len(run.Text)
			r.stats.Commands += 2
		}
	}

	r.prev = next
	r.stale = false
	r.pending = next
	r.stats.Frames++
	r.log.Debug("Frame %d: %d+%d runs", r.stats.Frames, len(runs[0]), len(runs[1]))

	if r.sim != nil {
		for row := range runs {
			for _, run := range runs[row] {
				if err := r.sim.WriteAt(run.Col, row+1, run.Text); err != nil {
					return err
				}
			}
		}
	}
	if r.console != nil {
		shown := [protocol.Rows]string(next)
		if r.sim != nil {
			shown = r.sim.Lines()
		}
		if err := r.console.Render(shown); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) invalidate() {
	if !r.writing {
		r.stale = true
	}
}

// SetChar edits one cell of the pending frame. Nothing is sent until
// RenderFrame.
func (r *Renderer) SetChar(col, row int, ch byte) error {
	if col < 1 || col > protocol.Width || row < 1 || row > protocol.Rows {
		return &display.ValidationError{Field: "position", Message: fmt.Sprintf("(%d,%d) is off the display", col, row)}
	}
	if ch < 0x20 || ch > 0x7E {
		return &display.ValidationError{Field: "character", Message: fmt.Sprintf("0x%02X is not printable ASCII", ch)}
	}
	line := []byte(r.pending[row-1])
	line[col-1] = ch
	r.pending[row-1] = string(line)
	return nil
}

// RenderFrame writes the pending frame.
func (r *Renderer) RenderFrame() error {
	return r.WriteFrame(r.pending[0], r.pending[1])
}

// Clear clears the display. The baseline is reset by the clear hook.
func (r *Renderer) Clear() error {
	return r.disp.Clear()
}

// FrameSleep pauses for d using the configured sleep function.
func (r *Renderer) FrameSleep(d time.Duration) {
	if d > 0 {
		r.opts.Sleep(d)
	}
}

// FrameInterval is one frame at the configured frame rate.
func (r *Renderer) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / r.opts.FrameRate)
}

func (r *Renderer) FrameRate() float64 { return r.opts.FrameRate }

// Frame returns the last frame written.
func (r *Renderer) Frame() Frame { return r.prev }

// Simulator returns the renderer's own simulator, or nil.
func (r *Renderer) Simulator() *simulator.Simulator { return r.sim }

// EnableSimulator attaches a simulator that receives every written run. It
// returns the existing one when already enabled.
func (r *Renderer) EnableSimulator() *simulator.Simulator {
	if r.sim == nil {
		r.sim = simulator.New()
		for row, line := range r.prev {
			_ = r.sim.WriteAt(1, row+1, line)
		}
	}
	return r.sim
}

// EnableConsole draws every written frame to w.
func (r *Renderer) EnableConsole(w io.Writer, opts ...preview.Option) {
	r.console = preview.New(w, opts...)
}

func (r *Renderer) Stats() Stats { return r.stats }
