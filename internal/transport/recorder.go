package transport

import (
	"fmt"
	"io"

	"vfdctl/internal/display"
	"vfdctl/internal/protocol"
)

// Recorder is an in-memory display.Transport. It keeps every write as a
// separate chunk so callers can count commands as well as bytes.
type Recorder struct {
	writes  [][]byte
	flushes int
	closed  bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Write(p []byte) (int, error) {
	if r.closed {
		return 0, fmt.Errorf("recorder is closed")
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	r.writes = append(r.writes, chunk)
	return len(p), nil
}

func (r *Recorder) Flush() error {
	r.flushes++
	return nil
}

func (r *Recorder) Close() error {
	r.closed = true
	return nil
}

// Writes returns every chunk written so far, in order.
func (r *Recorder) Writes() [][]byte {
	return r.writes
}

// Bytes returns everything written so far as one stream.
func (r *Recorder) Bytes() []byte {
	var out []byte
	for _, w := range r.writes {
		out = append(out, w...)
	}
	return out
}

// Flushes returns the number of Flush calls.
func (r *Recorder) Flushes() int { return r.flushes }

// Closed reports whether Close has been called.
func (r *Recorder) Closed() bool { return r.closed }

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.writes = nil
	r.flushes = 0
}

// Dump is a display.Transport that prints every write as a hex line with its
// decoded description, then forwards it to Next if set.
type Dump struct {
	Out  io.Writer
	Next display.Transport
}

func (d *Dump) Write(p []byte) (int, error) {
	desc := "?"
	if cmds, err := protocol.Parse(p); err == nil && len(cmds) == 1 {
		desc = cmds[0].Describe()
	}
	if _, err := fmt.Fprintf(d.Out, "%-40s %s\n", protocol.Hex(p), desc); err != nil {
		return 0, fmt.Errorf("failed to write dump: %w", err)
	}
	if d.Next == nil {
		return len(p), nil
	}
	return d.Next.Write(p)
}

func (d *Dump) Flush() error {
	if d.Next == nil {
		return nil
	}
	return d.Next.Flush()
}

func (d *Dump) Close() error {
	if d.Next == nil {
		return nil
	}
	return d.Next.Close()
}
