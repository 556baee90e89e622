package render_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vfdctl/internal/display"
	"vfdctl/internal/preview"
	"vfdctl/internal/protocol"
	"vfdctl/internal/render"
	"vfdctl/internal/transport"
)

func newRenderer(t *testing.T, mutate func(*display.Options)) (*render.Renderer, *display.Controller, *transport.Recorder) {
	t.Helper()
	rec := transport.NewRecorder()
	opts := display.DefaultOptions()
	opts.Transport = rec
	opts.Simulator = true
	opts.Sleep = func(time.Duration) {}
	if mutate != nil {
		mutate(&opts)
	}
	ctrl, err := display.New(opts)
	require.NoError(t, err)
	rec.Reset()

	r := render.New(ctrl, render.DefaultOptions())
	return r, ctrl, rec
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		prev string
		next string
		want []render.Run
	}{
		{"identical", "ABCDE", "ABCDE", nil},
		{"single column", "ABCDE", "ABXDE", []render.Run{{Col: 3, Text: "X"}}},
		{"two runs", "ABCDE", "XBCYZ", []render.Run{{Col: 1, Text: "X"}, {Col: 4, Text: "YZ"}}},
		{"whole row", "AAAA", "BBBB", []render.Run{{Col: 1, Text: "BBBB"}}},
		{"run ends at first match", "ABCABC", "XYCXYC", []render.Run{{Col: 1, Text: "XY"}, {Col: 4, Text: "XY"}}},
		{"longer next", "AB", "ABCD", []render.Run{{Col: 3, Text: "CD"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.Diff(tt.prev, tt.next))
		})
	}
}

func TestNewFrameNormalizes(t *testing.T) {
	f := render.NewFrame("SHORT", strings.Repeat("X", 30))
	assert.Equal(t, "SHORT"+strings.Repeat(" ", 15), f[0])
	assert.Equal(t, strings.Repeat("X", 20), f[1])
}

func TestWriteFrameTwiceSendsNothing(t *testing.T) {
	r, _, rec := newRenderer(t, nil)

	frames := [][2]string{
		{"HELLO", "WORLD"},
		{"", ""},
		{strings.Repeat("#", 20), "  *  "},
	}
	for _, f := range frames {
		require.NoError(t, r.WriteFrame(f[0], f[1]))
		rec.Reset()
		require.NoError(t, r.WriteFrame(f[0], f[1]))
		assert.Empty(t, rec.Writes(), "frame %q", f)
	}
	assert.Equal(t, len(frames), r.Stats().Skipped)
}

func TestSingleRunIsOnePositionAndOneText(t *testing.T) {
	r, ctrl, rec := newRenderer(t, nil)
	require.NoError(t, r.WriteFrame("....................", "--------------------"))
	rec.Reset()

	require.NoError(t, r.WriteFrame("....ABCD............", "--------------------"))

	assert.Equal(t, [][]byte{
		protocol.SetCursor(5, 1).Bytes(),
		[]byte("ABCD"),
	}, rec.Writes())
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(1, "....ABCD............"))
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(2, "--------------------"))
}

func TestWriteFrameAutoClearResetsBaseline(t *testing.T) {
	r, ctrl, rec := newRenderer(t, nil)

	require.NoError(t, r.WriteFrame("HELLO", ""))
	require.NoError(t, ctrl.WriteUpper("STRING MODE"))
	rec.Reset()

	require.NoError(t, r.WriteFrame("HELLO!", ""))

	// The clear blanks the display, so the whole row is rewritten rather
	// than only the changed column.
	assert.Equal(t, [][]byte{
		{0x0C},
		protocol.SetCursor(1, 1).Bytes(),
		[]byte("HELLO!"),
	}, rec.Writes())
	assert.Equal(t, protocol.ModeNormal, ctrl.Mode())
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(1, "HELLO!"))
}

func TestWriteFrameWithoutAutoClear(t *testing.T) {
	r, ctrl, rec := newRenderer(t, func(o *display.Options) { o.AutoClear = false })
	require.NoError(t, ctrl.ScrollMarquee("BUSY"))
	rec.Reset()

	err := r.WriteFrame("FRAME", "")
	var modeErr *display.ModeError
	require.True(t, errors.As(err, &modeErr))
	assert.Equal(t, "frame render", modeErr.Op)
	assert.Empty(t, rec.Writes())
}

func TestPositionedWriteOutsideRendererIsRepainted(t *testing.T) {
	r, ctrl, _ := newRenderer(t, nil)

	require.NoError(t, ctrl.WritePositioned("AB", 19, 2))
	require.NoError(t, r.WriteFrame("FRAME", ""))

	assert.NoError(t, ctrl.Simulator().AssertLineEquals(1, "FRAME"))
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(2, ""))
	assert.Equal(t, render.NewFrame("FRAME", ""), r.Frame())
}

func TestStringWriteOutsideRendererForcesFrame(t *testing.T) {
	r, ctrl, rec := newRenderer(t, nil)

	require.NoError(t, r.WriteFrame("A", "B"))
	require.NoError(t, ctrl.WriteBothLines("XX", "YY"))
	rec.Reset()

	require.NoError(t, r.WriteFrame("A", "B"))

	assert.NotEmpty(t, rec.Writes(), "same frame is sent again after a string write")
	assert.Equal(t, protocol.ModeNormal, ctrl.Mode())
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(1, "A"))
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(2, "B"))
	assert.Equal(t, 0, r.Stats().Skipped)
}

func TestStringWriteWithoutAutoClearFailsFrame(t *testing.T) {
	r, ctrl, _ := newRenderer(t, func(o *display.Options) { o.AutoClear = false })

	require.NoError(t, r.WriteFrame("A", "B"))
	require.NoError(t, ctrl.WriteUpper("XX"))

	var modeErr *display.ModeError
	assert.True(t, errors.As(r.WriteFrame("A", "B"), &modeErr))
}

func TestExternalWriteRepaintsWholeFrame(t *testing.T) {
	r, ctrl, rec := newRenderer(t, nil)

	require.NoError(t, r.WriteFrame("ABCD", "EFGH"))
	require.NoError(t, ctrl.CursorHome())
	require.NoError(t, ctrl.WriteAtCursor("ABCD"))
	rec.Reset()

	require.NoError(t, r.WriteFrame("ABCD", "EFGH"))
	assert.Equal(t, [][]byte{
		protocol.SetCursor(1, 1).Bytes(),
		[]byte(render.NewFrame("ABCD", "")[0]),
		protocol.SetCursor(1, 2).Bytes(),
		[]byte(render.NewFrame("EFGH", "")[0]),
	}, rec.Writes())
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(1, "ABCD"))

	// The renderer's own writes do not invalidate the baseline.
	rec.Reset()
	require.NoError(t, r.WriteFrame("ABCD", "EFGH"))
	assert.Empty(t, rec.Writes())
}

func TestClearResetsBaseline(t *testing.T) {
	r, _, rec := newRenderer(t, nil)

	require.NoError(t, r.WriteFrame("AB", ""))
	require.NoError(t, r.Clear())
	assert.Equal(t, render.BlankFrame(), r.Frame())
	rec.Reset()

	require.NoError(t, r.WriteFrame("AB", ""))
	assert.Len(t, rec.Writes(), 2, "frame is written again after a clear")
}

func TestSetCharAndRenderFrame(t *testing.T) {
	r, ctrl, rec := newRenderer(t, nil)

	require.NoError(t, r.SetChar(1, 1, '*'))
	require.NoError(t, r.SetChar(20, 2, '#'))
	assert.Empty(t, rec.Writes(), "nothing is sent before RenderFrame")

	require.NoError(t, r.RenderFrame())
	assert.NoError(t, ctrl.Simulator().AssertCharAt(1, 1, '*'))
	assert.NoError(t, ctrl.Simulator().AssertCharAt(20, 2, '#'))
	assert.Len(t, rec.Writes(), 4)

	var vErr *display.ValidationError
	assert.True(t, errors.As(r.SetChar(0, 1, 'x'), &vErr))
	assert.True(t, errors.As(r.SetChar(1, 3, 'x'), &vErr))
	assert.True(t, errors.As(r.SetChar(1, 1, 0x07), &vErr))
}

func TestRendererSimulatorMirrorsController(t *testing.T) {
	r, ctrl, _ := newRenderer(t, nil)
	sim := r.EnableSimulator()
	assert.Same(t, sim, r.EnableSimulator())

	frames := [][2]string{
		{"  *                 ", "____________________"},
		{"   *                ", "____________________"},
		{"                    ", "____*_______________"},
	}
	for _, f := range frames {
		require.NoError(t, r.WriteFrame(f[0], f[1]))
		assert.Equal(t, ctrl.Simulator().Lines(), sim.Lines())
	}
}

func TestConsolePreviewRedrawsInPlace(t *testing.T) {
	r, _, _ := newRenderer(t, nil)
	var out bytes.Buffer
	r.EnableConsole(&out, preview.InPlace(true))

	require.NoError(t, r.WriteFrame("ONE", ""))
	assert.Contains(t, out.String(), "|ONE                 |")
	assert.NotContains(t, out.String(), "\x1b[1A")

	out.Reset()
	require.NoError(t, r.WriteFrame("TWO", ""))
	assert.Contains(t, out.String(), "\x1b[1A\x1b[2K")
	assert.Contains(t, out.String(), "|TWO                 |")
}

func TestStatsAndTiming(t *testing.T) {
	var slept []time.Duration
	rec := transport.NewRecorder()
	opts := display.DefaultOptions()
	opts.Transport = rec
	opts.Sleep = func(time.Duration) {}
	ctrl, err := display.New(opts)
	require.NoError(t, err)

	r := render.New(ctrl, render.Options{
		SkipUnchanged: true,
		Sleep:         func(d time.Duration) { slept = append(slept, d) },
	})
	assert.Equal(t, render.DefaultFrameRate, r.FrameRate())
	assert.Equal(t, 250*time.Millisecond, r.FrameInterval())

	require.NoError(t, r.WriteFrame("AB  CD", ""))
	require.NoError(t, r.WriteFrame("AB  CD", ""))
	r.FrameSleep(r.FrameInterval())
	r.FrameSleep(0)

	assert.Equal(t, render.Stats{Frames: 1, Skipped: 1, Runs: 2, Chars: 4, Commands: 4}, r.Stats())
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, slept)
}

// mockDisplay is a testify mock of render.Display.
type mockDisplay struct {
	mock.Mock
	onClear func()
}

func (m *mockDisplay) EnsureNormal(op string) error {
	return m.Called(op).Error(0)
}

func (m *mockDisplay) WritePositioned(text string, col, row int, _ ...display.CallOption) error {
	return m.Called(text, col, row).Error(0)
}

func (m *mockDisplay) Clear(_ ...display.CallOption) error {
	err := m.Called().Error(0)
	if err == nil && m.onClear != nil {
		m.onClear()
	}
	return err
}

func (m *mockDisplay) OnClear(fn func()) { m.onClear = fn }

func (m *mockDisplay) OnWrite(func()) {}

func TestWriteFrameFailureKeepsBaseline(t *testing.T) {
	cause := &display.TransportError{Op: "text", Err: errors.New("EIO")}
	d := &mockDisplay{}
	d.On("EnsureNormal", "frame render").Return(nil)
	d.On("WritePositioned", "A", 1, 1).Return(nil)
	d.On("WritePositioned", "B", 1, 2).Return(cause)

	r := render.New(d, render.DefaultOptions())
	err := r.WriteFrame("A", "B")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, render.BlankFrame(), r.Frame())
	assert.Equal(t, 0, r.Stats().Frames)
	d.AssertExpectations(t)
}

func TestClearGoesThroughDisplay(t *testing.T) {
	d := &mockDisplay{}
	d.On("EnsureNormal", "frame render").Return(nil)
	d.On("WritePositioned", "X", 1, 1).Return(nil)
	d.On("Clear").Return(nil)

	r := render.New(d, render.DefaultOptions())
	require.NoError(t, r.WriteFrame("X", ""))
	require.NoError(t, r.Clear())

	assert.Equal(t, render.BlankFrame(), r.Frame())
	d.AssertNumberOfCalls(t, "Clear", 1)
}
