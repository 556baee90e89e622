package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vfdctl/internal/display"
	"vfdctl/internal/protocol"
	"vfdctl/internal/render"
	"vfdctl/internal/transport"
)

func newTestServer(t *testing.T) (*Server, *display.Controller, *transport.Recorder) {
	t.Helper()
	rec := transport.NewRecorder()
	opts := display.DefaultOptions()
	opts.Transport = rec
	opts.Simulator = true
	opts.Sleep = func(time.Duration) {}
	ctrl, err := display.New(opts)
	require.NoError(t, err)
	rec.Reset()

	return New(Config{}, ctrl, render.New(ctrl, render.DefaultOptions())), ctrl, rec
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewDefaults(t *testing.T) {
	s, _, _ := newTestServer(t)
	assert.Equal(t, Config{Transport: "stdio", Host: "localhost", Port: 8090, Version: "dev"}, s.config)

	names := map[string]bool{}
	for _, tool := range s.tools() {
		names[tool.Tool.Name] = true
	}
	for _, want := range []string{
		"display_write_lines", "display_write_at", "display_write_frame", "display_clear",
		"display_brightness", "display_marquee", "display_viewport", "display_state",
	} {
		assert.True(t, names[want], want)
	}
}

func TestHandleWriteLines(t *testing.T) {
	s, ctrl, _ := newTestServer(t)

	result, err := s.HandleWriteLines(context.Background(), call(map[string]interface{}{
		"upper": "HELLO",
		"lower": "WORLD",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "write lines: ok (mode string)", resultText(t, result))
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(1, "HELLO"))
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(2, "WORLD"))

	result, err = s.HandleWriteLines(context.Background(), call(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleWriteAtAndFrame(t *testing.T) {
	s, ctrl, _ := newTestServer(t)

	result, err := s.HandleWriteAt(context.Background(), call(map[string]interface{}{
		"text": "AB",
		"col":  float64(19),
		"row":  float64(2),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NoError(t, ctrl.Simulator().AssertCharAt(19, 2, 'A'))

	result, err = s.HandleWriteFrame(context.Background(), call(map[string]interface{}{
		"line1": "FRAME",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(1, "FRAME"))
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(2, ""))
}

func TestHandleWriteFrameAfterWriteLines(t *testing.T) {
	s, ctrl, rec := newTestServer(t)
	frame := call(map[string]interface{}{"line1": "A", "line2": "B"})

	_, err := s.HandleWriteFrame(context.Background(), frame)
	require.NoError(t, err)
	_, err = s.HandleWriteLines(context.Background(), call(map[string]interface{}{
		"upper": "XX",
		"lower": "YY",
	}))
	require.NoError(t, err)
	rec.Reset()

	result, err := s.HandleWriteFrame(context.Background(), frame)
	require.NoError(t, err)
	assert.Equal(t, "write frame: ok (mode normal)", resultText(t, result))
	assert.NotEmpty(t, rec.Bytes())
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(1, "A"))
	assert.NoError(t, ctrl.Simulator().AssertLineEquals(2, "B"))
}

func TestHandleBrightnessRejectsInvalidLevel(t *testing.T) {
	s, ctrl, rec := newTestServer(t)

	result, err := s.HandleBrightness(context.Background(), call(map[string]interface{}{"level": float64(5)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid brightness")
	assert.Empty(t, rec.Writes())

	result, err = s.HandleBrightness(context.Background(), call(map[string]interface{}{"level": float64(2)}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NoError(t, ctrl.Simulator().AssertBrightness(2))
}

func TestHandleViewportKeepsAppending(t *testing.T) {
	s, ctrl, _ := newTestServer(t)
	args := func(text string) mcp.CallToolRequest {
		return call(map[string]interface{}{
			"text":  text,
			"line":  float64(1),
			"start": float64(4),
			"end":   float64(10),
		})
	}

	result, err := s.HandleViewport(context.Background(), args("VIEWPORT"))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Equal(t, protocol.ModeViewport, ctrl.Mode())

	result, err = s.HandleViewport(context.Background(), args("TEXT"))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.NoError(t, ctrl.Simulator().AssertRegionEquals(4, 1, "ORTTEXT"))

	result, err = s.HandleViewport(context.Background(), call(map[string]interface{}{"text": "X"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleMarqueeClearAndState(t *testing.T) {
	s, ctrl, _ := newTestServer(t)

	result, err := s.HandleMarquee(context.Background(), call(map[string]interface{}{"text": "NEWS"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, protocol.ModeScroll, ctrl.Mode())

	result, err = s.HandleState(context.Background(), call(nil))
	require.NoError(t, err)
	var state State
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &state))
	assert.Equal(t, "scroll", state.Display.Mode)
	require.NotNil(t, state.Screen)
	assert.Equal(t, "NEWS", state.Screen.ScrollText)

	result, err = s.HandleClear(context.Background(), call(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, protocol.ModeNormal, ctrl.Mode())
}

func TestServeUnknownTransport(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.config.Transport = "carrier-pigeon"
	assert.Error(t, s.Serve(context.Background()))
}
