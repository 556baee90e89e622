package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vfdctl/internal/display"
	"vfdctl/internal/protocol"
	"vfdctl/internal/simulator"
)

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("display_write_lines",
				mcp.WithDescription("Show two lines using string mode. Each line is padded or truncated to 20 characters."),
				mcp.WithString("upper", mcp.Required(), mcp.Description("Text for the upper line")),
				mcp.WithString("lower", mcp.Description("Text for the lower line")),
			),
			Handler: s.HandleWriteLines,
		},
		{
			Tool: mcp.NewTool("display_write_at",
				mcp.WithDescription("Write text starting at a 1-based column and row. Text past column 20 wraps."),
				mcp.WithString("text", mcp.Required(), mcp.Description("Text to write")),
				mcp.WithNumber("col", mcp.Required(), mcp.Description("Column, 1-20")),
				mcp.WithNumber("row", mcp.Required(), mcp.Description("Row, 1-2")),
			),
			Handler: s.HandleWriteAt,
		},
		{
			Tool: mcp.NewTool("display_write_frame",
				mcp.WithDescription("Bring the display to the given two lines, sending only the changed characters."),
				mcp.WithString("line1", mcp.Description("Upper line")),
				mcp.WithString("line2", mcp.Description("Lower line")),
			),
			Handler: s.HandleWriteFrame,
		},
		{
			Tool:    mcp.NewTool("display_clear", mcp.WithDescription("Clear the display and return to normal mode")),
			Handler: s.HandleClear,
		},
		{
			Tool: mcp.NewTool("display_brightness",
				mcp.WithDescription("Set the brightness level"),
				mcp.WithNumber("level", mcp.Required(), mcp.Description("Brightness, 1 (dim) to 4 (bright)")),
			),
			Handler: s.HandleBrightness,
		},
		{
			Tool: mcp.NewTool("display_marquee",
				mcp.WithDescription("Scroll text continuously across the upper line"),
				mcp.WithString("text", mcp.Required(), mcp.Description("Marquee text")),
			),
			Handler: s.HandleMarquee,
		},
		{
			Tool: mcp.NewTool("display_viewport",
				mcp.WithDescription("Append text to a window on one line. The window keeps the most recent characters."),
				mcp.WithString("text", mcp.Required(), mcp.Description("Text to append")),
				mcp.WithNumber("line", mcp.Required(), mcp.Description("Line, 1-2")),
				mcp.WithNumber("start", mcp.Required(), mcp.Description("First window column, 1-20")),
				mcp.WithNumber("end", mcp.Required(), mcp.Description("Last window column, 1-20")),
			),
			Handler: s.HandleViewport,
		},
		{
			Tool:    mcp.NewTool("display_state", mcp.WithDescription("Report the tracked mode, settings and simulated screen")),
			Handler: s.HandleState,
		},
	}
}

// HandleWriteLines handles the display_write_lines tool call
func (s *Server) HandleWriteLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	upper, err := req.RequireString("upper")
	if err != nil {
		return mcp.NewToolResultError("upper is required"), nil
	}
	lower := req.GetString("lower", "")

	return s.run("write lines", func() error {
		return s.ctrl.WriteBothLines(upper, lower)
	})
}

// HandleWriteAt handles the display_write_at tool call
func (s *Server) HandleWriteAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}
	col, err := req.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError("col is required"), nil
	}
	row, err := req.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError("row is required"), nil
	}

	return s.run("write at", func() error {
		return s.ctrl.WritePositioned(text, col, row)
	})
}

// HandleWriteFrame handles the display_write_frame tool call
func (s *Server) HandleWriteFrame(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line1 := req.GetString("line1", "")
	line2 := req.GetString("line2", "")

	return s.run("write frame", func() error {
		return s.renderer.WriteFrame(line1, line2)
	})
}

// HandleClear handles the display_clear tool call
func (s *Server) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run("clear", func() error {
		return s.renderer.Clear()
	})
}

// HandleBrightness handles the display_brightness tool call
func (s *Server) HandleBrightness(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level, err := req.RequireInt("level")
	if err != nil {
		return mcp.NewToolResultError("level is required"), nil
	}

	return s.run("brightness", func() error {
		return s.ctrl.SetBrightness(level)
	})
}

// HandleMarquee handles the display_marquee tool call
func (s *Server) HandleMarquee(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}

	return s.run("marquee", func() error {
		return s.ctrl.ScrollMarquee(text)
	})
}

// HandleViewport handles the display_viewport tool call. The window is only
// (re)configured when it differs from the active one, so repeated calls keep
// appending to the same viewport.
func (s *Server) HandleViewport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}
	var w protocol.Window
	for name, dst := range map[string]*int{"line": &w.Line, "start": &w.Start, "end": &w.End} {
		v, err := req.RequireInt(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s is required", name)), nil
		}
		*dst = v
	}

	return s.run("viewport", func() error {
		active, ok := s.ctrl.ActiveWindow()
		if !ok || active != w || s.ctrl.Mode() != protocol.ModeViewport {
			if err := s.ctrl.SetWindow(w.Line, w.Start, w.End); err != nil {
				return err
			}
			if err := s.ctrl.EnterViewport(); err != nil {
				return err
			}
		}
		return s.ctrl.WriteViewport(w.Line, text)
	})
}

// State is the payload of display_state.
type State struct {
	Display display.Info        `json:"display"`
	Screen  *simulator.Snapshot `json:"screen,omitempty"`
}

// HandleState handles the display_state tool call
func (s *Server) HandleState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	state := State{Display: s.ctrl.Info()}
	if sim := s.ctrl.Simulator(); sim != nil {
		snap := sim.Snapshot()
		state.Screen = &snap
	}
	s.mu.Unlock()

	resultJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format state: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// run executes fn under the display lock and turns its error into a tool
// error result. Protocol errors are reported to the caller, not returned.
func (s *Server) run(op string, fn func() error) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(); err != nil {
		s.log.Warn("Tool %s failed: %v", op, err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", op, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: ok (mode %s)", op, s.ctrl.Mode())), nil
}
