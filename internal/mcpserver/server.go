// Package mcpserver exposes an open display session as MCP tools so that an
// assistant can write to the display. Tool calls are serialized; the
// controller underneath is not safe for concurrent use.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"vfdctl/internal/config"
	"vfdctl/internal/display"
	"vfdctl/internal/render"
	"vfdctl/pkg/logging"
)

// For mocking in tests
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// Config selects how the server is reached.
type Config struct {
	Transport string // config.MCPTransportStdio or config.MCPTransportSSE
	Host      string
	Port      int
	Version   string
}

// Server owns the MCP server and the display it drives.
type Server struct {
	config   Config
	ctrl     *display.Controller
	renderer *render.Renderer
	mcp      *server.MCPServer
	log      *logging.Logger

	mu sync.Mutex
}

// New registers the display tools on a new MCP server.
func New(cfg Config, ctrl *display.Controller, renderer *render.Renderer) *Server {
	if cfg.Transport == "" {
		cfg.Transport = config.MCPTransportStdio
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8090
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		config:   cfg,
		ctrl:     ctrl,
		renderer: renderer,
		log:      logging.For("MCP"),
	}
	s.mcp = server.NewMCPServer(
		"vfdctl",
		cfg.Version,
		server.WithToolCapabilities(false),
	)
	s.mcp.AddTools(s.tools()...)
	return s
}

// Serve blocks until ctx is cancelled or the transport fails.
func (s *Server) Serve(ctx context.Context) error {
	switch s.config.Transport {
	case config.MCPTransportStdio:
		s.log.Info("Serving MCP on stdio")
		return server.NewStdioServer(s.mcp).Listen(ctx, stdin, stdout)
	case config.MCPTransportSSE:
		return s.serveSSE(ctx)
	default:
		return fmt.Errorf("unknown MCP transport %q", s.config.Transport)
	}
}

func (s *Server) serveSSE(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	sse := server.NewSSEServer(
		s.mcp,
		server.WithBaseURL(fmt.Sprintf("http://%s", addr)),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Serving MCP over SSE on %s", addr)
		if err := sse.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("SSE server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sse.Shutdown(shutdownCtx); err != nil {
		s.log.Error(err, "Error shutting down SSE server")
		return err
	}
	return nil
}
