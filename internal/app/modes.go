package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vfdctl/internal/config"
	"vfdctl/internal/mcpserver"
	"vfdctl/internal/tui"
	"vfdctl/pkg/logging"
)

// RunPreview runs the interactive preview until the user quits.
func (a *Application) RunPreview(ctx context.Context) error {
	// Switch logging to the channel before the session exists so the
	// controller logs into the TUI instead of over it.
	logLevel := logging.LevelInfo
	if a.config.Debug {
		logLevel = logging.LevelDebug
	}
	logChan := logging.InitForTUI(logLevel)
	defer logging.CloseTUIChannel()

	settings := *a.config.Settings
	settings.Display.Simulator = config.Bool(true)
	settings.Display.ConsolePreview = config.Bool(false)

	session, err := openSession(settings, false, false, a.config.Out)
	if err != nil {
		return err
	}
	defer session.Close()

	p, err := tui.NewProgram(tui.Config{
		Controller: session.Controller,
		Renderer:   session.Renderer,
		DebugMode:  a.config.Debug,
	}, logChan)
	if err != nil {
		logging.Error("TUI-Lifecycle", err, "Error creating TUI program")
		return err
	}

	// Run the TUI until user exits
	if _, err := p.Run(); err != nil {
		logging.Error("TUI-Lifecycle", err, "Error running TUI program")
		return err
	}
	logging.Info("TUI-Lifecycle", "TUI exited.")
	return nil
}

// RunMCP serves the display over MCP until interrupted.
func (a *Application) RunMCP(ctx context.Context, version string) error {
	settings := *a.config.Settings
	// Stdio belongs to the protocol; the console preview would corrupt it.
	if settings.MCP.Transport == config.MCPTransportStdio {
		settings.Display.ConsolePreview = config.Bool(false)
	}

	session, err := openSession(settings, false, false, a.config.Out)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcpserver.New(mcpserver.Config{
		Transport: settings.MCP.Transport,
		Host:      settings.MCP.Host,
		Port:      settings.MCP.Port,
		Version:   version,
	}, session.Controller, session.Renderer)

	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	logging.Info("MCP", "MCP server stopped")
	return nil
}
