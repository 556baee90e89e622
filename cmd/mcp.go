package cmd

import (
	"github.com/spf13/cobra"

	"vfdctl/internal/config"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		host      string
		port      int
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the display as MCP tools",
		Long: `Start a Model Context Protocol server exposing the display as tools:
display_write_lines, display_write_at, display_write_frame, display_clear,
display_brightness, display_marquee, display_viewport and display_state.

The stdio transport (default) is meant to be launched by an MCP client.
The sse transport listens on --host and --port.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			settings := application.Config().Settings
			if transport != "" {
				settings.MCP.Transport = transport
			}
			if host != "" {
				settings.MCP.Host = host
			}
			if port != 0 {
				settings.MCP.Port = port
			}
			if err := settings.Validate(); err != nil {
				return err
			}
			return application.RunMCP(cmd.Context(), rootCmd.Version)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "Transport: "+config.MCPTransportStdio+" or "+config.MCPTransportSSE)
	cmd.Flags().StringVar(&host, "host", "", "Host to listen on (sse)")
	cmd.Flags().IntVar(&port, "listen-port", 0, "Port to listen on (sse)")
	return cmd
}
