package cmd

import (
	"github.com/spf13/cobra"

	"vfdctl/internal/app"
	"vfdctl/internal/cli"
	"vfdctl/internal/config"
	"vfdctl/internal/transport"
)

// For mocking in tests
var listPorts = transport.ListPorts

// infoView is what 'vfdctl info' prints.
type infoView struct {
	Port                string      `json:"port"`
	BaudRate            int         `json:"baudRate"`
	Hardware            bool        `json:"hardware"`
	Simulator           bool        `json:"simulator"`
	Mode                string      `json:"mode"`
	AutoClear           bool        `json:"autoClear"`
	WarnOnTransition    bool        `json:"warnOnTransition"`
	BaseCommandDelay    string      `json:"baseCommandDelay"`
	ModeTransitionDelay string      `json:"modeTransitionDelay"`
	InitializationDelay string      `json:"initializationDelay"`
	Window              interface{} `json:"window"`
	FrameRate           float64     `json:"frameRate"`
}

func newInfoCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the effective configuration and tracked display state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			session, err := application.OpenSession()
			if err != nil {
				return err
			}
			defer session.Close()

			settings := application.Settings()
			info := session.Controller.Info()
			view := infoView{
				Port:                settings.Serial.Port,
				BaudRate:            settings.Serial.BaudRate,
				Hardware:            info.Hardware,
				Simulator:           info.Simulator,
				Mode:                info.Mode,
				AutoClear:           info.AutoClear,
				WarnOnTransition:    info.WarnOnTransition,
				BaseCommandDelay:    info.BaseDelay.String(),
				ModeTransitionDelay: info.ModeTransitionDelay.String(),
				InitializationDelay: info.InitDelay.String(),
				FrameRate:           app.RenderOptions(settings).FrameRate,
			}
			if info.Window != nil {
				view.Window = info.Window
			}
			return cli.Printer{Format: cli.OutputFormat(output), Out: cmd.OutOrStdout()}.Print(view)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputFormatTable), "Output format (table, json, yaml)")
	return cmd
}

func newPortsCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List the serial ports on this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := listPorts()
			if err != nil {
				return err
			}
			return cli.Printer{Format: cli.OutputFormat(output), Out: cmd.OutOrStdout()}.Print(ports)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputFormatTable), "Output format (table, json, yaml)")
	return cmd
}

// hardwareEnabled reports whether the merged settings open a serial port.
func hardwareEnabled(settings config.Config) bool {
	return config.BoolValue(settings.Display.Hardware, true)
}
