package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vfdctl/internal/app"
	"vfdctl/internal/config"
	"vfdctl/internal/preview"
)

var (
	configPath string
	debugMode  bool
	overrides  app.Overrides
)

// For mocking in tests
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vfdctl",
	Short: "Drive a CD5220 2x20 VFD customer display over a serial port",
	Long: `vfdctl writes text to CD5220 compatible vacuum fluorescent customer
displays. It tracks the display's command mode so that only legal command
sequences reach the hardware, renders frames by sending only the characters
that changed, and can mirror every command into a bit-exact simulator.

Run without hardware (--no-hardware) to see the simulated screen instead,
or add --dump to print every command byte.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid arguments, failed connections)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "vfdctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file merged after ~/.config/vfdctl and ./.vfdctl")
	flags.StringVarP(&overrides.Port, "port", "p", "", "Serial port of the display (e.g. /dev/ttyUSB0, COM3)")
	flags.IntVar(&overrides.BaudRate, "baud", 0, "Baud rate (default 9600)")
	flags.BoolVar(&overrides.NoHardware, "no-hardware", false, "Do not open a serial port, simulate only")
	flags.BoolVar(&overrides.Simulator, "simulator", false, "Mirror commands into the simulator")
	flags.BoolVar(&overrides.Console, "console", false, "Draw the simulated screen after every visual change")
	flags.BoolVar(&overrides.ConsoleVerbose, "console-verbose", false, "Draw the simulated screen after every command")
	flags.BoolVar(&overrides.NoAutoClear, "no-auto-clear", false, "Fail instead of clearing when a command needs normal mode")
	flags.BoolVar(&overrides.QuietTransitions, "quiet-transitions", false, "Do not warn when auto-clearing")
	flags.BoolVar(&debugMode, "debug", false, "Log every command sent")
	flags.BoolVar(&overrides.Dump, "dump", false, "Print every command as hex")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newPortsCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newWriteCmd())
	rootCmd.AddCommand(newAtCmd())
	rootCmd.AddCommand(newMessageCmd())
	rootCmd.AddCommand(newBrightnessCmd())
	rootCmd.AddCommand(newMarqueeCmd())
	rootCmd.AddCommand(newViewportCmd())
	rootCmd.AddCommand(newFrameCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newMCPCmd())
}

// newApplication loads the configuration with the persistent flags applied.
func newApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg := app.NewConfig(configPath, debugMode, overrides)
	cfg.Out = cmd.OutOrStdout()
	cfg.ConsoleInPlace = stdoutIsTerminal()
	return app.NewApplication(cfg)
}

// withSession opens the display, runs fn and closes the display again. When
// no hardware is attached and the console preview is off, the simulated
// screen is printed at the end so the command has a visible result.
func withSession(cmd *cobra.Command, fn func(*app.Session) error) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	session, err := application.OpenSession()
	if err != nil {
		return err
	}
	defer session.Close()

	if err := fn(session); err != nil {
		return err
	}

	printSimulated(cmd, application.Settings(), session)
	return nil
}

// printSimulated prints the simulated screen when nothing else shows it.
func printSimulated(cmd *cobra.Command, settings config.Config, session *app.Session) {
	sim := session.Controller.Simulator()
	if sim != nil && !hardwareEnabled(settings) && !config.BoolValue(settings.Display.ConsolePreview, false) {
		fmt.Fprintln(cmd.OutOrStdout(), preview.Frame(sim.Visible()))
	}
}
