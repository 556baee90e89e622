package cmd

import (
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Edit both lines interactively and watch the display follow",
		Long: `Start an interactive terminal UI with one editor per display line. Every
change is rendered as a frame, so only the edited characters are sent. The
simulated screen is shown next to the editors; use --no-hardware to try it
without a display attached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			return application.RunPreview(cmd.Context())
		},
	}
}
