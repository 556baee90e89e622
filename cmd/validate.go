package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vfdctl/internal/validate"
)

func newValidateCmd() *cobra.Command {
	var caseID string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare the hardware with the simulator case by case",
		Long: `Run a fixed set of command sequences on the display. After each one the
simulator's expected screen is printed (spaces shown as ·, a running marquee
as ←) and you confirm whether the hardware matches.

The command exits non-zero when any case does not match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := validate.Select(caseID)
			if err != nil {
				return err
			}

			overrides.Simulator = true
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			if !hardwareEnabled(application.Settings()) {
				return errors.New("validation compares against the hardware, remove --no-hardware")
			}
			session, err := application.OpenSession()
			if err != nil {
				return err
			}
			defer session.Close()

			runner, err := validate.NewRunner(session.Controller, cmd.InOrStdin(), cmd.OutOrStdout(), nil)
			if err != nil {
				return err
			}
			results, err := runner.Run(cmd.Context(), cases)
			if err != nil {
				return err
			}
			results.Render(cmd.OutOrStdout())
			if !results.AllMatched() {
				return fmt.Errorf("validation found mismatches")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&caseID, "case", "", "Run a single case by ID (BASIC, CURSOR, SCROLL, VIEW, SEQ, STATE, OFF)")
	return cmd
}
