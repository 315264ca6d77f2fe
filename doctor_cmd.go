package main

import (
	"errors"
	"fmt"

	"github.com/dgnsrekt/letterboard/internal/speech/engines"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:       "doctor [ENGINE]",
	Short:     "Check that a speech engine is ready",
	Long:      paragraph(fmt.Sprintf("\n%s the programs, models and keys an engine needs, with install instructions for anything missing. Without ENGINE the local engines are checked.", keyword("Check"))),
	Example:   paragraph("letterboard doctor\nletterboard doctor piper"),
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: engines.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := engines.NameAuto
		if len(args) == 1 {
			name = args[0]
		}

		report, err := engines.Check(cmd.Context(), name, engineConfig())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Render())
		if !report.OK() {
			return errors.New("some required dependencies are missing")
		}
		return nil
	},
}
