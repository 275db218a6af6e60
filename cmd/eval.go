package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vinylcat/sleevescan/internal/evalcmd"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Field guessing evaluation tools",
		Long: `Evaluation tools for measuring how accurately sleevescan guesses
barcode, artist, title and year against a labelled sleeve dataset.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())

	return cmd
}
