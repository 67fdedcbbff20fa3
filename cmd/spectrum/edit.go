package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/spectrum"
	"github.com/aretw0/spectrum/internal/presentation/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit [session-id]",
	Short: "Edit a gradient session interactively",
	Long: `Opens (or creates) a session and reads editing commands from stdin.
Use --store file to keep the session between runs. Type 'help' for commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer closeEngine(eng)

		var sessionID string
		if len(args) > 0 {
			sessionID = args[0]
		}

		r := spectrum.NewRunner(sessionID)
		r.Input = os.Stdin
		r.Output = cmd.OutOrStdout()
		r.Headless = headless || !stdoutIsTerminal()
		if !r.Headless {
			r.Renderer = swatchRenderer(tui.DefaultSwatchWidth, true)
		}
		return r.Run(cmd.Context(), eng)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().Bool("headless", false, "No prompts or swatches; print expressions only")
}
