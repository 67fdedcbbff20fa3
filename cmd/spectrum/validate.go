package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/spectrum/pkg/domain"
)

var errInvalidTokens = errors.New("invalid color tokens")

var validateCmd = &cobra.Command{
	Use:   "validate <token>...",
	Short: "Classify color tokens",
	Long:  `Reports the format of each token (hex, rgb, rgba, hsl, named) and fails when any token is invalid.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invalid := 0
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, tok := range args {
			format := domain.ClassifyColor(tok)
			if format == domain.FormatInvalid {
				invalid++
			}
			fmt.Fprintf(tw, "%s\t%s\n", tok, format)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if invalid > 0 {
			return fmt.Errorf("%w: %d of %d", errInvalidTokens, invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
