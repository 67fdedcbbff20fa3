package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/spectrum"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of spectrum",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "spectrum version %s\n", strings.TrimSpace(spectrum.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
