package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	loamAdapter "github.com/aretw0/spectrum/pkg/adapters/loam"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/ports"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the presets of the configured catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		preview, _ := cmd.Flags().GetBool("preview")
		watch, _ := cmd.Flags().GetBool("watch")

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer closeEngine(eng)

		out := cmd.OutOrStdout()
		presets, err := eng.Catalog().List(cmd.Context())
		if err != nil {
			return err
		}
		render := swatchRenderer(24, false)
		for _, p := range presets {
			fmt.Fprintf(out, "%-10s %s\n", p.Name, strings.Join(p.Colors, ", "))
			if preview {
				swatch, err := render(domain.NewGradient(p.Colors, ""))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-10s %s\n", "", swatch)
			}
		}

		if !watch {
			return nil
		}
		watchable, ok := eng.Catalog().(ports.Watchable)
		if !ok {
			return fmt.Errorf("preset source %q cannot be watched", appConfig.Presets.Source)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		changes, err := watchable.Watch(ctx)
		if err != nil {
			return err
		}
		logger.Info("watching presets", "path", appConfig.Presets.Path)
		for id := range changes {
			fmt.Fprintf(out, "changed: %s\n", id)
		}
		return nil
	},
}

var presetsSeedCmd = &cobra.Command{
	Use:   "seed <dir>",
	Short: "Write the built-in presets as Markdown documents",
	Long:  `Creates a Loam preset repository that can be served with --presets <dir> and presets.source=loam.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loamAdapter.Create(args[0])
		if err != nil {
			return err
		}
		for _, p := range domain.BuiltinPresets() {
			if err := catalog.Put(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s.md\n", p.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsSeedCmd)

	presetsCmd.Flags().Bool("preview", false, "Draw a swatch under each preset")
	presetsCmd.Flags().Bool("watch", false, "Keep running and report changed preset documents (loam source)")
}
