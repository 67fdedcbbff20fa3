package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/spectrum"
	"github.com/aretw0/spectrum/internal/config"
	"github.com/aretw0/spectrum/internal/logging"
)

var (
	appConfig *config.Config
	logger    = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "Spectrum keeps CSS gradients in sync with their colors and direction",
	Long: `Spectrum derives linear-gradient expressions from an ordered color list and a
direction, validates color tokens, and serves gradient sessions over HTTP, SSE and MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		envFile, _ := cmd.Flags().GetString("env-file")

		cfg, err := config.Load(config.Options{
			ConfigFile: configFile,
			EnvFile:    envFile,
			Flags:      cmd.Flags(),
		})
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = newLogger(cfg)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./spectrum.yaml when present)")
	flags.String("env-file", ".env", "Dotenv file loaded before reading SPECTRUM_* variables")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text, json, pretty")
	flags.String("lang", "en", "Interface language: en, ar")
	flags.String("theme", "light", "Theme: light, dark")
	flags.String("store", config.DriverMemory, "Session store: memory, file, redis")
	flags.String("store-path", ".spectrum/sessions", "Directory of the file store")
	flags.String("presets", "", "Preset directory (used with presets.source file or loam)")
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	switch cfg.LogFormat {
	case "json":
		return logging.NewJSON(level)
	case "pretty":
		return logging.NewPretty(os.Stderr, level)
	default:
		return logging.New(level)
	}
}

// newEngine builds an engine from the loaded configuration.
func newEngine(opts ...spectrum.Option) (*spectrum.Engine, error) {
	opts = append([]spectrum.Option{spectrum.WithLogger(logger)}, opts...)
	eng, err := spectrum.FromConfig(appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize spectrum: %w", err)
	}
	return eng, nil
}

func closeEngine(eng *spectrum.Engine) {
	if err := eng.Close(context.Background()); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
