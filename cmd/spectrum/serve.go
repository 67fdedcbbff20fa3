package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/spectrum"
	"github.com/aretw0/spectrum/internal/presentation/tui"
	httpAdapter "github.com/aretw0/spectrum/pkg/adapters/http"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/observability"
	"github.com/aretw0/spectrum/pkg/ports"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves gradient sessions, presets and SSE notifications over HTTP, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics := observability.NewMetrics()
		eng, err := newEngine(spectrum.WithMetrics(metrics))
		if err != nil {
			return err
		}
		defer closeEngine(eng)

		api, err := httpAdapter.New(eng.Manager(),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithPreferences(eng.Preferences()),
			httpAdapter.WithAllowedOrigins(appConfig.Server.AllowedOrigins...),
			httpAdapter.WithVersion(spectrum.Version),
			httpAdapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		defer api.Close()

		srv := &http.Server{
			Addr:              appConfig.Server.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tui.PrintBanner(os.Stderr, domain.NewGradient(nil, ""))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("starting spectrum server", "addr", srv.Addr, "store", appConfig.Store.Driver, "presets", appConfig.Presets.Source)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			logger.Info("spectrum server stopped gracefully")
			return nil
		})
		if watchable, ok := eng.Catalog().(ports.Watchable); ok && appConfig.Presets.Watch {
			g.Go(func() error {
				changes, err := watchable.Watch(gctx)
				if err != nil {
					return err
				}
				for id := range changes {
					logger.Info("preset document changed", "id", id)
				}
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
