package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemacheck"
	"github.com/aretw0/schemacheck/internal/cli"
	"github.com/aretw0/schemacheck/internal/presentation/tui"
	httpAdapter "github.com/aretw0/schemacheck/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP validation server",
	Long: `Starts the JSON API: POST /validate, POST /upload, GET /reports/{id},
GET /events (SSE), GET /health, GET /info and GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		streams := httpAdapter.NewStreamManager(a.logger)
		a.buildChecker(streams.Hooks())
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Server.Addr = addr
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(a.logger),
			httpAdapter.WithMaxBodyBytes(a.cfg.Server.MaxBodyBytes),
			httpAdapter.WithCORSOrigins(a.cfg.Server.CORSOrigins),
			httpAdapter.WithMetrics(a.metrics.Handler()),
			httpAdapter.WithStreams(streams),
		}
		if a.redis != nil {
			opts = append(opts, httpAdapter.WithHealthCheck(a.redis.Ping))
		}

		srv := &http.Server{
			Addr:              a.cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(a.checker, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if cli.IsTerminal(cmd.ErrOrStderr()) {
			tui.PrintBanner(cmd.ErrOrStderr(), schemacheck.Version)
		}

		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("starting HTTP server", "addr", srv.Addr, "engine", a.cfg.Engine.Default, "store", a.cfg.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			a.logger.Info("shutting down", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Warn("graceful shutdown did not complete", "timeout", a.cfg.Server.ShutdownTimeout, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			a.logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
