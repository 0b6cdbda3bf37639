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
	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/handlers"
	"github.com/kennelos/kennel-etl/pkg/middleware"
	"github.com/kennelos/kennel-etl/pkg/repositories"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the clean tables over a read-only HTTP API",
	Long: `Starts the HTTP API used by dashboards:
  GET /health
  GET /ping
  GET /api/daily-summary?from=YYYY-MM-DD&to=YYYY-MM-DD
  GET /api/pet-activities?date=YYYY-MM-DD
  GET /api/environment?date=YYYY-MM-DD
  GET /api/staff-logs?date=YYYY-MM-DD
  GET /api/analytics/pet-wellness?from=YYYY-MM-DD&to=YYYY-MM-DD
  GET /api/analytics/environment?from=YYYY-MM-DD&to=YYYY-MM-DD
  GET /api/analytics/operations?from=YYYY-MM-DD&to=YYYY-MM-DD`,
	Args: cobra.NoArgs,
	RunE: serve,
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Database.Enabled() {
		return fmt.Errorf("serve requires a database; driver is %q", cfg.Database.Driver)
	}

	repo, err := repositories.Open(ctx, &cfg.Database, true, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, repo, logger).RegisterRoutes(mux)
	handlers.NewKennelHandler(repo, logger).RegisterRoutes(mux)
	handlers.NewAnalyticsHandler(repo, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           middleware.Chain(mux, middleware.Recover(logger), middleware.RequestLogger(logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting kennel-etl API",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
