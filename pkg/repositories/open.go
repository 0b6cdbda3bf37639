package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/apperrors"
	"github.com/kennelos/kennel-etl/pkg/config"
	"github.com/kennelos/kennel-etl/pkg/database"
)

// Open connects to the store configured in cfg, optionally applying
// migrations first, and returns the matching KennelRepository.
func Open(ctx context.Context, cfg *config.DatabaseConfig, migrate bool, logger *zap.Logger) (KennelRepository, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: database is disabled", apperrors.ErrUnsupportedDriver)
	}

	if cfg.Driver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.URL), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if migrate {
		if err := database.RunMigrations(ctx, cfg.Driver, cfg.URL, cfg.MigrationsPath, logger); err != nil {
			return nil, err
		}
	}

	if cfg.Driver == config.DriverPostgres {
		db, err := database.NewConnection(ctx, &database.Config{
			URL:            cfg.URL,
			MaxConnections: cfg.MaxConnections,
			ConnectRetries: cfg.RetryAttempts,
		}, logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresKennelRepository(db), nil
	}

	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnsupportedDriver, err)
	}
	db, err := database.OpenSQL(ctx, cfg.Driver, cfg.URL, cfg.RetryAttempts, logger)
	if err != nil {
		return nil, err
	}
	return NewSQLKennelRepository(db, dialect), nil
}
