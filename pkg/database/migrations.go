package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/database/sqlserver"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/apperrors"
)

// migrationDriver wraps db in the golang-migrate driver for the dialect.
func migrationDriver(db *sql.DB, driver string) (migratedb.Driver, error) {
	switch driver {
	case "postgres":
		return postgres.WithInstance(db, &postgres.Config{})
	case "sqlite":
		return sqlite.WithInstance(db, &sqlite.Config{})
	case "sqlserver":
		return sqlserver.WithInstance(db, &sqlserver.Config{})
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedDriver, driver)
	}
}

// RunMigrations executes pending migrations from <migrationsPath>/<driver>.
// It is idempotent and safe to call multiple times - only pending migrations will be executed.
// The migration driver owns its connection, so a dedicated handle is opened
// for the duration of the call.
func RunMigrations(ctx context.Context, driver, url, migrationsPath string, logger *zap.Logger) error {
	m, err := newMigrate(ctx, driver, url, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer closeMigrate(m, logger)

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)", zap.String("driver", driver))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("Applied migrations successfully",
		zap.String("driver", driver),
		zap.Uint("version", newVersion))
	return nil
}

// RollbackMigrations reverts every applied migration.
func RollbackMigrations(ctx context.Context, driver, url, migrationsPath string, logger *zap.Logger) error {
	m, err := newMigrate(ctx, driver, url, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer closeMigrate(m, logger)

	err = m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to roll back", zap.String("driver", driver))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	logger.Info("Rolled back migrations", zap.String("driver", driver))
	return nil
}

// newMigrate opens a handle for driver and wraps it in a migrator.
// Closing the migrator closes the handle.
func newMigrate(ctx context.Context, driver, url, migrationsPath string, logger *zap.Logger) (*migrate.Migrate, error) {
	db, err := OpenSQL(ctx, driver, url, 0, logger)
	if err != nil {
		return nil, err
	}

	instance, err := migrationDriver(db, driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source := "file://" + filepath.ToSlash(filepath.Join(migrationsPath, driver))
	m, err := migrate.NewWithDatabaseInstance(source, driver, instance)
	if err != nil {
		instance.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate, logger *zap.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("Failed to close migration source", zap.Error(srcErr))
	}
	if dbErr != nil {
		logger.Warn("Failed to close migration database", zap.Error(dbErr))
	}
}
