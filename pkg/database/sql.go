package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" for database/sql (migrations)
	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/kennelos/kennel-etl/pkg/apperrors"
	"github.com/kennelos/kennel-etl/pkg/logging"
	"github.com/kennelos/kennel-etl/pkg/retry"
)

// SQLDriverName maps a configured driver to its database/sql driver name.
func SQLDriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	case "sqlserver":
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedDriver, driver)
	}
}

// OpenSQL opens and pings a database/sql handle for driver.
// SQLite handles are limited to one connection since the file allows a
// single writer.
func OpenSQL(ctx context.Context, driver, url string, connectRetries int, logger *zap.Logger) (*sql.DB, error) {
	name, err := SQLDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %s", driver, logging.SanitizeError(err))
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	_, err = retry.DoWithResult(ctx, retry.WithMaxRetries(connectRetries), func() (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %s", driver, logging.SanitizeError(err))
	}

	if driver == "sqlite" {
		// WAL lets the API read while a run writes.
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			logger.Warn("Failed to enable WAL journal mode", zap.Error(err))
		}
	}

	logger.Debug("Opened database",
		zap.String("driver", driver),
		zap.String("url", logging.SanitizeConnectionString(url)))
	return db, nil
}
