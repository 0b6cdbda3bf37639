package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/database"
	"github.com/kennelos/kennel-etl/pkg/logging"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Creates or upgrades the pet_activities, environment, staff_logs and
daily_summary tables in the configured database. With --down every applied
migration is reverted, dropping the tables and their data.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled() {
			return fmt.Errorf("database driver is %q; nothing to migrate", cfg.Database.Driver)
		}

		logger.Info("Running migrations",
			zap.String("driver", cfg.Database.Driver),
			zap.String("url", logging.SanitizeConnectionString(cfg.Database.URL)),
			zap.Bool("down", migrateDown))

		if migrateDown {
			return database.RollbackMigrations(cmd.Context(), cfg.Database.Driver, cfg.Database.URL, cfg.Database.MigrationsPath, logger)
		}
		return database.RunMigrations(cmd.Context(), cfg.Database.Driver, cfg.Database.URL, cfg.Database.MigrationsPath, logger)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Revert all migrations")
}
