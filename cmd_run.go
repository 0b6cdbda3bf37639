package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/config"
	"github.com/kennelos/kennel-etl/pkg/extract"
	"github.com/kennelos/kennel-etl/pkg/load"
	"github.com/kennelos/kennel-etl/pkg/logging"
	"github.com/kennelos/kennel-etl/pkg/pipeline"
	"github.com/kennelos/kennel-etl/pkg/repositories"
	"github.com/kennelos/kennel-etl/pkg/retry"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

var (
	runDataDir   string
	runOutputDir string
	runNoDB      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one extract, transform and load pass",
	Long: `Reads the raw sources from the data directory, validates and derives every
record, aggregates daily summaries and writes:
  - <table>.csv, pet_activities.json and daily_summary.json
  - validation_failures.json, summary_report.txt and data_quality_report.txt
  - the four tables to the configured database (unless --no-db)

The run halts before writing anything when the share of rejected records
exceeds max_failure_rate.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Directory holding the raw source files (overrides config)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Directory receiving outputs (overrides config)")
	runCmd.Flags().BoolVar(&runNoDB, "no-db", false, "Skip the database sink")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applyRunOverrides(cfg, runDataDir, runOutputDir, runNoDB)

	logger.Info("Starting kennel-etl run",
		zap.String("version", cfg.Version),
		zap.String("data_dir", cfg.DataDir),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_url", logging.SanitizeConnectionString(cfg.Database.URL)))

	sinks := []pipeline.Sink{load.NewFileWriter(cfg.OutputDir, logger)}

	if cfg.Database.Enabled() {
		repo, err := repositories.Open(ctx, &cfg.Database, true, logger)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}()
		sinks = append(sinks, load.NewDatabaseSink(repo, retry.WithMaxRetries(cfg.Database.RetryAttempts), logger))
	}

	p := pipeline.New(
		extract.NewExtractor(cfg.DataDir, cfg.Sources, logger),
		sinks,
		pipeline.Options{
			MaxFailureRate: cfg.MaxFailureRate,
			Thresholds:     transform.DefaultThresholds(),
		},
		logger,
	)

	report, err := p.Run(ctx)
	if report != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	return err
}

// applyRunOverrides applies command line overrides. The default SQLite
// file follows the output directory unless DATABASE_URL was set.
func applyRunOverrides(c *config.Config, dataDir, outputDir string, noDB bool) {
	if dataDir != "" {
		c.DataDir = dataDir
	}
	if outputDir != "" {
		defaultDB := filepath.Join(c.OutputDir, "kennelos.db")
		c.OutputDir = outputDir
		if c.Database.Driver == config.DriverSQLite && c.Database.URL == defaultDB {
			c.Database.URL = filepath.Join(outputDir, "kennelos.db")
		}
	}
	if noDB {
		c.Database.Driver = config.DriverNone
	}
}

func printReport(out io.Writer, r *pipeline.RunReport) {
	fmt.Fprintf(out, "Run %s\n", r.RunID)
	for _, row := range []struct {
		name  string
		stats transform.KindStats
	}{
		{"pet_activities", r.Stats.Activities},
		{"environment", r.Stats.Environment},
		{"staff_logs", r.Stats.StaffLogs},
	} {
		fmt.Fprintf(out, "  %-15s input=%d valid=%d rejected=%d\n", row.name, row.stats.Input, row.stats.Valid, row.stats.Rejected)
	}
	if r.Result != nil {
		fmt.Fprintf(out, "  %-15s rows=%d\n", "daily_summary", len(r.Result.DailySummary))
	}
	fmt.Fprintf(out, "  failure rate    %.1f%%\n", r.FailureRate*100)

	if r.Halted {
		fmt.Fprintln(out, "Halted: failure rate above threshold, nothing written")
		return
	}
	for _, name := range []string{"files", "database"} {
		err, ok := r.Sinks[name]
		switch {
		case !ok:
		case err != nil:
			fmt.Fprintf(out, "  sink %-10s FAILED: %v\n", name, err)
		default:
			fmt.Fprintf(out, "  sink %-10s ok\n", name)
		}
	}
	fmt.Fprintf(out, "Finished in %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
