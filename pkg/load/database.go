package load

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/repositories"
	"github.com/kennelos/kennel-etl/pkg/retry"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

// DatabaseSink saves a run through a KennelRepository, retrying transient
// failures. SaveRun is transactional, so a retried attempt never doubles rows.
type DatabaseSink struct {
	repo   repositories.KennelRepository
	retry  *retry.Config
	logger *zap.Logger
}

// NewDatabaseSink creates a DatabaseSink. A nil retry config uses retry.DefaultConfig.
func NewDatabaseSink(repo repositories.KennelRepository, retryCfg *retry.Config, logger *zap.Logger) *DatabaseSink {
	return &DatabaseSink{
		repo:   repo,
		retry:  retryCfg,
		logger: logger.Named("database"),
	}
}

// Name identifies the sink in run reports.
func (s *DatabaseSink) Name() string {
	return "database"
}

// Load persists res.
func (s *DatabaseSink) Load(ctx context.Context, run models.RunInfo, res *transform.Result) error {
	start := time.Now()
	attempts := 0

	err := retry.DoIfRetryable(ctx, s.retry, func() error {
		attempts++
		if attempts > 1 {
			s.logger.Warn("Retrying database write",
				zap.String("run_id", run.ID.String()),
				zap.Int("attempt", attempts))
		}
		return s.repo.SaveRun(ctx, res)
	})
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	s.logger.Info("Saved run to database",
		zap.String("run_id", run.ID.String()),
		zap.Int("activities", len(res.Activities)),
		zap.Int("environment", len(res.Environment)),
		zap.Int("staff_logs", len(res.StaffLogs)),
		zap.Int("daily_summaries", len(res.DailySummary)),
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
