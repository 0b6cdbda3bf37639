package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kennelos/kennel-etl/pkg/database"
	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

type postgresKennelRepository struct {
	db      *database.DB
	dialect Dialect
}

// NewPostgresKennelRepository returns a KennelRepository backed by a pgx pool.
// Fact rows are written with COPY.
func NewPostgresKennelRepository(db *database.DB) KennelRepository {
	return &postgresKennelRepository{db: db, dialect: PostgresDialect()}
}

var _ KennelRepository = (*postgresKennelRepository)(nil)

func (r *postgresKennelRepository) SaveRun(ctx context.Context, res *transform.Result) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range factRows(r.dialect, res) {
		if len(t.rows) == 0 {
			continue
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{t.table}, t.columns, pgx.CopyFromRows(t.rows)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", t.table, err)
		}
	}

	if len(res.DailySummary) > 0 {
		upsert := r.dialect.upsertSummarySQL()
		batch := &pgx.Batch{}
		for _, s := range res.DailySummary {
			batch.Queue(upsert, r.dialect.encodeAll(s.Values())...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert daily summary: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func (r *postgresKennelRepository) ListDailySummaries(ctx context.Context, from, to *models.Date) ([]models.DailySummary, error) {
	summaries, err := listPostgres(ctx, r.db, r.dialect.dailySummaries(from, to), scanDailySummary)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily summaries: %w", err)
	}
	return summaries, nil
}

func (r *postgresKennelRepository) ListActivities(ctx context.Context, date models.Date) ([]models.ActivityRecord, error) {
	activities, err := listPostgres(ctx, r.db, r.dialect.activitiesByDate(date), scanActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (r *postgresKennelRepository) ListEnvironment(ctx context.Context, date models.Date) ([]models.EnvironmentReading, error) {
	readings, err := listPostgres(ctx, r.db, r.dialect.environmentByDate(date), scanEnvironment)
	if err != nil {
		return nil, fmt.Errorf("failed to list environment readings: %w", err)
	}
	return readings, nil
}

func (r *postgresKennelRepository) ListStaffLogs(ctx context.Context, date models.Date) ([]models.StaffLog, error) {
	shifts, err := listPostgres(ctx, r.db, r.dialect.staffLogsByDate(date), scanStaffLog)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff logs: %w", err)
	}
	return shifts, nil
}

func (r *postgresKennelRepository) ListActivitiesBetween(ctx context.Context, from, to models.Date) ([]models.ActivityRecord, error) {
	activities, err := listPostgres(ctx, r.db, r.dialect.activitiesBetween(from, to), scanActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (r *postgresKennelRepository) ListEnvironmentBetween(ctx context.Context, from, to models.Date) ([]models.EnvironmentReading, error) {
	readings, err := listPostgres(ctx, r.db, r.dialect.environmentBetween(from, to), scanEnvironment)
	if err != nil {
		return nil, fmt.Errorf("failed to list environment readings: %w", err)
	}
	return readings, nil
}

func (r *postgresKennelRepository) ListStaffLogsBetween(ctx context.Context, from, to models.Date) ([]models.StaffLog, error) {
	shifts, err := listPostgres(ctx, r.db, r.dialect.staffLogsBetween(from, to), scanStaffLog)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff logs: %w", err)
	}
	return shifts, nil
}

func (r *postgresKennelRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *postgresKennelRepository) Close() error {
	r.db.Close()
	return nil
}

func listPostgres[T any](ctx context.Context, db *database.DB, q listQuery, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := db.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, scan)
}
