package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

type sqlKennelRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLKennelRepository returns a KennelRepository over database/sql,
// used for the SQLite and SQL Server stores.
func NewSQLKennelRepository(db *sql.DB, dialect Dialect) KennelRepository {
	return &sqlKennelRepository{db: db, dialect: dialect}
}

var _ KennelRepository = (*sqlKennelRepository)(nil)

func (r *sqlKennelRepository) SaveRun(ctx context.Context, res *transform.Result) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range factRows(r.dialect, res) {
		if err := insertRows(ctx, tx, r.dialect.insertSQL(t.table, t.columns), t.rows); err != nil {
			return fmt.Errorf("failed to insert %s: %w", t.table, err)
		}
	}

	summaries := make([][]any, len(res.DailySummary))
	for i, s := range res.DailySummary {
		summaries[i] = r.dialect.encodeAll(s.Values())
	}
	if err := insertRows(ctx, tx, r.dialect.upsertSummarySQL(), summaries); err != nil {
		return fmt.Errorf("failed to upsert daily summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// insertRows executes query once per row through a prepared statement.
func insertRows(ctx context.Context, tx *sql.Tx, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func (r *sqlKennelRepository) ListDailySummaries(ctx context.Context, from, to *models.Date) ([]models.DailySummary, error) {
	summaries, err := listSQL(ctx, r.db, r.dialect.dailySummaries(from, to), scanDailySummary)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily summaries: %w", err)
	}
	return summaries, nil
}

func (r *sqlKennelRepository) ListActivities(ctx context.Context, date models.Date) ([]models.ActivityRecord, error) {
	activities, err := listSQL(ctx, r.db, r.dialect.activitiesByDate(date), scanActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (r *sqlKennelRepository) ListEnvironment(ctx context.Context, date models.Date) ([]models.EnvironmentReading, error) {
	readings, err := listSQL(ctx, r.db, r.dialect.environmentByDate(date), scanEnvironment)
	if err != nil {
		return nil, fmt.Errorf("failed to list environment readings: %w", err)
	}
	return readings, nil
}

func (r *sqlKennelRepository) ListStaffLogs(ctx context.Context, date models.Date) ([]models.StaffLog, error) {
	shifts, err := listSQL(ctx, r.db, r.dialect.staffLogsByDate(date), scanStaffLog)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff logs: %w", err)
	}
	return shifts, nil
}

func (r *sqlKennelRepository) ListActivitiesBetween(ctx context.Context, from, to models.Date) ([]models.ActivityRecord, error) {
	activities, err := listSQL(ctx, r.db, r.dialect.activitiesBetween(from, to), scanActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (r *sqlKennelRepository) ListEnvironmentBetween(ctx context.Context, from, to models.Date) ([]models.EnvironmentReading, error) {
	readings, err := listSQL(ctx, r.db, r.dialect.environmentBetween(from, to), scanEnvironment)
	if err != nil {
		return nil, fmt.Errorf("failed to list environment readings: %w", err)
	}
	return readings, nil
}

func (r *sqlKennelRepository) ListStaffLogsBetween(ctx context.Context, from, to models.Date) ([]models.StaffLog, error) {
	shifts, err := listSQL(ctx, r.db, r.dialect.staffLogsBetween(from, to), scanStaffLog)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff logs: %w", err)
	}
	return shifts, nil
}

func (r *sqlKennelRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqlKennelRepository) Close() error {
	return r.db.Close()
}

func listSQL[T any](ctx context.Context, db *sql.DB, q listQuery, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, scan)
}
