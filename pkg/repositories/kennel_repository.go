package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/kennelos/kennel-etl/pkg/jsonutil"
	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

// KennelRepository stores the clean tables produced by a pipeline run and
// serves them back to the read-only API.
type KennelRepository interface {
	// SaveRun appends the run's fact rows and upserts its daily summaries
	// in a single transaction.
	SaveRun(ctx context.Context, res *transform.Result) error
	// ListDailySummaries returns summaries in ascending date order.
	// Nil bounds are open; both bounds are inclusive.
	ListDailySummaries(ctx context.Context, from, to *models.Date) ([]models.DailySummary, error)
	ListActivities(ctx context.Context, date models.Date) ([]models.ActivityRecord, error)
	ListEnvironment(ctx context.Context, date models.Date) ([]models.EnvironmentReading, error)
	// ListStaffLogs returns shifts that started on date.
	ListStaffLogs(ctx context.Context, date models.Date) ([]models.StaffLog, error)
	// The Between variants cover the inclusive range [from, to] in
	// timestamp order; staff shifts are matched by start date.
	ListActivitiesBetween(ctx context.Context, from, to models.Date) ([]models.ActivityRecord, error)
	ListEnvironmentBetween(ctx context.Context, from, to models.Date) ([]models.EnvironmentReading, error)
	ListStaffLogsBetween(ctx context.Context, from, to models.Date) ([]models.StaffLog, error)
	Ping(ctx context.Context) error
	Close() error
}

type rowScanner interface {
	Scan(dest ...any) error
}

type rowIterator interface {
	rowScanner
	Next() bool
	Err() error
}

// collect drains rows through scan. The result is never nil.
func collect[T any](rows rowIterator, scan func(rowScanner) (T, error)) ([]T, error) {
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// dbTime scans a timestamp stored natively or as text.
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *dbTime) parse(s string) error {
	parsed, ok := jsonutil.ParseTimestamp(s)
	if !ok {
		return fmt.Errorf("invalid stored timestamp %q", s)
	}
	t.Time = parsed
	return nil
}

// dbDate scans a calendar date stored natively or as YYYY-MM-DD text.
type dbDate struct {
	models.Date
}

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = models.DateOf(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
}

func (d *dbDate) parse(s string) error {
	if len(s) > len(models.DateLayout) {
		s = s[:len(models.DateLayout)]
	}
	parsed, err := models.ParseDate(s)
	if err != nil {
		return err
	}
	d.Date = parsed
	return nil
}

func scanActivity(rs rowScanner) (models.ActivityRecord, error) {
	var a models.ActivityRecord
	var ts dbTime
	var date dbDate
	err := rs.Scan(
		&a.PetID, &a.PetName, &a.ActivityType, &a.DurationMinutes, &ts,
		&a.StaffID, &a.Notes, &date, &a.Hour, &a.DayOfWeek,
	)
	if err != nil {
		return a, fmt.Errorf("failed to scan activity: %w", err)
	}
	a.Timestamp = ts.Time
	a.Date = date.Date
	return a, nil
}

func scanEnvironment(rs rowScanner) (models.EnvironmentReading, error) {
	var e models.EnvironmentReading
	var ts dbTime
	var date dbDate
	var temp, humidity, noise string
	err := rs.Scan(
		&ts, &e.TemperatureF, &e.HumidityPercent, &e.NoiseLevelDB, &e.KennelSection,
		&date, &e.Hour, &temp, &humidity, &noise,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan environment reading: %w", err)
	}
	e.Timestamp = ts.Time
	e.Date = date.Date
	e.TempComfort = models.ComfortLevel(temp)
	e.HumidityComfort = models.ComfortLevel(humidity)
	e.NoiseComfort = models.ComfortLevel(noise)
	return e, nil
}

func scanStaffLog(rs rowScanner) (models.StaffLog, error) {
	var s models.StaffLog
	var start, end dbTime
	var shiftType string
	err := rs.Scan(
		&s.StaffID, &s.StaffName, &start, &end, &s.SectionAssigned,
		&s.TasksCompleted, &s.Notes, &s.ShiftDurationHours, &shiftType, &s.TasksPerHour,
	)
	if err != nil {
		return s, fmt.Errorf("failed to scan staff log: %w", err)
	}
	s.ShiftStart = start.Time
	s.ShiftEnd = end.Time
	s.ShiftType = models.ShiftType(shiftType)
	return s, nil
}

func scanDailySummary(rs rowScanner) (models.DailySummary, error) {
	var d models.DailySummary
	var date dbDate
	err := rs.Scan(
		&date, &d.TotalActivities, &d.TotalActivityMinutes, &d.UniquePets,
		&d.AvgTemperature, &d.AvgHumidity, &d.AvgNoise, &d.StaffShifts, &d.TotalTasks,
	)
	if err != nil {
		return d, fmt.Errorf("failed to scan daily summary: %w", err)
	}
	d.Date = date.Date
	return d, nil
}

// factRows returns the encoded rows of each fact table in res, keyed by table.
func factRows(d Dialect, res *transform.Result) []tableRows {
	activities := make([][]any, len(res.Activities))
	for i, a := range res.Activities {
		activities[i] = d.encodeAll(a.Values())
	}
	environment := make([][]any, len(res.Environment))
	for i, e := range res.Environment {
		environment[i] = d.encodeAll(e.Values())
	}
	staff := make([][]any, len(res.StaffLogs))
	for i, s := range res.StaffLogs {
		staff[i] = d.encodeAll(s.Values())
	}
	return []tableRows{
		{table: models.TablePetActivities, columns: models.ActivityColumns, rows: activities},
		{table: models.TableEnvironment, columns: models.EnvironmentColumns, rows: environment},
		{table: models.TableStaffLogs, columns: models.StaffColumns, rows: staff},
	}
}

type tableRows struct {
	table   string
	columns []string
	rows    [][]any
}
