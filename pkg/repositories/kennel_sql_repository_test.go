package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/config"
	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

// setupSQLiteRepo opens a migrated SQLite store in a temp directory.
func setupSQLiteRepo(t *testing.T) KennelRepository {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		URL:            filepath.Join(t.TempDir(), "nested", "kennelos.db"),
		MigrationsPath: "../../migrations",
	}
	repo, err := Open(context.Background(), cfg, true, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleResult() *transform.Result {
	res := transform.Transform(transform.Input{
		Activities: []models.RawRecord{
			{"pet_id": "P1", "pet_name": "Biscuit", "activity_type": "walk", "duration_minutes": 30, "timestamp": "2024-01-01T10:00:00", "staff_id": "S1"},
			{"pet_id": "P2", "pet_name": "Mochi", "activity_type": "play", "duration_minutes": 20, "timestamp": "2024-01-01T09:00:00", "staff_id": "S1"},
			{"pet_id": "P1", "activity_type": "feed", "duration_minutes": 5, "timestamp": "2024-01-02T08:00:00", "staff_id": "S2"},
		},
		Environment: []models.RawRecord{
			{"timestamp": "2024-01-01 09:00:00", "temperature_f": 72, "humidity_percent": 95, "noise_level_db": 40, "kennel_section": "A"},
		},
		StaffLogs: []models.RawRecord{
			{"staff_id": "S1", "staff_name": "Dana", "shift_start": "2024-01-01 22:00:00", "shift_end": "2024-01-02 06:00:00", "tasks_completed": 8},
		},
	})
	return &res
}

func TestSQLKennelRepository_SaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)
	res := sampleResult()

	require.NoError(t, repo.SaveRun(ctx, res))

	day1 := models.Date{Year: 2024, Month: time.January, Day: 1}
	day2 := day1.AddDays(1)

	activities, err := repo.ListActivities(ctx, day1)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "P2", activities[0].PetID, "ordered by timestamp")
	assert.Equal(t, res.Activities[0], activities[1])

	readings, err := repo.ListEnvironment(ctx, day1)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, res.Environment[0], readings[0])
	assert.Equal(t, models.Humid, readings[0].HumidityComfort)

	shifts, err := repo.ListStaffLogs(ctx, day1)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, res.StaffLogs[0], shifts[0])

	shifts, err = repo.ListStaffLogs(ctx, day2)
	require.NoError(t, err)
	assert.Empty(t, shifts, "overnight shift belongs to its start date")

	summaries, err := repo.ListDailySummaries(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, res.DailySummary, summaries)
	require.Len(t, summaries, 2)
	assert.Nil(t, summaries[1].AvgTemperature)
}

func TestSQLKennelRepository_SummaryUpsertByDate(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)

	require.NoError(t, repo.SaveRun(ctx, sampleResult()))

	temp := 60.0
	day1 := models.Date{Year: 2024, Month: time.January, Day: 1}
	rerun := &transform.Result{
		DailySummary: []models.DailySummary{
			{Date: day1, TotalActivities: 9, AvgTemperature: &temp, StaffShifts: 1, TotalTasks: 3},
		},
	}
	require.NoError(t, repo.SaveRun(ctx, rerun))

	summaries, err := repo.ListDailySummaries(ctx, &day1, &day1)
	require.NoError(t, err)
	require.Len(t, summaries, 1, "date stays unique")
	assert.Equal(t, 9, summaries[0].TotalActivities)
	require.NotNil(t, summaries[0].AvgTemperature)
	assert.Equal(t, 60.0, *summaries[0].AvgTemperature)
	assert.Nil(t, summaries[0].AvgHumidity)
}

func TestSQLKennelRepository_DateRange(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)
	require.NoError(t, repo.SaveRun(ctx, sampleResult()))

	day2 := models.Date{Year: 2024, Month: time.January, Day: 2}
	summaries, err := repo.ListDailySummaries(ctx, &day2, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, day2, summaries[0].Date)

	day0 := models.Date{Year: 2023, Month: time.December, Day: 31}
	summaries, err = repo.ListDailySummaries(ctx, nil, &day0)
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestSQLKennelRepository_ListBetween(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)
	res := sampleResult()
	require.NoError(t, repo.SaveRun(ctx, res))

	day1 := models.Date{Year: 2024, Month: time.January, Day: 1}
	day2 := day1.AddDays(1)

	activities, err := repo.ListActivitiesBetween(ctx, day1, day2)
	require.NoError(t, err)
	require.Len(t, activities, 3)
	assert.Equal(t, []string{"P2", "P1", "P1"},
		[]string{activities[0].PetID, activities[1].PetID, activities[2].PetID}, "ordered by timestamp")

	activities, err = repo.ListActivitiesBetween(ctx, day2, day2)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "feed", activities[0].ActivityType)

	readings, err := repo.ListEnvironmentBetween(ctx, day1, day2)
	require.NoError(t, err)
	assert.Equal(t, res.Environment, readings)

	shifts, err := repo.ListStaffLogsBetween(ctx, day2, day2.AddDays(5))
	require.NoError(t, err)
	assert.NotNil(t, shifts)
	assert.Empty(t, shifts, "overnight shift belongs to its start date")

	shifts, err = repo.ListStaffLogsBetween(ctx, day1, day2)
	require.NoError(t, err)
	assert.Equal(t, res.StaffLogs, shifts)
}

func TestSQLKennelRepository_EmptyRun(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLiteRepo(t)

	empty := transform.Transform(transform.Input{})
	require.NoError(t, repo.SaveRun(ctx, &empty))
	require.NoError(t, repo.Ping(ctx))

	activities, err := repo.ListActivities(ctx, models.Date{Year: 2024, Month: time.January, Day: 1})
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestOpen_Disabled(t *testing.T) {
	_, err := Open(context.Background(), &config.DatabaseConfig{Driver: config.DriverNone}, false, zap.NewNop())
	assert.Error(t, err)
}
