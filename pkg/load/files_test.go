package load

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFileWriter_Load(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	w := NewFileWriter(dir, zap.NewNop())

	require.NoError(t, w.Load(context.Background(), testRun(), testResult()))

	for _, name := range []string{
		"pet_activities.csv", "environment.csv", "staff_logs.csv", "daily_summary.csv",
		"pet_activities.json", "daily_summary.json",
		FailuresFile, SummaryReportFile, QualityReportFile,
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.NoFileExists(t, filepath.Join(dir, "environment.json"))

	activities := readCSV(t, filepath.Join(dir, "pet_activities.csv"))
	require.Len(t, activities, 3)
	assert.Equal(t, models.ActivityColumns, activities[0])
	assert.Equal(t, []string{
		"P1", "Biscuit", "walk", "30", "2024-01-01 10:00:00", "S1", "", "2024-01-01", "10", "Monday",
	}, activities[1])
	assert.Equal(t, "fetch, then nap", activities[2][6], "commas survive CSV quoting")

	summary := readCSV(t, filepath.Join(dir, "daily_summary.csv"))
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"2024-01-02", "0", "0", "0", "", "", "", "1", "16"}, summary[2],
		"a day with no accepted readings has empty averages")
}

func TestFileWriter_EmptyTablesReplaceStaleFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(dir, zap.NewNop())

	require.NoError(t, w.Load(context.Background(), testRun(), testResult()))
	require.Greater(t, len(readCSV(t, filepath.Join(dir, "pet_activities.csv"))), 1)

	res := transform.Transform(transform.Input{
		StaffLogs: []models.RawRecord{{"staff_id": "S1"}},
	})
	require.NoError(t, w.Load(context.Background(), testRun(), &res))

	for name, columns := range map[string][]string{
		"pet_activities.csv": models.ActivityColumns,
		"environment.csv":    models.EnvironmentColumns,
		"staff_logs.csv":     models.StaffColumns,
		"daily_summary.csv":  models.DailySummaryColumns,
	} {
		rows := readCSV(t, filepath.Join(dir, name))
		assert.Equal(t, [][]string{columns}, rows, "%s holds only its header", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pet_activities.json"))
	require.NoError(t, err)
	var activities []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &activities))
	assert.NotNil(t, activities)
	assert.Empty(t, activities)

	assert.FileExists(t, filepath.Join(dir, FailuresFile))
	assert.FileExists(t, filepath.Join(dir, SummaryReportFile))
}

func TestWriteFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileWriter(dir, zap.NewNop()).Load(context.Background(), testRun(), testResult()))

	data, err := os.ReadFile(filepath.Join(dir, FailuresFile))
	require.NoError(t, err)

	var doc FailureDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, testRun().ID.String(), doc.RunID)
	assert.Equal(t, "2024-01-03 07:30:00", doc.GeneratedAt)
	require.Len(t, doc.Failures, 2)
	assert.Equal(t, models.KindActivity, doc.Failures[0].Kind)
	assert.Equal(t, []models.ReasonCode{models.ReasonMissingField}, doc.Failures[0].Reasons)
	assert.Equal(t, models.KindEnvironment, doc.Failures[1].Kind)
	assert.Equal(t, 2, doc.Failures[1].Index)
	assert.InDelta(t, 2.0/8.0, doc.FailureRate, 1e-9)
}

func TestFileWriter_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewFileWriter(filepath.Join(blocker, "out"), zap.NewNop()).Load(context.Background(), testRun(), testResult())
	assert.Error(t, err)
}

func TestFileWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFileWriter(t.TempDir(), zap.NewNop()).Load(ctx, testRun(), testResult())
	assert.ErrorIs(t, err, context.Canceled)
}
