package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/models"
)

type fakeKennelReader struct {
	summaries   []models.DailySummary
	activities  []models.ActivityRecord
	environment []models.EnvironmentReading
	staff       []models.StaffLog
	err         error

	gotFrom, gotTo *models.Date
	gotDate        models.Date
}

func (f *fakeKennelReader) ListDailySummaries(_ context.Context, from, to *models.Date) ([]models.DailySummary, error) {
	f.gotFrom, f.gotTo = from, to
	return f.summaries, f.err
}

func (f *fakeKennelReader) ListActivities(_ context.Context, date models.Date) ([]models.ActivityRecord, error) {
	f.gotDate = date
	return f.activities, f.err
}

func (f *fakeKennelReader) ListEnvironment(_ context.Context, date models.Date) ([]models.EnvironmentReading, error) {
	f.gotDate = date
	return f.environment, f.err
}

func (f *fakeKennelReader) ListStaffLogs(_ context.Context, date models.Date) ([]models.StaffLog, error) {
	f.gotDate = date
	return f.staff, f.err
}

func serve(t *testing.T, reader KennelReader, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewKennelHandler(reader, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestKennelHandler_DailySummary(t *testing.T) {
	avg := 70.5
	reader := &fakeKennelReader{summaries: []models.DailySummary{
		{Date: models.Date{Year: 2024, Month: time.January, Day: 1}, TotalActivities: 2, AvgTemperature: &avg},
		{Date: models.Date{Year: 2024, Month: time.January, Day: 2}},
	}}

	rec := serve(t, reader, "/api/daily-summary?from=2024-01-01&to=2024-01-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	require.NotNil(t, reader.gotFrom)
	require.NotNil(t, reader.gotTo)
	assert.Equal(t, "2024-01-01", reader.gotFrom.String())
	assert.Equal(t, "2024-01-31", reader.gotTo.String())

	var body struct {
		Items []map[string]any `json:"items"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "2024-01-01", body.Items[0]["date"])
	assert.Equal(t, 70.5, body.Items[0]["avg_temperature"])
	assert.Nil(t, body.Items[1]["avg_temperature"], "missing averages are null")
}

func TestKennelHandler_DailySummary_OpenRange(t *testing.T) {
	reader := &fakeKennelReader{}

	rec := serve(t, reader, "/api/daily-summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, reader.gotFrom)
	assert.Nil(t, reader.gotTo)
	assert.JSONEq(t, `{"items":[],"count":0}`, rec.Body.String())
}

func TestKennelHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantCode string
	}{
		{name: "bad from", target: "/api/daily-summary?from=yesterday", wantCode: "invalid_from"},
		{name: "bad to", target: "/api/daily-summary?to=2024-13-01", wantCode: "invalid_to"},
		{name: "inverted range", target: "/api/daily-summary?from=2024-02-01&to=2024-01-01", wantCode: "invalid_range"},
		{name: "activities without date", target: "/api/pet-activities", wantCode: "missing_date"},
		{name: "environment bad date", target: "/api/environment?date=01/02/2024", wantCode: "invalid_date"},
		{name: "staff bad date", target: "/api/staff-logs?date=2024-02-30", wantCode: "invalid_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeKennelReader{}, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec))
		})
	}
}

func TestKennelHandler_PerDateEndpoints(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	reader := &fakeKennelReader{
		activities:  []models.ActivityRecord{{PetID: "P1", Timestamp: ts}},
		environment: []models.EnvironmentReading{{Timestamp: ts}, {Timestamp: ts.Add(time.Hour)}},
		staff:       []models.StaffLog{{StaffID: "S1", ShiftStart: ts, ShiftEnd: ts}},
	}

	tests := []struct {
		path      string
		wantCount int
	}{
		{"/api/pet-activities", 1},
		{"/api/environment", 2},
		{"/api/staff-logs", 1},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(t, reader, tt.path+"?date=2024-01-01")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "2024-01-01", reader.gotDate.String())

			var body struct {
				Count int `json:"count"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCount, body.Count)
		})
	}
}

func TestKennelHandler_ReaderError(t *testing.T) {
	reader := &fakeKennelReader{err: errors.New("database is locked")}

	rec := serve(t, reader, "/api/staff-logs?date=2024-01-01")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec))
	assert.NotContains(t, rec.Body.String(), "locked", "store errors are not leaked")
}
