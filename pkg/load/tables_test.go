package load

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennelos/kennel-etl/pkg/models"
)

func TestFormatCell(t *testing.T) {
	avg := 71.25
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"text", "walk", "walk"},
		{"int", 30, "30"},
		{"float", 72.5, "72.5"},
		{"whole float", 8.0, "8"},
		{"null average", (*float64)(nil), ""},
		{"average", &avg, "71.25"},
		{"wall clock", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "2024-01-01 10:00:00"},
		{"fractional seconds", time.Date(2024, 1, 1, 10, 0, 0, 500_000_000, time.UTC), "2024-01-01 10:00:00.5"},
		{"with offset", time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("", -5*3600)), "2024-01-01 10:00:00-05:00"},
		{"date", models.Date{Year: 2024, Month: time.March, Day: 9}, "2024-03-09"},
		{"comfort", models.Humid, "humid"},
		{"shift", models.ShiftEvening, "evening"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.in))
		})
	}
}

func TestTables(t *testing.T) {
	tables := Tables(testResult())
	require.Len(t, tables, 4)

	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.Name
		for _, row := range table.Rows {
			assert.Len(t, row, len(table.Columns), "row width matches %s columns", table.Name)
		}
	}
	assert.Equal(t, []string{"pet_activities", "environment", "staff_logs", "daily_summary"}, names)

	assert.Equal(t, 2, tables[0].Len())
	assert.Equal(t, models.KindActivity, tables[0].Kind)
	assert.Equal(t, models.EntityKind(""), tables[3].Kind)
}
