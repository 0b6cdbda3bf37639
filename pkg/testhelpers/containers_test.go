//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestTestDB_SchemaApplied(t *testing.T) {
	testDB := GetTestDB(t)
	ctx := context.Background()

	tables := []string{"pet_activities", "environment", "staff_logs", "daily_summary"}
	for _, table := range tables {
		var exists bool
		err := testDB.DB.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table).Scan(&exists)
		if err != nil {
			t.Fatalf("failed to check %s: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestTestDB_Truncate(t *testing.T) {
	testDB := GetTestDB(t)
	ctx := context.Background()

	_, err := testDB.DB.Exec(ctx, `INSERT INTO daily_summary ("date") VALUES ('2024-01-01')`)
	if err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	testDB.Truncate(t, "daily_summary")

	var count int
	if err := testDB.DB.QueryRow(ctx, "SELECT COUNT(*) FROM daily_summary").Scan(&count); err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table after truncate, got %d rows", count)
	}
}
