package load

import (
	"time"

	"github.com/google/uuid"

	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

func testRun() models.RunInfo {
	return models.RunInfo{
		ID:        uuid.MustParse("6f1c2a9e-8d3b-4c57-9a10-2b7e5d4c3f21"),
		StartedAt: time.Date(2024, 1, 3, 7, 30, 0, 0, time.UTC),
	}
}

func testResult() *transform.Result {
	res := transform.Transform(transform.Input{
		Activities: []models.RawRecord{
			{"pet_id": "P1", "pet_name": "Biscuit", "activity_type": "Walk", "duration_minutes": 30, "timestamp": "2024-01-01T10:00:00", "staff_id": "S1"},
			{"pet_id": "P2", "pet_name": "Mochi", "activity_type": "play", "duration_minutes": 20, "timestamp": "2024-01-01T11:00:00", "staff_id": "S1", "notes": "fetch, then nap"},
			{"pet_name": "Ghost", "duration_minutes": 10, "timestamp": "2024-01-01T12:00:00", "staff_id": "S2"},
		},
		Environment: []models.RawRecord{
			{"timestamp": "2024-01-01 09:00:00", "temperature_f": "72", "humidity_percent": "95", "noise_level_db": "40", "kennel_section": "A"},
			{"timestamp": "2024-01-01 13:00:00", "temperature_f": "68", "humidity_percent": "55", "noise_level_db": "60"},
			{"timestamp": "2024-01-02 09:00:00", "temperature_f": "70", "humidity_percent": "140", "noise_level_db": "40"},
		},
		StaffLogs: []models.RawRecord{
			{"staff_id": "S1", "staff_name": "Dana", "shift_start": "2024-01-01 06:00:00", "shift_end": "2024-01-01 14:00:00", "tasks_completed": "12"},
			{"staff_id": "S2", "staff_name": "Lee", "shift_start": "2024-01-02 14:00:00", "shift_end": "2024-01-02 22:00:00", "tasks_completed": "16"},
		},
	})
	return &res
}
