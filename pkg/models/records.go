package models

import "time"

// Table names of the persisted schema.
const (
	TablePetActivities = "pet_activities"
	TableEnvironment   = "environment"
	TableStaffLogs     = "staff_logs"
	TableDailySummary  = "daily_summary"
)

// ActivityColumns lists the pet_activities columns in schema order.
var ActivityColumns = []string{
	"pet_id", "pet_name", "activity_type", "duration_minutes", "timestamp",
	"staff_id", "notes", "date", "hour", "day_of_week",
}

// ActivityRecord is a single logged pet activity.
// Date, Hour and DayOfWeek are derived from Timestamp.
type ActivityRecord struct {
	PetID           string    `json:"pet_id"`
	PetName         string    `json:"pet_name"`
	ActivityType    string    `json:"activity_type"`
	DurationMinutes int       `json:"duration_minutes"`
	Timestamp       time.Time `json:"timestamp"`
	StaffID         string    `json:"staff_id"`
	Notes           string    `json:"notes"`

	Date      Date   `json:"date"`
	Hour      int    `json:"hour"`
	DayOfWeek string `json:"day_of_week"`
}

// Values returns the record's column values in ActivityColumns order.
func (a ActivityRecord) Values() []any {
	return []any{
		a.PetID, a.PetName, a.ActivityType, a.DurationMinutes, a.Timestamp,
		a.StaffID, a.Notes, a.Date, a.Hour, a.DayOfWeek,
	}
}

// EnvironmentColumns lists the environment columns in schema order.
var EnvironmentColumns = []string{
	"timestamp", "temperature_f", "humidity_percent", "noise_level_db", "kennel_section",
	"date", "hour", "temp_comfort", "humidity_comfort", "noise_comfort",
}

// EnvironmentReading is one sensor sample from a kennel section.
type EnvironmentReading struct {
	Timestamp       time.Time `json:"timestamp"`
	TemperatureF    float64   `json:"temperature_f"`
	HumidityPercent float64   `json:"humidity_percent"`
	NoiseLevelDB    float64   `json:"noise_level_db"`
	KennelSection   string    `json:"kennel_section"`

	Date            Date         `json:"date"`
	Hour            int          `json:"hour"`
	TempComfort     ComfortLevel `json:"temp_comfort"`
	HumidityComfort ComfortLevel `json:"humidity_comfort"`
	NoiseComfort    ComfortLevel `json:"noise_comfort"`
}

// Values returns the reading's column values in EnvironmentColumns order.
func (e EnvironmentReading) Values() []any {
	return []any{
		e.Timestamp, e.TemperatureF, e.HumidityPercent, e.NoiseLevelDB, e.KennelSection,
		e.Date, e.Hour, e.TempComfort, e.HumidityComfort, e.NoiseComfort,
	}
}

// StaffColumns lists the staff_logs columns in schema order.
var StaffColumns = []string{
	"staff_id", "staff_name", "shift_start", "shift_end", "section_assigned",
	"tasks_completed", "notes", "shift_duration_hours", "shift_type", "tasks_per_hour",
}

// StaffLog is one staff shift.
type StaffLog struct {
	StaffID         string    `json:"staff_id"`
	StaffName       string    `json:"staff_name"`
	ShiftStart      time.Time `json:"shift_start"`
	ShiftEnd        time.Time `json:"shift_end"`
	SectionAssigned string    `json:"section_assigned"`
	TasksCompleted  int       `json:"tasks_completed"`
	Notes           string    `json:"notes"`

	ShiftDurationHours float64   `json:"shift_duration_hours"`
	ShiftType          ShiftType `json:"shift_type"`
	TasksPerHour       float64   `json:"tasks_per_hour"`
}

// ShiftDate is the calendar date the shift started on.
func (s StaffLog) ShiftDate() Date {
	return DateOf(s.ShiftStart)
}

// Values returns the shift's column values in StaffColumns order.
func (s StaffLog) Values() []any {
	return []any{
		s.StaffID, s.StaffName, s.ShiftStart, s.ShiftEnd, s.SectionAssigned,
		s.TasksCompleted, s.Notes, s.ShiftDurationHours, s.ShiftType, s.TasksPerHour,
	}
}

// DailySummaryColumns lists the daily_summary columns in schema order.
var DailySummaryColumns = []string{
	"date", "total_activities", "total_activity_minutes", "unique_pets",
	"avg_temperature", "avg_humidity", "avg_noise", "staff_shifts", "total_tasks",
}

// DailySummary is the per-date rollup across all three sources.
// Averages are nil when no environment reading exists for the date.
type DailySummary struct {
	Date                 Date     `json:"date"`
	TotalActivities      int      `json:"total_activities"`
	TotalActivityMinutes int      `json:"total_activity_minutes"`
	UniquePets           int      `json:"unique_pets"`
	AvgTemperature       *float64 `json:"avg_temperature"`
	AvgHumidity          *float64 `json:"avg_humidity"`
	AvgNoise             *float64 `json:"avg_noise"`
	StaffShifts          int      `json:"staff_shifts"`
	TotalTasks           int      `json:"total_tasks"`
}

// Values returns the summary's column values in DailySummaryColumns order.
func (d DailySummary) Values() []any {
	return []any{
		d.Date, d.TotalActivities, d.TotalActivityMinutes, d.UniquePets,
		d.AvgTemperature, d.AvgHumidity, d.AvgNoise, d.StaffShifts, d.TotalTasks,
	}
}
