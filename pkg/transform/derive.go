package transform

import (
	"time"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// DeriveActivity fills Date, Hour and DayOfWeek from Timestamp, in the
// timestamp's own location.
func DeriveActivity(a models.ActivityRecord) models.ActivityRecord {
	a.Date = models.DateOf(a.Timestamp)
	a.Hour = a.Timestamp.Hour()
	a.DayOfWeek = a.Timestamp.Weekday().String()
	return a
}

// DeriveEnvironment fills the calendar fields and the three comfort levels.
func DeriveEnvironment(e models.EnvironmentReading, th Thresholds) models.EnvironmentReading {
	e.Date = models.DateOf(e.Timestamp)
	e.Hour = e.Timestamp.Hour()
	e.TempComfort = th.Temperature.Classify(e.TemperatureF)
	e.HumidityComfort = th.Humidity.Classify(e.HumidityPercent)
	e.NoiseComfort = th.Noise.Classify(e.NoiseLevelDB)
	return e
}

// DeriveStaff fills ShiftDurationHours, ShiftType and TasksPerHour.
// TasksPerHour is 0 for a zero-length shift.
func DeriveStaff(s models.StaffLog) models.StaffLog {
	s.ShiftDurationHours = spanHours(s.ShiftStart, s.ShiftEnd)
	s.ShiftType = ClassifyShift(s.ShiftStart.Hour())
	s.TasksPerHour = 0
	if s.ShiftDurationHours != 0 {
		s.TasksPerHour = float64(s.TasksCompleted) / s.ShiftDurationHours
	}
	return s
}

// spanHours returns end minus start in hours. It avoids time.Duration,
// which saturates at roughly 292 years.
func spanHours(start, end time.Time) float64 {
	secs := float64(end.Unix() - start.Unix())
	nanos := float64(end.Nanosecond() - start.Nanosecond())
	return secs/3600 + nanos/3.6e12
}
