package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennelos/kennel-etl/pkg/models"
)

func shift(staff string, d, startHour int, hours float64, tasks int, typ models.ShiftType) models.StaffLog {
	start := at(d, startHour)
	return models.StaffLog{
		StaffID:            staff,
		StaffName:          "name-" + staff,
		ShiftStart:         start,
		ShiftEnd:           start.Add(time.Duration(hours * float64(time.Hour))),
		TasksCompleted:     tasks,
		ShiftDurationHours: hours,
		ShiftType:          typ,
		TasksPerHour:       float64(tasks) / hours,
	}
}

func TestGroomingFrequency(t *testing.T) {
	w := Window{From: day(1), To: day(20)}
	activities := []models.ActivityRecord{
		// P1 groomed on days 1, 5 and 9: every 4 days, 11 days ago.
		activity("P1", ActivityGrooming, 30, 1, 10, "S1"),
		activity("P1", ActivityGrooming, 40, 5, 10, "S2"),
		activity("P1", ActivityGrooming, 50, 9, 10, "S1"),
		// P2 groomed on day 12: 8 days ago, due but not overdue.
		activity("P2", ActivityGrooming, 20, 12, 11, "S1"),
		// P3 groomed on day 18.
		activity("P3", ActivityGrooming, 20, 18, 11, "S1"),
		activity("P4", "walk", 20, 18, 11, "S1"),
	}

	rep := GroomingFrequency(w, activities, DefaultThresholds())
	assert.Equal(t, 5, rep.TotalSessions)
	assert.Equal(t, 3, rep.PetsGroomed)
	assert.Equal(t, 1.67, rep.AvgSessionsPerPet)
	assert.Equal(t, 32.0, rep.AvgDuration)
	assert.Equal(t, 2, rep.PetsNeedingGroom)
	assert.Equal(t, 1, rep.PetsOverdue)
	assert.Equal(t, 66.67, rep.CompliancePct)

	require.Len(t, rep.Pets, 3)
	p1 := rep.Pets[0]
	assert.Equal(t, "P1", p1.PetID)
	assert.Equal(t, 3, p1.Sessions)
	assert.Equal(t, day(1), p1.FirstGroomed)
	assert.Equal(t, day(9), p1.LastGroomed)
	assert.Equal(t, 40.0, p1.AvgDuration)
	assert.Equal(t, 11, p1.DaysSinceLast)
	assert.Equal(t, 4.0, p1.AvgDaysBetween)
	assert.True(t, p1.Overdue)

	assert.Zero(t, rep.Pets[1].AvgDaysBetween, "a single session has no interval")
	assert.False(t, rep.Pets[1].Overdue)

	require.Len(t, rep.Daily, 5)
	assert.Equal(t, day(1), rep.Daily[0].Date)
	assert.Equal(t, DailyGrooming{Date: day(18), Sessions: 1, TotalMinutes: 20, StaffInvolved: 1}, rep.Daily[4])
}

func TestGroomingFrequency_None(t *testing.T) {
	rep := GroomingFrequency(LastDays(day(30), MediumTermDays), nil, DefaultThresholds())
	assert.Zero(t, rep.PetsGroomed)
	assert.Zero(t, rep.CompliancePct)
	assert.NotNil(t, rep.Pets)
	assert.NotNil(t, rep.Daily)
}

func TestRateStaff(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, PerformanceExcellent, RateStaff(1.2, th))
	assert.Equal(t, PerformanceSatisfactory, RateStaff(0.8, th))
	assert.Equal(t, PerformanceBelowTarget, RateStaff(0.79, th))
}

func TestStaffPerformance(t *testing.T) {
	logs := []models.StaffLog{
		shift("S1", 1, 6, 8, 12, models.ShiftMorning), // 1.5
		shift("S1", 2, 14, 8, 8, models.ShiftEvening), // 1.0
		shift("S2", 1, 22, 8, 4, models.ShiftNight),   // 0.5
		shift("S3", 1, 6, 4, 4, models.ShiftMorning),  // 1.0
	}
	activities := []models.ActivityRecord{
		activity("P1", "walk", 30, 1, 9, "S1"),
		activity("P2", "walk", 15, 1, 10, "S1"),
		activity("P3", "walk", 10, 1, 10, "S9"),
	}

	rep := StaffPerformance(logs, activities, DefaultThresholds())
	assert.Equal(t, 3, rep.StaffAnalyzed)
	require.Len(t, rep.Staff, 3)

	assert.Equal(t, []string{"S1", "S3", "S2"},
		[]string{rep.Staff[0].StaffID, rep.Staff[1].StaffID, rep.Staff[2].StaffID},
		"best first, ties by ID")

	s1 := rep.Staff[0]
	assert.Equal(t, 2, s1.Shifts)
	assert.Equal(t, 20, s1.TotalTasks)
	assert.Equal(t, 10.0, s1.AvgTasksPerShift)
	assert.Equal(t, 16.0, s1.TotalHours)
	assert.Equal(t, 8.0, s1.AvgHoursPerShift)
	assert.Equal(t, 1.25, s1.AvgTasksPerHour)
	assert.Equal(t, PerformanceExcellent, s1.Rating)
	assert.Equal(t, 2, s1.ActivitiesLogged)
	assert.Equal(t, 45, s1.ActivityMinutes)

	require.Len(t, rep.NeedingSupport, 1)
	assert.Equal(t, "S2", rep.NeedingSupport[0].StaffID)
	assert.Len(t, rep.TopPerformers, 3)
	assert.Equal(t, map[string]int{
		PerformanceExcellent: 1, PerformanceSatisfactory: 1, PerformanceBelowTarget: 1,
	}, rep.Distribution)
	assert.Equal(t, 1.25, rep.ByShiftType[models.ShiftMorning])
	assert.Equal(t, 0.92, rep.AvgTasksPerHour)
}

func TestAlertTrends(t *testing.T) {
	w := Window{From: day(1), To: day(4)}
	activities := []models.ActivityRecord{
		activity("P1", ActivityMedical, 10, 1, 9, "S1"),
		activity("P1", ActivityMedical, 10, 3, 9, "S1"),
		activity("P1", ActivityMedical, 10, 4, 9, "S2"),
		activity("P1", ActivityMedical, 10, 4, 15, "S2"),
		activity("P2", ActivityFeeding, 5, 1, 7, "S1"),  // on schedule
		activity("P2", ActivityFeeding, 5, 1, 10, "S1"), // late
		activity("P2", ActivityFeeding, 5, 2, 21, "S1"), // late
		activity("P3", ActivityFeeding, 5, 2, 10, "S1"), // late
	}

	rep := AlertTrends(w, activities, DefaultThresholds())
	assert.Equal(t, 4, rep.HealthAlerts)
	assert.Equal(t, 3, rep.FeedingDelays)
	assert.Equal(t, 1.0, rep.HealthAlertsPerDay)
	assert.Equal(t, 0.75, rep.FeedingDelaysPerDay)

	assert.Equal(t, []HourCount{{Hour: 9, Count: 3}, {Hour: 15, Count: 1}}, rep.PeakHealthHours)
	assert.Equal(t, []HourCount{{Hour: 10, Count: 2}, {Hour: 21, Count: 1}}, rep.PeakFeedingHours)
	assert.Equal(t, []IDCount{{ID: "P1", Name: "name-P1", Count: 4}}, rep.FrequentHealthPets)
	assert.Equal(t, []IDCount{{ID: "P2", Name: "name-P2", Count: 2}}, rep.FeedingIssuePets)
	assert.Equal(t, []IDCount{{ID: "S1", Count: 2}, {ID: "S2", Count: 2}}, rep.StaffHealthResponses)

	assert.Equal(t, []DailyCount{{Date: day(1), Count: 1}, {Date: day(3), Count: 1}, {Date: day(4), Count: 2}}, rep.DailyHealth)
	assert.Equal(t, TrendStable, rep.HealthTrend, "the first and last three days are the same three")
	assert.Equal(t, TrendStable, rep.FeedingTrend)
}

func TestTrend(t *testing.T) {
	counts := func(ns ...int) []DailyCount {
		out := make([]DailyCount, len(ns))
		for i, n := range ns {
			out[i] = DailyCount{Date: day(i + 1), Count: n}
		}
		return out
	}
	assert.Equal(t, TrendIncreasing, trend(counts(1, 1, 1, 2, 3, 3)))
	assert.Equal(t, TrendStable, trend(counts(3, 3, 3, 1, 1, 1)))
	assert.Equal(t, TrendStable, trend(nil))
}

func TestOperations(t *testing.T) {
	w := Window{From: day(1), To: day(2)}
	logs := []models.StaffLog{shift("S1", 1, 6, 8, 4, models.ShiftMorning)} // 0.5 per hour
	activities := []models.ActivityRecord{
		activity("P1", ActivityGrooming, 30, 2, 10, "S1"),
		activity("P1", ActivityMedical, 10, 1, 9, "S1"),
		activity("P1", ActivityMedical, 10, 1, 10, "S1"),
		activity("P1", ActivityMedical, 10, 2, 9, "S1"),
		activity("P1", ActivityMedical, 10, 2, 10, "S1"),
		activity("P1", ActivityMedical, 10, 2, 11, "S1"),
	}

	s := Operations(w, logs, activities, DefaultThresholds())
	assert.Equal(t, w, s.Window)
	assert.Equal(t, 100.0, s.Grooming.CompliancePct)
	assert.Equal(t, 2.5, s.Alerts.HealthAlertsPerDay)
	// grooming 100, staff 0, alerts 100 - 12.5
	assert.Equal(t, 62.5, s.Score)
	assert.Equal(t, []string{
		"Provide additional training/support to 1 staff members",
		"Review health monitoring protocols - high alert frequency detected",
	}, s.Recommendations)
}

func TestOperations_Quiet(t *testing.T) {
	s := Operations(LastDays(day(30), MediumTermDays), nil, nil, DefaultThresholds())
	// grooming 0, staff neutral 50, alerts 100
	assert.Equal(t, 50.0, s.Score)
	assert.Equal(t, []string{"Operations are running smoothly - maintain current standards"}, s.Recommendations)
}
