package transform

import (
	"math"
	"sort"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// AveragePrecision is the number of decimal places kept on daily averages.
const AveragePrecision = 2

// dayAccumulator collects one date's contributions from all three sources.
type dayAccumulator struct {
	activities int
	minutes    int
	pets       map[string]struct{}

	readings    int
	temperature float64
	humidity    float64
	noise       float64

	shifts int
	tasks  int
}

// Aggregate groups each collection by calendar date and returns one summary
// per date present in any of them, ordered by ascending date. Staff shifts
// count toward the date their shift started on.
func Aggregate(
	activities []models.ActivityRecord,
	readings []models.EnvironmentReading,
	shifts []models.StaffLog,
) []models.DailySummary {
	days := make(map[models.Date]*dayAccumulator)
	day := func(d models.Date) *dayAccumulator {
		acc, ok := days[d]
		if !ok {
			acc = &dayAccumulator{pets: make(map[string]struct{})}
			days[d] = acc
		}
		return acc
	}

	for _, a := range activities {
		acc := day(models.DateOf(a.Timestamp))
		acc.activities++
		acc.minutes += a.DurationMinutes
		acc.pets[a.PetID] = struct{}{}
	}
	for _, r := range readings {
		acc := day(models.DateOf(r.Timestamp))
		acc.readings++
		acc.temperature += r.TemperatureF
		acc.humidity += r.HumidityPercent
		acc.noise += r.NoiseLevelDB
	}
	for _, s := range shifts {
		acc := day(s.ShiftDate())
		acc.shifts++
		acc.tasks += s.TasksCompleted
	}

	dates := make([]models.Date, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	summaries := make([]models.DailySummary, 0, len(dates))
	for _, d := range dates {
		acc := days[d]
		summary := models.DailySummary{
			Date:                 d,
			TotalActivities:      acc.activities,
			TotalActivityMinutes: acc.minutes,
			UniquePets:           len(acc.pets),
			StaffShifts:          acc.shifts,
			TotalTasks:           acc.tasks,
		}
		if acc.readings > 0 {
			n := float64(acc.readings)
			summary.AvgTemperature = roundedMean(acc.temperature, n)
			summary.AvgHumidity = roundedMean(acc.humidity, n)
			summary.AvgNoise = roundedMean(acc.noise, n)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func roundedMean(sum, n float64) *float64 {
	v := RoundHalfEven(sum/n, AveragePrecision)
	return &v
}

// RoundHalfEven rounds v to the given number of decimal places, resolving
// ties to the even neighbour.
func RoundHalfEven(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
