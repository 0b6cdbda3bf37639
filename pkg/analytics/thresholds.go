// Package analytics computes dashboard indicators from the clean kennel
// tables: pet wellness, environmental conditions and kennel operations.
// Every function is pure and works on records already limited to a Window.
package analytics

import (
	"math"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// Analysis windows in days.
const (
	ShortTermDays  = 7
	MediumTermDays = 30
	LongTermDays   = 90
)

// Window is an inclusive range of calendar dates.
type Window struct {
	From models.Date `json:"from"`
	To   models.Date `json:"to"`
}

// LastDays returns the window of n days ending on end.
func LastDays(end models.Date, n int) Window {
	return Window{From: end.AddDays(1 - n), To: end}
}

// Days returns the number of calendar days in w, at least 1.
func (w Window) Days() int {
	n := daysBetween(w.From, w.To) + 1
	if n < 1 {
		return 1
	}
	return n
}

func daysBetween(from, to models.Date) int {
	return int(math.Round(to.Time().Sub(from.Time()).Hours() / 24))
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64
	Max float64
}

func (r Range) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Thresholds holds the limits the indicators are rated against.
type Thresholds struct {
	ActivityMinutesPerDay Range
	FeedingsPerDay        Range

	TempOptimalF       Range
	TempAcceptableF    Range
	HumidityOptimal    Range
	HumidityAcceptable Range
	NoiseNormalMaxDB   float64
	NoiseAlertDB       float64
	NoiseCriticalDB    float64

	MinTasksPerHour    float64
	TargetTasksPerHour float64
	GroomingTargetDays int
	GroomingAlertDays  int
	// FeedingHours are the scheduled feeding hours; a feeding logged in any
	// other hour counts as delayed.
	FeedingHours []int
}

// DefaultThresholds returns the limits used by the dashboard.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActivityMinutesPerDay: Range{Min: 60, Max: 180},
		FeedingsPerDay:        Range{Min: 2, Max: 4},

		TempOptimalF:       Range{Min: 68, Max: 78},
		TempAcceptableF:    Range{Min: 60, Max: 85},
		HumidityOptimal:    Range{Min: 40, Max: 60},
		HumidityAcceptable: Range{Min: 30, Max: 80},
		NoiseNormalMaxDB:   40,
		NoiseAlertDB:       45,
		NoiseCriticalDB:    50,

		MinTasksPerHour:    0.8,
		TargetTasksPerHour: 1.2,
		GroomingTargetDays: 7,
		GroomingAlertDays:  10,
		FeedingHours:       []int{7, 8, 12, 13, 17, 18},
	}
}

// Activity types the indicators look for. The transform lower-cases them.
const (
	ActivityFeeding  = "feeding"
	ActivityGrooming = "grooming"
	ActivityMedical  = "medical"
)

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
