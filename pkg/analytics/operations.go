package analytics

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// PetGrooming is one pet's grooming history in a window.
type PetGrooming struct {
	PetID          string      `json:"pet_id"`
	PetName        string      `json:"pet_name"`
	Sessions       int         `json:"total_grooming_sessions"`
	FirstGroomed   models.Date `json:"first_groom"`
	LastGroomed    models.Date `json:"latest_groom"`
	AvgDuration    float64     `json:"avg_duration"`
	DaysSinceLast  int         `json:"days_since_last_groom"`
	AvgDaysBetween float64     `json:"grooming_frequency"`
	Overdue        bool        `json:"overdue"`
}

// DailyGrooming totals the grooming sessions of one day.
type DailyGrooming struct {
	Date          models.Date `json:"date"`
	Sessions      int         `json:"grooming_sessions"`
	TotalMinutes  int         `json:"total_minutes"`
	StaffInvolved int         `json:"staff_involved"`
}

// GroomingReport summarizes grooming over a window. Days since the last
// session are counted to the window's last day.
type GroomingReport struct {
	TotalSessions     int             `json:"total_grooming_sessions"`
	PetsGroomed       int             `json:"pets_groomed"`
	AvgSessionsPerPet float64         `json:"avg_sessions_per_pet"`
	AvgDuration       float64         `json:"avg_grooming_duration"`
	PetsNeedingGroom  int             `json:"pets_needing_grooming"`
	PetsOverdue       int             `json:"pets_overdue_grooming"`
	CompliancePct     float64         `json:"grooming_schedule_compliance"`
	Pets              []PetGrooming   `json:"detailed_per_pet"`
	Daily             []DailyGrooming `json:"daily_patterns"`
}

// GroomingFrequency reports grooming sessions in w. A pet needs grooming
// once GroomingTargetDays have passed and is overdue after
// GroomingAlertDays.
func GroomingFrequency(w Window, activities []models.ActivityRecord, th Thresholds) GroomingReport {
	isGrooming := func(a models.ActivityRecord) bool { return a.ActivityType == ActivityGrooming }
	pets := groupByPetDay(activities, isGrooming)

	rep := GroomingReport{Pets: make([]PetGrooming, 0, len(pets)), Daily: []DailyGrooming{}}
	var totalMinutes float64
	for _, p := range pets {
		g := PetGrooming{PetID: p.id, PetName: p.name}
		var minutes float64
		for date, day := range p.days {
			if g.Sessions == 0 || date.Before(g.FirstGroomed) {
				g.FirstGroomed = date
			}
			if g.Sessions == 0 || g.LastGroomed.Before(date) {
				g.LastGroomed = date
			}
			g.Sessions += len(day)
			for _, a := range day {
				minutes += float64(a.DurationMinutes)
			}
		}
		g.AvgDuration = round2(minutes / float64(g.Sessions))
		g.DaysSinceLast = daysBetween(g.LastGroomed, w.To)
		if g.Sessions > 1 {
			g.AvgDaysBetween = round2(float64(daysBetween(g.FirstGroomed, g.LastGroomed)) / float64(g.Sessions-1))
		}
		if g.DaysSinceLast > th.GroomingTargetDays {
			rep.PetsNeedingGroom++
		}
		if g.DaysSinceLast > th.GroomingAlertDays {
			g.Overdue = true
			rep.PetsOverdue++
		}
		rep.TotalSessions += g.Sessions
		totalMinutes += minutes
		rep.Pets = append(rep.Pets, g)
	}

	rep.PetsGroomed = len(rep.Pets)
	if rep.PetsGroomed > 0 {
		rep.AvgSessionsPerPet = round2(float64(rep.TotalSessions) / float64(rep.PetsGroomed))
		rep.AvgDuration = round2(totalMinutes / float64(rep.TotalSessions))
		rep.CompliancePct = round2((1 - float64(rep.PetsOverdue)/float64(rep.PetsGroomed)) * 100)
	}

	byDate := make(map[models.Date]*DailyGrooming)
	staff := make(map[models.Date]map[string]bool)
	for _, a := range activities {
		if !isGrooming(a) {
			continue
		}
		d, ok := byDate[a.Date]
		if !ok {
			d = &DailyGrooming{Date: a.Date}
			byDate[a.Date] = d
			staff[a.Date] = make(map[string]bool)
		}
		d.Sessions++
		d.TotalMinutes += a.DurationMinutes
		staff[a.Date][a.StaffID] = true
	}
	for date, d := range byDate {
		d.StaffInvolved = len(staff[date])
		rep.Daily = append(rep.Daily, *d)
	}
	slices.SortFunc(rep.Daily, func(a, b DailyGrooming) int { return compareDates(a.Date, b.Date) })
	return rep
}

// Staff performance ratings.
const (
	PerformanceExcellent    = "excellent"
	PerformanceSatisfactory = "satisfactory"
	PerformanceBelowTarget  = "below_target"
)

// RateStaff rates an average tasks-per-hour figure.
func RateStaff(tasksPerHour float64, th Thresholds) string {
	switch {
	case tasksPerHour >= th.TargetTasksPerHour:
		return PerformanceExcellent
	case tasksPerHour >= th.MinTasksPerHour:
		return PerformanceSatisfactory
	default:
		return PerformanceBelowTarget
	}
}

// StaffMetrics is one staff member's shifts and logged pet activities.
type StaffMetrics struct {
	StaffID          string  `json:"staff_id"`
	StaffName        string  `json:"staff_name"`
	Shifts           int     `json:"total_shifts"`
	TotalTasks       int     `json:"total_tasks"`
	AvgTasksPerShift float64 `json:"avg_tasks_per_shift"`
	TotalHours       float64 `json:"total_hours"`
	AvgHoursPerShift float64 `json:"avg_hours_per_shift"`
	AvgTasksPerHour  float64 `json:"avg_tasks_per_hour"`
	Rating           string  `json:"performance_rating"`
	ActivitiesLogged int     `json:"total_activities"`
	ActivityMinutes  int     `json:"total_activity_minutes"`
}

// StaffReport summarizes staff performance over a window.
type StaffReport struct {
	StaffAnalyzed   int                          `json:"total_staff_analyzed"`
	AvgTasksPerHour float64                      `json:"avg_tasks_per_hour_kennel"`
	TopPerformers   []StaffMetrics               `json:"top_performers"`
	NeedingSupport  []StaffMetrics               `json:"staff_needing_support"`
	ByShiftType     map[models.ShiftType]float64 `json:"shift_type_performance"`
	Distribution    map[string]int               `json:"performance_distribution"`
	Staff           []StaffMetrics               `json:"detailed_staff_metrics"`
}

// topPerformerCount caps StaffReport.TopPerformers.
const topPerformerCount = 5

// StaffPerformance rates each staff member by mean tasks per hour over
// their shifts. Staff are listed best first, then by ID.
func StaffPerformance(logs []models.StaffLog, activities []models.ActivityRecord, th Thresholds) StaffReport {
	type acc struct {
		m       StaffMetrics
		perHour []float64
	}
	byStaff := make(map[string]*acc)
	shiftRates := make(map[models.ShiftType][]float64)
	for _, s := range logs {
		a, ok := byStaff[s.StaffID]
		if !ok {
			a = &acc{m: StaffMetrics{StaffID: s.StaffID}}
			byStaff[s.StaffID] = a
		}
		if a.m.StaffName == "" {
			a.m.StaffName = s.StaffName
		}
		a.m.Shifts++
		a.m.TotalTasks += s.TasksCompleted
		a.m.TotalHours += s.ShiftDurationHours
		a.perHour = append(a.perHour, s.TasksPerHour)
		shiftRates[s.ShiftType] = append(shiftRates[s.ShiftType], s.TasksPerHour)
	}
	for _, act := range activities {
		if a, ok := byStaff[act.StaffID]; ok {
			a.m.ActivitiesLogged++
			a.m.ActivityMinutes += act.DurationMinutes
		}
	}

	rep := StaffReport{
		TopPerformers:  []StaffMetrics{},
		NeedingSupport: []StaffMetrics{},
		ByShiftType:    make(map[models.ShiftType]float64),
		Distribution:   make(map[string]int),
		Staff:          make([]StaffMetrics, 0, len(byStaff)),
	}
	var kennel []float64
	for _, a := range byStaff {
		m := a.m
		shifts := float64(m.Shifts)
		m.AvgTasksPerShift = round2(float64(m.TotalTasks) / shifts)
		m.AvgHoursPerShift = round2(m.TotalHours / shifts)
		m.TotalHours = round2(m.TotalHours)
		m.AvgTasksPerHour = round2(mean(a.perHour))
		m.Rating = RateStaff(m.AvgTasksPerHour, th)
		rep.Distribution[m.Rating]++
		kennel = append(kennel, m.AvgTasksPerHour)
		rep.Staff = append(rep.Staff, m)
	}
	slices.SortFunc(rep.Staff, func(a, b StaffMetrics) int {
		return cmp.Or(cmp.Compare(b.AvgTasksPerHour, a.AvgTasksPerHour), cmp.Compare(a.StaffID, b.StaffID))
	})
	for _, m := range rep.Staff {
		if m.Rating == PerformanceBelowTarget {
			rep.NeedingSupport = append(rep.NeedingSupport, m)
		}
	}
	rep.TopPerformers = append(rep.TopPerformers, rep.Staff[:min(topPerformerCount, len(rep.Staff))]...)
	for shift, rates := range shiftRates {
		rep.ByShiftType[shift] = round2(mean(rates))
	}
	rep.StaffAnalyzed = len(rep.Staff)
	rep.AvgTasksPerHour = round2(mean(kennel))
	return rep
}

// Alert trend labels.
const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
)

// DailyCount is a count for one calendar date.
type DailyCount struct {
	Date  models.Date `json:"date"`
	Count int         `json:"count"`
}

// HourCount is a count for one hour of day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// IDCount is a count for one pet or staff member.
type IDCount struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Count int    `json:"count"`
}

// AlertReport tracks health alerts (medical activities) and feeding delays
// (feedings outside the scheduled hours) over a window.
type AlertReport struct {
	HealthAlerts         int          `json:"total_health_alerts"`
	FeedingDelays        int          `json:"total_feeding_delays"`
	HealthAlertsPerDay   float64      `json:"avg_health_alerts_per_day"`
	FeedingDelaysPerDay  float64      `json:"avg_feeding_delays_per_day"`
	PeakHealthHours      []HourCount  `json:"peak_health_alert_hours"`
	PeakFeedingHours     []HourCount  `json:"peak_feeding_issue_hours"`
	FrequentHealthPets   []IDCount    `json:"pets_with_frequent_health_alerts"`
	FeedingIssuePets     []IDCount    `json:"pets_with_feeding_issues"`
	StaffHealthResponses []IDCount    `json:"staff_alert_response"`
	DailyHealth          []DailyCount `json:"daily_health_trend"`
	DailyFeeding         []DailyCount `json:"daily_feeding_trend"`
	HealthTrend          string       `json:"health_alerts_trend"`
	FeedingTrend         string       `json:"feeding_delays_trend"`
}

// Alert report limits.
const (
	peakHourCount         = 3
	frequentHealthAlerts  = 2
	frequentFeedingIssues = 1
	trendDays             = 3
)

// AlertTrends reports health alerts and feeding delays in w. A trend is
// increasing when the mean of the last three daily counts exceeds the
// mean of the first three.
func AlertTrends(w Window, activities []models.ActivityRecord, th Thresholds) AlertReport {
	var health, delays []models.ActivityRecord
	for _, a := range activities {
		switch {
		case a.ActivityType == ActivityMedical:
			health = append(health, a)
		case a.ActivityType == ActivityFeeding && !slices.Contains(th.FeedingHours, a.Hour):
			delays = append(delays, a)
		}
	}

	days := float64(w.Days())
	dailyHealth := countByDate(health)
	dailyFeeding := countByDate(delays)
	return AlertReport{
		HealthAlerts:         len(health),
		FeedingDelays:        len(delays),
		HealthAlertsPerDay:   round2(float64(len(health)) / days),
		FeedingDelaysPerDay:  round2(float64(len(delays)) / days),
		PeakHealthHours:      peakHours(health, peakHourCount),
		PeakFeedingHours:     peakHours(delays, peakHourCount),
		FrequentHealthPets:   countPets(health, frequentHealthAlerts),
		FeedingIssuePets:     countPets(delays, frequentFeedingIssues),
		StaffHealthResponses: countStaff(health),
		DailyHealth:          dailyHealth,
		DailyFeeding:         dailyFeeding,
		HealthTrend:          trend(dailyHealth),
		FeedingTrend:         trend(dailyFeeding),
	}
}

func countByDate(activities []models.ActivityRecord) []DailyCount {
	counts := make(map[models.Date]int)
	for _, a := range activities {
		counts[a.Date]++
	}
	out := make([]DailyCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DailyCount{Date: d, Count: n})
	}
	slices.SortFunc(out, func(a, b DailyCount) int { return compareDates(a.Date, b.Date) })
	return out
}

// peakHours returns the n busiest hours, busiest first, earlier hour on ties.
func peakHours(activities []models.ActivityRecord, n int) []HourCount {
	counts := make(map[int]int)
	for _, a := range activities {
		counts[a.Hour]++
	}
	out := make([]HourCount, 0, len(counts))
	for h, c := range counts {
		out = append(out, HourCount{Hour: h, Count: c})
	}
	slices.SortFunc(out, func(a, b HourCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Hour, b.Hour))
	})
	return out[:min(n, len(out))]
}

// countPets returns pets with more than minCount activities, by pet ID.
func countPets(activities []models.ActivityRecord, minCount int) []IDCount {
	byPet := make(map[string]*IDCount)
	for _, a := range activities {
		c, ok := byPet[a.PetID]
		if !ok {
			c = &IDCount{ID: a.PetID, Name: a.PetName}
			byPet[a.PetID] = c
		}
		c.Count++
	}
	out := []IDCount{}
	for _, c := range byPet {
		if c.Count > minCount {
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b IDCount) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func countStaff(activities []models.ActivityRecord) []IDCount {
	counts := make(map[string]int)
	for _, a := range activities {
		counts[a.StaffID]++
	}
	out := make([]IDCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, IDCount{ID: id, Count: n})
	}
	slices.SortFunc(out, func(a, b IDCount) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func trend(daily []DailyCount) string {
	if len(daily) == 0 {
		return TrendStable
	}
	k := min(trendDays, len(daily))
	var head, tail float64
	for i := range k {
		head += float64(daily[i].Count)
		tail += float64(daily[len(daily)-k+i].Count)
	}
	if tail > head {
		return TrendIncreasing
	}
	return TrendStable
}

// OperationsSummary combines the operations indicators into a 0-100 score
// and a list of recommendations.
type OperationsSummary struct {
	Window          Window         `json:"window"`
	Score           float64        `json:"operations_score"`
	Grooming        GroomingReport `json:"grooming_operations"`
	Staff           StaffReport    `json:"staff_performance"`
	Alerts          AlertReport    `json:"alert_management"`
	Recommendations []string       `json:"key_recommendations"`
}

// Operations computes every operations indicator for w. The score is the
// mean of grooming compliance, the staff score and the alert score.
func Operations(w Window, logs []models.StaffLog, activities []models.ActivityRecord, th Thresholds) OperationsSummary {
	s := OperationsSummary{
		Window:   w,
		Grooming: GroomingFrequency(w, activities, th),
		Staff:    StaffPerformance(logs, activities, th),
		Alerts:   AlertTrends(w, activities, th),
	}
	total := s.Grooming.CompliancePct + staffScore(s.Staff) + alertScore(s.Alerts)
	s.Score = math.RoundToEven(total/3*10) / 10
	s.Recommendations = recommendations(s)
	return s
}

// staffScore weighs excellent staff at 100 and satisfactory at 70. With no
// staff it is a neutral 50.
func staffScore(r StaffReport) float64 {
	if r.StaffAnalyzed == 0 {
		return 50
	}
	excellent := r.Distribution[PerformanceExcellent]
	satisfactory := r.Distribution[PerformanceSatisfactory]
	return float64(excellent*100+satisfactory*70) / float64(r.StaffAnalyzed)
}

// alertScore deducts up to 30 points for health alerts and up to 20 for
// feeding delays.
func alertScore(r AlertReport) float64 {
	health := math.Min(30, r.HealthAlertsPerDay*5)
	feeding := math.Min(20, r.FeedingDelaysPerDay*10)
	return math.Max(0, 100-health-feeding)
}

func recommendations(s OperationsSummary) []string {
	var out []string
	if s.Grooming.PetsOverdue > 0 {
		out = append(out, fmt.Sprintf("Schedule grooming for %d overdue pets", s.Grooming.PetsOverdue))
	}
	if n := len(s.Staff.NeedingSupport); n > 0 {
		out = append(out, fmt.Sprintf("Provide additional training/support to %d staff members", n))
	}
	if s.Alerts.HealthAlertsPerDay > 2 {
		out = append(out, "Review health monitoring protocols - high alert frequency detected")
	}
	if s.Alerts.FeedingDelaysPerDay > 1 {
		out = append(out, "Optimize feeding schedules to reduce delays")
	}
	if len(out) == 0 {
		out = append(out, "Operations are running smoothly - maintain current standards")
	}
	return out
}

func compareDates(a, b models.Date) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}
