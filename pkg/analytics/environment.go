package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// Condition ratings for section averages.
const (
	RatingOptimal    = "optimal"
	RatingAcceptable = "acceptable"
	RatingPoor       = "poor"
)

// Noise categories, ordered by loudness.
const (
	NoiseNormal   = "normal"
	NoiseElevated = "elevated"
	NoiseHigh     = "high"
	NoiseCritical = "critical"
)

// Stats is the mean, minimum and maximum of a measurement.
type Stats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func statsOf(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	return Stats{Mean: round2(mean(values)), Min: slices.Min(values), Max: slices.Max(values)}
}

// SectionConditions is the environment of one kennel section.
type SectionConditions struct {
	Section        string `json:"kennel_section"`
	Readings       int    `json:"readings"`
	Temperature    Stats  `json:"temperature_f"`
	Humidity       Stats  `json:"humidity_percent"`
	Noise          Stats  `json:"noise_level_db"`
	TempRating     string `json:"temp_comfort_rating"`
	HumidityRating string `json:"humidity_comfort_rating"`
}

// EnvironmentOverview averages conditions over a window. ComfortScore is
// nil when there are no readings.
type EnvironmentOverview struct {
	Readings     int                                    `json:"total_readings"`
	Temperature  Stats                                  `json:"temperature_f"`
	Humidity     Stats                                  `json:"humidity_percent"`
	Noise        Stats                                  `json:"noise_level_db"`
	Sections     []SectionConditions                    `json:"by_section"`
	Comfort      map[string]map[models.ComfortLevel]int `json:"comfort_distribution"`
	ComfortScore *float64                               `json:"overall_comfort_score"`
}

// Conditions averages readings overall and per kennel section, in section
// order. The comfort distribution counts the stored comfort levels.
func Conditions(readings []models.EnvironmentReading, th Thresholds) EnvironmentOverview {
	temp, humidity, noise := measurements(readings)
	o := EnvironmentOverview{
		Readings:    len(readings),
		Temperature: statsOf(temp),
		Humidity:    statsOf(humidity),
		Noise:       statsOf(noise),
		Sections:    []SectionConditions{},
		Comfort: map[string]map[models.ComfortLevel]int{
			"temperature": {},
			"humidity":    {},
			"noise":       {},
		},
	}

	bySection := make(map[string][]models.EnvironmentReading)
	for _, r := range readings {
		bySection[r.KennelSection] = append(bySection[r.KennelSection], r)
		o.Comfort["temperature"][r.TempComfort]++
		o.Comfort["humidity"][r.HumidityComfort]++
		o.Comfort["noise"][r.NoiseComfort]++
	}
	for section, rs := range bySection {
		t, h, n := measurements(rs)
		sc := SectionConditions{
			Section:     section,
			Readings:    len(rs),
			Temperature: statsOf(t),
			Humidity:    statsOf(h),
			Noise:       statsOf(n),
		}
		sc.TempRating = rateCondition(sc.Temperature.Mean, th.TempOptimalF, th.TempAcceptableF)
		sc.HumidityRating = rateCondition(sc.Humidity.Mean, th.HumidityOptimal, th.HumidityAcceptable)
		o.Sections = append(o.Sections, sc)
	}
	slices.SortFunc(o.Sections, func(a, b SectionConditions) int { return cmp.Compare(a.Section, b.Section) })

	if len(readings) > 0 {
		score := comfortScore(o, th)
		o.ComfortScore = &score
	}
	return o
}

func measurements(readings []models.EnvironmentReading) (temp, humidity, noise []float64) {
	for _, r := range readings {
		temp = append(temp, r.TemperatureF)
		humidity = append(humidity, r.HumidityPercent)
		noise = append(noise, r.NoiseLevelDB)
	}
	return temp, humidity, noise
}

func rateCondition(v float64, optimal, acceptable Range) string {
	switch {
	case optimal.contains(v):
		return RatingOptimal
	case acceptable.contains(v):
		return RatingAcceptable
	default:
		return RatingPoor
	}
}

// comfortScore gives each average 100 when optimal and 50 otherwise, and
// returns their mean.
func comfortScore(o EnvironmentOverview, th Thresholds) float64 {
	score := func(ok bool) float64 {
		if ok {
			return 100
		}
		return 50
	}
	return round2((score(th.TempOptimalF.contains(o.Temperature.Mean)) +
		score(th.HumidityOptimal.contains(o.Humidity.Mean)) +
		score(o.Noise.Mean <= th.NoiseNormalMaxDB)) / 3)
}

// CategorizeNoise places a noise level in its category. Each upper bound
// is inclusive.
func CategorizeNoise(db float64, th Thresholds) string {
	switch {
	case db <= th.NoiseNormalMaxDB:
		return NoiseNormal
	case db <= th.NoiseAlertDB:
		return NoiseElevated
	case db <= th.NoiseCriticalDB:
		return NoiseHigh
	default:
		return NoiseCritical
	}
}

// HourlyAlerts counts alert readings in one hour of one day.
type HourlyAlerts struct {
	Date  models.Date `json:"date"`
	Hour  int         `json:"hour"`
	Count int         `json:"alert_count"`
}

// PeakHour is an hour of day whose mean noise is above the alert level.
type PeakHour struct {
	Hour   int     `json:"hour"`
	MeanDB float64 `json:"mean_noise_db"`
}

// NoiseReport lists noise alerts over a window. A reading is an alert
// above NoiseAlertDB and critical above NoiseCriticalDB.
type NoiseReport struct {
	TotalAlerts    int            `json:"total_alerts"`
	CriticalAlerts int            `json:"critical_alerts"`
	AlertsPerDay   float64        `json:"alerts_per_day"`
	Hourly         []HourlyAlerts `json:"hourly_alerts"`
	PeakHours      []PeakHour     `json:"peak_noise_hours"`
	Distribution   map[string]int `json:"noise_distribution"`
}

// NoiseAlerts reports noise alerts in w. Hourly counts are in time order;
// peak hours are loudest first.
func NoiseAlerts(w Window, readings []models.EnvironmentReading, th Thresholds) NoiseReport {
	rep := NoiseReport{
		Hourly:       []HourlyAlerts{},
		PeakHours:    []PeakHour{},
		Distribution: map[string]int{},
	}

	type slot struct {
		date models.Date
		hour int
	}
	alerts := make(map[slot]int)
	byHour := make(map[int][]float64)
	for _, r := range readings {
		rep.Distribution[CategorizeNoise(r.NoiseLevelDB, th)]++
		byHour[r.Hour] = append(byHour[r.Hour], r.NoiseLevelDB)
		if r.NoiseLevelDB > th.NoiseAlertDB {
			rep.TotalAlerts++
			alerts[slot{r.Date, r.Hour}]++
		}
		if r.NoiseLevelDB > th.NoiseCriticalDB {
			rep.CriticalAlerts++
		}
	}
	rep.AlertsPerDay = round2(float64(rep.TotalAlerts) / float64(w.Days()))

	for s, n := range alerts {
		rep.Hourly = append(rep.Hourly, HourlyAlerts{Date: s.date, Hour: s.hour, Count: n})
	}
	slices.SortFunc(rep.Hourly, func(a, b HourlyAlerts) int {
		return cmp.Or(compareDates(a.Date, b.Date), cmp.Compare(a.Hour, b.Hour))
	})

	for hour, values := range byHour {
		if m := round2(mean(values)); m > th.NoiseAlertDB {
			rep.PeakHours = append(rep.PeakHours, PeakHour{Hour: hour, MeanDB: m})
		}
	}
	slices.SortFunc(rep.PeakHours, func(a, b PeakHour) int {
		return cmp.Or(cmp.Compare(b.MeanDB, a.MeanDB), cmp.Compare(a.Hour, b.Hour))
	})
	return rep
}

// Temperature ranges used to bucket hourly activity.
const (
	TempRangeCold    = "cold"
	TempRangeCool    = "cool"
	TempRangeOptimal = "optimal"
	TempRangeWarm    = "warm"
	TempRangeHot     = "hot"
)

// TemperatureRange buckets a temperature in °F.
func TemperatureRange(f float64) string {
	switch {
	case f < 65:
		return TempRangeCold
	case f < 72:
		return TempRangeCool
	case f <= 78:
		return TempRangeOptimal
	case f <= 82:
		return TempRangeWarm
	default:
		return TempRangeHot
	}
}

// Correlation strength labels.
const (
	StrengthStrong       = "strong"
	StrengthModerate     = "moderate"
	StrengthWeak         = "weak"
	StrengthNegligible   = "negligible"
	StrengthInsufficient = "insufficient_data"
)

// InterpretCorrelation labels the strength of a correlation coefficient.
func InterpretCorrelation(r *float64) string {
	if r == nil {
		return StrengthInsufficient
	}
	switch abs := math.Abs(*r); {
	case abs >= 0.7:
		return StrengthStrong
	case abs >= 0.4:
		return StrengthModerate
	case abs >= 0.2:
		return StrengthWeak
	default:
		return StrengthNegligible
	}
}

// RangeActivity is the mean hourly activity in one temperature range.
type RangeActivity struct {
	Range      string  `json:"temp_range"`
	Hours      int     `json:"hours"`
	AvgMinutes float64 `json:"avg_activity_minutes"`
	AvgCount   float64 `json:"avg_activity_count"`
}

// ActivityCorrelation relates hourly conditions to hourly pet activity.
// Coefficients are nil when fewer than two hours match or a series is
// constant.
type ActivityCorrelation struct {
	DataPoints         int             `json:"data_points"`
	TempMinutes        *float64        `json:"temperature_activity_correlation"`
	TempCount          *float64        `json:"temperature_count_correlation"`
	HumidityMinutes    *float64        `json:"humidity_activity_correlation"`
	Strength           string          `json:"correlation_strength"`
	ByTemperatureRange []RangeActivity `json:"activity_by_temperature_range"`
	MostActiveRange    string          `json:"optimal_temperature_range"`
}

// TemperatureActivity joins hourly mean conditions with hourly activity
// totals on (date, hour) and correlates them. Hours missing from either
// side are dropped.
func TemperatureActivity(readings []models.EnvironmentReading, activities []models.ActivityRecord) ActivityCorrelation {
	type slot struct {
		date models.Date
		hour int
	}
	type conditions struct{ temp, humidity []float64 }
	type activity struct{ minutes, count float64 }

	env := make(map[slot]*conditions)
	for _, r := range readings {
		s := slot{r.Date, r.Hour}
		c, ok := env[s]
		if !ok {
			c = &conditions{}
			env[s] = c
		}
		c.temp = append(c.temp, r.TemperatureF)
		c.humidity = append(c.humidity, r.HumidityPercent)
	}
	act := make(map[slot]*activity)
	for _, a := range activities {
		s := slot{a.Date, a.Hour}
		v, ok := act[s]
		if !ok {
			v = &activity{}
			act[s] = v
		}
		v.minutes += float64(a.DurationMinutes)
		v.count++
	}

	slots := make([]slot, 0, len(env))
	for s := range env {
		if _, ok := act[s]; ok {
			slots = append(slots, s)
		}
	}
	slices.SortFunc(slots, func(a, b slot) int {
		return cmp.Or(compareDates(a.date, b.date), cmp.Compare(a.hour, b.hour))
	})

	var temp, humidity, minutes, count []float64
	type bucket struct {
		hours    int
		minutes, count float64
	}
	buckets := make(map[string]*bucket)
	for _, s := range slots {
		t := mean(env[s].temp)
		a := act[s]
		temp = append(temp, t)
		humidity = append(humidity, mean(env[s].humidity))
		minutes = append(minutes, a.minutes)
		count = append(count, a.count)

		name := TemperatureRange(t)
		b, ok := buckets[name]
		if !ok {
			b = &bucket{}
			buckets[name] = b
		}
		b.hours++
		b.minutes += a.minutes
		b.count += a.count
	}

	c := ActivityCorrelation{
		DataPoints:         len(slots),
		TempMinutes:        pearson(temp, minutes),
		TempCount:          pearson(temp, count),
		HumidityMinutes:    pearson(humidity, minutes),
		ByTemperatureRange: []RangeActivity{},
		MostActiveRange:    "unknown",
	}
	c.Strength = InterpretCorrelation(c.TempMinutes)

	best := -1.0
	for _, name := range []string{TempRangeCold, TempRangeCool, TempRangeOptimal, TempRangeWarm, TempRangeHot} {
		b, ok := buckets[name]
		if !ok {
			continue
		}
		ra := RangeActivity{
			Range:      name,
			Hours:      b.hours,
			AvgMinutes: round2(b.minutes / float64(b.hours)),
			AvgCount:   round2(b.count / float64(b.hours)),
		}
		c.ByTemperatureRange = append(c.ByTemperatureRange, ra)
		if ra.AvgMinutes > best {
			best = ra.AvgMinutes
			c.MostActiveRange = name
		}
	}
	return c
}

// pearson returns the correlation coefficient of x and y rounded to three
// places, or nil when it is undefined.
func pearson(x, y []float64) *float64 {
	if len(x) < 2 || len(x) != len(y) {
		return nil
	}
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return nil
	}
	r := math.RoundToEven(sxy/math.Sqrt(sxx*syy)*1000) / 1000
	return &r
}

// EnvironmentSummary combines the environmental indicators.
type EnvironmentSummary struct {
	Window      Window              `json:"window"`
	Conditions  EnvironmentOverview `json:"environmental_conditions"`
	Noise       NoiseReport         `json:"noise_monitoring"`
	Correlation ActivityCorrelation `json:"temperature_activity_insights"`
}

// Environmental computes every environmental indicator for w.
func Environmental(w Window, readings []models.EnvironmentReading, activities []models.ActivityRecord, th Thresholds) EnvironmentSummary {
	return EnvironmentSummary{
		Window:      w,
		Conditions:  Conditions(readings, th),
		Noise:       NoiseAlerts(w, readings, th),
		Correlation: TemperatureActivity(readings, activities),
	}
}
