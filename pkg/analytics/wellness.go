package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// Activity and feeding status values.
const (
	StatusLow        = "low"
	StatusOptimal    = "optimal"
	StatusHigh       = "high"
	StatusInfrequent = "infrequent"
	StatusNormal     = "normal"
	StatusExcessive  = "excessive"
)

// PetActivity is one pet's average activity per active day.
type PetActivity struct {
	PetID              string  `json:"pet_id"`
	PetName            string  `json:"pet_name"`
	ActiveDays         int     `json:"active_days"`
	AvgDailyMinutes    float64 `json:"avg_daily_minutes"`
	AvgDailyActivities float64 `json:"avg_daily_activities"`
	Status             string  `json:"activity_status"`
}

// PetFeeding is one pet's feedings per day on days it was fed.
// Consistency is the sample standard deviation of daily feedings, nil with
// fewer than two feeding days.
type PetFeeding struct {
	PetID             string   `json:"pet_id"`
	PetName           string   `json:"pet_name"`
	AvgFeedingsPerDay float64  `json:"avg_feedings_per_day"`
	Consistency       *float64 `json:"feeding_consistency"`
	MinDaily          int      `json:"min_daily"`
	MaxDaily          int      `json:"max_daily"`
	Status            string   `json:"feeding_status"`
}

// FeedingReport summarizes feeding frequency across the kennel.
type FeedingReport struct {
	PetsAnalyzed      int          `json:"total_pets_analyzed"`
	AvgFeedingsPerDay float64      `json:"avg_feedings_across_kennel"`
	IrregularPets     int          `json:"pets_with_irregular_feeding"`
	Pets              []PetFeeding `json:"detailed_per_pet"`
}

// WellnessSummary combines the pet wellness indicators.
type WellnessSummary struct {
	Window              Window        `json:"window"`
	TotalPets           int           `json:"total_pets"`
	ActivityWellnessPct float64       `json:"activity_wellness_rate"`
	FeedingWellnessPct  float64       `json:"feeding_wellness_rate"`
	NeedingAttention    []PetActivity `json:"pets_needing_attention"`
	Activity            []PetActivity `json:"activity_details"`
	Feeding             FeedingReport `json:"feeding_details"`
}

// petDays groups activities by pet, then by date.
type petDays struct {
	id,  name string
	days map[models.Date][]models.ActivityRecord
}

func groupByPetDay(activities []models.ActivityRecord, keep func(models.ActivityRecord) bool) []*petDays {
	byPet := make(map[string]*petDays)
	for _, a := range activities {
		if keep != nil && !keep(a) {
			continue
		}
		p, ok := byPet[a.PetID]
		if !ok {
			p = &petDays{id: a.PetID, days: make(map[models.Date][]models.ActivityRecord)}
			byPet[a.PetID] = p
		}
		if p.name == "" {
			p.name = a.PetName
		}
		p.days[a.Date] = append(p.days[a.Date], a)
	}

	pets := make([]*petDays, 0, len(byPet))
	for _, p := range byPet {
		pets = append(pets, p)
	}
	slices.SortFunc(pets, func(a, b *petDays) int { return cmp.Compare(a.id, b.id) })
	return pets
}

// PetActivityLevels returns each pet's average daily minutes and activity
// count over the days it was active, highest minutes first.
func PetActivityLevels(activities []models.ActivityRecord, th Thresholds) []PetActivity {
	pets := groupByPetDay(activities, nil)
	out := make([]PetActivity, 0, len(pets))
	for _, p := range pets {
		var minutes, count float64
		for _, day := range p.days {
			for _, a := range day {
				minutes += float64(a.DurationMinutes)
			}
			count += float64(len(day))
		}
		days := float64(len(p.days))
		avg := round2(minutes / days)
		out = append(out, PetActivity{
			PetID:              p.id,
			PetName:            p.name,
			ActiveDays:         len(p.days),
			AvgDailyMinutes:    avg,
			AvgDailyActivities: round2(count / days),
			Status:             rate(avg, th.ActivityMinutesPerDay, StatusLow, StatusOptimal, StatusHigh),
		})
	}
	slices.SortStableFunc(out, func(a, b PetActivity) int {
		return cmp.Compare(b.AvgDailyMinutes, a.AvgDailyMinutes)
	})
	return out
}

// FeedingFrequency rates each pet's feedings per day.
func FeedingFrequency(activities []models.ActivityRecord, th Thresholds) FeedingReport {
	pets := groupByPetDay(activities, func(a models.ActivityRecord) bool {
		return a.ActivityType == ActivityFeeding
	})

	report := FeedingReport{Pets: make([]PetFeeding, 0, len(pets))}
	var perPet []float64
	for _, p := range pets {
		counts := make([]float64, 0, len(p.days))
		for _, day := range p.days {
			counts = append(counts, float64(len(day)))
		}
		avg := round2(mean(counts))
		f := PetFeeding{
			PetID:             p.id,
			PetName:           p.name,
			AvgFeedingsPerDay: avg,
			Consistency:       sampleStdDev(counts),
			MinDaily:          int(slices.Min(counts)),
			MaxDaily:          int(slices.Max(counts)),
			Status:            rate(avg, th.FeedingsPerDay, StatusInfrequent, StatusNormal, StatusExcessive),
		}
		if f.Status != StatusNormal {
			report.IrregularPets++
		}
		perPet = append(perPet, avg)
		report.Pets = append(report.Pets, f)
	}
	report.PetsAnalyzed = len(report.Pets)
	report.AvgFeedingsPerDay = round2(mean(perPet))
	return report
}

// PetWellness combines activity levels and feeding frequency. Rates are
// percentages of all active pets.
func PetWellness(w Window, activities []models.ActivityRecord, th Thresholds) WellnessSummary {
	levels := PetActivityLevels(activities, th)
	feeding := FeedingFrequency(activities, th)

	s := WellnessSummary{
		Window:           w,
		TotalPets:        len(levels),
		NeedingAttention: []PetActivity{},
		Activity:         levels,
		Feeding:          feeding,
	}
	var optimal, wellFed int
	for _, p := range levels {
		if p.Status == StatusOptimal {
			optimal++
		} else {
			s.NeedingAttention = append(s.NeedingAttention, p)
		}
	}
	for _, p := range feeding.Pets {
		if p.Status == StatusNormal {
			wellFed++
		}
	}
	s.ActivityWellnessPct = percent(optimal, s.TotalPets)
	s.FeedingWellnessPct = percent(wellFed, s.TotalPets)
	return s
}

// rate places v below, within or above r.
func rate(v float64, r Range, below, within, above string) string {
	switch {
	case v < r.Min:
		return below
	case v > r.Max:
		return above
	default:
		return within
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(n) / float64(total) * 100)
}

func sampleStdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	sd := round2(math.Sqrt(ss / float64(len(values)-1)))
	return &sd
}
