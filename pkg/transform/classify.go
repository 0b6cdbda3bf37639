package transform

import "github.com/kennelos/kennel-etl/pkg/models"

// Comfort band edges. Both edges belong to the middle category.
const (
	TempColdBelowF     = 65.0
	TempHotAboveF      = 80.0
	HumidityDryBelow   = 30.0
	HumidityHumidAbove = 60.0
	NoiseQuietBelowDB  = 50.0
	NoiseLoudAboveDB   = 75.0
)

// Physical limits enforced by the validators.
const (
	HumidityMinPercent = 0.0
	HumidityMaxPercent = 100.0
	NoiseMinDB         = 0.0
)

// Band partitions the real line into three ordered categories.
// Values below Low map to Below, values above High map to Above, and
// everything in [Low, High] maps to Within.
type Band struct {
	Low    float64
	High   float64
	Below  models.ComfortLevel
	Within models.ComfortLevel
	Above  models.ComfortLevel
}

// Classify returns the category of v. It never rejects a value.
func (b Band) Classify(v float64) models.ComfortLevel {
	switch {
	case v < b.Low:
		return b.Below
	case v > b.High:
		return b.Above
	default:
		return b.Within
	}
}

// Thresholds holds the comfort bands for each environmental measurement.
// It is a value type; copies are independent.
type Thresholds struct {
	Temperature Band
	Humidity    Band
	Noise       Band
}

// DefaultThresholds returns the fixed comfort bands used by the pipeline.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature: Band{
			Low: TempColdBelowF, High: TempHotAboveF,
			Below: models.Cold, Within: models.Comfortable, Above: models.Hot,
		},
		Humidity: Band{
			Low: HumidityDryBelow, High: HumidityHumidAbove,
			Below: models.Dry, Within: models.Comfortable, Above: models.Humid,
		},
		Noise: Band{
			Low: NoiseQuietBelowDB, High: NoiseLoudAboveDB,
			Below: models.Quiet, Within: models.Moderate, Above: models.Loud,
		},
	}
}

// ClassifyTemperature classifies a temperature in °F with the default bands.
func ClassifyTemperature(f float64) models.ComfortLevel {
	return DefaultThresholds().Temperature.Classify(f)
}

// ClassifyHumidity classifies a relative humidity percentage with the default bands.
func ClassifyHumidity(pct float64) models.ComfortLevel {
	return DefaultThresholds().Humidity.Classify(pct)
}

// ClassifyNoise classifies a noise level in dB with the default bands.
func ClassifyNoise(db float64) models.ComfortLevel {
	return DefaultThresholds().Noise.Classify(db)
}

// Shift band start hours, on the hour the shift started.
// [MorningStartHour, EveningStartHour) is morning,
// [EveningStartHour, NightStartHour) is evening, anything else is night.
const (
	MorningStartHour = 6
	EveningStartHour = 14
	NightStartHour   = 22
)

// ClassifyShift returns the shift type for a shift starting at hour (0-23).
func ClassifyShift(hour int) models.ShiftType {
	switch {
	case hour >= MorningStartHour && hour < EveningStartHour:
		return models.ShiftMorning
	case hour >= EveningStartHour && hour < NightStartHour:
		return models.ShiftEvening
	default:
		return models.ShiftNight
	}
}
