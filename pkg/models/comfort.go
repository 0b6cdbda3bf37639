package models

// ComfortLevel is a three-way classification of an environmental reading.
type ComfortLevel string

// Comfort levels. Each measurement uses three of these, ordered low to high:
// temperature cold/comfortable/hot, humidity dry/comfortable/humid,
// noise quiet/moderate/loud.
const (
	Cold        ComfortLevel = "cold"
	Comfortable ComfortLevel = "comfortable"
	Hot         ComfortLevel = "hot"
	Dry         ComfortLevel = "dry"
	Humid       ComfortLevel = "humid"
	Quiet       ComfortLevel = "quiet"
	Moderate    ComfortLevel = "moderate"
	Loud        ComfortLevel = "loud"
)

// String returns the string representation of a ComfortLevel.
func (c ComfortLevel) String() string {
	return string(c)
}

// ShiftType categorizes a staff shift by the hour it started.
type ShiftType string

const (
	ShiftMorning ShiftType = "morning"
	ShiftEvening ShiftType = "evening"
	ShiftNight   ShiftType = "night"
)

// String returns the string representation of a ShiftType.
func (s ShiftType) String() string {
	return string(s)
}
