package transform

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kennelos/kennel-etl/pkg/jsonutil"
	"github.com/kennelos/kennel-etl/pkg/models"
)

// Verdict is the outcome of validating one raw record.
type Verdict struct {
	Valid   bool
	Reasons []models.ReasonCode
	Issues  []models.FieldIssue
}

// Validate checks a raw record of the given kind and returns its verdict.
// It never panics on malformed input; unknown fields are ignored.
func Validate(kind models.EntityKind, raw models.RawRecord) Verdict {
	switch kind {
	case models.KindActivity:
		_, v := ValidateActivity(raw)
		return v
	case models.KindEnvironment:
		_, v := ValidateEnvironment(raw)
		return v
	case models.KindStaff:
		_, v := ValidateStaff(raw)
		return v
	default:
		c := newChecker(raw)
		c.fail("", models.ReasonBadType, "unknown entity kind %q", kind)
		return c.verdict()
	}
}

// ValidateActivity decodes and checks a pet activity record.
// The returned record is meaningful only when the verdict is valid;
// derived fields are left for DeriveActivity.
func ValidateActivity(raw models.RawRecord) (models.ActivityRecord, Verdict) {
	c := newChecker(raw)
	if raw == nil {
		return models.ActivityRecord{}, c.verdict()
	}

	rec := models.ActivityRecord{
		PetID:           c.requiredText("pet_id"),
		PetName:         c.optionalText("pet_name"),
		ActivityType:    strings.ToLower(c.optionalText("activity_type")),
		DurationMinutes: c.requiredCount("duration_minutes"),
		Timestamp:       c.requiredTime("timestamp"),
		StaffID:         c.requiredText("staff_id"),
		Notes:           c.optionalText("notes"),
	}
	return rec, c.verdict()
}

// ValidateEnvironment decodes and checks an environment reading.
func ValidateEnvironment(raw models.RawRecord) (models.EnvironmentReading, Verdict) {
	c := newChecker(raw)
	if raw == nil {
		return models.EnvironmentReading{}, c.verdict()
	}

	rec := models.EnvironmentReading{
		Timestamp:       c.requiredTime("timestamp"),
		TemperatureF:    c.requiredFloat("temperature_f"),
		HumidityPercent: c.requiredFloat("humidity_percent"),
		NoiseLevelDB:    c.requiredFloat("noise_level_db"),
		KennelSection:   c.optionalText("kennel_section"),
	}

	if c.ok("humidity_percent") && (rec.HumidityPercent < HumidityMinPercent || rec.HumidityPercent > HumidityMaxPercent) {
		c.fail("humidity_percent", models.ReasonOutOfRange,
			"humidity %v outside [%v, %v]", rec.HumidityPercent, HumidityMinPercent, HumidityMaxPercent)
	}
	if c.ok("noise_level_db") && rec.NoiseLevelDB < NoiseMinDB {
		c.fail("noise_level_db", models.ReasonOutOfRange, "noise level %v is negative", rec.NoiseLevelDB)
	}
	return rec, c.verdict()
}

// ValidateStaff decodes and checks a staff shift log.
// A shift ending before it starts is rejected; a zero-length shift is accepted.
func ValidateStaff(raw models.RawRecord) (models.StaffLog, Verdict) {
	c := newChecker(raw)
	if raw == nil {
		return models.StaffLog{}, c.verdict()
	}

	rec := models.StaffLog{
		StaffID:         c.requiredText("staff_id"),
		StaffName:       c.optionalText("staff_name"),
		ShiftStart:      c.requiredTime("shift_start"),
		ShiftEnd:        c.requiredTime("shift_end"),
		SectionAssigned: c.optionalText("section_assigned"),
		TasksCompleted:  c.requiredCount("tasks_completed"),
		Notes:           c.optionalText("notes"),
	}

	if c.ok("shift_start") && c.ok("shift_end") && rec.ShiftEnd.Before(rec.ShiftStart) {
		c.fail("shift_end", models.ReasonBadTimestampOrder,
			"shift_end %s is before shift_start %s",
			rec.ShiftEnd.Format(time.RFC3339), rec.ShiftStart.Format(time.RFC3339))
	}
	return rec, c.verdict()
}

// checker accumulates field issues for one raw record.
type checker struct {
	raw    models.RawRecord
	issues []models.FieldIssue
	failed map[string]bool
}

func newChecker(raw models.RawRecord) *checker {
	c := &checker{raw: raw, failed: make(map[string]bool)}
	if raw == nil {
		c.fail("", models.ReasonMissingField, "record is not a mapping")
	}
	return c
}

func (c *checker) fail(field string, reason models.ReasonCode, format string, args ...any) {
	c.issues = append(c.issues, models.FieldIssue{
		Field:   field,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	})
	c.failed[field] = true
}

// ok reports whether no check on field has failed so far.
func (c *checker) ok(field string) bool {
	return !c.failed[field]
}

// present returns the field's value, recording MISSING_FIELD when it is
// absent, null or blank.
func (c *checker) present(field string) (any, bool) {
	v, found := c.raw[field]
	if !found || jsonutil.IsBlank(v) {
		c.fail(field, models.ReasonMissingField, "%s is required", field)
		return nil, false
	}
	return v, true
}

func (c *checker) requiredText(field string) string {
	v, ok := c.present(field)
	if !ok {
		return ""
	}
	s, ok := jsonutil.FlexibleStringValue(v)
	if !ok {
		c.fail(field, models.ReasonBadType, "%s must be text, got %T", field, v)
		return ""
	}
	return s
}

func (c *checker) optionalText(field string) string {
	s, _ := jsonutil.FlexibleStringValue(c.raw[field])
	return s
}

func (c *checker) requiredTime(field string) time.Time {
	v, ok := c.present(field)
	if !ok {
		return time.Time{}
	}
	t, ok := jsonutil.FlexibleTime(v)
	if !ok {
		c.fail(field, models.ReasonBadType, "%s is not a valid timestamp: %v", field, v)
		return time.Time{}
	}
	return t
}

// requiredCount reads a non-negative integer.
func (c *checker) requiredCount(field string) int {
	v, ok := c.present(field)
	if !ok {
		return 0
	}
	n, ok := jsonutil.FlexibleInt(v)
	if !ok {
		c.fail(field, models.ReasonBadType, "%s must be an integer, got %v", field, v)
		return 0
	}
	if n < 0 {
		c.fail(field, models.ReasonOutOfRange, "%s must be non-negative, got %d", field, n)
	}
	return n
}

func (c *checker) requiredFloat(field string) float64 {
	v, ok := c.present(field)
	if !ok {
		return 0
	}
	f, ok := jsonutil.FlexibleFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		c.fail(field, models.ReasonBadType, "%s must be a finite number, got %v", field, v)
		return 0
	}
	return f
}

func (c *checker) verdict() Verdict {
	v := Verdict{Valid: len(c.issues) == 0, Issues: c.issues}
	seen := make(map[models.ReasonCode]bool, len(c.issues))
	for _, issue := range c.issues {
		if !seen[issue.Reason] {
			seen[issue.Reason] = true
			v.Reasons = append(v.Reasons, issue.Reason)
		}
	}
	return v
}

// identityFields names the raw fields that make up a record's natural key.
var identityFields = map[models.EntityKind][]string{
	models.KindActivity:    {"pet_id", "timestamp"},
	models.KindEnvironment: {"kennel_section", "timestamp"},
	models.KindStaff:       {"staff_id", "shift_start"},
}

// identity returns the best available natural key of a raw record, joining
// whichever identity fields are present with "@".
func identity(kind models.EntityKind, raw models.RawRecord) string {
	var parts []string
	for _, field := range identityFields[kind] {
		if s, ok := jsonutil.FlexibleStringValue(raw[field]); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "@")
}
