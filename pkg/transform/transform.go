// Package transform is the validate, derive and aggregate stage of the
// kennel pipeline. Every function here is pure: it takes fully materialized
// records and returns fully materialized results, holds no state between
// calls and never aborts on bad input. Derivation depends only on a
// record's base fields, so re-deriving a derived record is a no-op.
package transform

import "github.com/kennelos/kennel-etl/pkg/models"

// Input holds the raw records of one run, per entity kind, in source order.
type Input struct {
	Activities  []models.RawRecord
	Environment []models.RawRecord
	StaffLogs   []models.RawRecord
}

// Len returns the total number of raw records.
func (in Input) Len() int {
	return len(in.Activities) + len(in.Environment) + len(in.StaffLogs)
}

// KindStats counts records of one entity kind through validation.
type KindStats struct {
	Input    int `json:"input"`
	Valid    int `json:"valid"`
	Rejected int `json:"rejected"`
}

// Stats counts records per entity kind.
type Stats struct {
	Activities  KindStats `json:"pet_activities"`
	Environment KindStats `json:"environment"`
	StaffLogs   KindStats `json:"staff_logs"`
}

// Total sums the per-kind counts.
func (s Stats) Total() KindStats {
	return KindStats{
		Input:    s.Activities.Input + s.Environment.Input + s.StaffLogs.Input,
		Valid:    s.Activities.Valid + s.Environment.Valid + s.StaffLogs.Valid,
		Rejected: s.Activities.Rejected + s.Environment.Rejected + s.StaffLogs.Rejected,
	}
}

// Result is the output of one Transform call.
type Result struct {
	Activities   []models.ActivityRecord     `json:"pet_activities"`
	Environment  []models.EnvironmentReading `json:"environment"`
	StaffLogs    []models.StaffLog           `json:"staff_logs"`
	DailySummary []models.DailySummary       `json:"daily_summary"`
	// Failures lists rejected records: activities first, then environment,
	// then staff, each in input order.
	Failures []models.ValidationFailure `json:"failures"`
	Stats    Stats                      `json:"stats"`
}

// FailureRate is the share of input records that were rejected, 0 for an
// empty run.
func (r *Result) FailureRate() float64 {
	total := r.Stats.Total()
	if total.Input == 0 {
		return 0
	}
	return float64(total.Rejected) / float64(total.Input)
}

// FailuresOf returns the failures for one entity kind.
func (r *Result) FailuresOf(kind models.EntityKind) []models.ValidationFailure {
	var out []models.ValidationFailure
	for _, f := range r.Failures {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Transform runs validation, derivation and aggregation with the default
// comfort thresholds.
func Transform(in Input) Result {
	return TransformWith(DefaultThresholds(), in)
}

// TransformWith runs the full stage with explicit thresholds.
func TransformWith(th Thresholds, in Input) Result {
	res := Result{
		Activities:  make([]models.ActivityRecord, 0, len(in.Activities)),
		Environment: make([]models.EnvironmentReading, 0, len(in.Environment)),
		StaffLogs:   make([]models.StaffLog, 0, len(in.StaffLogs)),
		Failures:    make([]models.ValidationFailure, 0),
	}

	res.Stats.Activities.Input = len(in.Activities)
	for i, raw := range in.Activities {
		rec, v := ValidateActivity(raw)
		if !v.Valid {
			res.reject(models.KindActivity, i, raw, v)
			continue
		}
		res.Activities = append(res.Activities, DeriveActivity(rec))
	}
	res.Stats.Activities.Valid = len(res.Activities)
	res.Stats.Activities.Rejected = res.Stats.Activities.Input - res.Stats.Activities.Valid

	res.Stats.Environment.Input = len(in.Environment)
	for i, raw := range in.Environment {
		rec, v := ValidateEnvironment(raw)
		if !v.Valid {
			res.reject(models.KindEnvironment, i, raw, v)
			continue
		}
		res.Environment = append(res.Environment, DeriveEnvironment(rec, th))
	}
	res.Stats.Environment.Valid = len(res.Environment)
	res.Stats.Environment.Rejected = res.Stats.Environment.Input - res.Stats.Environment.Valid

	res.Stats.StaffLogs.Input = len(in.StaffLogs)
	for i, raw := range in.StaffLogs {
		rec, v := ValidateStaff(raw)
		if !v.Valid {
			res.reject(models.KindStaff, i, raw, v)
			continue
		}
		res.StaffLogs = append(res.StaffLogs, DeriveStaff(rec))
	}
	res.Stats.StaffLogs.Valid = len(res.StaffLogs)
	res.Stats.StaffLogs.Rejected = res.Stats.StaffLogs.Input - res.Stats.StaffLogs.Valid

	res.DailySummary = Aggregate(res.Activities, res.Environment, res.StaffLogs)
	return res
}

func (r *Result) reject(kind models.EntityKind, index int, raw models.RawRecord, v Verdict) {
	r.Failures = append(r.Failures, models.ValidationFailure{
		Index:    index,
		Kind:     kind,
		Identity: identity(kind, raw),
		Reasons:  v.Reasons,
		Issues:   v.Issues,
	})
}
