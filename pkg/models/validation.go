package models

import (
	"time"

	"github.com/google/uuid"
)

// RawRecord is one input row as decoded from its source: a flat mapping
// from field name to a primitive value. A nil RawRecord stands for an
// input element that was not a mapping at all.
type RawRecord map[string]any

// EntityKind identifies which of the three input streams a record belongs to.
// Values match the persisted table names.
type EntityKind string

const (
	KindActivity    EntityKind = TablePetActivities
	KindEnvironment EntityKind = TableEnvironment
	KindStaff       EntityKind = TableStaffLogs
)

// String returns the string representation of an EntityKind.
func (k EntityKind) String() string {
	return string(k)
}

// ReasonCode explains why a record failed validation.
type ReasonCode string

const (
	ReasonMissingField      ReasonCode = "MISSING_FIELD"
	ReasonBadType           ReasonCode = "BAD_TYPE"
	ReasonOutOfRange        ReasonCode = "OUT_OF_RANGE"
	ReasonBadTimestampOrder ReasonCode = "BAD_TIMESTAMP_ORDER"
)

// FieldIssue is a single failed check on one field.
type FieldIssue struct {
	Field   string     `json:"field"`
	Reason  ReasonCode `json:"reason"`
	Message string     `json:"message"`
}

// ValidationFailure describes a rejected input record.
type ValidationFailure struct {
	// Index is the zero-based position of the record in its input stream.
	Index int        `json:"index"`
	Kind  EntityKind `json:"kind"`
	// Identity is the best natural key available on the raw record, if any.
	Identity string `json:"identity,omitempty"`
	// Reasons holds the distinct reason codes in order of first occurrence.
	Reasons []ReasonCode `json:"reasons"`
	Issues  []FieldIssue `json:"issues"`
}

// HasReason reports whether the failure carries the given reason code.
func (f ValidationFailure) HasReason(code ReasonCode) bool {
	for _, r := range f.Reasons {
		if r == code {
			return true
		}
	}
	return false
}

// RunInfo identifies one pipeline run.
type RunInfo struct {
	ID        uuid.UUID `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}
