// Package jsonutil coerces loosely typed decoded values (from JSON, YAML or
// CSV sources) into the primitive types the pipeline works with.
package jsonutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayouts are the accepted textual timestamp forms, tried in order.
// Layouts without an offset are read as wall clock time and never converted.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// IsBlank reports whether v carries no value: nil, or text that is empty
// after trimming whitespace.
func IsBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []byte:
		return strings.TrimSpace(string(val)) == ""
	}
	return false
}

// FlexibleStringValue converts a decoded value to trimmed text, handling
// sources that emit numbers or booleans where text is expected.
// Returns false for nil and for composite values (maps, slices).
func FlexibleStringValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(val), true
	case []byte:
		return strings.TrimSpace(string(val)), true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case time.Time:
		return val.Format(time.RFC3339Nano), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return formatFloat(float64(val)), true
	case float64:
		return formatFloat(val), true
	}
	return "", false
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FlexibleFloat converts a decoded value to a float64. Numeric text is
// parsed after trimming. Booleans and composite values are rejected.
func FlexibleFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		return f, err == nil
	}
	return 0, false
}

// maxExactInt is the largest magnitude below which every integer has an
// exact float64 form.
const maxExactInt = 1 << 53

// FlexibleInt converts a decoded value to an int. The value must be
// integral: 30, "30" and 30.0 are accepted, 30.5 is not. Integers beyond
// 2^53 in magnitude are only accepted when decoded as Go integers.
func FlexibleInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n), true
		}
	}
	f, ok := FlexibleFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f > maxExactInt || f < -maxExactInt {
		return 0, false
	}
	return int(f), true
}

// FlexibleTime converts a decoded value to a time.Time. time.Time values
// pass through unchanged; text is tried against TimestampLayouts.
func FlexibleTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		return ParseTimestamp(val)
	case []byte:
		return ParseTimestamp(string(val))
	}
	return time.Time{}, false
}

// ParseTimestamp parses s with the first matching layout in TimestampLayouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
