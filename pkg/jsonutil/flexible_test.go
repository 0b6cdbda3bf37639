package jsonutil

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   string
		wantOK bool
	}{
		{name: "string value", input: "hello", want: "hello", wantOK: true},
		{name: "trims whitespace", input: "  P1 \t", want: "P1", wantOK: true},
		{name: "json integer", input: json.Number("42"), want: "42", wantOK: true},
		{name: "integral float", input: float64(1001), want: "1001", wantOK: true},
		{name: "fractional float", input: 3.14, want: "3.14", wantOK: true},
		{name: "int", input: 7, want: "7", wantOK: true},
		{name: "boolean", input: true, want: "true", wantOK: true},
		{name: "null value", input: nil, want: "", wantOK: false},
		{name: "map is not text", input: map[string]any{"a": 1}, want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FlexibleStringValue(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FlexibleStringValue(%v) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFlexibleFloat(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{name: "float64", input: 72.5, want: 72.5, wantOK: true},
		{name: "json number", input: json.Number("95"), want: 95, wantOK: true},
		{name: "numeric text", input: " 41.2 ", want: 41.2, wantOK: true},
		{name: "int", input: 3, want: 3, wantOK: true},
		{name: "garbage text", input: "warm", wantOK: false},
		{name: "boolean", input: false, wantOK: false},
		{name: "nil", input: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FlexibleFloat(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("FlexibleFloat(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("FlexibleFloat(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlexibleInt(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   int
		wantOK bool
	}{
		{name: "json integer", input: json.Number("30"), want: 30, wantOK: true},
		{name: "integral float", input: 30.0, want: 30, wantOK: true},
		{name: "numeric text", input: "12", want: 12, wantOK: true},
		{name: "negative", input: -5, want: -5, wantOK: true},
		{name: "above int32", input: json.Number("3000000000"), want: 3000000000, wantOK: true},
		{name: "above int32 as float", input: 3e9, want: 3000000000, wantOK: true},
		{name: "above int32 as text", input: "3000000000", want: 3000000000, wantOK: true},
		{name: "int64 passes through", input: int64(1) << 60, want: 1 << 60, wantOK: true},
		{name: "float beyond exact range", input: 1e300, wantOK: false},
		{name: "fractional", input: 30.5, wantOK: false},
		{name: "fractional text", input: "2.25", wantOK: false},
		{name: "NaN", input: math.NaN(), wantOK: false},
		{name: "infinite", input: math.Inf(1), wantOK: false},
		{name: "text", input: "thirty", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FlexibleInt(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("FlexibleInt(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("FlexibleInt(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlexibleTime(t *testing.T) {
	plus2 := time.FixedZone("", 2*3600)

	tests := []struct {
		name   string
		input  any
		want   time.Time
		wantOK bool
	}{
		{
			name:   "iso without offset keeps wall clock",
			input:  "2024-01-01T10:00:00",
			want:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "space separated",
			input:  "2024-01-01 23:15:00",
			want:   time.Date(2024, 1, 1, 23, 15, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "minutes precision",
			input:  "2024-01-01T06:00",
			want:   time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "fractional seconds",
			input:  "2024-01-01T10:00:00.250",
			want:   time.Date(2024, 1, 1, 10, 0, 0, 250_000_000, time.UTC),
			wantOK: true,
		},
		{
			name:   "offset is preserved",
			input:  "2024-01-01T23:30:00+02:00",
			want:   time.Date(2024, 1, 1, 23, 30, 0, 0, plus2),
			wantOK: true,
		},
		{
			name:   "time value passes through",
			input:  time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
			want:   time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{name: "not a timestamp", input: "yesterday", wantOK: false},
		{name: "blank", input: "  ", wantOK: false},
		{name: "number", input: 1704103200, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FlexibleTime(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("FlexibleTime(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("FlexibleTime(%v) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Hour() != tt.want.Hour() {
				t.Errorf("FlexibleTime(%v) hour = %d, want %d (wall clock must not be converted)", tt.input, got.Hour(), tt.want.Hour())
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(nil) || !IsBlank("") || !IsBlank("   ") {
		t.Error("expected nil and whitespace-only text to be blank")
	}
	if IsBlank(0) || IsBlank("x") || IsBlank(false) {
		t.Error("expected zero values of non-text types to be present")
	}
}
