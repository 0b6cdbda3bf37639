package pipeline

import (
	"testing"

	"go.uber.org/goleak"
)

// Sinks run on their own goroutines; every run must join them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
