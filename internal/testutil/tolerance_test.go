package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	a := []float64{1.0, 2.0, 3.0}
	b := []float64{1.0, 2.1, 3.0}

	d, err := MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff = %v, want 0.1", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	_, err := MaxAbsDiff([]float64{1}, []float64{1, 2})
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestMaxStep(t *testing.T) {
	if got := MaxStep([]float64{0, 1, 0.5, 3}); got != 2.5 {
		t.Fatalf("MaxStep = %v, want 2.5", got)
	}
	if got := MaxStep(nil); got != 0 {
		t.Fatalf("MaxStep(nil) = %v, want 0", got)
	}
}

func TestRequireRelNear(t *testing.T) {
	RequireRelNear(t, "f", 1000.5, 1000, 1e-3)
}
