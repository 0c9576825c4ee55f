package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-bhloop/internal/testutil"
)

func TestMagnitude(t *testing.T) {
	bins := []complex128{3 + 4i, -1 - 1i, 0}

	mag := Magnitude(bins)
	if len(mag) != len(bins) {
		t.Fatalf("Magnitude length mismatch: got=%d want=%d", len(mag), len(bins))
	}
	if math.Abs(mag[0]-5) > 1e-12 {
		t.Fatalf("Magnitude[0]=%f want=5", mag[0])
	}
	if math.Abs(mag[1]-math.Sqrt2) > 1e-12 {
		t.Fatalf("Magnitude[1]=%f want=sqrt(2)", mag[1])
	}

	if mag[2] != 0 {
		t.Fatalf("Magnitude[2]=%f want=0", mag[2])
	}

	if Magnitude(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestPeakFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dt   float64
		n    int
	}{
		{"5 cycles", 50, 1e-4, 1000},
		{"200 cycles off-bin", 1234.5, 1e-5, 16200},
		{"kHz scan", 1000, 1e-6, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := testutil.Sinusoid(3, tt.freq, 0.4, tt.dt, tt.n)

			got, err := PeakFrequency(x, 1/tt.dt)
			if err != nil {
				t.Fatalf("PeakFrequency() error = %v", err)
			}
			if rel := math.Abs(got-tt.freq) / tt.freq; rel > 0.01 {
				t.Fatalf("PeakFrequency() = %v, want %v (rel err %.3g)", got, tt.freq, rel)
			}
		})
	}
}

func TestPeakFrequencyIgnoresOffset(t *testing.T) {
	x := testutil.Sinusoid(1, 50, 0, 1e-4, 1000)
	for i := range x {
		x[i] += 10
	}

	got, err := PeakFrequency(x, 1e4)
	if err != nil {
		t.Fatalf("PeakFrequency() error = %v", err)
	}
	if math.Abs(got-50) > 0.5 {
		t.Fatalf("PeakFrequency() = %v, want ~50", got)
	}
}

func TestPeakFrequencyErrors(t *testing.T) {
	if _, err := PeakFrequency(make([]float64, 4), 1000); !errors.Is(err, ErrTooShort) {
		t.Fatalf("short: err = %v, want ErrTooShort", err)
	}
	if _, err := PeakFrequency(make([]float64, 64), 0); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("rate: err = %v, want ErrInvalidSampleRate", err)
	}
	if _, err := PeakFrequency(testutil.DC(2, 64), 1000); !errors.Is(err, ErrNoPeak) {
		t.Fatalf("dc: err = %v, want ErrNoPeak", err)
	}
}

func TestParabolicOffset(t *testing.T) {
	if got := parabolicOffset(1, 2, 1); got != 0 {
		t.Fatalf("symmetric offset = %v, want 0", got)
	}
	if got := parabolicOffset(1, 2, 1.9); got <= 0 || got > 0.5 {
		t.Fatalf("right-leaning offset = %v, want in (0, 0.5]", got)
	}
	if got := parabolicOffset(1.9, 2, 1); got >= 0 || got < -0.5 {
		t.Fatalf("left-leaning offset = %v, want in [-0.5, 0)", got)
	}
}
