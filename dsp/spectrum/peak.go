package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-bhloop/dsp/window"
)

// Errors returned by PeakFrequency.
var (
	ErrTooShort          = errors.New("spectrum: signal too short")
	ErrInvalidSampleRate = errors.New("spectrum: sample rate must be positive")
	ErrNoPeak            = errors.New("spectrum: no spectral peak")
)

const (
	minPeakSamples = 8
	zeroPadFactor  = 4
)

// PeakFrequency estimates the dominant frequency of x in Hz. The mean is
// removed, a Hann window applied and the record zero-padded to four times
// the next power of two. The strongest non-DC bin is refined by parabolic
// interpolation of the log magnitudes around it.
func PeakFrequency(x []float64, sampleRate float64) (float64, error) {
	if len(x) < minPeakSamples {
		return 0, fmt.Errorf("%w: %d samples", ErrTooShort, len(x))
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	size := nextPowerOf2(len(x)) * zeroPadFactor

	frame := make([]float64, len(x))
	copy(frame, x)
	floats.AddConst(-floats.Sum(frame)/float64(len(frame)), frame)
	window.ApplyHann(frame)

	in := make([]complex128, size)
	for i, v := range frame {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return 0, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return 0, err
	}

	mag := Magnitude(out[:size/2+1])

	peak := 1
	for k := 2; k < len(mag)-1; k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}
	if !(mag[peak] > 0) {
		return 0, ErrNoPeak
	}

	bin := float64(peak) + parabolicOffset(mag[peak-1], mag[peak], mag[peak+1])

	return bin * sampleRate / float64(size), nil
}

// parabolicOffset returns the vertex offset in bins, within [-0.5, 0.5], of
// the parabola through the log magnitudes of three adjacent bins.
func parabolicOffset(left, centre, right float64) float64 {
	const floor = 1e-300

	a := math.Log(math.Max(left, floor))
	b := math.Log(math.Max(centre, floor))
	c := math.Log(math.Max(right, floor))

	den := a - 2*b + c
	if den == 0 {
		return 0
	}

	return math.Max(-0.5, math.Min(0.5, 0.5*(a-c)/den))
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
