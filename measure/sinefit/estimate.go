package sinefit

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-bhloop/dsp/core"
)

// Model is the sinusoid A*sin(2*pi*f*t + phi).
type Model struct {
	Amplitude float64 // A
	Frequency float64 // f in Hz
	Phase     float64 // phi in radians
}

// At evaluates the model at time t.
func (m Model) At(t float64) float64 {
	return m.Amplitude * math.Sin(2*math.Pi*m.Frequency*t+m.Phase)
}

// Sample evaluates the model at t = i*dt for every i in dst.
func (m Model) Sample(dst []float64, dt float64) {
	w := 2 * math.Pi * m.Frequency
	for i := range dst {
		dst[i] = m.Amplitude * math.Sin(w*float64(i)*dt+m.Phase)
	}
}

// Period returns 1/f.
func (m Model) Period() float64 {
	return 1 / m.Frequency
}

// PhaseDegrees returns the phase in degrees.
func (m Model) PhaseDegrees() float64 {
	return core.Degrees(m.Phase)
}

// Estimate derives a seed model from the located vertices:
//
//	A0 = (reference[p] - reference[n]) / 2
//	T0 = 2*|mean_p - mean_n|*dt
//
// The phase is asin(reference[0]/A0) moved into the quadrant implied by the
// Scenario and the sign of reference[qT], qT being a quarter period from the
// origin. The result lies in [0, 2*pi].
func Estimate(reference []float64, v Vertices, dt float64) (Model, error) {
	if !(dt > 0) {
		return Model{}, fmt.Errorf("%w: time increment %v", ErrDegenerateCycle, dt)
	}

	p, n := v.Positive.Index, v.Negative.Index
	if p < 0 || n < 0 || p >= len(reference) || n >= len(reference) {
		return Model{}, fmt.Errorf("%w: vertex indices %d/%d outside %d samples", ErrDegenerateCycle, p, n, len(reference))
	}
	if p == n {
		return Model{}, fmt.Errorf("%w: positive and negative vertex coincide at %d", ErrDegenerateCycle, p)
	}

	period := math.Abs(v.Positive.Mean-v.Negative.Mean) * dt * 2
	if !(period > 0) {
		return Model{}, fmt.Errorf("%w: zero period", ErrDegenerateCycle)
	}

	amplitude := (reference[p] - reference[n]) / 2
	if !(amplitude > 0) {
		return Model{}, fmt.Errorf("%w: non-positive amplitude %v", ErrDegenerateCycle, amplitude)
	}

	quarter := absInt(p-n) / 2
	value := core.Clamp(reference[0]/amplitude, -1, 1)

	return Model{
		Amplitude: amplitude,
		Frequency: 1 / period,
		Phase:     resolveQuadrant(v.Scenario, math.Asin(value), reference[quarter]),
	}, nil
}

// resolveQuadrant maps the principal arcsine into the anticlockwise phase
// convention. The comparison sides are load-bearing on boundary samples.
func resolveQuadrant(s Scenario, phase, quarterSample float64) float64 {
	if s == ScenarioPositiveStart {
		if quarterSample >= 0 {
			return phase
		}
		return math.Pi - phase
	}

	if quarterSample <= 0 {
		return math.Pi - phase
	}
	return 2*math.Pi + phase
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
