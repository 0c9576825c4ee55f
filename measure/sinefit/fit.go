package sinefit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-bhloop/dsp/core"
	"github.com/cwbudde/algo-bhloop/internal/lsq"
)

// FitSettings tunes the least-squares refinement. The zero value selects
// the defaults.
type FitSettings struct {
	// Iterations bounds the number of Gauss-Newton iterations.
	Iterations int
	// GradientTol stops the solve once the gradient infinity norm falls
	// below it; ObjectiveTol once the residual cost stops improving by
	// more than this relative amount.
	GradientTol  float64
	ObjectiveTol float64
}

// DefaultFitSettings returns the settings used when none are given.
func DefaultFitSettings() FitSettings {
	return FitSettings{
		Iterations:   400,
		GradientTol:  1e-12,
		ObjectiveTol: 1e-12,
	}
}

// FitResult is a refined model plus fit diagnostics.
type FitResult struct {
	Model
	Iterations  int
	StopReason  string
	ResidualRMS float64
	RSquared    float64
}

// Fit refines seed by Gauss-Newton least squares of A*sin(2*pi*f*t + phi)
// against reference sampled at t = i*dt. A singular Jacobian at the seed,
// an exhausted iteration budget or a fitted model with non-positive
// amplitude or frequency all yield ErrFitDidNotConverge.
func Fit(reference []float64, dt float64, seed Model, settings *FitSettings) (FitResult, error) {
	if len(reference) < 3 {
		return FitResult{}, fmt.Errorf("%w: %d samples for 3 parameters", ErrFitDidNotConverge, len(reference))
	}
	if !(dt > 0) {
		return FitResult{}, fmt.Errorf("%w: time increment %v", ErrFitDidNotConverge, dt)
	}

	s := DefaultFitSettings()
	if settings != nil {
		if settings.Iterations > 0 {
			s.Iterations = settings.Iterations
		}
		if settings.GradientTol > 0 {
			s.GradientTol = settings.GradientTol
		}
		if settings.ObjectiveTol > 0 {
			s.ObjectiveTol = settings.ObjectiveTol
		}
	}

	times := make([]float64, len(reference))
	for i := range times {
		times[i] = float64(i) * dt
	}

	problem := lsq.Problem{
		Dim:  3,
		Size: len(reference),
		Func: func(dst, x []float64) {
			a, w, phi := x[0], 2*math.Pi*x[1], x[2]
			for i, t := range times {
				dst[i] = a*math.Sin(w*t+phi) - reference[i]
			}
		},
		Jac: func(dst *mat.Dense, x []float64) {
			a, w, phi := x[0], 2*math.Pi*x[1], x[2]
			for i, t := range times {
				sin, cos := math.Sincos(w*t + phi)
				dst.Set(i, 0, sin)
				dst.Set(i, 1, a*cos*2*math.Pi*t)
				dst.Set(i, 2, a*cos)
			}
		},
		InitParams: []float64{seed.Amplitude, seed.Frequency, seed.Phase},
		Eps1:       s.GradientTol,
		Eps2:       s.ObjectiveTol,
	}

	res, err := lsq.Solve(problem, &lsq.Settings{Iterations: s.Iterations})
	if err != nil {
		return FitResult{}, fmt.Errorf("%w: %w", ErrFitDidNotConverge, err)
	}

	m := Model{Amplitude: res.X[0], Frequency: res.X[1], Phase: res.X[2]}
	if !(m.Amplitude > 0) || !(m.Frequency > 0) || !core.IsFinite(m.Phase) {
		return FitResult{}, fmt.Errorf("%w: spurious optimum A=%v f=%v phi=%v", ErrFitDidNotConverge, m.Amplitude, m.Frequency, m.Phase)
	}

	fitted := make([]float64, len(reference))
	m.Sample(fitted, dt)

	return FitResult{
		Model:       m,
		Iterations:  res.Iterations,
		StopReason:  res.Reason.String(),
		ResidualRMS: math.Sqrt(2 * res.Cost / float64(len(reference))),
		RSquared:    stat.RSquaredFrom(fitted, reference, nil),
	}, nil
}
