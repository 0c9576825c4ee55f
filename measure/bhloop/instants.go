package bhloop

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-bhloop/dsp/core"
	"github.com/cwbudde/algo-bhloop/measure/sinefit"
)

// Instants are the three reference times bounding the forward half-cycle
// [T1, T2) and the reverse half-cycle [T2, T3), with their sample indices.
type Instants struct {
	T1, T2, T3             float64
	Index1, Index2, Index3 int
}

// HalfPeriod returns T2 - T1.
func (in Instants) HalfPeriod() float64 {
	return in.T2 - in.T1
}

// ComputeInstants derives the reference instants from a fitted model. The
// forward branch starts at the first field minimum after the origin:
//
//	positive-start: T1 = (3*pi/2 - phi) / (2*pi*f)
//	negative-start: T1 = (5*pi/2 - phi) / (2*pi*f)
//
// T2 and T3 follow at half-period steps. Index_k = floor(T_k/dt), and every
// index must fall inside a record of n samples.
func ComputeInstants(m sinefit.Model, s sinefit.Scenario, dt float64, n int) (Instants, error) {
	if !(m.Frequency > 0) || !(dt > 0) {
		return Instants{}, fmt.Errorf("%w: frequency %v, time increment %v", ErrDegenerateCycle, m.Frequency, dt)
	}

	start := 3 * math.Pi / 2
	if s == sinefit.ScenarioNegativeStart {
		start = 5 * math.Pi / 2
	}

	half := 0.5 / m.Frequency
	in := Instants{T1: (start - m.Phase) / (2 * math.Pi * m.Frequency)}
	in.T2 = in.T1 + half
	in.T3 = in.T2 + half

	if !core.IsFinite(in.T1) || !core.IsFinite(in.T3) {
		return Instants{}, fmt.Errorf("%w: non-finite instants", ErrOutOfRangeReference)
	}

	in.Index1 = int(math.Floor(in.T1 / dt))
	in.Index2 = int(math.Floor(in.T2 / dt))
	in.Index3 = int(math.Floor(in.T3 / dt))

	if in.Index1 < 0 {
		return in, fmt.Errorf("%w: index1 %d before the record start", ErrOutOfRangeReference, in.Index1)
	}
	if in.Index3 >= n {
		return in, fmt.Errorf("%w: index3 %d beyond %d samples", ErrOutOfRangeReference, in.Index3, n)
	}
	if in.Index2-in.Index1 < 2 || in.Index3-in.Index2 < 2 {
		return in, fmt.Errorf("%w: half-cycle shorter than two samples", ErrDegenerateCycle)
	}

	return in, nil
}
