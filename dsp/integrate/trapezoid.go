// Package integrate provides numerical integration of uniformly sampled signals.
package integrate

import (
	"errors"
	"fmt"
)

// Errors returned by integration functions.
var (
	ErrInvalidStep  = errors.New("integrate: step must be positive")
	ErrInvalidRange = errors.New("integrate: range out of bounds")
)

// CumulativeTrapezoid integrates x with the trapezoid rule and returns the
// running integral, one value per input sample:
//
//	y[0] = 0
//	y[k] = y[k-1] + 0.5*(x[k-1]+x[k])*dt
//
// The accumulator is carried forward, so the cost is O(n).
func CumulativeTrapezoid(x []float64, dt float64) ([]float64, error) {
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, dt)
	}

	out := make([]float64, len(x))
	cumulativeTrapezoidInto(out, x, dt)

	return out, nil
}

// CumulativeTrapezoidRange integrates x[start:stop] and restarts the
// accumulator at start. The result has stop-start samples.
func CumulativeTrapezoidRange(x []float64, start, stop int, dt float64) ([]float64, error) {
	if start < 0 || stop > len(x) || start > stop {
		return nil, fmt.Errorf("%w: [%d, %d) of %d samples", ErrInvalidRange, start, stop, len(x))
	}

	return CumulativeTrapezoid(x[start:stop], dt)
}

func cumulativeTrapezoidInto(dst, x []float64, dt float64) {
	if len(x) == 0 {
		return
	}

	acc := 0.0
	dst[0] = 0
	for i := 1; i < len(x); i++ {
		acc += 0.5 * (x[i-1] + x[i]) * dt
		dst[i] = acc
	}
}
