// Package smooth provides sample-domain smoothing filters for finite records.
package smooth

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidWindow is returned when the window is smaller than one sample
// or longer than the input.
var ErrInvalidWindow = errors.New("smooth: invalid moving-average window")

// OutputLen returns the number of samples MovingAverage produces for an
// input of length n, or -1 if window is invalid for n.
func OutputLen(n, window int) int {
	if window < 1 || window > n {
		return -1
	}

	return n - window + 1
}

// MovingAverage returns the "valid" simple moving average of x:
//
//	y[k] = (x[k] + ... + x[k+window-1]) / window
//
// for k in [0, len(x)-window]. It runs in O(n) via a cumulative sum.
// A window of 1 returns an exact copy of x.
func MovingAverage(x []float64, window int) ([]float64, error) {
	n := OutputLen(len(x), window)
	if n < 0 {
		return nil, fmt.Errorf("%w: window %d for %d samples", ErrInvalidWindow, window, len(x))
	}

	out := make([]float64, n)
	if window == 1 {
		copy(out, x)
		return out, nil
	}

	cs := floats.CumSum(make([]float64, len(x)), x)
	w := float64(window)

	out[0] = cs[window-1] / w
	for k := 1; k < n; k++ {
		out[k] = (cs[k+window-1] - cs[k-1]) / w
	}

	return out, nil
}
