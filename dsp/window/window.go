// Package window generates tapering windows for spectral estimation of
// finite records.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

var hannCoeffs = []float64{0.5, -0.5}

// Hann returns length coefficients of the symmetric Hann window.
// Non-positive lengths return nil.
func Hann(length int) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = cosineFromCoeffs(samplePosition(i, length), hannCoeffs)
	}

	return out
}

// ApplyHann multiplies buf in place by the Hann window of the same length.
func ApplyHann(buf []float64) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Hann(len(buf)))
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int) float64 {
	if size <= 1 {
		return 0
	}

	return float64(n) / float64(size-1)
}
