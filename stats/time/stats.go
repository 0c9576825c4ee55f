// Package time computes time-domain statistics of capture channels.
package time

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds time-domain channel statistics.
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	Max           float64
	MaxPos        int
	Min           float64
	MinPos        int
	Peak          float64 // max(|max|, |min|)
	CrestFactor   float64 // peak / RMS
	StdDev        float64 // population
	ZeroCrossings int
}

// Calculate computes all statistics of signal. An empty signal yields the
// zero Stats.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	maxPos, minPos := floats.MaxIdx(signal), floats.MinIdx(signal)
	mean, std := stat.PopMeanStdDev(signal, nil)

	s := Stats{
		Length:        n,
		DC:            mean,
		RMS:           RMS(signal),
		Max:           signal[maxPos],
		MaxPos:        maxPos,
		Min:           signal[minPos],
		MinPos:        minPos,
		StdDev:        std,
		ZeroCrossings: ZeroCrossings(signal),
	}
	s.Peak = math.Max(math.Abs(s.Max), math.Abs(s.Min))
	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
	}
	return s
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
}

// DC returns the mean of the signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return stat.Mean(signal, nil)
}

// ZeroCrossings counts sign changes between consecutive samples. Zero
// samples take the sign of the positive class, matching the vertex
// locator's convention.
func ZeroCrossings(signal []float64) int {
	var count int
	for i := 1; i < len(signal); i++ {
		if (signal[i-1] >= 0) != (signal[i] >= 0) {
			count++
		}
	}
	return count
}

// Drift returns the integral of the mean over the record, DC*len*dt. For a
// pickup-coil response it is the induction an uncorrected offset adds
// across the capture.
func Drift(signal []float64, dt float64) float64 {
	return DC(signal) * float64(len(signal)) * dt
}
