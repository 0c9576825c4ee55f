package sinefit

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Errors returned by the estimation steps.
var (
	ErrEmptyVertexSet    = errors.New("sinefit: no samples within 90% of the peak")
	ErrDegenerateCycle   = errors.New("sinefit: degenerate cycle")
	ErrFitDidNotConverge = errors.New("sinefit: fit did not converge")
)

// crestFraction is the lower bound, relative to the peak, of samples that
// count as part of a crest region.
const crestFraction = 0.9

// Scenario classifies a record by the sign of its first sample.
type Scenario int

const (
	// ScenarioPositiveStart: reference[0] >= 0. The negative crest is found first.
	ScenarioPositiveStart Scenario = 1
	// ScenarioNegativeStart: reference[0] < 0. The positive crest is found first.
	ScenarioNegativeStart Scenario = 2
)

func (s Scenario) String() string {
	switch s {
	case ScenarioPositiveStart:
		return "positive-start"
	case ScenarioNegativeStart:
		return "negative-start"
	default:
		return fmt.Sprintf("Scenario(%d)", int(s))
	}
}

// ScenarioOf returns the Scenario of a non-empty reference record.
func ScenarioOf(reference []float64) Scenario {
	if len(reference) > 0 && reference[0] >= 0 {
		return ScenarioPositiveStart
	}
	return ScenarioNegativeStart
}

// Vertex is one crest region of the reference sinusoid.
type Vertex struct {
	// Index is the truncated mean of the region's sample indices.
	Index int
	// Mean is the exact mean of the region's sample indices.
	Mean float64
	// Count is the number of samples in the region.
	Count int
}

// Vertices holds the first positive and negative crests of a record.
type Vertices struct {
	Scenario Scenario
	// Peak is max(reference), the amplitude guess used for the crest bounds.
	Peak float64
	// Start is the first index whose sign differs from reference[0]'s.
	Start    int
	Positive Vertex
	Negative Vertex
}

// LocateVertices finds the first positive and negative crest regions of
// reference. Leading samples that keep the sign of reference[0] are
// skipped, then the two following half-cycles are scanned in order: each
// scan runs while the sign holds and collects samples within
// [0.9*peak, peak] (positive) or [-peak, -0.9*peak] (negative).
func LocateVertices(reference []float64) (Vertices, error) {
	if len(reference) == 0 {
		return Vertices{}, fmt.Errorf("%w: empty reference", ErrEmptyVertexSet)
	}

	peak := floats.Max(reference)
	if !(peak > 0) {
		return Vertices{}, fmt.Errorf("%w: reference never goes positive (max %v)", ErrEmptyVertexSet, peak)
	}

	v := Vertices{
		Scenario: ScenarioOf(reference),
		Peak:     peak,
	}

	n := len(reference)
	start := 0
	for start < n && keepsInitialSign(v.Scenario, reference[start]) {
		start++
	}
	v.Start = start

	var pos, neg crestScan
	switch v.Scenario {
	case ScenarioPositiveStart:
		neg = scanNegative(reference, start, peak)
		pos = scanPositive(reference, neg.stop, peak)
	default:
		pos = scanPositive(reference, start, peak)
		neg = scanNegative(reference, pos.stop, peak)
	}

	if pos.count == 0 {
		return Vertices{}, fmt.Errorf("%w: positive crest after index %d", ErrEmptyVertexSet, start)
	}
	if neg.count == 0 {
		return Vertices{}, fmt.Errorf("%w: negative crest after index %d", ErrEmptyVertexSet, start)
	}

	v.Positive = pos.vertex()
	v.Negative = neg.vertex()

	return v, nil
}

func keepsInitialSign(s Scenario, x float64) bool {
	if s == ScenarioPositiveStart {
		return x >= 0
	}
	return x <= 0
}

type crestScan struct {
	sum   int
	count int
	stop  int
}

func (c crestScan) vertex() Vertex {
	mean := float64(c.sum) / float64(c.count)
	return Vertex{
		Index: int(mean),
		Mean:  mean,
		Count: c.count,
	}
}

func scanPositive(y []float64, start int, peak float64) crestScan {
	var c crestScan
	i := start
	for ; i < len(y) && y[i] >= 0; i++ {
		if crestFraction*peak <= y[i] && y[i] <= peak {
			c.sum += i
			c.count++
		}
	}
	c.stop = i
	return c
}

func scanNegative(y []float64, start int, peak float64) crestScan {
	var c crestScan
	i := start
	for ; i < len(y) && y[i] <= 0; i++ {
		if -peak <= y[i] && y[i] <= -crestFraction*peak {
			c.sum += i
			c.count++
		}
	}
	c.stop = i
	return c
}
