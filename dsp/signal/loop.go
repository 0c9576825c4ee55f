package signal

import (
	"fmt"
	"math"
)

// LoopParams shapes the rate-independent hysteresis used by LoopResponse.
type LoopParams struct {
	// Saturation is the induction reached at large fields.
	Saturation float64
	// Coercivity shifts the rising branch right and the falling branch left.
	Coercivity float64
	// Width is the field scale of the tanh transition.
	Width float64
}

// DefaultLoopParams returns a square-ish loop for a unit-amplitude drive.
func DefaultLoopParams() LoopParams {
	return LoopParams{
		Saturation: 1,
		Coercivity: 0.3,
		Width:      0.15,
	}
}

// Induction returns B for the field trace h: each sample follows
// Saturation*tanh((h -/+ Coercivity)/Width) on the rising/falling branch.
func (p LoopParams) Induction(h []float64) []float64 {
	b := make([]float64, len(h))
	if len(h) == 0 {
		return b
	}

	rising := len(h) < 2 || h[1] >= h[0]
	for i, v := range h {
		if i > 0 && h[i] != h[i-1] {
			rising = h[i] > h[i-1]
		}
		shift := p.Coercivity
		if !rising {
			shift = -shift
		}
		b[i] = p.Saturation * math.Tanh((v-shift)/p.Width)
	}
	return b
}

// LoopResponse returns the pickup-coil signal dB/dt of a sample driven by
// the field -reference. The derivative uses central differences inside the
// record and one-sided differences at its ends.
func (g *Generator) LoopResponse(reference []float64, p LoopParams) ([]float64, error) {
	if len(reference) < 2 {
		return nil, fmt.Errorf("loop response needs at least 2 reference samples: %d", len(reference))
	}
	if p.Width <= 0 {
		return nil, fmt.Errorf("loop width must be > 0: %f", p.Width)
	}
	dt := g.cfg.TimeIncrement
	if dt <= 0 {
		return nil, fmt.Errorf("loop time increment must be > 0: %f", dt)
	}

	h := make([]float64, len(reference))
	for i, v := range reference {
		h[i] = -v
	}
	b := p.Induction(h)

	n := len(b)
	out := make([]float64, n)
	out[0] = (b[1] - b[0]) / dt
	out[n-1] = (b[n-1] - b[n-2]) / dt
	for i := 1; i < n-1; i++ {
		out[i] = (b[i+1] - b[i-1]) / (2 * dt)
	}
	return out, nil
}
