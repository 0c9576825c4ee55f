package bhloop

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-bhloop/dsp/integrate"
	"github.com/cwbudde/algo-bhloop/dsp/smooth"
)

// Branch is one half-cycle of the loop as parallel H and B sequences.
type Branch struct {
	H []float64
	B []float64
}

// Len returns the number of (H, B) pairs.
func (b Branch) Len() int {
	return len(b.H)
}

// Branches holds the forward and reverse half-cycles.
type Branches struct {
	Forward Branch
	Reverse Branch
}

// IntegrateBranch integrates response over [start, stop) with the trapezoid
// rule, restarting at zero on start, and pairs it with the raw reference
// samples of the same range.
func IntegrateBranch(r *Record, start, stop int, dt float64) (Branch, error) {
	b, err := integrate.CumulativeTrapezoidRange(r.response, start, stop, dt)
	if err != nil {
		return Branch{}, err
	}

	h := make([]float64, stop-start)
	copy(h, r.reference[start:stop])

	return Branch{H: h, B: b}, nil
}

// IntegrateBranches builds the forward branch over [Index1, Index2) and the
// reverse branch over [Index2, Index3), then applies the calibration:
// B is multiplied by BScale and H by -HScale.
func IntegrateBranches(r *Record, in Instants, cfg Config) (Branches, error) {
	fwd, err := IntegrateBranch(r, in.Index1, in.Index2, cfg.TimeIncrement)
	if err != nil {
		return Branches{}, fmt.Errorf("forward branch: %w", err)
	}
	rev, err := IntegrateBranch(r, in.Index2, in.Index3, cfg.TimeIncrement)
	if err != nil {
		return Branches{}, fmt.Errorf("reverse branch: %w", err)
	}

	for _, b := range []Branch{fwd, rev} {
		floats.Scale(cfg.BScale, b.B)
		floats.Scale(-cfg.HScale, b.H)
	}

	return Branches{Forward: fwd, Reverse: rev}, nil
}

// Curvature is the side of its chord a branch bows to.
type Curvature int

const (
	// CurvatureDown: the chord lies on or above the branch midpoint.
	CurvatureDown Curvature = iota + 1
	// CurvatureUp: the chord lies below the branch midpoint.
	CurvatureUp
)

func (c Curvature) String() string {
	switch c {
	case CurvatureDown:
		return "down"
	case CurvatureUp:
		return "up"
	default:
		return fmt.Sprintf("Curvature(%d)", int(c))
	}
}

// Classify compares the chord through the first and last points, evaluated
// at H[len/2], with B[len/2]. A chord value >= B[len/2] is CurvatureDown.
func Classify(b Branch) (Curvature, error) {
	n := b.Len()
	if n < 2 || len(b.B) != n {
		return 0, fmt.Errorf("%w: branch of %d/%d samples", ErrDegenerateCycle, len(b.H), len(b.B))
	}

	h0, hl := b.H[0], b.H[n-1]
	if h0 == hl {
		return 0, fmt.Errorf("%w: branch endpoints share H=%v", ErrDegenerateCycle, h0)
	}

	slope := (b.B[n-1] - b.B[0]) / (hl - h0)
	intercept := b.B[0] - slope*h0

	m := n / 2
	if intercept+slope*b.H[m] >= b.B[m] {
		return CurvatureDown, nil
	}
	return CurvatureUp, nil
}

// Center classifies b and shifts B by half the endpoint gap, upwards for
// CurvatureUp and downwards for CurvatureDown. B is modified in place.
func (b Branch) Center() (Curvature, error) {
	c, err := Classify(b)
	if err != nil {
		return 0, err
	}

	shift := math.Abs(b.B[0]-b.B[b.Len()-1]) / 2
	if c == CurvatureDown {
		shift = -shift
	}
	floats.AddConst(shift, b.B)

	return c, nil
}

// Smooth returns the moving average of both sequences of b.
func (b Branch) Smooth(window int) (Branch, error) {
	h, err := smooth.MovingAverage(b.H, window)
	if err != nil {
		return Branch{}, err
	}
	bb, err := smooth.MovingAverage(b.B, window)
	if err != nil {
		return Branch{}, err
	}
	return Branch{H: h, B: bb}, nil
}

// SmoothBranches smooths H and B of both branches independently.
func SmoothBranches(br Branches, window int) (Branches, error) {
	fwd, err := br.Forward.Smooth(window)
	if err != nil {
		return Branches{}, fmt.Errorf("forward branch: %w", err)
	}
	rev, err := br.Reverse.Smooth(window)
	if err != nil {
		return Branches{}, fmt.Errorf("reverse branch: %w", err)
	}
	return Branches{Forward: fwd, Reverse: rev}, nil
}
