package bhloop

import (
	"fmt"

	"github.com/cwbudde/algo-bhloop/dsp/core"
)

const (
	DefaultBScale     = 1.0
	DefaultHScale     = 1.0
	DefaultWindowSize = 5
)

// Config holds the scalar parameters of one analysis run. It is passed by
// value and never modified by the pipeline.
type Config struct {
	core.SamplingConfig

	// BScale converts integrated response volt-seconds to tesla.
	BScale float64
	// HScale converts reference volts to A/m.
	HScale float64
	// WindowSize is the moving-average length applied to both branches.
	WindowSize int
}

// DefaultConfig returns unit scales, a window of 5 samples and the default
// time increment.
func DefaultConfig() Config {
	return Config{
		SamplingConfig: core.DefaultSamplingConfig(),
		BScale:         DefaultBScale,
		HScale:         DefaultHScale,
		WindowSize:     DefaultWindowSize,
	}
}

// Validate reports whether the configuration can drive a run.
func (c Config) Validate() error {
	if !(c.TimeIncrement > 0) || !core.IsFinite(c.TimeIncrement) {
		return fmt.Errorf("%w: time increment %v", ErrInvalidConfig, c.TimeIncrement)
	}
	if c.BScale == 0 || !core.IsFinite(c.BScale) {
		return fmt.Errorf("%w: B scale %v", ErrInvalidConfig, c.BScale)
	}
	if c.HScale == 0 || !core.IsFinite(c.HScale) {
		return fmt.Errorf("%w: H scale %v", ErrInvalidConfig, c.HScale)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window %d", ErrInvalidWindow, c.WindowSize)
	}
	return nil
}
