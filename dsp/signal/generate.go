// Package signal synthesizes deterministic test records for field-scan
// analysis: sinusoidal excitation, white noise and a hysteretic response.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-bhloop/dsp/core"
)

// Generator creates deterministic signals from a shared sampling configuration.
type Generator struct {
	cfg  core.SamplingConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.SamplingOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.SamplingOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplySamplingOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator sampling configuration.
func (g *Generator) Config() core.SamplingConfig {
	return g.cfg
}

// Sine generates amplitude*sin(2*pi*freqHz*i*dt + phase).
func (g *Generator) Sine(freqHz, amplitude, phase float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	if g.cfg.TimeIncrement <= 0 {
		return nil, fmt.Errorf("sine time increment must be > 0: %f", g.cfg.TimeIncrement)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz * g.cfg.TimeIncrement
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i)+phase)
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}
