package bhloop

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-bhloop/dsp/spectrum"
	"github.com/cwbudde/algo-bhloop/measure/sinefit"
	timestats "github.com/cwbudde/algo-bhloop/stats/time"
)

// DefaultSpectralTolerance is the relative disagreement between the fitted
// and the FFT peak frequency above which a warning is logged.
const DefaultSpectralTolerance = 0.05

// Analyzer runs the loop-extraction pipeline with a fixed configuration.
type Analyzer struct {
	cfg       Config
	logger    zerolog.Logger
	fit       *sinefit.FitSettings
	spectral  bool
	tolerance float64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger receiving per-stage debug events. The default
// discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithFitSettings overrides the sinusoid fit settings.
func WithFitSettings(s sinefit.FitSettings) Option {
	return func(a *Analyzer) {
		a.fit = &s
	}
}

// WithSpectralCheck enables an FFT estimate of the reference frequency that
// is reported next to the fit. A relative disagreement above tolerance is
// logged as a warning; it never fails the run. Non-positive tolerances
// select DefaultSpectralTolerance.
func WithSpectralCheck(tolerance float64) Option {
	return func(a *Analyzer) {
		a.spectral = true
		if tolerance > 0 {
			a.tolerance = tolerance
		} else {
			a.tolerance = DefaultSpectralTolerance
		}
	}
}

// NewAnalyzer validates cfg and returns an Analyzer.
func NewAnalyzer(cfg Config, opts ...Option) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, stageError(StageInput, err)
	}

	a := &Analyzer{
		cfg:       cfg,
		logger:    zerolog.Nop(),
		tolerance: DefaultSpectralTolerance,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze is a one-shot run of the pipeline on r.
func Analyze(r *Record, cfg Config, opts ...Option) (*Result, error) {
	a, err := NewAnalyzer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return a.Run(r)
}

// Run extracts the loop from r. The first failing stage aborts the run and
// its error is returned as an *Error; no partial result is returned.
func (a *Analyzer) Run(r *Record) (*Result, error) {
	if r == nil || r.Len() < MinRecordLen {
		return nil, stageError(StageInput, ErrMalformedInput)
	}

	dt := a.cfg.TimeIncrement
	log := a.logger

	respStats := timestats.Calculate(r.response)
	refStats := timestats.Calculate(r.reference)
	log.Debug().
		Int("samples", r.Len()).
		Float64("response_dc", respStats.DC).
		Float64("response_rms", respStats.RMS).
		Float64("reference_peak", refStats.Peak).
		Int("reference_zero_crossings", refStats.ZeroCrossings).
		Msg("record statistics")

	v, err := sinefit.LocateVertices(r.reference)
	if err != nil {
		return nil, stageError(StageLocate, err)
	}
	log.Debug().
		Stringer("scenario", v.Scenario).
		Int("start", v.Start).
		Float64("peak", v.Peak).
		Int("positive_vertex", v.Positive.Index).
		Int("negative_vertex", v.Negative.Index).
		Msg("vertices located")

	seed, err := sinefit.Estimate(r.reference, v, dt)
	if err != nil {
		return nil, stageError(StageEstimate, err)
	}
	log.Debug().
		Float64("amplitude", seed.Amplitude).
		Float64("frequency", seed.Frequency).
		Float64("phase", seed.Phase).
		Msg("sinusoid estimated")

	fit, err := sinefit.Fit(r.reference, dt, seed, a.fit)
	if err != nil {
		return nil, stageError(StageFit, err)
	}
	log.Debug().
		Float64("amplitude", fit.Amplitude).
		Float64("frequency", fit.Frequency).
		Float64("phase", fit.Phase).
		Int("iterations", fit.Iterations).
		Str("stop", fit.StopReason).
		Float64("residual_rms", fit.ResidualRMS).
		Msg("sinusoid fitted")

	res := &Result{
		Config:   a.cfg,
		Vertices: v,
		Estimate: seed,
		Fit:      fit,

		Response:      respStats,
		Reference:     refStats,
		ResponseDrift: timestats.Drift(r.response, dt),
	}

	if a.spectral {
		res.SpectralFrequency = a.spectralCheck(r.reference, fit.Frequency)
	}

	in, err := ComputeInstants(fit.Model, v.Scenario, dt, r.Len())
	if err != nil {
		return nil, stageError(StageInstants, err)
	}
	res.Instants = in
	log.Debug().
		Float64("t1", in.T1).Float64("t2", in.T2).Float64("t3", in.T3).
		Int("index1", in.Index1).Int("index2", in.Index2).Int("index3", in.Index3).
		Msg("reference instants")

	br, err := IntegrateBranches(r, in, a.cfg)
	if err != nil {
		return nil, stageError(StageIntegrate, err)
	}

	if res.ForwardCurvature, err = br.Forward.Center(); err != nil {
		return nil, stageError(StageNormalize, err)
	}
	if res.ReverseCurvature, err = br.Reverse.Center(); err != nil {
		return nil, stageError(StageNormalize, err)
	}
	res.Centered = br
	log.Debug().
		Stringer("forward", res.ForwardCurvature).
		Stringer("reverse", res.ReverseCurvature).
		Msg("branches centered")

	if res.Smoothed, err = SmoothBranches(br, a.cfg.WindowSize); err != nil {
		return nil, stageError(StageSmooth, err)
	}

	return res, nil
}

func (a *Analyzer) spectralCheck(reference []float64, fitted float64) float64 {
	f, err := spectrum.PeakFrequency(reference, a.cfg.SampleRate())
	if err != nil {
		a.logger.Warn().Err(err).Msg("spectral frequency check failed")
		return 0
	}

	if rel := math.Abs(f-fitted) / fitted; rel > a.tolerance {
		a.logger.Warn().
			Float64("fitted", fitted).
			Float64("spectral", f).
			Float64("relative_error", rel).
			Msg("fitted frequency disagrees with spectral peak")
	}
	return f
}
