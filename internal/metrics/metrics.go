// Package metrics collects per-run Prometheus metrics for batch analyses.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-bhloop/measure/bhloop"
)

// Registry holds the analysis metrics on a private Prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	Runs         *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	FitFrequency *prometheus.GaugeVec
	FitAmplitude *prometheus.GaugeVec
	FitResidual  *prometheus.GaugeVec
	LoopSamples  *prometheus.GaugeVec
}

// NewRegistry creates and registers all metrics.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bhloop_runs_total",
				Help: "Analysis runs by status and failing stage",
			},
			[]string{"status", "stage"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bhloop_run_duration_seconds",
				Help:    "Wall time of one analysis run",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"status"},
		),

		FitFrequency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bhloop_fit_frequency_hertz",
				Help: "Fitted excitation frequency per source",
			},
			[]string{"source"},
		),

		FitAmplitude: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bhloop_fit_amplitude",
				Help: "Fitted excitation amplitude per source",
			},
			[]string{"source"},
		),

		FitResidual: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bhloop_fit_residual_rms",
				Help: "RMS residual of the sinusoid fit per source",
			},
			[]string{"source"},
		),

		LoopSamples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bhloop_branch_samples",
				Help: "Smoothed branch length per source and branch",
			},
			[]string{"source", "branch"},
		),
	}

	r.reg.MustRegister(r.Runs, r.RunDuration, r.FitFrequency, r.FitAmplitude, r.FitResidual, r.LoopSamples)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Observe records one run of source that took elapsed and produced res or
// failed with err.
func (r *Registry) Observe(source string, elapsed time.Duration, res *bhloop.Result, err error) {
	if err != nil {
		r.Runs.WithLabelValues("failed", string(bhloop.StageOf(err))).Inc()
		r.RunDuration.WithLabelValues("failed").Observe(elapsed.Seconds())
		return
	}

	r.Runs.WithLabelValues("ok", "").Inc()
	r.RunDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
	if res == nil {
		return
	}

	r.FitFrequency.WithLabelValues(source).Set(res.Fit.Frequency)
	r.FitAmplitude.WithLabelValues(source).Set(res.Fit.Amplitude)
	r.FitResidual.WithLabelValues(source).Set(res.Fit.ResidualRMS)
	r.LoopSamples.WithLabelValues(source, "forward").Set(float64(res.Smoothed.Forward.Len()))
	r.LoopSamples.WithLabelValues(source, "reverse").Set(float64(res.Smoothed.Reverse.Len()))
}

// WriteTextfile writes the metrics in the node-exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
