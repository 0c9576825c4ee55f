package bhloop

import (
	"github.com/cwbudde/algo-bhloop/measure/sinefit"
	timestats "github.com/cwbudde/algo-bhloop/stats/time"
)

// Result holds every artifact of a successful run.
type Result struct {
	Config   Config
	Vertices sinefit.Vertices
	// Estimate is the heuristic seed, Fit the least-squares optimum.
	Estimate sinefit.Model
	Fit      sinefit.FitResult
	Instants Instants

	ForwardCurvature Curvature
	ReverseCurvature Curvature

	// Centered holds the calibrated, centered branches before smoothing.
	Centered Branches
	// Smoothed is the final output.
	Smoothed Branches

	// Response and Reference describe the raw channels. ResponseDrift is
	// the induction the response offset alone integrates to over the record.
	Response      timestats.Stats
	Reference     timestats.Stats
	ResponseDrift float64

	// SpectralFrequency is the FFT peak of the reference, or 0 when the
	// spectral check is disabled or failed.
	SpectralFrequency float64
}

// Report is the flat, serializable summary of a run.
type Report struct {
	TimeIncrement float64 `json:"time_increment"`
	BScale        float64 `json:"b_scale"`
	HScale        float64 `json:"h_scale"`
	WindowSize    int     `json:"window_size"`

	Scenario string `json:"scenario"`

	EstimatedAmplitude float64 `json:"estimated_amplitude"`
	EstimatedFrequency float64 `json:"estimated_frequency"`
	EstimatedPhase     float64 `json:"estimated_phase"`

	Amplitude    float64 `json:"amplitude"`
	Frequency    float64 `json:"frequency"`
	PhaseRadians float64 `json:"phase_rad"`
	PhaseDegrees float64 `json:"phase_deg"`
	Period       float64 `json:"period"`

	FitIterations int     `json:"fit_iterations"`
	ResidualRMS   float64 `json:"residual_rms"`
	RSquared      float64 `json:"r_squared"`

	SpectralFrequency float64 `json:"spectral_frequency,omitempty"`

	ResponseDC             float64 `json:"response_dc"`
	ResponseRMS            float64 `json:"response_rms"`
	ResponseDrift          float64 `json:"response_drift"`
	ReferencePeak          float64 `json:"reference_peak"`
	ReferenceZeroCrossings int     `json:"reference_zero_crossings"`

	T1     float64 `json:"t1"`
	T2     float64 `json:"t2"`
	T3     float64 `json:"t3"`
	Index1 int     `json:"refindex1"`
	Index2 int     `json:"refindex2"`
	Index3 int     `json:"refindex3"`

	// HalfPeriod is T2 - T1, the span of the forward branch.
	HalfPeriod float64 `json:"half_period"`

	ForwardCurvature string `json:"forward_curvature"`
	ReverseCurvature string `json:"reverse_curvature"`

	ForwardSamples int `json:"forward_samples"`
	ReverseSamples int `json:"reverse_samples"`
}

// Report flattens r.
func (r *Result) Report() Report {
	return Report{
		TimeIncrement: r.Config.TimeIncrement,
		BScale:        r.Config.BScale,
		HScale:        r.Config.HScale,
		WindowSize:    r.Config.WindowSize,

		Scenario: r.Vertices.Scenario.String(),

		EstimatedAmplitude: r.Estimate.Amplitude,
		EstimatedFrequency: r.Estimate.Frequency,
		EstimatedPhase:     r.Estimate.Phase,

		Amplitude:    r.Fit.Amplitude,
		Frequency:    r.Fit.Frequency,
		PhaseRadians: r.Fit.Phase,
		PhaseDegrees: r.Fit.PhaseDegrees(),
		Period:       r.Fit.Period(),

		FitIterations: r.Fit.Iterations,
		ResidualRMS:   r.Fit.ResidualRMS,
		RSquared:      r.Fit.RSquared,

		SpectralFrequency: r.SpectralFrequency,

		ResponseDC:             r.Response.DC,
		ResponseRMS:            r.Response.RMS,
		ResponseDrift:          r.ResponseDrift,
		ReferencePeak:          r.Reference.Peak,
		ReferenceZeroCrossings: r.Reference.ZeroCrossings,

		T1:     r.Instants.T1,
		T2:     r.Instants.T2,
		T3:     r.Instants.T3,
		Index1: r.Instants.Index1,
		Index2: r.Instants.Index2,
		Index3: r.Instants.Index3,

		HalfPeriod: r.Instants.HalfPeriod(),

		ForwardCurvature: r.ForwardCurvature.String(),
		ReverseCurvature: r.ReverseCurvature.String(),

		ForwardSamples: r.Smoothed.Forward.Len(),
		ReverseSamples: r.Smoothed.Reverse.Len(),
	}
}
