package sinefit

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/algo-bhloop/internal/testutil"
)

func TestScenarioOf(t *testing.T) {
	tests := []struct {
		first float64
		want  Scenario
	}{
		{0, ScenarioPositiveStart},
		{1e-300, ScenarioPositiveStart},
		{-1e-300, ScenarioNegativeStart},
		{-3, ScenarioNegativeStart},
	}
	for _, tt := range tests {
		if got := ScenarioOf([]float64{tt.first, 1}); got != tt.want {
			t.Fatalf("ScenarioOf(%v) = %v, want %v", tt.first, got, tt.want)
		}
	}
}

func TestLocateVerticesReferenceExample(t *testing.T) {
	ref := testutil.Sinusoid(5, 1000, 0, 1e-6, 2000)

	v, err := LocateVertices(ref)
	if err != nil {
		t.Fatalf("LocateVertices() error = %v", err)
	}

	if v.Scenario != ScenarioPositiveStart {
		t.Fatalf("scenario = %v, want positive-start", v.Scenario)
	}
	if v.Start < 500 || v.Start > 501 {
		t.Fatalf("start = %d, want 500 or 501", v.Start)
	}
	if math.Abs(v.Negative.Mean-750) > 1 {
		t.Fatalf("negative vertex = %v, want ~750", v.Negative.Mean)
	}
	if math.Abs(v.Positive.Mean-1250) > 1 {
		t.Fatalf("positive vertex = %v, want ~1250", v.Positive.Mean)
	}
	if v.Positive.Index != int(v.Positive.Mean) || v.Negative.Index != int(v.Negative.Mean) {
		t.Fatalf("indices are not the truncated means: %+v", v)
	}
	if v.Positive.Count == 0 || v.Negative.Count == 0 {
		t.Fatalf("empty vertex sets: %+v", v)
	}
}

func TestLocateVerticesNegativeStartOrder(t *testing.T) {
	// phi = 4 rad starts negative; the positive crest is searched first.
	ref := testutil.Sinusoid(2, 50, 4, 1e-4, 1000)

	v, err := LocateVertices(ref)
	if err != nil {
		t.Fatalf("LocateVertices() error = %v", err)
	}
	if v.Scenario != ScenarioNegativeStart {
		t.Fatalf("scenario = %v, want negative-start", v.Scenario)
	}
	if v.Positive.Mean >= v.Negative.Mean {
		t.Fatalf("positive crest %v should precede negative crest %v", v.Positive.Mean, v.Negative.Mean)
	}
	if math.Abs(v.Negative.Mean-v.Positive.Mean-100) > 1 {
		t.Fatalf("crest spacing = %v, want ~100 samples", v.Negative.Mean-v.Positive.Mean)
	}
}

func TestLocateVerticesErrors(t *testing.T) {
	damped := make([]float64, 1000)
	for i := range damped {
		damped[i] = math.Exp(-float64(i)/200) * math.Sin(2*math.Pi*50*float64(i)*1e-4)
	}

	tests := []struct {
		name string
		ref  []float64
	}{
		{"empty", nil},
		{"all positive", testutil.DC(1, 100)},
		{"all negative", testutil.DC(-1, 100)},
		{"single crossing", append(testutil.DC(1, 50), testutil.DC(-1, 50)...)},
		{"damped", damped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LocateVertices(tt.ref)
			if !errors.Is(err, ErrEmptyVertexSet) {
				t.Fatalf("err = %v, want ErrEmptyVertexSet", err)
			}
		})
	}
}

func TestEstimateQuadrants(t *testing.T) {
	const (
		amp = 2.0
		f   = 50.0
		dt  = 1e-4
		n   = 1000
	)

	tests := []struct {
		name     string
		phase    float64
		scenario Scenario
	}{
		{"first quarter", 0.7, ScenarioPositiveStart},
		{"second quarter", 2.0, ScenarioPositiveStart},
		{"third quarter", 4.0, ScenarioNegativeStart},
		{"fourth quarter", 5.5, ScenarioNegativeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := testutil.Sinusoid(amp, f, tt.phase, dt, n)

			v, err := LocateVertices(ref)
			if err != nil {
				t.Fatalf("LocateVertices() error = %v", err)
			}
			if v.Scenario != tt.scenario {
				t.Fatalf("scenario = %v, want %v", v.Scenario, tt.scenario)
			}

			m, err := Estimate(ref, v, dt)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if m.Phase < 0 || m.Phase > 2*math.Pi {
				t.Fatalf("phase %v outside [0, 2pi]", m.Phase)
			}
			if math.Abs(m.Phase-tt.phase) > 0.05 {
				t.Fatalf("phase = %v, want ~%v", m.Phase, tt.phase)
			}
			testutil.RequireRelNear(t, "amplitude", m.Amplitude, amp, 0.01)
			testutil.RequireRelNear(t, "frequency", m.Frequency, f, 0.02)
		})
	}
}

func TestResolveQuadrantBoundaries(t *testing.T) {
	// A quarter sample of exactly zero stays in the first quadrant for
	// positive-start records and in the third for negative-start ones.
	if got := resolveQuadrant(ScenarioPositiveStart, 0.3, 0); got != 0.3 {
		t.Fatalf("positive-start, zero quarter = %v, want 0.3", got)
	}
	if got := resolveQuadrant(ScenarioNegativeStart, -0.3, 0); got != math.Pi+0.3 {
		t.Fatalf("negative-start, zero quarter = %v, want pi+0.3", got)
	}
	if got := resolveQuadrant(ScenarioNegativeStart, -0.3, 1e-12); got != 2*math.Pi-0.3 {
		t.Fatalf("negative-start, positive quarter = %v, want 2pi-0.3", got)
	}
	if got := resolveQuadrant(ScenarioPositiveStart, 0.3, -1e-12); got != math.Pi-0.3 {
		t.Fatalf("positive-start, negative quarter = %v, want pi-0.3", got)
	}
}

func TestEstimateDegenerate(t *testing.T) {
	ref := testutil.Sinusoid(1, 50, 0.7, 1e-4, 400)

	same := Vertices{
		Scenario: ScenarioPositiveStart,
		Positive: Vertex{Index: 10, Mean: 10, Count: 1},
		Negative: Vertex{Index: 10, Mean: 10, Count: 1},
	}
	if _, err := Estimate(ref, same, 1e-4); !errors.Is(err, ErrDegenerateCycle) {
		t.Fatalf("err = %v, want ErrDegenerateCycle", err)
	}

	v, err := LocateVertices(ref)
	if err != nil {
		t.Fatalf("LocateVertices() error = %v", err)
	}
	if _, err := Estimate(ref, v, 0); !errors.Is(err, ErrDegenerateCycle) {
		t.Fatalf("err = %v, want ErrDegenerateCycle for zero dt", err)
	}
}

func TestFitReferenceExample(t *testing.T) {
	const dt = 1e-6
	ref := testutil.Sinusoid(5, 1000, 0, dt, 2000)

	v, err := LocateVertices(ref)
	if err != nil {
		t.Fatalf("LocateVertices() error = %v", err)
	}
	seed, err := Estimate(ref, v, dt)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if math.Abs(seed.Phase) > 1e-9 {
		t.Fatalf("seed phase = %v, want 0", seed.Phase)
	}

	fit, err := Fit(ref, dt, seed, nil)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	testutil.RequireRelNear(t, "frequency", fit.Frequency, 1000, 1e-6)
	testutil.RequireRelNear(t, "amplitude", fit.Amplitude, 5, 1e-6)
	if math.Abs(fit.Phase) > 1e-6 {
		t.Fatalf("phase = %v, want 0", fit.Phase)
	}
	if fit.ResidualRMS > 1e-6 {
		t.Fatalf("residual RMS = %v, want ~0", fit.ResidualRMS)
	}
	if fit.RSquared < 0.999999 {
		t.Fatalf("R^2 = %v, want ~1", fit.RSquared)
	}
}

func TestFitRecoversAllQuadrants(t *testing.T) {
	const dt = 1e-4

	for _, phase := range []float64{0.7, 2.0, 4.0, 5.5} {
		ref := testutil.Sinusoid(2, 50, phase, dt, 1000)
		v, err := LocateVertices(ref)
		if err != nil {
			t.Fatalf("phase %v: LocateVertices() error = %v", phase, err)
		}
		seed, err := Estimate(ref, v, dt)
		if err != nil {
			t.Fatalf("phase %v: Estimate() error = %v", phase, err)
		}
		fit, err := Fit(ref, dt, seed, nil)
		if err != nil {
			t.Fatalf("phase %v: Fit() error = %v", phase, err)
		}

		testutil.RequireRelNear(t, "amplitude", fit.Amplitude, 2, 1e-3)
		testutil.RequireRelNear(t, "frequency", fit.Frequency, 50, 1e-3)
		if math.Abs(fit.Phase-phase) > 1e-3 {
			t.Fatalf("phase = %v, want %v", fit.Phase, phase)
		}
	}
}

func TestFitWithNoise(t *testing.T) {
	const dt = 1e-4
	clean := testutil.Sinusoid(2, 50, 0.7, dt, 1000)
	ref := testutil.AddNoise(clean, 11, 0.002)

	v, err := LocateVertices(ref)
	if err != nil {
		t.Fatalf("LocateVertices() error = %v", err)
	}
	seed, err := Estimate(ref, v, dt)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	fit, err := Fit(ref, dt, seed, nil)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	testutil.RequireRelNear(t, "frequency", fit.Frequency, 50, 1e-3)
	testutil.RequireRelNear(t, "amplitude", fit.Amplitude, 2, 1e-3)
	if fit.ResidualRMS > 0.002 {
		t.Fatalf("residual RMS = %v, want below noise amplitude", fit.ResidualRMS)
	}
}

func TestFitDeterministic(t *testing.T) {
	const dt = 1e-4
	ref := testutil.Sinusoid(2, 50, 4.0, dt, 1000)

	run := func() (Vertices, Model, FitResult) {
		v, err := LocateVertices(ref)
		if err != nil {
			t.Fatalf("LocateVertices() error = %v", err)
		}
		seed, err := Estimate(ref, v, dt)
		if err != nil {
			t.Fatalf("Estimate() error = %v", err)
		}
		fit, err := Fit(ref, dt, seed, nil)
		if err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		return v, seed, fit
	}

	v1, s1, f1 := run()
	v2, s2, f2 := run()

	if diff := cmp.Diff(v1, v2); diff != "" {
		t.Fatalf("vertices differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Fatalf("seed differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(f1, f2); diff != "" {
		t.Fatalf("fit differs (-first +second):\n%s", diff)
	}
}

func TestFitFailures(t *testing.T) {
	const dt = 1e-4
	ref := testutil.Sinusoid(2, 50, 0.7, dt, 1000)

	tests := []struct {
		name     string
		seed     Model
		settings *FitSettings
	}{
		{"singular seed", Model{Amplitude: 0, Frequency: 50, Phase: 0.7}, nil},
		{"budget", Model{Amplitude: 1, Frequency: 47, Phase: 0.2}, &FitSettings{Iterations: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(ref, dt, tt.seed, tt.settings)
			if !errors.Is(err, ErrFitDidNotConverge) {
				t.Fatalf("err = %v, want ErrFitDidNotConverge", err)
			}
		})
	}

	if _, err := Fit(ref[:2], dt, Model{1, 50, 0}, nil); !errors.Is(err, ErrFitDidNotConverge) {
		t.Fatalf("short record: err = %v, want ErrFitDidNotConverge", err)
	}
}

func TestModelHelpers(t *testing.T) {
	m := Model{Amplitude: 2, Frequency: 250, Phase: math.Pi / 2}
	if got := m.At(0); math.Abs(got-2) > 1e-12 {
		t.Fatalf("At(0) = %v, want 2", got)
	}
	if got := m.Period(); got != 0.004 {
		t.Fatalf("Period() = %v, want 0.004", got)
	}
	if got := m.PhaseDegrees(); math.Abs(got-90) > 1e-12 {
		t.Fatalf("PhaseDegrees() = %v, want 90", got)
	}

	dst := make([]float64, 3)
	m.Sample(dst, 1e-3)
	testutil.RequireSliceNearlyEqual(t, dst, []float64{2, 0, -2}, 1e-12)
}
