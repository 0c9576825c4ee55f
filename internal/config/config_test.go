package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-bhloop/measure/bhloop"
)

func TestDefaultRequiresTimeIncrement(t *testing.T) {
	run := Default()
	assert.Zero(t, run.TimeIncrement)

	err := run.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, bhloop.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "time increment")

	run.TimeIncrement = 1e-6
	require.NoError(t, run.Validate())
	assert.Equal(t, 1.0, run.BScale)
	assert.Equal(t, 1.0, run.HScale)
	assert.Equal(t, 5, run.WindowSize)
	assert.True(t, run.Plots)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	run, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), run)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := `
data_dir: /data/scans
name: sample-07
time_increment: 2.0e-6
b_scale: 0.012
window_size: 9
spectral_check: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	run, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/scans", run.DataDir)
	assert.Equal(t, 2e-6, run.TimeIncrement)
	assert.Equal(t, 0.012, run.BScale)
	assert.Equal(t, 1.0, run.HScale, "unset keys keep defaults")
	assert.Equal(t, 9, run.WindowSize)
	assert.True(t, run.SpectralCheck)

	cfg := run.Analysis()
	assert.Equal(t, 2e-6, cfg.TimeIncrement)
	assert.Equal(t, 9, cfg.WindowSize)

	p, err := run.RecordPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/scans", "sample-07.csv"), p)
	assert.Equal(t, "sample-07", run.BaseName())
	assert.Equal(t, "/data/scans", run.Output())
}

func TestParseErrors(t *testing.T) {
	for _, body := range []string{"windw_size: 3\n", "window_size: many\n"} {
		_, err := Parse([]byte(body))
		assert.ErrorIs(t, err, ErrInvalid, body)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing dt", "name: sample-07\nwindow_size: 5\n"},
		{"zero window", "time_increment: 1e-6\nwindow_size: 0\n"},
		{"negative dt", "time_increment: -1\n"},
		{"zero scale", "time_increment: 1e-6\nh_scale: 0\n"},
		{"negative iterations", "time_increment: 1e-6\nfit_iterations: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := Parse([]byte(tt.body))
			require.NoError(t, err)
			assert.ErrorIs(t, run.Validate(), ErrInvalid)
		})
	}

	run, err := Parse([]byte("time_increment: 1e-6\nwindow_size: 0\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, run.Validate(), bhloop.ErrInvalidWindow)
}

func TestRecordPath(t *testing.T) {
	run := Default()
	_, err := run.RecordPath()
	assert.ErrorIs(t, err, ErrInvalid)

	run.DataDir = "captures"
	run.Name = "loop.txt"
	p, err := run.RecordPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("captures", "loop.txt"), p)
	assert.Equal(t, "loop", run.BaseName())

	run.OutputDir = "out"
	assert.Equal(t, "out", run.Output())
}
