// Package config loads analysis run files.
//
// A run file is YAML:
//
//	data_dir: ./captures
//	name: sample-07
//	time_increment: 1e-6
//	b_scale: 0.012
//	h_scale: 250
//	window_size: 5
//
// Keys that are left out keep their defaults; unknown keys are rejected.
// time_increment has no default: a run without one fails Validate.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-bhloop/dsp/core"
	"github.com/cwbudde/algo-bhloop/measure/bhloop"
	"github.com/cwbudde/algo-bhloop/measure/sinefit"
)

// ErrInvalid is returned for run files that cannot drive an analysis.
var ErrInvalid = errors.New("config: invalid run file")

// Run is the configuration of one analysis.
type Run struct {
	// DataDir and Name locate the record at DataDir/Name.csv.
	DataDir string `yaml:"data_dir"`
	Name    string `yaml:"name"`
	// OutputDir receives the report, branch table and plots. Empty means DataDir.
	OutputDir string `yaml:"output_dir"`

	TimeIncrement float64 `yaml:"time_increment"`
	BScale        float64 `yaml:"b_scale"`
	HScale        float64 `yaml:"h_scale"`
	WindowSize    int     `yaml:"window_size"`

	FitIterations     int     `yaml:"fit_iterations"`
	SpectralCheck     bool    `yaml:"spectral_check"`
	SpectralTolerance float64 `yaml:"spectral_tolerance"`

	Plots     bool   `yaml:"plots"`
	HistoryDB string `yaml:"history_db"`
}

// Default returns a run with unit scales, a window of 5 and plots enabled.
// TimeIncrement is left zero; it must come from the run file or a flag.
func Default() Run {
	return Run{
		DataDir:           ".",
		BScale:            bhloop.DefaultBScale,
		HScale:            bhloop.DefaultHScale,
		WindowSize:        bhloop.DefaultWindowSize,
		FitIterations:     sinefit.DefaultFitSettings().Iterations,
		SpectralTolerance: bhloop.DefaultSpectralTolerance,
		Plots:             true,
	}
}

// Load reads a run file over the defaults.
func Load(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("read run file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a run file over the defaults. Values are not checked here
// so that command-line overrides can complete the run; call Validate once
// they are applied.
func Parse(data []byte) (Run, error) {
	run := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&run); err != nil && !errors.Is(err, io.EOF) {
		return Run{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return run, nil
}

// Validate checks the analysis parameters. Name may be empty; callers that
// need a record path check it themselves.
func (r Run) Validate() error {
	if err := r.Analysis().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if r.FitIterations < 0 {
		return fmt.Errorf("%w: fit_iterations %d", ErrInvalid, r.FitIterations)
	}
	if r.SpectralTolerance < 0 {
		return fmt.Errorf("%w: spectral_tolerance %v", ErrInvalid, r.SpectralTolerance)
	}
	return nil
}

// Analysis returns the pipeline configuration.
func (r Run) Analysis() bhloop.Config {
	return bhloop.Config{
		SamplingConfig: core.SamplingConfig{TimeIncrement: r.TimeIncrement},
		BScale:         r.BScale,
		HScale:         r.HScale,
		WindowSize:     r.WindowSize,
	}
}

// FitSettings returns the sinusoid fit settings.
func (r Run) FitSettings() sinefit.FitSettings {
	return sinefit.FitSettings{Iterations: r.FitIterations}
}

// RecordPath returns DataDir/Name, adding .csv when Name has no extension.
func (r Run) RecordPath() (string, error) {
	if strings.TrimSpace(r.Name) == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalid)
	}
	name := r.Name
	if filepath.Ext(name) == "" {
		name += ".csv"
	}
	return filepath.Join(r.DataDir, name), nil
}

// BaseName returns Name without directory or extension.
func (r Run) BaseName() string {
	base := filepath.Base(r.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Output returns the directory that receives results.
func (r Run) Output() string {
	if r.OutputDir != "" {
		return r.OutputDir
	}
	return r.DataDir
}
