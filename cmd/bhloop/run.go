package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-bhloop/internal/config"
	"github.com/cwbudde/algo-bhloop/internal/dataio"
	"github.com/cwbudde/algo-bhloop/internal/metrics"
	"github.com/cwbudde/algo-bhloop/internal/render"
	"github.com/cwbudde/algo-bhloop/internal/store"
	"github.com/cwbudde/algo-bhloop/measure/bhloop"
)

// session carries the sinks shared by every run of one command.
type session struct {
	logger  zerolog.Logger
	store   *store.Store
	metrics *metrics.Registry
}

// outcome is what one run produced.
type outcome struct {
	Source string
	Result *bhloop.Result
	Files  []string
	Err    error
}

// analyze reads the record of run, runs the pipeline and writes results to
// outDir. The run is recorded in the history store and metrics when those
// are set, whether it succeeded or not.
func (s *session) analyze(ctx context.Context, run config.Run, outDir string) outcome {
	start := time.Now()

	source, err := run.RecordPath()
	if err != nil {
		return outcome{Source: run.Name, Err: err}
	}
	logger := s.logger.With().Str("source", source).Logger()

	var (
		res     *bhloop.Result
		samples int
	)
	rec, err := dataio.ReadRecordFile(source)
	if err == nil {
		samples = rec.Len()
		opts := []bhloop.Option{
			bhloop.WithLogger(logger),
			bhloop.WithFitSettings(run.FitSettings()),
		}
		if run.SpectralCheck {
			opts = append(opts, bhloop.WithSpectralCheck(run.SpectralTolerance))
		}
		res, err = bhloop.Analyze(rec, run.Analysis(), opts...)
	}

	if s.metrics != nil {
		s.metrics.Observe(run.BaseName(), time.Since(start), res, err)
	}
	if s.store != nil {
		if serr := s.store.Save(ctx, store.NewRun(source, samples, res, err, time.Now())); serr != nil {
			logger.Warn().Err(serr).Msg("failed to record run history")
		}
	}
	if err != nil {
		logger.Error().Err(err).Str("stage", string(bhloop.StageOf(err))).Msg("analysis failed")
		return outcome{Source: source, Err: err}
	}

	files, err := dataio.WriteResults(outDir, source, res)
	if err != nil {
		return outcome{Source: source, Result: res, Files: files, Err: err}
	}
	if run.Plots {
		plots, err := render.WriteAll(outDir, rec.Reference(), res)
		files = append(files, plots...)
		if err != nil {
			return outcome{Source: source, Result: res, Files: files, Err: err}
		}
	}

	logger.Info().
		Float64("amplitude", res.Fit.Amplitude).
		Float64("frequency", res.Fit.Frequency).
		Float64("phase", res.Fit.Phase).
		Int("files", len(files)).
		Msg("analysis complete")

	return outcome{Source: source, Result: res, Files: files}
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Directory holding the record")
	cmd.Flags().String("out", "", "Output directory (default: record directory)")
	cmd.Flags().Float64("dt", 0, "Time increment between samples in seconds")
	cmd.Flags().Float64("bscale", 0, "Induction scale factor")
	cmd.Flags().Float64("hscale", 0, "Field scale factor")
	cmd.Flags().Int("window", 0, "Moving average window size")
	cmd.Flags().Int("iterations", 0, "Sinusoid fit iteration budget")
	cmd.Flags().Bool("spectral", false, "Cross-check the fitted frequency against the FFT peak")
	cmd.Flags().Float64("spectral-tol", 0, "Relative spectral disagreement that triggers a warning")
	cmd.Flags().Bool("plots", true, "Write PNG plots")
	cmd.Flags().String("db", "", "SQLite run history database")
}

// applyAnalysisFlags overrides run with every flag set on the command line.
func applyAnalysisFlags(cmd *cobra.Command, run *config.Run) error {
	fs := cmd.Flags()

	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = apply()
		}
	}

	set("dir", func() (e error) { run.DataDir, e = fs.GetString("dir"); return })
	set("out", func() (e error) { run.OutputDir, e = fs.GetString("out"); return })
	set("dt", func() (e error) { run.TimeIncrement, e = fs.GetFloat64("dt"); return })
	set("bscale", func() (e error) { run.BScale, e = fs.GetFloat64("bscale"); return })
	set("hscale", func() (e error) { run.HScale, e = fs.GetFloat64("hscale"); return })
	set("window", func() (e error) { run.WindowSize, e = fs.GetInt("window"); return })
	set("iterations", func() (e error) { run.FitIterations, e = fs.GetInt("iterations"); return })
	set("spectral", func() (e error) { run.SpectralCheck, e = fs.GetBool("spectral"); return })
	set("spectral-tol", func() (e error) { run.SpectralTolerance, e = fs.GetFloat64("spectral-tol"); return })
	set("plots", func() (e error) { run.Plots, e = fs.GetBool("plots"); return })
	set("db", func() (e error) { run.HistoryDB, e = fs.GetString("db"); return })
	if err != nil {
		return err
	}

	return run.Validate()
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return st, nil
}
