package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-bhloop/dsp/core"
	"github.com/cwbudde/algo-bhloop/dsp/signal"
	"github.com/cwbudde/algo-bhloop/internal/config"
	"github.com/cwbudde/algo-bhloop/internal/dataio"
	"github.com/cwbudde/algo-bhloop/measure/bhloop"
)

func newSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic capture of a hysteretic sample",
		Long: `Synthesize a two-column capture: a sinusoidal reference and the dB/dt
response of a tanh hysteresis loop driven by it, with optional white noise
on the response. With --run-file a matching run file is written too.`,
		Args: cobra.NoArgs,
		RunE: runSynth,
	}

	defaults := signal.DefaultLoopParams()
	cmd.Flags().String("out", "record.csv", "Output record path")
	cmd.Flags().String("run-file", "", "Also write a run file for the record")
	cmd.Flags().Float64("dt", core.DefaultSamplingConfig().TimeIncrement, "Time increment in seconds")
	cmd.Flags().Int("samples", 2000, "Number of samples")
	cmd.Flags().Float64("freq", 1000, "Reference frequency in Hz")
	cmd.Flags().Float64("amp", 5, "Reference amplitude")
	cmd.Flags().Float64("phase", 0, "Reference phase in radians")
	cmd.Flags().Float64("saturation", defaults.Saturation, "Loop saturation induction")
	cmd.Flags().Float64("coercivity", 1.5, "Loop coercive field")
	cmd.Flags().Float64("width", 0.75, "Loop transition width")
	cmd.Flags().Float64("noise", 0, "Peak white noise added to the response")
	cmd.Flags().Int64("seed", 1, "Noise seed")

	return cmd
}

type synthParams struct {
	dt, freq, amp, phase float64
	samples              int
	loop                 signal.LoopParams
	noise                float64
	seed                 int64
}

func synthFlags(cmd *cobra.Command) (synthParams, error) {
	fs := cmd.Flags()
	var (
		p    synthParams
		errs []error
	)
	get := func(name string) float64 {
		v, err := fs.GetFloat64(name)
		errs = append(errs, err)
		return v
	}

	p.dt = get("dt")
	p.freq = get("freq")
	p.amp = get("amp")
	p.phase = get("phase")
	p.loop.Saturation = get("saturation")
	p.loop.Coercivity = get("coercivity")
	p.loop.Width = get("width")
	p.noise = get("noise")

	var err error
	p.samples, err = fs.GetInt("samples")
	errs = append(errs, err)
	p.seed, err = fs.GetInt64("seed")
	errs = append(errs, err)

	return p, errors.Join(errs...)
}

// synthesize builds the record described by p.
func synthesize(p synthParams) (*bhloop.Record, error) {
	g := signal.NewGeneratorWithOptions(
		[]core.SamplingOption{core.WithTimeIncrement(p.dt)},
		signal.WithSeed(p.seed),
	)

	reference, err := g.Sine(p.freq, p.amp, p.phase, p.samples)
	if err != nil {
		return nil, err
	}
	response, err := g.LoopResponse(reference, p.loop)
	if err != nil {
		return nil, err
	}
	if p.noise > 0 {
		noise, err := g.WhiteNoise(p.noise, p.samples)
		if err != nil {
			return nil, err
		}
		for i := range response {
			response[i] += noise[i]
		}
	}

	return bhloop.NewRecord(response, reference)
}

func runSynth(cmd *cobra.Command, _ []string) error {
	p, err := synthFlags(cmd)
	if err != nil {
		return err
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	runFile, err := cmd.Flags().GetString("run-file")
	if err != nil {
		return err
	}

	rec, err := synthesize(p)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure dir: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := dataio.WriteRecord(f, rec); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d samples)\n", out, rec.Len())

	if runFile == "" {
		return nil
	}
	return writeRunFile(runFile, out, p.dt)
}

// writeRunFile writes a run file pointing at record by absolute path.
func writeRunFile(path, record string, dt float64) error {
	dir, err := filepath.Abs(filepath.Dir(record))
	if err != nil {
		return err
	}

	run := config.Default()
	run.TimeIncrement = dt
	run.DataDir = dir
	run.Name = strings.TrimSuffix(filepath.Base(record), filepath.Ext(record))

	data, err := yaml.Marshal(run)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
