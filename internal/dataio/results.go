package dataio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-bhloop/measure/bhloop"
)

// Result file names inside an output directory.
const (
	ReportFile     = "signal_parameters.txt"
	ReportJSONFile = "signal_parameters.json"
	BranchFile     = "smoothed_hysteresis_data.csv"
)

// BranchHeader labels the smoothed loop table columns.
var BranchHeader = []string{"H_forward (A/m)", "B_forward_smoothed (T)", "H_reverse (A/m)", "B_reverse_smoothed (T)"}

// WriteReport writes the human-readable parameter report for the record
// named source.
func WriteReport(w io.Writer, source string, rep bhloop.Report) error {
	p := &errWriter{w: w}

	p.printf("\n")
	p.printf("File name and directory %s\n", source)
	p.printf("\n")
	p.printf("Time increment = %s s\n", formatFloat(rep.TimeIncrement))
	p.printf("Fitted sinusoid amplitude = %s (your units)\n", formatFloat(rep.Amplitude))
	p.printf("Fitted sinusoid frequency = %s Hz\n", formatFloat(rep.Frequency))
	p.printf("Fitted sinusoid phase = %s rads\n", formatFloat(rep.PhaseRadians))
	p.printf("Fitted sinusoid phase = %s degrees\n", formatFloat(rep.PhaseDegrees))
	p.printf("Fitted sinusoid period = %s s\n", formatFloat(rep.Period))
	p.printf("\n")
	p.printf("Estimated sinusoid amplitude = %s (your units)\n", formatFloat(rep.EstimatedAmplitude))
	p.printf("Estimated sinusoid frequency = %s Hz\n", formatFloat(rep.EstimatedFrequency))
	p.printf("Estimated sinusoid phase = %s rads\n", formatFloat(rep.EstimatedPhase))
	p.printf("Fit iterations = %d\n", rep.FitIterations)
	p.printf("Fit residual RMS = %s\n", formatFloat(rep.ResidualRMS))
	p.printf("Fit R-squared = %s\n", formatFloat(rep.RSquared))
	if rep.SpectralFrequency > 0 {
		p.printf("Spectral peak frequency = %s Hz\n", formatFloat(rep.SpectralFrequency))
	}
	p.printf("\n")
	p.printf("Response DC offset = %s\n", formatFloat(rep.ResponseDC))
	p.printf("Response RMS = %s\n", formatFloat(rep.ResponseRMS))
	p.printf("Response offset drift = %s\n", formatFloat(rep.ResponseDrift))
	p.printf("Reference peak = %s\n", formatFloat(rep.ReferencePeak))
	p.printf("Reference zero crossings = %d\n", rep.ReferenceZeroCrossings)
	p.printf("\n")
	p.printf("B-scale = %s \n", formatFloat(rep.BScale))
	p.printf("H-scale = %s \n", formatFloat(rep.HScale))
	p.printf("Window size = %d \n", rep.WindowSize)
	p.printf("\n")
	p.printf("Reference time t1 = %s s \n", formatFloat(rep.T1))
	p.printf("Reference time t2 = %s s \n", formatFloat(rep.T2))
	p.printf("Reference time t3 = %s s \n", formatFloat(rep.T3))
	p.printf("Half period t2 - t1 = %s s \n", formatFloat(rep.HalfPeriod))
	p.printf("\n")
	p.printf("Reference index 1 = %d \n", rep.Index1)
	p.printf("Reference index 2 = %d \n", rep.Index2)
	p.printf("Reference index 3 = %d \n", rep.Index3)
	p.printf("\n")
	p.printf("Scenario = %s\n", rep.Scenario)
	p.printf("Forward curvature = %s\n", rep.ForwardCurvature)
	p.printf("Reverse curvature = %s\n", rep.ReverseCurvature)

	return p.err
}

// WriteReportJSON writes rep as indented JSON.
func WriteReportJSON(w io.Writer, rep bhloop.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}

// WriteBranches writes the smoothed loop as four parallel columns. When the
// branches differ in length the table stops at the shorter one, so every
// row holds four numbers.
func WriteBranches(w io.Writer, br bhloop.Branches) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(BranchHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	fwd, rev := br.Forward, br.Reverse
	rows := min(fwd.Len(), rev.Len())
	row := make([]string, 4)
	for i := 0; i < rows; i++ {
		row[0], row[1] = formatFloat(fwd.H[i]), formatFloat(fwd.B[i])
		row[2], row[3] = formatFloat(rev.H[i]), formatFloat(rev.B[i])
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteResults writes the text report, JSON report and branch table of res
// into dir, creating it if needed. It returns the written paths.
func WriteResults(dir, source string, res *bhloop.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}

	rep := res.Report()
	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{ReportFile, func(w io.Writer) error { return WriteReport(w, source, rep) }},
		{ReportJSONFile, func(w io.Writer) error { return WriteReportJSON(w, rep) }},
		{BranchFile, func(w io.Writer) error { return WriteBranches(w, res.Smoothed) }},
	}

	paths := make([]string, 0, len(writers))
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		if err := writeFile(path, wr.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", path, err)
	}
	return nil
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
