// Package render draws analysis plots with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-bhloop/measure/bhloop"
	"github.com/cwbudde/algo-bhloop/measure/sinefit"
)

// Plot file names inside an output directory.
const (
	FitPlotFile  = "sinusoid_fitting_reference_points.png"
	LoopPlotFile = "smoothed_hysteresis_plot.png"
)

var errEmpty = errors.New("render: nothing to plot")

var (
	blue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	red    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	green  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	purple = color.RGBA{R: 148, G: 103, B: 189, A: 255}
	orange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// FitPlot draws the raw reference, the fitted sinusoid and dashed markers at
// the three reference instants, and saves it to path.
func FitPlot(path string, reference []float64, dt float64, fit sinefit.Model, in bhloop.Instants) error {
	if len(reference) == 0 {
		return errEmpty
	}

	p := plot.New()
	p.Title.Text = "Sinusoidal Fit with Reference Points t1, t2, and t3"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Amplitude"
	p.Add(plotter.NewGrid())

	raw := make(plotter.XYs, len(reference))
	fitted := make(plotter.XYs, len(reference))
	for i, v := range reference {
		t := float64(i) * dt
		raw[i] = plotter.XY{X: t, Y: v}
		fitted[i] = plotter.XY{X: t, Y: fit.At(t)}
	}

	if err := addLine(p, raw, "Sinusoid", blue, false); err != nil {
		return err
	}
	if err := addLine(p, fitted, "Fitted Sinusoid", red, false); err != nil {
		return err
	}

	span := floats.Max([]float64{floats.Max(reference), -floats.Min(reference), fit.Amplitude})
	markers := []struct {
		label string
		t     float64
		c     color.Color
	}{
		{"t1", in.T1, green},
		{"t2", in.T2, purple},
		{"t3", in.T3, orange},
	}
	for _, m := range markers {
		pts := plotter.XYs{{X: m.t, Y: -span}, {X: m.t, Y: span}}
		if err := addLine(p, pts, m.label, m.c, true); err != nil {
			return err
		}
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save fit plot: %w", err)
	}
	return nil
}

// LoopPlot draws the smoothed forward and reverse branches as B over H and
// saves it to path.
func LoopPlot(path string, br bhloop.Branches) error {
	if br.Forward.Len() == 0 && br.Reverse.Len() == 0 {
		return errEmpty
	}

	p := plot.New()
	p.Title.Text = "Smoothed Magnetic Hysteresis Loop"
	p.X.Label.Text = "H (A/m)"
	p.Y.Label.Text = "B (T)"
	p.Add(plotter.NewGrid())

	if err := addLine(p, branchXYs(br.Forward), "Smoothed B_forward vs. H_forward", blue, false); err != nil {
		return err
	}
	if err := addLine(p, branchXYs(br.Reverse), "Smoothed B_reverse vs. H_reverse", red, false); err != nil {
		return err
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save loop plot: %w", err)
	}
	return nil
}

// WriteAll saves both plots into dir and returns their paths.
func WriteAll(dir string, reference []float64, res *bhloop.Result) ([]string, error) {
	fitPath := filepath.Join(dir, FitPlotFile)
	if err := FitPlot(fitPath, reference, res.Config.TimeIncrement, res.Fit.Model, res.Instants); err != nil {
		return nil, err
	}
	loopPath := filepath.Join(dir, LoopPlotFile)
	if err := LoopPlot(loopPath, res.Smoothed); err != nil {
		return []string{fitPath}, err
	}
	return []string{fitPath, loopPath}, nil
}

func branchXYs(b bhloop.Branch) plotter.XYs {
	pts := make(plotter.XYs, b.Len())
	for i := range pts {
		pts[i] = plotter.XY{X: b.H[i], Y: b.B[i]}
	}
	return pts
}

func addLine(p *plot.Plot, pts plotter.XYs, label string, c color.Color, dashed bool) error {
	if len(pts) == 0 {
		return nil
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	if dashed {
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}

	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}
