package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-bhloop/internal/config"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [run.yaml]",
		Short: "Analyze one capture",
		Long: `Analyze one capture described by a run file or by flags. Flags override
the run file. Results are written to the output directory:

  signal_parameters.txt                fitted sinusoid and reference instants
  signal_parameters.json               the same report as JSON
  smoothed_hysteresis_data.csv         smoothed forward and reverse branches
  sinusoid_fitting_reference_points.png
  smoothed_hysteresis_plot.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	addAnalysisFlags(cmd)
	cmd.Flags().String("name", "", "Record name inside --dir (.csv is implied)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	run := config.Default()
	if len(args) == 1 {
		loaded, err := config.Load(args[0])
		if err != nil {
			return err
		}
		run = loaded
	}

	if cmd.Flags().Changed("name") {
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}
		run.Name = name
	}
	if err := applyAnalysisFlags(cmd, &run); err != nil {
		return err
	}
	if run.Name == "" {
		return errors.New("no record: pass a run file or --name")
	}

	st, err := openStore(run.HistoryDB)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	s := &session{logger: log.Logger, store: st}
	out := s.analyze(cmd.Context(), run, run.Output())
	if out.Err != nil {
		return out.Err
	}

	rep := out.Result.Report()
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "A = %.6g, f = %.6g Hz, phi = %.6g rad (%.4g deg)\n",
		rep.Amplitude, rep.Frequency, rep.PhaseRadians, rep.PhaseDegrees)
	fmt.Fprintf(w, "t1 = %.6g s, t2 = %.6g s, t3 = %.6g s\n", rep.T1, rep.T2, rep.T3)
	for _, f := range out.Files {
		fmt.Fprintln(w, "wrote", f)
	}
	return nil
}
