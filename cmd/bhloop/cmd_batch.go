package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-bhloop/internal/config"
	"github.com/cwbudde/algo-bhloop/internal/metrics"
	"github.com/cwbudde/algo-bhloop/measure/bhloop"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch run.yaml|record.csv ...",
		Short: "Analyze many captures concurrently",
		Long: `Analyze every argument concurrently. YAML arguments are run files; any
other argument is a record analyzed with the flag settings. Each run writes
into <out>/<record name>/. A failing run does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}

	addAnalysisFlags(cmd)
	cmd.Flags().Int("jobs", runtime.NumCPU(), "Concurrent analyses")
	cmd.Flags().String("metrics", "", "Write Prometheus metrics to this textfile")

	return cmd
}

func batchRuns(cmd *cobra.Command, args []string) ([]config.Run, error) {
	runs := make([]config.Run, 0, len(args))
	for _, arg := range args {
		var run config.Run
		switch strings.ToLower(filepath.Ext(arg)) {
		case ".yaml", ".yml":
			loaded, err := config.Load(arg)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", arg, err)
			}
			run = loaded
		default:
			run = config.Default()
			run.DataDir = filepath.Dir(arg)
			run.Name = filepath.Base(arg)
		}
		if err := applyAnalysisFlags(cmd, &run); err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	runs, err := batchRuns(cmd, args)
	if err != nil {
		return err
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	metricsPath, err := cmd.Flags().GetString("metrics")
	if err != nil {
		return err
	}

	// --db applies to the whole batch; per-file history_db keys are ignored.
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	s := &session{logger: log.Logger, store: st, metrics: metrics.NewRegistry()}
	outcomes := make([]outcome, len(runs))

	g, ctx := errgroup.WithContext(cmd.Context())
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, run := range runs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = outcome{Source: run.Name, Err: err}
				return err
			}
			outcomes[i] = s.analyze(ctx, run, filepath.Join(run.Output(), run.BaseName()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if metricsPath != "" {
		if err := s.metrics.WriteTextfile(metricsPath); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	failed := printBatch(cmd, outcomes)
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
	}
	return nil
}

func printBatch(cmd *cobra.Command, outcomes []outcome) int {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSTATUS\tSTAGE\tFREQUENCY\tAMPLITUDE\tPHASE")

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(tw, "%s\tfailed\t%s\t-\t-\t-\n", o.Source, bhloop.StageOf(o.Err))
			continue
		}
		fit := o.Result.Fit
		fmt.Fprintf(tw, "%s\tok\t\t%.6g\t%.6g\t%.6g\n", o.Source, fit.Frequency, fit.Amplitude, fit.Phase)
	}
	tw.Flush()

	return failed
}
