package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-bhloop/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded analysis runs",
		Long:  "List the most recent runs in the history database, or show one run in full.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}

	cmd.Flags().String("db", "bhloop.db", "SQLite run history database")
	cmd.Flags().Int("limit", 20, "Number of runs to list")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	w := cmd.OutOrStdout()
	if len(args) == 1 {
		run, err := st.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "id\t%s\n", run.ID)
		fmt.Fprintf(tw, "source\t%s\n", run.Source)
		fmt.Fprintf(tw, "created\t%s\n", run.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(tw, "status\t%s\n", run.Status)
		if run.Status == store.StatusFailed {
			fmt.Fprintf(tw, "stage\t%s\n", run.Stage)
			fmt.Fprintf(tw, "error\t%s\n", run.Error)
		} else {
			fmt.Fprintf(tw, "samples\t%d\n", run.Samples)
			fmt.Fprintf(tw, "dt\t%g\n", run.TimeIncrement)
			fmt.Fprintf(tw, "amplitude\t%.6g\n", run.Amplitude)
			fmt.Fprintf(tw, "frequency\t%.6g\n", run.Frequency)
			fmt.Fprintf(tw, "phase\t%.6g\n", run.Phase)
			fmt.Fprintf(tw, "refindex\t%d %d %d\n", run.Index1, run.Index2, run.Index3)
			fmt.Fprintf(tw, "residual_rms\t%.3g\n", run.ResidualRMS)
		}
		return tw.Flush()
	}

	runs, err := st.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tSTAGE\tFREQUENCY\tSOURCE")
	for _, run := range runs {
		freq := "-"
		if run.Status == store.StatusOK {
			freq = fmt.Sprintf("%.6g", run.Frequency)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.CreatedAt.Local().Format(time.DateTime), run.Status, run.Stage, freq, run.Source)
	}
	return tw.Flush()
}
