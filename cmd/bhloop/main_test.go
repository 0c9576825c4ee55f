package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-bhloop/internal/config"
	"github.com/cwbudde/algo-bhloop/internal/dataio"
	"github.com/cwbudde/algo-bhloop/internal/render"
	"github.com/cwbudde/algo-bhloop/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSynthAnalyzeHistory(t *testing.T) {
	dir := t.TempDir()
	record := filepath.Join(dir, "captures", "sample.csv")
	runFile := filepath.Join(dir, "sample.yaml")
	db := filepath.Join(dir, "history.db")

	out, err := execute(t, "synth", "--out", record, "--run-file", runFile)
	require.NoError(t, err)
	assert.Contains(t, out, "2000 samples")

	run, err := config.Load(runFile)
	require.NoError(t, err)
	assert.Equal(t, "sample", run.Name)
	path, err := run.RecordPath()
	require.NoError(t, err)
	assert.Equal(t, record, path)

	out, err = execute(t, "analyze", runFile, "--db", db, "--out", filepath.Join(dir, "results"))
	require.NoError(t, err)
	assert.Contains(t, out, "f = 1000")

	for _, name := range []string{
		dataio.ReportFile, dataio.ReportJSONFile, dataio.BranchFile,
		render.FitPlotFile, render.LoopPlotFile,
	} {
		assert.FileExists(t, filepath.Join(dir, "results", name))
	}

	out, err = execute(t, "history", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], store.StatusOK)
	assert.Contains(t, lines[1], record)

	id := strings.Fields(lines[1])[0]
	out, err = execute(t, "history", id, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "refindex")
	assert.Contains(t, out, "samples       2000")
}

func TestAnalyzeFlagsOnly(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "synth", "--out", filepath.Join(dir, "loop.csv"), "--noise", "0.01", "--seed", "3")
	require.NoError(t, err)

	out, err := execute(t, "analyze", "--dir", dir, "--name", "loop", "--dt", "1e-6", "--window", "9", "--plots=false", "--spectral")
	require.NoError(t, err)
	assert.Contains(t, out, dataio.BranchFile)
	assert.NoFileExists(t, filepath.Join(dir, render.LoopPlotFile))

	data, err := os.ReadFile(filepath.Join(dir, dataio.ReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "refindex1")
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := execute(t, "analyze")
	assert.ErrorContains(t, err, "no record")

	_, err = execute(t, "analyze", "--name", "x", "--dt", "1e-6", "--window", "0")
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = execute(t, "analyze", "--dir", t.TempDir(), "--name", "missing", "--dt", "1e-6")
	assert.ErrorContains(t, err, "open record")

	_, err = execute(t, "--log-level", "loud", "history")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestAnalyzeRequiresTimeIncrement(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "synth", "--out", filepath.Join(dir, "loop.csv"))
	require.NoError(t, err)

	_, err = execute(t, "analyze", "--dir", dir, "--name", "loop", "--plots=false")
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.ErrorContains(t, err, "time increment")
	assert.NoFileExists(t, filepath.Join(dir, dataio.ReportFile))

	// A run file without time_increment is completed by --dt.
	runFile := filepath.Join(dir, "loop.yaml")
	require.NoError(t, os.WriteFile(runFile, []byte("data_dir: "+dir+"\nname: loop\nplots: false\n"), 0o600))

	_, err = execute(t, "analyze", runFile)
	require.ErrorIs(t, err, config.ErrInvalid)

	out, err := execute(t, "analyze", runFile, "--dt", "1e-6")
	require.NoError(t, err)
	assert.Contains(t, out, "f = 1000")
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	_, err := execute(t, "synth", "--out", good)
	require.NoError(t, err)

	bad := filepath.Join(dir, "flat.csv")
	require.NoError(t, os.WriteFile(bad, []byte("0,1\n0,1\n0,1\n0,1\n0,1\n0,1\n"), 0o644))

	promFile := filepath.Join(dir, "bhloop.prom")
	db := filepath.Join(dir, "history.db")
	out, err := execute(t, "batch", "--jobs", "2", "--dt", "1e-6", "--plots=false", "--metrics", promFile, "--db", db, good, bad)
	assert.ErrorContains(t, err, "1 of 2 runs failed")
	assert.Contains(t, out, "locate")

	assert.FileExists(t, filepath.Join(dir, "good", dataio.BranchFile))
	assert.NoDirExists(t, filepath.Join(dir, "flat"))

	prom, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `bhloop_runs_total{stage="locate",status="failed"} 1`)
	assert.Contains(t, string(prom), `bhloop_runs_total{stage="",status="ok"} 1`)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
