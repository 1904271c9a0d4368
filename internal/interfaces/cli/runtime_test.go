package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appreview "github.com/turtacn/meisai-checker/internal/application/review"
	"github.com/turtacn/meisai-checker/internal/config"
	"github.com/turtacn/meisai-checker/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Guidelines.Dir = filepath.Join(dir, "guidelines")
	cfg.Output.Dir = filepath.Join(dir, "reports")
	config.ApplyDefaults(cfg)
	return cfg
}

func TestBuildRuntime_WithoutSinks(t *testing.T) {
	cfg := testConfig(t)

	rt, err := BuildRuntime(context.Background(), cfg, nil, RuntimeOptions{})
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Collector)
	assert.NotNil(t, rt.Metrics)
	assert.Empty(t, rt.Checkers)

	_, err = rt.Service.ListRuns(context.Background(), 5)
	assert.Error(t, err, "history is only attached with sinks")
}

func TestBuildRuntime_MetricsAndMemoryHistory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true

	rt, err := BuildRuntime(context.Background(), cfg, nil, RuntimeOptions{WithSinks: true})
	require.NoError(t, err)
	defer rt.Close()
	require.NotNil(t, rt.Collector)

	input := testutil.WriteDocx(t, filepath.Join(t.TempDir(), "a.docx"), "本文")
	res, err := rt.Service.Review(context.Background(), &appreview.Input{Path: input})
	require.NoError(t, err)

	run, err := rt.Service.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, run.ID)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "a_report.json"), res.ReportPath)
}

func TestRuntime_ReloadSwapsPaths(t *testing.T) {
	cfg := testConfig(t)
	rt, err := BuildRuntime(context.Background(), cfg, nil, RuntimeOptions{WithSinks: true})
	require.NoError(t, err)
	defer rt.Close()

	next := *cfg
	next.Output.Dir = filepath.Join(t.TempDir(), "moved")
	require.NoError(t, rt.Reload(&next))

	input := testutil.WriteDocx(t, filepath.Join(t.TempDir(), "b.docx"), "本文")
	res, err := rt.Service.Review(context.Background(), &appreview.Input{Path: input})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(next.Output.Dir, "b_report.json"), res.ReportPath)

	runs, err := rt.Service.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "history survives a reload")
	assert.Same(t, cfg, rt.Config)
}

func TestRuntime_CloseRunsClosersInReverse(t *testing.T) {
	var order []int
	rt := &Runtime{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return assert.AnError },
	}}
	err := rt.Close()
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, rt.Close())
}

//Personal.AI order the ending
