package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobmetrics/internal/jobs"
	"jobmetrics/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRunner(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, seed := range []int64{1, 2} {
		cfg := testkit.DefaultStudioConfig()
		cfg.Seed = seed
		cfg.CompletedJobs = 20 + i
		data, err := testkit.NewStudioWorkbookGenerator(cfg).Workbook()
		require.NoError(t, err)
		path := filepath.Join(dir, []string{"2023.xlsx", "2024.xlsx"}[i])
		require.NoError(t, os.WriteFile(path, data, 0o644))
		paths = append(paths, path)
	}
	broken := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0o644))
	paths = append(paths, broken, filepath.Join(dir, "missing.xlsx"))

	out := filepath.Join(dir, "out")
	runner := NewBatchRunner(NewReportService(nil, NewReportCache(4)), 2)
	items, err := runner.Run(context.Background(), paths, out, jobs.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 4)

	for i, want := range []int{20, 21} {
		it := items[i]
		require.NoError(t, it.Err, it.Path)
		assert.Equal(t, paths[i], it.Path)
		assert.Equal(t, want, it.Result.CompletedRows)
		assert.Len(t, it.Files, len(it.Result.Report.Tables()))
		assert.FileExists(t, filepath.Join(it.OutDir, "kpis.csv"))
	}
	assert.Equal(t, filepath.Join(out, "2023"), items[0].OutDir)

	assert.Error(t, items[2].Err)
	assert.NotEmpty(t, items[2].Error)
	assert.Error(t, items[3].Err)
}

func TestBatchRunnerSameNameWorkbooks(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, sub := range []string{"a", "b"} {
		cfg := testkit.DefaultStudioConfig()
		cfg.Seed = int64(i + 1)
		cfg.CompletedJobs = 15 - 5*i
		data, err := testkit.NewStudioWorkbookGenerator(cfg).Workbook()
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
		path := filepath.Join(dir, sub, "trabajos.xlsx")
		require.NoError(t, os.WriteFile(path, data, 0o644))
		paths = append(paths, path)
	}

	out := filepath.Join(dir, "out")
	items, err := NewBatchRunner(NewReportService(nil, nil), 2).Run(context.Background(), paths, out, jobs.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NoError(t, items[0].Err)
	require.NoError(t, items[1].Err)

	assert.Equal(t, filepath.Join(out, "trabajos"), items[0].OutDir)
	assert.Equal(t, filepath.Join(out, "trabajos_2"), items[1].OutDir)

	for i, want := range []string{"15", "10"} {
		b, err := os.ReadFile(filepath.Join(items[i].OutDir, "kpis.csv"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(b)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, want, strings.Split(lines[1], ",")[0], items[i].Path)
	}
}

func TestOutputDirs(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"distinct", []string{"x/a.xlsx", "y/b.xlsx"}, []string{"a", "b"}},
		{"repeated", []string{"x/a.xlsx", "y/a.xlsx", "z/a.xlsx"}, []string{"a", "a_2", "a_3"}},
		{"suffix taken", []string{"a_2.xlsx", "x/a.xlsx", "y/a.xlsx"}, []string{"a_2", "a", "a_3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputDirs("out", tt.paths)
			for i := range got {
				assert.Equal(t, filepath.Join("out", tt.want[i]), got[i])
			}
		})
	}
}

func TestBatchRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewBatchRunner(NewReportService(nil, nil), 1)
	items, err := runner.Run(ctx, []string{"a.xlsx"}, "", jobs.Filter{})
	if err == nil {
		// the semaphore may still grant the slot; the build then sees the cancelled context
		require.Len(t, items, 1)
		assert.Error(t, items[0].Err)
		return
	}
	assert.ErrorIs(t, err, context.Canceled)
}
