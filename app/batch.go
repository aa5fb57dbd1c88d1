package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"jobmetrics/internal/export"
	"jobmetrics/internal/jobs"

	"golang.org/x/sync/semaphore"
)

// BatchRunner builds reports for several workbooks concurrently. Workbooks
// share nothing, so the only limit is the semaphore weight.
type BatchRunner struct {
	service     *ReportService
	sem         *semaphore.Weighted
	parallelism int
}

// BatchItem is the outcome for one workbook.
type BatchItem struct {
	Path     string        `json:"path"`
	OutDir   string        `json:"out_dir,omitempty"`
	Files    []string      `json:"files,omitempty"`
	Result   *ReportResult `json:"-"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// NewBatchRunner creates a runner with at most parallelism workbooks in flight.
func NewBatchRunner(service *ReportService, parallelism int) *BatchRunner {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &BatchRunner{
		service:     service,
		sem:         semaphore.NewWeighted(int64(parallelism)),
		parallelism: parallelism,
	}
}

// Run processes every path and, when outDir is not empty, writes each
// report's CSV tables to outDir/<workbook name>/. Workbooks sharing a name
// get _2, _3, ... suffixes in input order. Items come back in input order;
// per-workbook failures are reported on the item, not returned.
func (b *BatchRunner) Run(ctx context.Context, paths []string, outDir string, filter jobs.Filter) ([]BatchItem, error) {
	log.Printf("[BatchRunner] Processing %d workbooks with parallelism %d", len(paths), b.parallelism)

	items := make([]BatchItem, len(paths))
	var dirs []string
	if outDir != "" {
		dirs = outputDirs(outDir, paths)
	}
	var wg sync.WaitGroup
	for i, path := range paths {
		if err := b.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return items, fmt.Errorf("batch cancelled: %w", err)
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer b.sem.Release(1)
			dir := ""
			if dirs != nil {
				dir = dirs[i]
			}
			items[i] = b.runOne(ctx, path, dir, filter)
		}(i, path)
	}
	wg.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	log.Printf("[BatchRunner] Done: %d succeeded, %d failed", len(items)-failed, failed)
	return items, nil
}

func (b *BatchRunner) runOne(ctx context.Context, path, outDir string, filter jobs.Filter) BatchItem {
	start := time.Now()
	item := BatchItem{Path: path}
	fail := func(err error) BatchItem {
		item.Err = err
		item.Error = err.Error()
		item.Duration = time.Since(start)
		log.Printf("[BatchRunner] %s failed: %v", path, err)
		return item
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("failed to read workbook: %w", err))
	}
	res, err := b.service.BuildReport(ctx, ReportRequest{
		Filename: filepath.Base(path),
		Data:     data,
		Filter:   filter,
		Persist:  true,
	})
	if err != nil {
		return fail(err)
	}
	item.Result = res

	if outDir != "" {
		item.OutDir = outDir
		files, err := export.WriteCSV(res.Report, item.OutDir)
		if err != nil {
			return fail(err)
		}
		item.Files = files
	}
	item.Duration = time.Since(start)
	return item
}

// outputDirs assigns every path its own directory under outDir.
func outputDirs(outDir string, paths []string) []string {
	seen := make(map[string]int, len(paths))
	used := make(map[string]bool, len(paths))
	dirs := make([]string, len(paths))
	for i, path := range paths {
		stem := workbookStem(path)
		name := stem
		for used[name] {
			seen[stem]++
			name = fmt.Sprintf("%s_%d", stem, seen[stem])
		}
		if seen[stem] == 0 {
			seen[stem] = 1
		}
		used[name] = true
		dirs[i] = filepath.Join(outDir, name)
	}
	return dirs
}

func workbookStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
