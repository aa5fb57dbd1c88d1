package app

import (
	"bytes"
	"context"
	"log"
	"time"

	"jobmetrics/adapters/excel"
	"jobmetrics/domain/core"
	"jobmetrics/domain/run"
	"jobmetrics/domain/table"
	"jobmetrics/internal/errors"
	"jobmetrics/internal/export"
	"jobmetrics/internal/jobs"
	"jobmetrics/internal/metrics"
	"jobmetrics/ports"
)

// ReportService turns workbook bytes into a metrics report. Each call is
// independent: the workbook travels with the request and nothing is kept
// between calls except the optional content-addressed cache.
type ReportService struct {
	runs  ports.RunRepository
	cache *ReportCache
}

// NewReportService creates a report service. Both runs and cache may be nil.
func NewReportService(runs ports.RunRepository, cache *ReportCache) *ReportService {
	return &ReportService{runs: runs, cache: cache}
}

// ReportRequest is one workbook to analyse.
type ReportRequest struct {
	Filename string
	Data     []byte
	Filter   jobs.Filter
	// Persist stores a run summary when a run repository is configured.
	Persist bool
}

// ReportResult carries the report and what it was built from.
type ReportResult struct {
	RunID          core.RunID      `json:"run_id,omitempty"`
	SourceHash     core.Hash       `json:"source_hash"`
	Filename       string          `json:"filename"`
	CompletedRows  int             `json:"completed_rows"`
	InProgressRows int             `json:"in_progress_rows"`
	FilteredRows   int             `json:"filtered_rows"`
	Facets         jobs.Facets     `json:"facets"`
	Document       export.Document `json:"report"`
	RuntimeMs      int64           `json:"runtime_ms"`

	Report     *metrics.Report `json:"-"`
	InProgress *table.Table    `json:"in_progress,omitempty"`
}

// Dataset is the pair of job tables loaded from one workbook.
type Dataset struct {
	Hash       core.Hash
	Filename   string
	Completed  *table.Table
	InProgress *table.Table // nil when the workbook has no in-progress sheet
}

// InProgressRows is the number of in-progress jobs, zero when the sheet is absent.
func (d *Dataset) InProgressRows() int {
	if d.InProgress == nil {
		return 0
	}
	return d.InProgress.Len()
}

// LoadDataset reads both job sheets of a workbook. The in-progress sheet is
// optional: a missing sheet, or one too short to hold its header row, is
// skipped. Every other failure is returned.
func (s *ReportService) LoadDataset(ctx context.Context, filename string, data []byte) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := core.NewHash(data)
	if ds, ok := s.cache.Get(hash); ok {
		log.Printf("[ReportService] Cache hit for %s (%s)", filename, hash.Short())
		return ds, nil
	}

	wb, err := excel.OpenBytes(filename, data)
	if err != nil {
		return nil, err
	}

	completed, err := jobs.LoadCompleted(wb)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Hash: wb.Hash(), Filename: filename, Completed: completed}
	if inProgress, err := jobs.LoadInProgress(wb); err == nil {
		ds.InProgress = inProgress
	} else if core.IsNotFoundError(err) {
		log.Printf("[ReportService] %s has no in-progress sheet, continuing with completed jobs only", filename)
	} else if core.IsHeaderNotFoundError(err) {
		log.Printf("[ReportService] %s in-progress sheet has no header row, continuing with completed jobs only: %v", filename, err)
	} else {
		return nil, err
	}

	s.cache.Put(ds)
	return ds, nil
}

// BuildReport loads the workbook, applies the filter and computes every
// metric table from the completed jobs.
func (s *ReportService) BuildReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	start := time.Now()

	ds, err := s.LoadDataset(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered := req.Filter.Apply(ds.Completed)
	report := metrics.Build(filtered)

	result := &ReportResult{
		SourceHash:     ds.Hash,
		Filename:       req.Filename,
		CompletedRows:  ds.Completed.Len(),
		InProgressRows: ds.InProgressRows(),
		FilteredRows:   filtered.Len(),
		Facets:         jobs.BuildFacets(ds.Completed),
		Document:       export.NewDocument(report),
		Report:         report,
		InProgress:     ds.InProgress,
	}

	if req.Persist && s.runs != nil {
		rn, err := s.persist(ctx, result)
		if err != nil {
			return nil, err
		}
		result.RunID = rn.ID
	}

	result.RuntimeMs = time.Since(start).Milliseconds()
	log.Printf("[ReportService] Built report for %s: %d/%d rows after filter, %d insufficient tables in %dms",
		req.Filename, result.FilteredRows, result.CompletedRows, len(report.Insufficient), result.RuntimeMs)
	return result, nil
}

func (s *ReportService) persist(ctx context.Context, result *ReportResult) (*run.Run, error) {
	var buf bytes.Buffer
	if err := export.WriteJSON(result.Report, &buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode report")
	}

	rn := run.NewRun(result.Filename, result.SourceHash, result.CompletedRows, result.InProgressRows,
		result.Report.Insufficient, buf.Bytes())
	if err := s.runs.Create(ctx, rn); err != nil {
		return nil, errors.Wrap(err, "failed to store run")
	}
	log.Printf("[ReportService] Stored run %s", rn.Summary())
	return rn, nil
}

// StoreEnabled reports whether runs are persisted.
func (s *ReportService) StoreEnabled() bool {
	return s.runs != nil
}

// GetRun returns a stored run with its report.
func (s *ReportService) GetRun(ctx context.Context, id core.RunID) (*run.Run, error) {
	if s.runs == nil {
		return nil, errStoreDisabled
	}
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns stored run summaries, newest first.
func (s *ReportService) ListRuns(ctx context.Context, limit, offset int) ([]*run.Run, error) {
	if s.runs == nil {
		return nil, errStoreDisabled
	}
	return s.runs.List(ctx, limit, offset)
}

// LatestRun returns the newest stored run built from a workbook with this
// content hash.
func (s *ReportService) LatestRun(ctx context.Context, hash core.Hash) (*run.Run, error) {
	if s.runs == nil {
		return nil, errStoreDisabled
	}
	return s.runs.LatestByHash(ctx, hash)
}

var errStoreDisabled = errors.New(errors.CodeNotFound, "run store is not configured")
