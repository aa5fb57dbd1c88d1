// Package run describes one pipeline execution over a workbook and the
// summary persisted for it.
package run

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobmetrics/domain/core"
)

// Run is the stored record of one report build.
type Run struct {
	ID             core.RunID      `json:"id" db:"id"`
	SourceHash     core.Hash       `json:"source_hash" db:"source_hash"`
	Filename       string          `json:"filename" db:"filename"`
	CompletedRows  int             `json:"completed_rows" db:"completed_rows"`
	InProgressRows int             `json:"in_progress_rows" db:"in_progress_rows"`
	Insufficient   []string        `json:"insufficient" db:"-"`
	Report         json.RawMessage `json:"report,omitempty" db:"-"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// NewRun stamps a fresh ID and creation time on a run summary.
func NewRun(filename string, hash core.Hash, completedRows, inProgressRows int, insufficient []string, report []byte) *Run {
	return &Run{
		ID:             core.NewRunID(),
		SourceHash:     hash,
		Filename:       filename,
		CompletedRows:  completedRows,
		InProgressRows: inProgressRows,
		Insufficient:   append([]string(nil), insufficient...),
		Report:         json.RawMessage(report),
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

// Validate checks the fields a store relies on.
func (r *Run) Validate() error {
	if r.ID.String() == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	if r.SourceHash.IsEmpty() {
		return fmt.Errorf("run %s: source hash cannot be empty", r.ID)
	}
	if r.CompletedRows < 0 || r.InProgressRows < 0 {
		return fmt.Errorf("run %s: row counts cannot be negative", r.ID)
	}
	if len(r.Report) > 0 && !json.Valid(r.Report) {
		return fmt.Errorf("run %s: report is not valid JSON", r.ID)
	}
	return nil
}

// Summary is a one-line description for logs and CLI output.
func (r *Run) Summary() string {
	s := fmt.Sprintf("%s %s (%s): %d completed, %d in progress",
		r.ID, r.Filename, r.SourceHash.Short(), r.CompletedRows, r.InProgressRows)
	if len(r.Insufficient) > 0 {
		s += ", insufficient: " + strings.Join(r.Insufficient, ",")
	}
	return s
}
