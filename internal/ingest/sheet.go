// Package ingest turns raw worksheet grids into canonical tables: it locates
// the header row, resolves header aliases, drops structural noise rows and
// provides the per-cell normalizers used by the domain loaders.
package ingest

import (
	"fmt"

	"jobmetrics/domain/core"
	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"
	"jobmetrics/internal"
	apperrors "jobmetrics/internal/errors"
)

// SheetSource yields the raw grid of a named worksheet.
type SheetSource interface {
	Rows(sheet string) (table.RawSheet, error)
}

// ParseOptions selects how the header row is found. A fixed HeaderRow wins;
// otherwise RequiredTokens drive FindHeaderRow.
type ParseOptions struct {
	HeaderRow      *int
	RequiredTokens []string
}

// AtRow is a convenience for a fixed, zero-based header row.
func AtRow(i int) ParseOptions {
	return ParseOptions{HeaderRow: &i}
}

// ParseStructuredSheet reads a sheet that may carry title rows above its
// header and returns it as a canonical table. Column names are standardized,
// fully blank rows and separator rows (client and job name both empty) are
// dropped, and the remaining rows keep their sheet order.
func ParseStructuredSheet(src SheetSource, sheet string, opts ParseOptions) (*table.Table, error) {
	rows, err := src.Rows(sheet)
	if err != nil {
		return nil, err
	}

	var headerIdx int
	switch {
	case opts.HeaderRow != nil:
		headerIdx = *opts.HeaderRow
		if headerIdx < 0 || headerIdx >= len(rows) {
			return nil, apperrors.WithCode(apperrors.CodeHeaderNotFound,
				fmt.Errorf("sheet %q: %w: header row %d outside %d rows", sheet, core.ErrHeaderNotFound, headerIdx, len(rows)))
		}
	case len(opts.RequiredTokens) > 0:
		headerIdx, err = FindHeaderRow(rows, opts.RequiredTokens)
		if err != nil {
			return nil, apperrors.WithCode(apperrors.CodeHeaderNotFound, fmt.Errorf("sheet %q: %w", sheet, err))
		}
	default:
		return nil, apperrors.InvalidInput("either a header row or required header tokens must be provided")
	}

	t, err := buildTable(rows, headerIdx)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to build table from sheet %q", sheet)
	}

	before := t.Len()
	t = t.Filter(func(i int) bool { return !t.RowIsBlank(i) })
	blank := before - t.Len()

	separators := 0
	if t.HasAll(schema.Client, schema.JobName) {
		before = t.Len()
		t = t.Filter(func(i int) bool {
			return !(t.Get(i, schema.Client).IsMissing() && t.Get(i, schema.JobName).IsMissing())
		})
		separators = before - t.Len()
	}

	internal.DefaultLogger.Debug("[SheetParser] %q: header at row %d, %d columns, %d rows kept (%d blank, %d separator dropped)",
		sheet, headerIdx, len(t.Columns()), t.Len(), blank, separators)
	return t, nil
}

// buildTable uses rows[headerIdx] as the header and every later row as data.
// The table is as wide as the widest of the header and data rows.
func buildTable(rows table.RawSheet, headerIdx int) (*table.Table, error) {
	width := 0
	for _, r := range rows[headerIdx:] {
		if len(r) > width {
			width = len(r)
		}
	}

	header := make([]string, width)
	copy(header, rows[headerIdx])

	t, err := table.New(StandardizeColumns(header))
	if err != nil {
		return nil, err
	}
	for _, raw := range rows[headerIdx+1:] {
		cells := make([]table.Value, len(raw))
		for j, c := range raw {
			cells[j] = table.NewStringValue(c)
		}
		if err := t.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	return t, nil
}
