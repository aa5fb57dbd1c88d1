// Package jobs loads the studio's job sheets into normalized tables.
//
// Loading is strictly order preserving. AÑO and MES are reconstructed by
// forward-filling down the sheet, so the rows must reach ForwardFill in the
// order they appear in the workbook: sorting or filtering a table before
// the fill silently assigns jobs to the wrong year or month.
package jobs

import (
	"strings"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"
	"jobmetrics/internal"
	"jobmetrics/internal/ingest"
	apperrors "jobmetrics/internal/errors"
)

var (
	textColumns = []string{
		schema.Client, schema.JobName, schema.Locality, schema.ClientType,
		schema.JobType, schema.Acquisition, schema.LegacyAcquisition,
		schema.Status, schema.Month, schema.Year,
	}
	numericColumns = []string{schema.Price, schema.Hours, schema.PricePerHour}
)

// sheetKind switches the few steps that differ between the two sheets.
type sheetKind struct {
	sheet         string
	dropSentFlag  bool
	priceFallback bool
}

var (
	completedJobs  = sheetKind{sheet: schema.CompletedJobsSheet, priceFallback: true}
	inProgressJobs = sheetKind{sheet: schema.InProgressJobsSheet, dropSentFlag: true}
)

// LoadCompleted loads the TRABAJOS REALIZADOS sheet.
func LoadCompleted(src ingest.SheetSource) (*table.Table, error) {
	return load(src, completedJobs)
}

// LoadInProgress loads the TRABAJOS EN CURSO sheet.
func LoadInProgress(src ingest.SheetSource) (*table.Table, error) {
	return load(src, inProgressJobs)
}

func load(src ingest.SheetSource, kind sheetKind) (*table.Table, error) {
	t, err := ingest.ParseStructuredSheet(src, kind.sheet, ingest.AtRow(schema.HeaderRowIndex))
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to load %s", kind.sheet)
	}

	for _, col := range textColumns {
		ingest.NormalizeTextColumn(t, col)
	}
	for _, col := range numericColumns {
		ingest.NormalizeNumericColumn(t, col)
	}
	ingest.NormalizeDateColumn(t, schema.DeliveryDate)

	if !t.Has(schema.Acquisition) && t.Has(schema.LegacyAcquisition) {
		if err := t.Rename(schema.LegacyAcquisition, schema.Acquisition); err != nil {
			return nil, apperrors.Wrap(err, "failed to unify acquisition column")
		}
	}
	if kind.dropSentFlag {
		t.Drop(schema.SentFlag)
	}

	if err := normalizeYearMonth(t); err != nil {
		return nil, err
	}
	if err := ForwardFill(t, schema.Year, schema.Month); err != nil {
		return nil, err
	}
	t.MapColumn(schema.Year, truncateYear)
	if err := BuildPeriods(t); err != nil {
		return nil, err
	}

	if kind.priceFallback && !t.Has(schema.Price) {
		if col, ok := priceFallbackColumn(t); ok {
			cells, _ := t.Column(col)
			for i := range cells {
				cells[i] = ingest.CoerceNumeric(cells[i])
			}
			if err := t.SetColumn(schema.Price, cells); err != nil {
				return nil, err
			}
			internal.DefaultLogger.Info("[JobLoader] %s: using %q as %s", kind.sheet, col, schema.Price)
		} else {
			internal.DefaultLogger.Warn("[JobLoader] %s: no price column found", kind.sheet)
		}
	}

	internal.DefaultLogger.Info("[JobLoader] %s: %d jobs, %d columns", kind.sheet, t.Len(), len(t.Columns()))
	return t, nil
}

// normalizeYearMonth makes AÑO numeric and MES an upper-case month name,
// adding either column as all-missing when the sheet lacks it.
func normalizeYearMonth(t *table.Table) error {
	for _, col := range []string{schema.Year, schema.Month} {
		if !t.Has(col) {
			if err := t.SetColumn(col, missingColumn(t.Len())); err != nil {
				return err
			}
		}
	}
	t.MapColumn(schema.Year, ingest.CoerceNumeric)
	t.MapColumn(schema.Month, normalizeMonth)
	return nil
}

func missingColumn(n int) []table.Value {
	cells := make([]table.Value, n)
	for i := range cells {
		cells[i] = table.Missing()
	}
	return cells
}

func normalizeMonth(v table.Value) table.Value {
	if v.IsMissing() {
		return v
	}
	s := strings.ToUpper(strings.TrimSpace(v.String()))
	switch s {
	case "", "NAN", "NONE", "NAT":
		return table.Missing()
	}
	if fixed, ok := schema.MonthSpellingFixes[s]; ok {
		s = fixed
	}
	return table.NewStringValue(s)
}

func truncateYear(v table.Value) table.Value {
	f, ok := v.Float()
	if !ok {
		return table.Missing()
	}
	return table.NewNumericValue(float64(int64(f)))
}

// priceFallbackColumn finds the first column whose name mentions PRECIO
// but not HORA.
func priceFallbackColumn(t *table.Table) (string, bool) {
	for _, c := range t.Columns() {
		u := strings.ToUpper(c)
		if strings.Contains(u, "PRECIO") && !strings.Contains(u, "HORA") {
			return c, true
		}
	}
	return "", false
}
