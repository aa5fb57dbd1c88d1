package excel

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"jobmetrics/domain/core"
	"jobmetrics/domain/table"
	apperrors "jobmetrics/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Workbook is an in-memory snapshot of every worksheet of an .xlsx file.
// Cells are read raw, so dates arrive as Excel serials and numbers keep
// their stored precision instead of the display format.
type Workbook struct {
	name   string
	hash   core.Hash
	order  []string
	sheets map[string]table.RawSheet
}

// OpenBytes reads a workbook from memory. name is only used for logs and
// run metadata.
func OpenBytes(name string, data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, apperrors.WorkbookInvalid(fmt.Errorf("%w: %s is empty", core.ErrInvalidWorkbook, name))
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.WorkbookInvalid(fmt.Errorf("%w: %v", core.ErrInvalidWorkbook, err))
	}
	defer f.Close()

	return load(name, core.NewHash(data), f)
}

// OpenFile reads a workbook from disk.
func OpenFile(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read workbook %s", path)
	}
	return OpenBytes(filepath.Base(path), data)
}

func load(name string, hash core.Hash, f *excelize.File) (*Workbook, error) {
	start := time.Now()
	wb := &Workbook{
		name:   name,
		hash:   hash,
		sheets: make(map[string]table.RawSheet),
	}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.WorkbookInvalid(fmt.Errorf("failed to read sheet %q: %w", sheet, err))
		}
		wb.order = append(wb.order, sheet)
		wb.sheets[sheet] = rows
	}
	log.Printf("[Workbook] %s (%s) loaded in %.2fms: %d sheets",
		name, hash.Short(), float64(time.Since(start).Nanoseconds())/1e6, len(wb.order))
	return wb, nil
}

// Name returns the file name the workbook was opened under.
func (w *Workbook) Name() string { return w.name }

// Hash is the SHA-256 of the workbook bytes.
func (w *Workbook) Hash() core.Hash { return w.hash }

// SheetNames lists worksheets in workbook order.
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// HasSheet reports whether a worksheet with exactly this name exists.
func (w *Workbook) HasSheet(sheet string) bool {
	_, ok := w.sheets[sheet]
	return ok
}

// Rows returns a copy of the raw grid of sheet. Rows keep the ragged widths
// excelize reports; trailing empty cells are not materialized.
func (w *Workbook) Rows(sheet string) (table.RawSheet, error) {
	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, apperrors.WithCode(apperrors.CodeSheetNotFound, core.NewSheetNotFoundError(sheet))
	}
	out := make(table.RawSheet, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}
