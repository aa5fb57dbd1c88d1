package jobs

import (
	"fmt"
	"strings"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"
)

// ForwardFill replaces every missing cell of the named columns with the
// last non-missing value above it. Cells before the first value stay
// missing. The result depends entirely on row order: run it on the rows
// exactly as read from the sheet. Absent columns are an error.
func ForwardFill(t *table.Table, columns ...string) error {
	for _, col := range columns {
		if !t.Has(col) {
			return fmt.Errorf("forward fill: column %q not found", col)
		}
		last := table.Missing()
		for i := 0; i < t.Len(); i++ {
			v := t.Get(i, col)
			if v.IsMissing() {
				t.Set(i, col, last)
				continue
			}
			last = v
		}
	}
	return nil
}

// MonthNumber maps a Spanish month name (any case, SETIEMBRE accepted) to
// 1..12.
func MonthNumber(name string) (int, bool) {
	n, ok := schema.Months[strings.ToUpper(strings.TrimSpace(name))]
	return n, ok
}

// Intake years outside this range have no four-digit period key.
const (
	MinPeriodYear = 1000
	MaxPeriodYear = 9999
)

// Period formats a year and month as a "YYYY-MM" key.
func Period(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// BuildPeriods sets YM_ENCARGO from AÑO and MES. Rows whose year is not a
// number in MinPeriodYear..MaxPeriodYear or whose month name is unknown get
// a missing period.
func BuildPeriods(t *table.Table) error {
	cells := make([]table.Value, t.Len())
	for i := range cells {
		cells[i] = table.Missing()

		f, ok := t.Get(i, schema.Year).Float()
		if !ok || f < MinPeriodYear || f >= MaxPeriodYear+1 {
			continue
		}
		y := int(f)
		m, ok := MonthNumber(t.Get(i, schema.Month).AsString())
		if !ok {
			continue
		}
		cells[i] = table.NewStringValue(Period(y, m))
	}
	return t.SetColumn(schema.IntakePeriod, cells)
}
