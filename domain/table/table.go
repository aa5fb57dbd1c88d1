// Package table holds the in-memory tabular model shared by the ingestion
// pipeline and the metrics aggregator.
package table

import (
	"encoding/json"
	"fmt"
)

// RawSheet is the untyped grid read verbatim from a worksheet. Rows may have
// different lengths; trailing empty cells are usually absent.
type RawSheet [][]string

// Table is an ordered set of uniquely named columns over rows of typed cells.
// Row order is significant: it mirrors the order rows had in the source sheet.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New creates an empty table with the given column names.
func New(columns []string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustNew is New for column sets known to be unique.
func MustNew(columns ...string) *Table {
	t, err := New(columns)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// HasAll reports whether every named column exists.
func (t *Table) HasAll(columns ...string) bool {
	for _, c := range columns {
		if !t.Has(c) {
			return false
		}
	}
	return true
}

// AppendRow adds a row, padding short rows with missing cells.
func (t *Table) AppendRow(cells []Value) error {
	if len(cells) > len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	row := make([]Value, len(t.columns))
	for i := range row {
		row[i] = Missing()
	}
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Get returns the cell at row i of the named column, or missing when the
// column does not exist.
func (t *Table) Get(i int, column string) Value {
	j, ok := t.index[column]
	if !ok {
		return Missing()
	}
	return t.rows[i][j]
}

// Set overwrites one cell of an existing column.
func (t *Table) Set(i int, column string, v Value) {
	if j, ok := t.index[column]; ok {
		t.rows[i][j] = v
	}
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(column string) ([]Value, bool) {
	j, ok := t.index[column]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, true
}

// SetColumn replaces the named column or appends it at the end.
func (t *Table) SetColumn(column string, cells []Value) error {
	if len(cells) != len(t.rows) {
		return fmt.Errorf("column %q has %d cells, table has %d rows", column, len(cells), len(t.rows))
	}
	j, ok := t.index[column]
	if !ok {
		j = len(t.columns)
		t.index[column] = j
		t.columns = append(t.columns, column)
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], Missing())
		}
	}
	for i := range t.rows {
		t.rows[i][j] = cells[i]
	}
	return nil
}

// MapColumn applies fn to every cell of an existing column.
func (t *Table) MapColumn(column string, fn func(Value) Value) {
	j, ok := t.index[column]
	if !ok {
		return
	}
	for i := range t.rows {
		t.rows[i][j] = fn(t.rows[i][j])
	}
}

// Rename renames a column in place. Renaming onto an existing name fails.
func (t *Table) Rename(from, to string) error {
	j, ok := t.index[from]
	if !ok {
		return fmt.Errorf("column %q not found", from)
	}
	if _, taken := t.index[to]; taken {
		return fmt.Errorf("column %q already exists", to)
	}
	delete(t.index, from)
	t.index[to] = j
	t.columns[j] = to
	return nil
}

// Drop removes the named columns that exist; unknown names are ignored.
func (t *Table) Drop(columns ...string) {
	remove := make(map[int]bool)
	for _, c := range columns {
		if j, ok := t.index[c]; ok {
			remove[j] = true
		}
	}
	if len(remove) == 0 {
		return
	}
	keep := make([]int, 0, len(t.columns)-len(remove))
	for j := range t.columns {
		if !remove[j] {
			keep = append(keep, j)
		}
	}
	cols := make([]string, len(keep))
	t.index = make(map[string]int, len(keep))
	for k, j := range keep {
		cols[k] = t.columns[j]
		t.index[cols[k]] = k
	}
	t.columns = cols
	for i, row := range t.rows {
		nr := make([]Value, len(keep))
		for k, j := range keep {
			nr[k] = row[j]
		}
		t.rows[i] = nr
	}
}

// Filter returns a new table holding the rows for which keep returns true,
// in their original order.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := t.emptyCopy()
	for i, row := range t.rows {
		if keep(i) {
			nr := make([]Value, len(row))
			copy(nr, row)
			out.rows = append(out.rows, nr)
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	return t.Filter(func(int) bool { return true })
}

// RowIsBlank reports whether every cell of row i is missing.
func (t *Table) RowIsBlank(i int) bool {
	for _, v := range t.rows[i] {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}

func (t *Table) emptyCopy() *Table {
	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.columns)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}

// Rows returns a copy of all rows.
func (t *Table) Rows() [][]Value {
	out := make([][]Value, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// MarshalJSON encodes the table as {"columns": [...], "rows": [[...], ...]}.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.rows
	if rows == nil {
		rows = [][]Value{}
	}
	return json.Marshal(struct {
		Columns []string  `json:"columns"`
		Rows    [][]Value `json:"rows"`
	}{Columns: t.Columns(), Rows: rows})
}
