package ingest

import (
	"testing"
	"time"

	"jobmetrics/domain/table"

	"github.com/stretchr/testify/assert"
)

func str(s string) table.Value { return table.NewStringValue(s) }

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   table.Value
		want table.Value
	}{
		{str("  Ana   García \t"), str("Ana García")},
		{str("nan"), table.Missing()},
		{str("NaT"), table.Missing()},
		{str("None"), table.Missing()},
		{str("   "), table.Missing()},
		{table.Missing(), table.Missing()},
		{table.NewNumericValue(2024), str("2024")},
		{str("NAN"), str("NAN")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "input %v", tt.in)
	}
}

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1500", 1500, true},
		{"1500.5", 1500.5, true},
		{"1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"12,5", 12.5, true},
		{"1 234,56 €", 1234.56, true},
		{"€ 90", 90, true},
		{"(200)", -200, true},
		{"1,234,567", 1234567, true},
		{"abc", 0, false},
		{"-", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got := CoerceNumeric(str(tt.in))
		f, ok := got.Float()
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, f, 1e-9, "input %q", tt.in)
		}
	}

	assert.Equal(t, table.NewNumericValue(3), CoerceNumeric(table.NewNumericValue(3)))
	assert.True(t, CoerceNumeric(table.NewTimestampValue(time.Now())).IsMissing())
}

func TestParseDateDayFirst(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"15-03-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"45366", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"pendiente", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(str(tt.in)).Time()
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.True(t, tt.want.Equal(got), "input %q: got %v want %v", tt.in, got, tt.want)
		}
	}
}

func TestColumnNormalizersNeverAbort(t *testing.T) {
	tb := table.MustNew("MI PRECIO", "FECHA ENTREGA", "CLIENTE")
	_ = tb.AppendRow([]table.Value{str("100"), str("01/02/2024"), str(" Ana ")})
	_ = tb.AppendRow([]table.Value{str("n/a"), str("mañana"), str("nan")})

	NormalizeNumericColumn(tb, "MI PRECIO")
	NormalizeDateColumn(tb, "FECHA ENTREGA")
	NormalizeTextColumn(tb, "CLIENTE")
	NormalizeTextColumn(tb, "NO EXISTE")

	assert.Equal(t, 100.0, tb.Get(0, "MI PRECIO").AsFloat64())
	assert.True(t, tb.Get(1, "MI PRECIO").IsMissing())
	assert.True(t, tb.Get(0, "FECHA ENTREGA").IsTimestamp())
	assert.True(t, tb.Get(1, "FECHA ENTREGA").IsMissing())
	assert.Equal(t, "Ana", tb.Get(0, "CLIENTE").AsString())
	assert.True(t, tb.Get(1, "CLIENTE").IsMissing())
}
