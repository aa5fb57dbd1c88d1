package ingest

import (
	"errors"
	"testing"

	"jobmetrics/domain/core"
	"jobmetrics/domain/table"
	apperrors "jobmetrics/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySource map[string]table.RawSheet

func (m memorySource) Rows(sheet string) (table.RawSheet, error) {
	rows, ok := m[sheet]
	if !ok {
		return nil, core.NewSheetNotFoundError(sheet)
	}
	return rows, nil
}

func studioSheet() table.RawSheet {
	return table.RawSheet{
		{"ESTUDIO"},
		{"TRABAJOS REALIZADOS"},
		{},
		{"AÑO", "MES", "CLIENTE", "NOMBRE ENCARGO", "MI PRECIO", "Notas"},
		{"2024", "ENERO", "Ana", "Reforma cocina", "1200"},
		{"", "", "", "", "", ""},
		{"", "", "", "", "999", "separador"},
		{"", "", "Luis", "", "300"},
		{"", "", "", "Proyecto sin cliente", "50"},
		{"", "FEBRERO", "Eva", "Vivienda", "800", "x", "extra"},
	}
}

func TestParseStructuredSheetFixedHeader(t *testing.T) {
	src := memorySource{"S": studioSheet()}

	tb, err := ParseStructuredSheet(src, "S", AtRow(3))
	require.NoError(t, err)

	assert.Equal(t, []string{"AÑO", "MES", "CLIENTE", "NOMBRE ENCARGO", "MI PRECIO", "NOTAS", "UNKNOWN"}, tb.Columns())
	require.Equal(t, 4, tb.Len())

	// order preserved, contiguous from zero
	assert.Equal(t, "Ana", tb.Get(0, "CLIENTE").AsString())
	assert.Equal(t, "Luis", tb.Get(1, "CLIENTE").AsString())
	assert.True(t, tb.Get(2, "CLIENTE").IsMissing())
	assert.Equal(t, "Proyecto sin cliente", tb.Get(2, "NOMBRE ENCARGO").AsString())
	assert.Equal(t, "Eva", tb.Get(3, "CLIENTE").AsString())
	assert.Equal(t, "extra", tb.Get(3, "UNKNOWN").AsString())
}

func TestParseStructuredSheetSeparatorRows(t *testing.T) {
	src := memorySource{"S": studioSheet()}
	tb, err := ParseStructuredSheet(src, "S", AtRow(3))
	require.NoError(t, err)

	for i := 0; i < tb.Len(); i++ {
		both := tb.Get(i, "CLIENTE").IsMissing() && tb.Get(i, "NOMBRE ENCARGO").IsMissing()
		assert.False(t, both, "row %d is a separator row and should have been dropped", i)
		assert.NotEqual(t, "separador", tb.Get(i, "NOTAS").AsString())
	}
}

func TestParseStructuredSheetKeepsSeparatorsWithoutIdentityColumns(t *testing.T) {
	src := memorySource{"S": {
		{"CLIENTE", "MI PRECIO"},
		{"", "10"},
		{"", ""},
	}}
	tb, err := ParseStructuredSheet(src, "S", AtRow(0))
	require.NoError(t, err)
	assert.Equal(t, 1, tb.Len())
}

func TestParseStructuredSheetDetectsHeader(t *testing.T) {
	src := memorySource{"S": studioSheet()}

	tb, err := ParseStructuredSheet(src, "S", ParseOptions{RequiredTokens: []string{"cliente", "mi precio"}})
	require.NoError(t, err)
	assert.Equal(t, 4, tb.Len())
	assert.True(t, tb.HasAll("CLIENTE", "MI PRECIO", "AÑO"))
}

func TestParseStructuredSheetErrors(t *testing.T) {
	src := memorySource{"S": studioSheet()}

	_, err := ParseStructuredSheet(src, "S", ParseOptions{RequiredTokens: []string{"FACTURA"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrHeaderNotFound))
	assert.Equal(t, apperrors.CodeHeaderNotFound, apperrors.GetCode(err))

	_, err = ParseStructuredSheet(src, "S", ParseOptions{})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = ParseStructuredSheet(src, "S", AtRow(50))
	assert.True(t, errors.Is(err, core.ErrHeaderNotFound))

	_, err = ParseStructuredSheet(src, "OTRA", AtRow(3))
	assert.True(t, errors.Is(err, core.ErrSheetNotFound))
}
