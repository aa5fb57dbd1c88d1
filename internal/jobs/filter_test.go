package jobs

import (
	"testing"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture(t *testing.T) *table.Table {
	t.Helper()
	tb := table.MustNew(schema.Year, schema.Month, schema.Client, schema.JobType, schema.ClientType, schema.Acquisition, schema.Status)
	s := table.NewStringValue
	n := table.NewNumericValue
	rows := [][]table.Value{
		{n(2023), s("ENERO"), s("Ana Pérez"), s("REFORMA"), s("PARTICULAR"), s("WEB"), s("PAGADO")},
		{n(2023), s("MARZO"), s("Construcciones Soria"), s("PROYECTO"), s("EMPRESA"), s("RECOMENDACIÓN"), s("PENDIENTE")},
		{n(2024), s("ENERO"), s("Ana Gil"), s("PROYECTO"), s("PARTICULAR"), table.Missing(), s("PAGADO")},
		{n(2024), s("JUNIO"), table.Missing(), s("REFORMA"), s("EMPRESA"), s("WEB"), table.Missing()},
	}
	for _, r := range rows {
		require.NoError(t, tb.AppendRow(r))
	}
	return tb
}

func clientsOf(tb *table.Table) []string {
	var out []string
	for i := 0; i < tb.Len(); i++ {
		out = append(out, tb.Get(i, schema.Client).String())
	}
	return out
}

func TestFilterApply(t *testing.T) {
	tb := filterFixture(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty keeps all", Filter{}, []string{"Ana Pérez", "Construcciones Soria", "Ana Gil", ""}},
		{"year", Filter{Years: []int{2024}}, []string{"Ana Gil", ""}},
		{"month", Filter{Months: []string{"ENERO"}}, []string{"Ana Pérez", "Ana Gil"}},
		{"job type and client type", Filter{JobTypes: []string{"REFORMA"}, ClientTypes: []string{"EMPRESA"}}, []string{""}},
		{"client contains ignores case", Filter{ClientContains: "ana"}, []string{"Ana Pérez", "Ana Gil"}},
		{"channel skips missing", Filter{Channels: []string{"WEB", "RECOMENDACIÓN"}}, []string{"Ana Pérez", "Construcciones Soria", ""}},
		{"status", Filter{Statuses: []string{"PAGADO"}}, []string{"Ana Pérez", "Ana Gil"}},
		{"no match", Filter{Years: []int{2020}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(tb)
			assert.Equal(t, tt.want, clientsOf(got))
		})
	}
	assert.Equal(t, 4, tb.Len(), "source table must not change")
}

func TestFilterIgnoresAbsentColumns(t *testing.T) {
	tb := table.MustNew(schema.Client)
	require.NoError(t, tb.AppendRow([]table.Value{table.NewStringValue("Ana")}))

	got := Filter{JobTypes: []string{"REFORMA"}}.Apply(tb)
	assert.Equal(t, 1, got.Len())
}

func TestBuildFacets(t *testing.T) {
	f := BuildFacets(filterFixture(t))
	assert.Equal(t, []int{2023, 2024}, f.Years)
	assert.Equal(t, []string{"ENERO", "JUNIO", "MARZO"}, f.Months)
	assert.Equal(t, []string{"PROYECTO", "REFORMA"}, f.JobTypes)
	assert.Equal(t, []string{"RECOMENDACIÓN", "WEB"}, f.Channels)
	assert.Equal(t, []string{"PAGADO", "PENDIENTE"}, f.Statuses)
	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{ClientContains: "x"}.IsEmpty())
}
