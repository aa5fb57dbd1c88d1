package metrics

import (
	"testing"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateByDimensionRateGuard(t *testing.T) {
	tb := jobTable(t,
		job{name: "a", jobType: "CERO", price: f(60), hours: f(0)},
		job{name: "b", jobType: "CERO", price: f(40), hours: f(0)},
		job{name: "c", jobType: "CUATRO", price: f(100), hours: f(4)},
		job{name: "d", jobType: "SIN HORAS", price: f(100)},
	)

	rows, ok := AggregateByDimension(tb, schema.JobType)
	require.True(t, ok)
	require.Len(t, rows, 3)

	tests := []struct {
		label   string
		billed  float64
		rate    float64
		hasRate bool
	}{
		{"CERO", 100, 0, false},
		{"CUATRO", 100, 25, true},
		{"SIN HORAS", 100, 0, false},
	}
	for i, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			r := rows[i]
			assert.Equal(t, tt.label, r.Label().AsString())
			assert.Equal(t, tt.billed, r.TotalBilled)
			rate, ok := r.Rate()
			assert.Equal(t, tt.hasRate, ok)
			assert.Equal(t, tt.rate, rate)
			assert.True(t, r.RatePerHour.IsMissing() != tt.hasRate)
		})
	}
}

func TestAggregateByDimensionGroups(t *testing.T) {
	tb := jobTable(t,
		job{name: "a", jobType: "REFORMA", price: f(100), hours: f(10)},
		job{name: "", jobType: "REFORMA", price: f(50), hours: f(5)},
		job{name: "c", jobType: "", price: f(30)},
		job{name: "d", jobType: "", hours: f(2)},
		job{name: "e", jobType: "REFORMA"},
	)

	rows, ok := AggregateByDimension(tb, schema.JobType)
	require.True(t, ok)
	require.Len(t, rows, 2)

	reforma := rows[0]
	assert.Equal(t, 2, reforma.JobCount, "jobs without a name are not counted")
	assert.Equal(t, 150.0, reforma.TotalBilled)
	assert.Equal(t, 15.0, reforma.TotalHours)
	assert.Equal(t, 10.0, reforma.RatePerHour.AsFloat64())
	assert.Equal(t, 75.0, reforma.MeanBilledPerJob.AsFloat64())

	missing := rows[1]
	assert.True(t, missing.Label().IsMissing(), "missing dimension values form their own group")
	assert.Equal(t, 2, missing.JobCount)
	assert.Equal(t, 30.0, missing.TotalBilled)
	assert.Equal(t, 15.0, missing.RatePerHour.AsFloat64())
}

func TestAggregateByDimensionInsufficient(t *testing.T) {
	tb := table.MustNew(schema.JobType, schema.JobName, schema.Price)
	rows, ok := AggregateByDimension(tb, schema.JobType)
	assert.False(t, ok)
	assert.Empty(t, rows)

	_, ok = AggregateByDimension(jobTable(t), "NO EXISTE")
	assert.False(t, ok)
}

func TestAggregateByDimensionsDropsMissing(t *testing.T) {
	tb := jobTable(t,
		job{name: "a", jobType: "REFORMA", clientType: "PARTICULAR", price: f(100), hours: f(10)},
		job{name: "b", jobType: "REFORMA", clientType: "", price: f(999), hours: f(1)},
		job{name: "c", jobType: "REFORMA", clientType: "PARTICULAR", price: f(20), hours: f(2)},
		job{name: "d", jobType: "PROYECTO", clientType: "EMPRESA", price: f(10), hours: f(1)},
	)

	rows, ok := AggregateByDimensions(tb, schema.JobType, schema.ClientType)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, []table.Value{str("REFORMA"), str("PARTICULAR")}, rows[0].Dimensions)
	assert.Equal(t, 120.0, rows[0].TotalBilled)
	assert.Equal(t, 2, rows[0].JobCount)
}

func TestTopN(t *testing.T) {
	rows := []ProfitRow{
		{Dimensions: []table.Value{str("a")}, JobCount: 1, TotalBilled: 10, RatePerHour: table.NewNumericValue(5)},
		{Dimensions: []table.Value{str("b")}, JobCount: 3, TotalBilled: 30, RatePerHour: table.Missing()},
		{Dimensions: []table.Value{str("c")}, JobCount: 2, TotalBilled: 20, RatePerHour: table.NewNumericValue(50)},
	}
	labels := func(rs []ProfitRow) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Label().AsString())
		}
		return out
	}

	assert.Equal(t, []string{"c", "a", "b"}, labels(TopN(rows, 10, RankByRate)))
	assert.Equal(t, []string{"a", "c", "b"}, labels(TopN(rows, 10, RankByRateAscending)))
	assert.Equal(t, []string{"b", "c"}, labels(TopN(rows, 2, RankByBilled)))
	assert.Equal(t, []string{"b"}, labels(TopN(rows, 1, RankByJobs)))
	assert.Equal(t, "a", rows[0].Label().AsString(), "input is not reordered")
}
