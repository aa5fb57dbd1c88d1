package metrics

import (
	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"

	"gonum.org/v1/gonum/floats"
)

// KPISummary holds the headline figures of a job table.
type KPISummary struct {
	Jobs             int         `json:"jobs"`
	TotalBilled      table.Value `json:"total_billed"`
	MeanBilledPerJob table.Value `json:"mean_billed_per_job"`
	TotalHours       table.Value `json:"total_hours"`
	RatePerHour      table.Value `json:"rate_per_hour"`
	DistinctClients  int         `json:"distinct_clients"`
}

// SummarizeKPIs counts every row as a job. Totals are missing when the
// column is absent or holds no numbers; the mean divides by all jobs.
func SummarizeKPIs(t *table.Table) KPISummary {
	k := KPISummary{Jobs: t.Len()}

	billed, okB := columnSum(t, schema.Price)
	hours, okH := columnSum(t, schema.Hours)
	k.TotalBilled = table.OptionalNumber(billed, okB)
	k.TotalHours = table.OptionalNumber(hours, okH)
	k.MeanBilledPerJob = table.OptionalNumber(billed/float64(max(k.Jobs, 1)), okB && k.Jobs > 0)
	k.RatePerHour = table.Missing()
	if okB && okH {
		k.RatePerHour = ratePerHour(billed, hours)
	}

	clients := make(map[string]bool)
	for i := 0; i < t.Len(); i++ {
		if c := t.Get(i, schema.Client); !c.IsMissing() {
			clients[c.Key()] = true
		}
	}
	k.DistinctClients = len(clients)
	return k
}

// columnSum adds the numeric cells of a column; ok is false when there are
// none.
func columnSum(t *table.Table, column string) (float64, bool) {
	cells, ok := t.Column(column)
	if !ok {
		return 0, false
	}
	var nums []float64
	for _, c := range cells {
		if f, ok := c.Float(); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return 0, false
	}
	return floats.Sum(nums), true
}
