// Package metrics derives the studio's metric tables from a normalized job
// table. Every function is a pure computation over its input; nothing is
// cached or mutated.
package metrics

import (
	"math"
	"sort"
	"strings"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"

	"gonum.org/v1/gonum/floats"
)

// ProfitRow is one group of a profitability aggregate.
type ProfitRow struct {
	Dimensions       []table.Value `json:"dimensions"`
	JobCount         int           `json:"jobs"`
	TotalBilled      float64       `json:"billed"`
	TotalHours       float64       `json:"hours"`
	RatePerHour      table.Value   `json:"rate_per_hour"`
	MeanBilledPerJob table.Value   `json:"mean_billed_per_job"`
}

// Label is the first grouping value, the whole key for single-dimension
// aggregates.
func (r ProfitRow) Label() table.Value {
	if len(r.Dimensions) == 0 {
		return table.Missing()
	}
	return r.Dimensions[0]
}

// Billed returns the summed price of the group.
func (r ProfitRow) Billed() (float64, bool) {
	return r.TotalBilled, !math.IsNaN(r.TotalBilled)
}

// Rate returns billed per hour, absent when the group logged no hours.
func (r ProfitRow) Rate() (float64, bool) {
	return r.RatePerHour.Float()
}

// ratePerHour divides only when hours are positive.
func ratePerHour(billed, hours float64) table.Value {
	if hours <= 0 || math.IsNaN(hours) {
		return table.Missing()
	}
	r := billed / hours
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return table.Missing()
	}
	return table.NewNumericValue(r)
}

type profitAcc struct {
	dims   []table.Value
	jobs   int
	prices []float64
	hours  []float64
}

// AggregateByDimension groups jobs by one column. Missing dimension values
// form their own group. ok is false when the dimension, MI PRECIO,
// HORAS DEDICADAS or NOMBRE ENCARGO column is absent. Groups come out in
// first-seen order.
func AggregateByDimension(t *table.Table, dimension string) ([]ProfitRow, bool) {
	return aggregateProfit(t, []string{dimension}, false)
}

// AggregateByDimensions groups jobs by several columns at once. Rows missing
// any of the dimensions are left out.
func AggregateByDimensions(t *table.Table, dimensions ...string) ([]ProfitRow, bool) {
	return aggregateProfit(t, dimensions, true)
}

func aggregateProfit(t *table.Table, dims []string, dropMissing bool) ([]ProfitRow, bool) {
	required := append([]string{schema.Price, schema.Hours, schema.JobName}, dims...)
	if len(dims) == 0 || !t.HasAll(required...) {
		return nil, false
	}

	groups := make(map[string]*profitAcc)
	var order []string
	for i := 0; i < t.Len(); i++ {
		key, values, ok := groupKey(t, i, dims, dropMissing)
		if !ok {
			continue
		}
		acc, seen := groups[key]
		if !seen {
			acc = &profitAcc{dims: values}
			groups[key] = acc
			order = append(order, key)
		}
		if !t.Get(i, schema.JobName).IsMissing() {
			acc.jobs++
		}
		if p, ok := t.Get(i, schema.Price).Float(); ok {
			acc.prices = append(acc.prices, p)
		}
		if h, ok := t.Get(i, schema.Hours).Float(); ok {
			acc.hours = append(acc.hours, h)
		}
	}

	rows := make([]ProfitRow, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		billed := floats.Sum(acc.prices)
		hours := floats.Sum(acc.hours)
		mean := table.Missing()
		if len(acc.prices) > 0 {
			mean = table.NewNumericValue(billed / float64(len(acc.prices)))
		}
		rows = append(rows, ProfitRow{
			Dimensions:       acc.dims,
			JobCount:         acc.jobs,
			TotalBilled:      billed,
			TotalHours:       hours,
			RatePerHour:      ratePerHour(billed, hours),
			MeanBilledPerJob: mean,
		})
	}
	return rows, true
}

func groupKey(t *table.Table, i int, dims []string, dropMissing bool) (string, []table.Value, bool) {
	values := make([]table.Value, len(dims))
	parts := make([]string, len(dims))
	for k, d := range dims {
		v := t.Get(i, d)
		if dropMissing && v.IsMissing() {
			return "", nil, false
		}
		values[k] = v
		parts[k] = v.Key()
	}
	return strings.Join(parts, "\x1f"), values, true
}

// SortByBilled orders rows by billed amount, highest first. Ties keep their
// previous order.
func SortByBilled(rows []ProfitRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalBilled > rows[j].TotalBilled
	})
}

// RankBy selects the ordering used by TopN.
type RankBy int

const (
	RankByRate RankBy = iota
	RankByRateAscending
	RankByBilled
	RankByJobs
)

// TopN returns the first n rows under the given ranking without changing
// rows. Rows without a rate always rank after rows with one.
func TopN(rows []ProfitRow, n int, by RankBy) []ProfitRow {
	out := make([]ProfitRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		switch by {
		case RankByBilled:
			return out[i].TotalBilled > out[j].TotalBilled
		case RankByJobs:
			return out[i].JobCount > out[j].JobCount
		}
		ri, iok := out[i].Rate()
		rj, jok := out[j].Rate()
		if iok != jok {
			return iok
		}
		if by == RankByRateAscending {
			return ri < rj
		}
		return ri > rj
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
