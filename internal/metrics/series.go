package metrics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"
)

// SeriesPoint is one month of the intake versus delivery series.
type SeriesPoint struct {
	Period          string  `json:"period"`
	JobsIntaken     int     `json:"jobs_intaken"`
	AmountIntaken   float64 `json:"amount_intaken"`
	AmountDelivered float64 `json:"amount_delivered"`
}

// BuildIntakeVsDeliverySeries counts jobs and billed amount by intake
// month (YM_ENCARGO) and billed amount by delivery month (FECHA ENTREGA),
// then joins both on the month. A month seen on one side only gets zeros
// for the other. Rows without a period are skipped and the output is in
// chronological order.
func BuildIntakeVsDeliverySeries(t *table.Table) []SeriesPoint {
	points := make(map[string]*SeriesPoint)
	at := func(period string) *SeriesPoint {
		p, ok := points[period]
		if !ok {
			p = &SeriesPoint{Period: period}
			points[period] = p
		}
		return p
	}

	if t.Has(schema.IntakePeriod) {
		for i := 0; i < t.Len(); i++ {
			period := strings.TrimSpace(t.Get(i, schema.IntakePeriod).String())
			if period == "" {
				continue
			}
			p := at(period)
			if !t.Get(i, schema.JobName).IsMissing() {
				p.JobsIntaken++
			}
			if price, ok := t.Get(i, schema.Price).Float(); ok {
				p.AmountIntaken += price
			}
		}
	}

	if t.HasAll(schema.DeliveryDate, schema.Price) {
		for i := 0; i < t.Len(); i++ {
			delivered, ok := t.Get(i, schema.DeliveryDate).Time()
			if !ok {
				continue
			}
			p := at(delivered.Format("2006-01"))
			if price, ok := t.Get(i, schema.Price).Float(); ok {
				p.AmountDelivered += price
			}
		}
	}

	out := make([]SeriesPoint, 0, len(points))
	for _, p := range points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := periodOrdinal(out[i].Period), periodOrdinal(out[j].Period)
		if oi != oj {
			return oi < oj
		}
		return out[i].Period < out[j].Period
	})
	return out
}

// periodOrdinal turns "YYYY-MM" into year*12+month-1. Keys that do not
// parse sort after every real month.
func periodOrdinal(period string) int {
	if t, err := time.Parse("2006-01", period); err == nil {
		return t.Year()*12 + int(t.Month()) - 1
	}
	year, month, found := strings.Cut(period, "-")
	if found {
		y, errY := strconv.Atoi(year)
		m, errM := strconv.Atoi(month)
		if errY == nil && errM == nil && m >= 1 && m <= 12 {
			return y*12 + m - 1
		}
	}
	return int(^uint(0) >> 1)
}
