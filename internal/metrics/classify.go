package metrics

import (
	"sort"

	"jobmetrics/domain/table"

	"github.com/montanaflynn/stats"
)

// Quadrant is one of the four median-split regions, or no data.
type Quadrant int

const (
	HighBilledHighRate Quadrant = iota
	HighBilledLowRate
	LowBilledHighRate
	LowBilledLowRate
	NoData
)

// QuadrantLabels names each quadrant for one use of the classification.
type QuadrantLabels struct {
	HighBilledHighRate string
	HighBilledLowRate  string
	LowBilledHighRate  string
	LowBilledLowRate   string
	NoData             string
}

// Label returns the name of q.
func (l QuadrantLabels) Label(q Quadrant) string {
	switch q {
	case HighBilledHighRate:
		return l.HighBilledHighRate
	case HighBilledLowRate:
		return l.HighBilledLowRate
	case LowBilledHighRate:
		return l.LowBilledHighRate
	case LowBilledLowRate:
		return l.LowBilledLowRate
	}
	return l.NoData
}

var (
	// SingleDimensionLabels are the recommendations for one grouping column.
	SingleDimensionLabels = QuadrantLabels{
		HighBilledHighRate: "priority",
		HighBilledLowRate:  "optimize",
		LowBilledHighRate:  "opportunity",
		LowBilledLowRate:   "avoid",
	}
	// TwoDimensionLabels are the actions for job type × client type.
	TwoDimensionLabels = QuadrantLabels{
		HighBilledHighRate: "escalate",
		HighBilledLowRate:  "review",
		LowBilledHighRate:  "opportunity",
		LowBilledLowRate:   "avoid",
		NoData:             "no_data",
	}
)

// QuadrantConfig parameterizes Classify.
type QuadrantConfig struct {
	Billed     func(ProfitRow) (float64, bool)
	Rate       func(ProfitRow) (float64, bool)
	Labels     QuadrantLabels
	KeepNoData bool
}

// SingleDimensionConfig drops rows lacking either metric.
func SingleDimensionConfig() QuadrantConfig {
	return QuadrantConfig{
		Billed: ProfitRow.Billed,
		Rate:   ProfitRow.Rate,
		Labels: SingleDimensionLabels,
	}
}

// TwoDimensionConfig keeps rows lacking either metric in a no-data bucket.
func TwoDimensionConfig() QuadrantConfig {
	return QuadrantConfig{
		Billed:     ProfitRow.Billed,
		Rate:       ProfitRow.Rate,
		Labels:     TwoDimensionLabels,
		KeepNoData: true,
	}
}

// ClassifiedRow pairs an input row with its quadrant.
type ClassifiedRow struct {
	Row      ProfitRow `json:"row"`
	Quadrant Quadrant  `json:"-"`
	Label    string    `json:"label"`
}

// Classification is the outcome of Classify.
type Classification struct {
	BilledMedian table.Value
	RateMedian   table.Value
	// Rows holds every kept input row in input order.
	Rows    []ClassifiedRow
	buckets map[Quadrant][]ProfitRow
	labels  QuadrantLabels
}

// Bucket returns the rows of one quadrant in that quadrant's sort order.
func (c Classification) Bucket(q Quadrant) []ProfitRow {
	return c.buckets[q]
}

// Labels returns the label set the classification was built with.
func (c Classification) Labels() QuadrantLabels {
	return c.labels
}

// Classify splits rows at the median billed amount and the median rate,
// each median taken over the rows where that metric is present. A row at
// the median counts as high. Rows lacking either metric go to NoData when
// cfg.KeepNoData is set and are dropped otherwise. If a metric is absent on
// every row, no medians exist and every row lacks data.
func Classify(rows []ProfitRow, cfg QuadrantConfig) Classification {
	var billedVals, rateVals stats.Float64Data
	for _, r := range rows {
		if b, ok := cfg.Billed(r); ok {
			billedVals = append(billedVals, b)
		}
		if v, ok := cfg.Rate(r); ok {
			rateVals = append(rateVals, v)
		}
	}
	billedMed, errB := stats.Median(billedVals)
	rateMed, errR := stats.Median(rateVals)
	haveMedians := errB == nil && errR == nil

	c := Classification{
		BilledMedian: table.OptionalNumber(billedMed, errB == nil),
		RateMedian:   table.OptionalNumber(rateMed, errR == nil),
		buckets:      make(map[Quadrant][]ProfitRow),
		labels:       cfg.Labels,
	}
	for _, r := range rows {
		b, bok := cfg.Billed(r)
		v, vok := cfg.Rate(r)
		q := NoData
		if haveMedians && bok && vok {
			q = quadrantOf(b >= billedMed, v >= rateMed)
		}
		if q == NoData && !cfg.KeepNoData {
			continue
		}
		c.Rows = append(c.Rows, ClassifiedRow{Row: r, Quadrant: q, Label: cfg.Labels.Label(q)})
		c.buckets[q] = append(c.buckets[q], r)
	}

	for q, bucket := range c.buckets {
		sortBucket(q, bucket, cfg)
	}
	return c
}

func quadrantOf(highBilled, highRate bool) Quadrant {
	switch {
	case highBilled && highRate:
		return HighBilledHighRate
	case highBilled:
		return HighBilledLowRate
	case highRate:
		return LowBilledHighRate
	}
	return LowBilledLowRate
}

// sortBucket orders a quadrant: volume first for the high-billed and the
// low-low quadrants, rate first for the low-billed high-rate one.
func sortBucket(q Quadrant, rows []ProfitRow, cfg QuadrantConfig) {
	if q == NoData {
		return
	}
	metric := func(r ProfitRow) (float64, float64) {
		b, _ := cfg.Billed(r)
		v, _ := cfg.Rate(r)
		return b, v
	}
	sort.SliceStable(rows, func(i, j int) bool {
		bi, ri := metric(rows[i])
		bj, rj := metric(rows[j])
		switch q {
		case HighBilledHighRate:
			if bi != bj {
				return bi > bj
			}
			return ri > rj
		case LowBilledHighRate:
			if ri != rj {
				return ri > rj
			}
			return bi > bj
		default:
			if bi != bj {
				return bi > bj
			}
			return ri < rj
		}
	})
}

// Quadrants lists the quadrants in presentation order.
func Quadrants() []Quadrant {
	return []Quadrant{HighBilledHighRate, HighBilledLowRate, LowBilledHighRate, LowBilledLowRate, NoData}
}
