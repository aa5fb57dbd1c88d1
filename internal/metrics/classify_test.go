package metrics

import (
	"testing"

	"jobmetrics/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profitRow(label string, billed float64, rate *float64) ProfitRow {
	return ProfitRow{
		Dimensions:  []table.Value{str(label)},
		TotalBilled: billed,
		RatePerHour: optional(rate),
	}
}

func bucketLabels(c Classification, q Quadrant) []string {
	var out []string
	for _, r := range c.Bucket(q) {
		out = append(out, r.Label().AsString())
	}
	return out
}

func quadrantFixture() []ProfitRow {
	// billed median 300, rate median 30; the no-rate row still counts
	// toward the billed median
	return []ProfitRow{
		profitRow("big-fast", 500, f(50)),
		profitRow("big-slow", 400, f(10)),
		profitRow("small-fast", 100, f(60)),
		profitRow("small-slow", 200, f(20)),
		profitRow("median", 300, f(30)),
		profitRow("no-rate", 300, nil),
	}
}

func TestClassifyTwoDimension(t *testing.T) {
	c := Classify(quadrantFixture(), TwoDimensionConfig())

	assert.Equal(t, 300.0, c.BilledMedian.AsFloat64())
	assert.Equal(t, 30.0, c.RateMedian.AsFloat64())

	assert.Equal(t, []string{"big-fast", "median"}, bucketLabels(c, HighBilledHighRate))
	assert.Equal(t, []string{"big-slow"}, bucketLabels(c, HighBilledLowRate))
	assert.Equal(t, []string{"small-fast"}, bucketLabels(c, LowBilledHighRate))
	assert.Equal(t, []string{"small-slow"}, bucketLabels(c, LowBilledLowRate))
	assert.Equal(t, []string{"no-rate"}, bucketLabels(c, NoData))

	// every row lands in exactly one bucket
	seen := map[string]int{}
	for _, q := range Quadrants() {
		for _, l := range bucketLabels(c, q) {
			seen[l]++
		}
	}
	require.Len(t, seen, 6)
	for l, n := range seen {
		assert.Equal(t, 1, n, l)
	}

	labels := map[string]string{}
	for _, r := range c.Rows {
		labels[r.Row.Label().AsString()] = r.Label
	}
	assert.Equal(t, "escalate", labels["big-fast"])
	assert.Equal(t, "review", labels["big-slow"])
	assert.Equal(t, "opportunity", labels["small-fast"])
	assert.Equal(t, "avoid", labels["small-slow"])
	assert.Equal(t, "no_data", labels["no-rate"])
}

func TestClassifySingleDimensionOmitsNoData(t *testing.T) {
	c := Classify(quadrantFixture(), SingleDimensionConfig())

	assert.Len(t, c.Rows, 5)
	assert.Empty(t, c.Bucket(NoData))
	for _, r := range c.Rows {
		assert.NotEqual(t, "no-rate", r.Row.Label().AsString())
	}
	assert.Equal(t, "priority", SingleDimensionLabels.Label(HighBilledHighRate))
	assert.Equal(t, []string{"big-slow"}, bucketLabels(c, HighBilledLowRate))
}

func TestClassifyBucketOrder(t *testing.T) {
	rows := []ProfitRow{
		profitRow("hh-1", 500, f(40)),
		profitRow("hh-2", 500, f(90)),
		profitRow("hh-3", 800, f(45)),
		profitRow("hl-1", 600, f(5)),
		profitRow("hl-2", 600, f(1)),
		profitRow("hl-3", 700, f(4)),
		profitRow("lh-1", 10, f(100)),
		profitRow("lh-2", 20, f(100)),
		profitRow("lh-3", 5, f(200)),
		profitRow("ll-1", 10, f(3)),
		profitRow("ll-2", 10, f(2)),
	}
	c := Classify(rows, TwoDimensionConfig())

	assert.Equal(t, []string{"hh-3", "hh-2", "hh-1"}, bucketLabels(c, HighBilledHighRate))
	assert.Equal(t, []string{"hl-3", "hl-2", "hl-1"}, bucketLabels(c, HighBilledLowRate))
	assert.Equal(t, []string{"lh-3", "lh-2", "lh-1"}, bucketLabels(c, LowBilledHighRate))
	assert.Equal(t, []string{"ll-2", "ll-1"}, bucketLabels(c, LowBilledLowRate))
}

func TestClassifyWithoutRates(t *testing.T) {
	rows := []ProfitRow{profitRow("a", 10, nil), profitRow("b", 20, nil)}

	c := Classify(rows, TwoDimensionConfig())
	assert.True(t, c.RateMedian.IsMissing())
	assert.Equal(t, []string{"a", "b"}, bucketLabels(c, NoData))

	single := Classify(rows, SingleDimensionConfig())
	assert.Empty(t, single.Rows)
}

func TestClassifyIsDeterministic(t *testing.T) {
	a := Classify(quadrantFixture(), TwoDimensionConfig())
	b := Classify(quadrantFixture(), TwoDimensionConfig())
	for _, q := range Quadrants() {
		assert.Equal(t, bucketLabels(a, q), bucketLabels(b, q))
	}
}
