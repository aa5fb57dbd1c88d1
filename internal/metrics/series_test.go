package metrics

import (
	"testing"
	"time"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIntakeVsDeliverySeriesOuterJoin(t *testing.T) {
	tb := jobTable(t,
		job{name: "a", period: "2024-03", price: f(100), delivered: day(2024, time.May, 2)},
		job{name: "b", period: "2024-03", price: f(50)},
		job{name: "c", period: "2023-12", price: f(10), delivered: day(2024, time.March, 30)},
		job{name: "d", period: "", price: f(999), delivered: day(2024, time.May, 20)},
		job{name: "e", period: "2024-10", delivered: day(2024, time.October, 1)},
	)

	got := BuildIntakeVsDeliverySeries(tb)
	want := []SeriesPoint{
		{Period: "2023-12", JobsIntaken: 1, AmountIntaken: 10},
		{Period: "2024-03", JobsIntaken: 2, AmountIntaken: 150, AmountDelivered: 10},
		{Period: "2024-05", AmountDelivered: 1099},
		{Period: "2024-10", JobsIntaken: 1},
	}
	assert.Equal(t, want, got)
}

func TestBuildIntakeVsDeliverySeriesOneSided(t *testing.T) {
	intakeOnly := table.MustNew(schema.JobName, schema.Price, schema.IntakePeriod)
	require.NoError(t, intakeOnly.AppendRow([]table.Value{str("a"), table.NewNumericValue(5), str("2024-01")}))
	assert.Equal(t, []SeriesPoint{{Period: "2024-01", JobsIntaken: 1, AmountIntaken: 5}},
		BuildIntakeVsDeliverySeries(intakeOnly))

	deliveryOnly := table.MustNew(schema.Price, schema.DeliveryDate)
	require.NoError(t, deliveryOnly.AppendRow([]table.Value{table.NewNumericValue(7), table.NewTimestampValue(day(2024, time.February, 3))}))
	assert.Equal(t, []SeriesPoint{{Period: "2024-02", AmountDelivered: 7}},
		BuildIntakeVsDeliverySeries(deliveryOnly))

	assert.Empty(t, BuildIntakeVsDeliverySeries(table.MustNew(schema.Client)))
}

func TestPeriodOrdinal(t *testing.T) {
	assert.Less(t, periodOrdinal("2023-12"), periodOrdinal("2024-01"))
	assert.Less(t, periodOrdinal("999-12"), periodOrdinal("2024-01"))
	assert.Less(t, periodOrdinal("2024-01"), periodOrdinal("not a month"))
}
