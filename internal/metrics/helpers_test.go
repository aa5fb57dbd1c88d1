package metrics

import (
	"testing"
	"time"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"

	"github.com/stretchr/testify/require"
)

// job describes one fixture row; nil numbers are missing.
type job struct {
	name, client, jobType, clientType, channel, status, period string
	price, hours                                               *float64
	delivered                                                  time.Time
	year                                                       float64
}

func f(v float64) *float64 { return &v }

func str(s string) table.Value { return table.NewStringValue(s) }

func optional(p *float64) table.Value {
	if p == nil {
		return table.Missing()
	}
	return table.NewNumericValue(*p)
}

func jobTable(t *testing.T, jobs ...job) *table.Table {
	t.Helper()
	tb := table.MustNew(schema.Year, schema.Client, schema.JobName, schema.JobType, schema.ClientType,
		schema.Acquisition, schema.Status, schema.Price, schema.Hours, schema.DeliveryDate, schema.IntakePeriod)
	for _, j := range jobs {
		year := table.Missing()
		if j.year != 0 {
			year = table.NewNumericValue(j.year)
		}
		delivered := table.Missing()
		if !j.delivered.IsZero() {
			delivered = table.NewTimestampValue(j.delivered)
		}
		require.NoError(t, tb.AppendRow([]table.Value{
			year, str(j.client), str(j.name), str(j.jobType), str(j.clientType),
			str(j.channel), str(j.status), optional(j.price), optional(j.hours), delivered, str(j.period),
		}))
	}
	return tb
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
