package metrics

import (
	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"
	"jobmetrics/internal"
)

// Metric table keys.
const (
	KeyKPIs                      = "kpis"
	KeyByJobType                 = "by_tipo_trabajo"
	KeyByClientType              = "by_tipo_cliente"
	KeyByClient                  = "by_cliente"
	KeyPayments                  = "pagos"
	KeySeries                    = "time_series_dual"
	KeyAcquisition               = "by_captacion"
	KeyYearByClientType          = "by_anio_tipo_cliente"
	KeyActions                   = "acciones_tt_tc"
	KeyJobTypeRecommendations    = "recomendaciones_tipo_trabajo"
	KeyClientTypeRecommendations = "recomendaciones_tipo_cliente"
	KeyTopClients                = "top_clientes_rentables"
	KeyBottomClients             = "clientes_menos_rentables"
)

// ClientRankingSize is how many clients each profitability ranking keeps.
const ClientRankingSize = 15

// Report is the full set of metrics derived from one job table.
type Report struct {
	KPIs                      KPISummary
	ByJobType                 []ProfitRow
	ByClientType              []ProfitRow
	ByClient                  []ProfitRow
	Payments                  []PaymentRow
	Series                    []SeriesPoint
	Acquisition               []AcquisitionRow
	YearByClientType          []YearClientTypeRow
	Actions                   Classification
	JobTypeRecommendations    Classification
	ClientTypeRecommendations Classification
	TopClients                []ProfitRow
	BottomClients             []ProfitRow
	// Insufficient lists the keys whose inputs were missing from the table;
	// their tables are present but empty.
	Insufficient []string
}

// NamedTable is one entry of the metric mapping.
type NamedTable struct {
	Key   string
	Table *table.Table
}

// Build computes every metric of t.
func Build(t *table.Table) *Report {
	r := &Report{KPIs: SummarizeKPIs(t)}
	insufficient := func(key string, ok bool) {
		if !ok {
			r.Insufficient = append(r.Insufficient, key)
		}
	}

	var ok bool
	r.ByJobType, ok = AggregateByDimension(t, schema.JobType)
	SortByBilled(r.ByJobType)
	insufficient(KeyByJobType, ok)

	r.ByClientType, ok = AggregateByDimension(t, schema.ClientType)
	SortByBilled(r.ByClientType)
	insufficient(KeyByClientType, ok)

	r.ByClient, ok = AggregateByDimension(t, schema.Client)
	SortByBilled(r.ByClient)
	insufficient(KeyByClient, ok)

	r.Payments, ok = AggregatePayments(t)
	insufficient(KeyPayments, ok)

	r.Series = BuildIntakeVsDeliverySeries(t)
	insufficient(KeySeries, len(r.Series) > 0)

	r.Acquisition, ok = AggregateAcquisition(t)
	insufficient(KeyAcquisition, ok)

	r.YearByClientType, ok = AggregateYearByClientType(t)
	insufficient(KeyYearByClientType, ok)

	pairs, ok := AggregateByDimensions(t, schema.JobType, schema.ClientType)
	r.Actions = Classify(pairs, TwoDimensionConfig())
	insufficient(KeyActions, ok && len(pairs) > 0)

	r.JobTypeRecommendations = Classify(r.ByJobType, SingleDimensionConfig())
	insufficient(KeyJobTypeRecommendations, len(r.JobTypeRecommendations.Rows) > 0)

	r.ClientTypeRecommendations = Classify(r.ByClientType, SingleDimensionConfig())
	insufficient(KeyClientTypeRecommendations, len(r.ClientTypeRecommendations.Rows) > 0)

	r.TopClients = TopN(r.ByClient, ClientRankingSize, RankByRate)
	insufficient(KeyTopClients, len(r.TopClients) > 0)
	r.BottomClients = TopN(r.ByClient, ClientRankingSize, RankByRateAscending)
	insufficient(KeyBottomClients, len(r.BottomClients) > 0)

	internal.DefaultLogger.Debug("[Metrics] %d jobs, %d job types, %d clients, %d months, insufficient=%v",
		r.KPIs.Jobs, len(r.ByJobType), len(r.ByClient), len(r.Series), r.Insufficient)
	return r
}

// Tables renders the report as named tables in a fixed key order.
func (r *Report) Tables() []NamedTable {
	return []NamedTable{
		{KeyKPIs, kpiTable(r.KPIs)},
		{KeyByJobType, profitTable(schema.JobType, r.ByJobType)},
		{KeyByClientType, profitTable(schema.ClientType, r.ByClientType)},
		{KeyByClient, profitTable(schema.Client, r.ByClient)},
		{KeyPayments, paymentsTable(r.Payments)},
		{KeySeries, seriesTable(r.Series)},
		{KeyAcquisition, acquisitionTable(r.Acquisition)},
		{KeyYearByClientType, yearTable(r.YearByClientType)},
		{KeyActions, classificationTable([]string{schema.JobType, schema.ClientType}, "accion", r.Actions)},
		{KeyJobTypeRecommendations, classificationTable([]string{schema.JobType}, "recomendacion", r.JobTypeRecommendations)},
		{KeyClientTypeRecommendations, classificationTable([]string{schema.ClientType}, "recomendacion", r.ClientTypeRecommendations)},
		{KeyTopClients, profitTable(schema.Client, r.TopClients)},
		{KeyBottomClients, profitTable(schema.Client, r.BottomClients)},
	}
}

// Table returns the named table.
func (r *Report) Table(key string) (*table.Table, bool) {
	for _, nt := range r.Tables() {
		if nt.Key == key {
			return nt.Table, true
		}
	}
	return nil, false
}

func num(f float64) table.Value { return table.NewNumericValue(f) }

func count(n int) table.Value { return table.NewNumericValue(float64(n)) }

func mustAppend(t *table.Table, cells ...table.Value) {
	if err := t.AppendRow(cells); err != nil {
		panic(err)
	}
}

func kpiTable(k KPISummary) *table.Table {
	t := table.MustNew("trabajos_total", "facturacion_total", "ingreso_medio_por_trabajo",
		"horas_totales", "precio_medio_por_hora", "clientes_unicos")
	mustAppend(t, count(k.Jobs), k.TotalBilled, k.MeanBilledPerJob, k.TotalHours, k.RatePerHour, count(k.DistinctClients))
	return t
}

func profitTable(dimension string, rows []ProfitRow) *table.Table {
	t := table.MustNew(dimension, "trabajos", "facturacion", "horas",
		"ingreso_medio_por_trabajo", "precio_medio_por_hora")
	for _, r := range rows {
		mustAppend(t, r.Label(), count(r.JobCount), num(r.TotalBilled), num(r.TotalHours), r.MeanBilledPerJob, r.RatePerHour)
	}
	return t
}

func paymentsTable(rows []PaymentRow) *table.Table {
	t := table.MustNew(schema.Status, "trabajos", "importe")
	for _, r := range rows {
		mustAppend(t, r.Status, count(r.JobCount), num(r.Amount))
	}
	return t
}

func seriesTable(points []SeriesPoint) *table.Table {
	t := table.MustNew("YM", "encargos_entrados", "importe_entrado", "facturacion_entrega")
	for _, p := range points {
		mustAppend(t, table.NewStringValue(p.Period), count(p.JobsIntaken), num(p.AmountIntaken), num(p.AmountDelivered))
	}
	return t
}

func acquisitionTable(rows []AcquisitionRow) *table.Table {
	t := table.MustNew(schema.Acquisition, "clientes_unicos", "trabajos", "facturacion")
	for _, r := range rows {
		mustAppend(t, r.Channel, count(r.DistinctClients), count(r.JobCount), num(r.TotalBilled))
	}
	return t
}

func yearTable(rows []YearClientTypeRow) *table.Table {
	t := table.MustNew(schema.Year, schema.ClientType, "facturacion")
	for _, r := range rows {
		mustAppend(t, count(r.Year), table.NewStringValue(r.ClientType), num(r.TotalBilled))
	}
	return t
}

// classificationTable lists rows bucket by bucket, each in its sort order.
func classificationTable(dimensions []string, labelColumn string, c Classification) *table.Table {
	cols := append(append([]string{}, dimensions...), "trabajos", "horas", "facturacion", "eur_h", labelColumn)
	t := table.MustNew(cols...)
	for _, q := range Quadrants() {
		label := table.NewStringValue(c.Labels().Label(q))
		for _, r := range c.Bucket(q) {
			cells := make([]table.Value, 0, len(cols))
			for k := range dimensions {
				if k < len(r.Dimensions) {
					cells = append(cells, r.Dimensions[k])
				} else {
					cells = append(cells, table.Missing())
				}
			}
			cells = append(cells, count(r.JobCount), num(r.TotalHours), num(r.TotalBilled), r.RatePerHour, label)
			mustAppend(t, cells...)
		}
	}
	return t
}
