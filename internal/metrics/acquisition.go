package metrics

import (
	"sort"
	"strconv"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"
)

// AcquisitionRow summarizes one acquisition channel.
type AcquisitionRow struct {
	Channel         table.Value `json:"channel"`
	DistinctClients int         `json:"distinct_clients"`
	JobCount        int         `json:"jobs"`
	TotalBilled     float64     `json:"billed"`
}

// AggregateAcquisition groups by CAPTACIÓN CLIENTE, counting distinct
// clients, jobs and billed amount. Jobs without a channel form their own
// group. ok is false without the channel or CLIENTE column. Rows are sorted
// by distinct clients, most first.
func AggregateAcquisition(t *table.Table) ([]AcquisitionRow, bool) {
	if !t.HasAll(schema.Acquisition, schema.Client) {
		return nil, false
	}

	type acc struct {
		row     AcquisitionRow
		clients map[string]bool
	}
	groups := make(map[string]*acc)
	var order []string
	for i := 0; i < t.Len(); i++ {
		ch := t.Get(i, schema.Acquisition)
		a, ok := groups[ch.Key()]
		if !ok {
			a = &acc{row: AcquisitionRow{Channel: ch}, clients: map[string]bool{}}
			groups[ch.Key()] = a
			order = append(order, ch.Key())
		}
		if c := t.Get(i, schema.Client); !c.IsMissing() {
			a.clients[c.Key()] = true
		}
		if !t.Get(i, schema.JobName).IsMissing() {
			a.row.JobCount++
		}
		if p, ok := t.Get(i, schema.Price).Float(); ok {
			a.row.TotalBilled += p
		}
	}

	rows := make([]AcquisitionRow, 0, len(order))
	for _, k := range order {
		a := groups[k]
		a.row.DistinctClients = len(a.clients)
		rows = append(rows, a.row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DistinctClients > rows[j].DistinctClients
	})
	return rows, true
}

// PaymentRow summarizes one payment status.
type PaymentRow struct {
	Status   table.Value `json:"status"`
	JobCount int         `json:"jobs"`
	Amount   float64     `json:"amount"`
}

// AggregatePayments groups by ESTADO, summing MI PRECIO. Missing statuses
// form their own group. ok is false without both columns. Rows are sorted
// by amount, largest first.
func AggregatePayments(t *table.Table) ([]PaymentRow, bool) {
	if !t.HasAll(schema.Status, schema.Price) {
		return nil, false
	}
	groups := make(map[string]*PaymentRow)
	var order []string
	for i := 0; i < t.Len(); i++ {
		st := t.Get(i, schema.Status)
		row, ok := groups[st.Key()]
		if !ok {
			row = &PaymentRow{Status: st}
			groups[st.Key()] = row
			order = append(order, st.Key())
		}
		if !t.Get(i, schema.JobName).IsMissing() {
			row.JobCount++
		}
		if p, ok := t.Get(i, schema.Price).Float(); ok {
			row.Amount += p
		}
	}

	rows := make([]PaymentRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, *groups[k])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount > rows[j].Amount
	})
	return rows, true
}

// YearClientTypeRow is the billed amount of one client type in one year.
type YearClientTypeRow struct {
	Year        int     `json:"year"`
	ClientType  string  `json:"client_type"`
	TotalBilled float64 `json:"billed"`
}

// AggregateYearByClientType sums MI PRECIO per (AÑO, TIPO DE CLIENTE),
// skipping rows missing any of the three. Sorted by year, then billed
// amount, largest first.
func AggregateYearByClientType(t *table.Table) ([]YearClientTypeRow, bool) {
	if !t.HasAll(schema.Year, schema.ClientType, schema.Price) {
		return nil, false
	}
	groups := make(map[string]*YearClientTypeRow)
	var order []string
	for i := 0; i < t.Len(); i++ {
		y, okY := t.Get(i, schema.Year).Float()
		ct := t.Get(i, schema.ClientType)
		p, okP := t.Get(i, schema.Price).Float()
		if !okY || !okP || ct.IsMissing() {
			continue
		}
		key := strconv.Itoa(int(y)) + "\x1f" + ct.Key()
		row, ok := groups[key]
		if !ok {
			row = &YearClientTypeRow{Year: int(y), ClientType: ct.String()}
			groups[key] = row
			order = append(order, key)
		}
		row.TotalBilled += p
	}

	rows := make([]YearClientTypeRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, *groups[k])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].TotalBilled > rows[j].TotalBilled
	})
	return rows, true
}
