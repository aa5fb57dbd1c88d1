package jobs

import (
	"sort"
	"strings"

	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"
)

// Filter narrows a job table the way the dashboard sidebar does. An empty
// selection does not filter. A selection on a column the table lacks is
// ignored. Missing cells never match a selection.
type Filter struct {
	Years          []int    `json:"years,omitempty"`
	Months         []string `json:"months,omitempty"`
	JobTypes       []string `json:"job_types,omitempty"`
	ClientTypes    []string `json:"client_types,omitempty"`
	ClientContains string   `json:"client_contains,omitempty"`
	Channels       []string `json:"channels,omitempty"`
	Statuses       []string `json:"statuses,omitempty"`
}

// IsEmpty reports whether the filter keeps every row.
func (f Filter) IsEmpty() bool {
	return len(f.Years) == 0 && len(f.Months) == 0 && len(f.JobTypes) == 0 &&
		len(f.ClientTypes) == 0 && strings.TrimSpace(f.ClientContains) == "" &&
		len(f.Channels) == 0 && len(f.Statuses) == 0
}

// Apply returns the matching rows in their original order.
func (f Filter) Apply(t *table.Table) *table.Table {
	if f.IsEmpty() {
		return t.Clone()
	}

	years := make(map[int]bool, len(f.Years))
	for _, y := range f.Years {
		years[y] = true
	}
	sets := []struct {
		column string
		values map[string]bool
	}{
		{schema.Month, stringSet(f.Months)},
		{schema.JobType, stringSet(f.JobTypes)},
		{schema.ClientType, stringSet(f.ClientTypes)},
		{schema.Acquisition, stringSet(f.Channels)},
		{schema.Status, stringSet(f.Statuses)},
	}
	needle := strings.ToLower(strings.TrimSpace(f.ClientContains))

	return t.Filter(func(i int) bool {
		if len(years) > 0 && t.Has(schema.Year) {
			y, ok := t.Get(i, schema.Year).Float()
			if !ok || !years[int(y)] {
				return false
			}
		}
		for _, s := range sets {
			if len(s.values) == 0 || !t.Has(s.column) {
				continue
			}
			v := t.Get(i, s.column)
			if v.IsMissing() || !s.values[v.String()] {
				return false
			}
		}
		if needle != "" && t.Has(schema.Client) {
			v := t.Get(i, schema.Client)
			if v.IsMissing() || !strings.Contains(strings.ToLower(v.String()), needle) {
				return false
			}
		}
		return true
	})
}

func stringSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

// Facets lists the distinct, sorted values a Filter can select from.
type Facets struct {
	Years       []int    `json:"years"`
	Months      []string `json:"months"`
	JobTypes    []string `json:"job_types"`
	ClientTypes []string `json:"client_types"`
	Channels    []string `json:"channels"`
	Statuses    []string `json:"statuses"`
}

// BuildFacets collects the filter options present in t.
func BuildFacets(t *table.Table) Facets {
	seenYears := map[int]bool{}
	f := Facets{Years: []int{}}
	for i := 0; i < t.Len(); i++ {
		if y, ok := t.Get(i, schema.Year).Float(); ok && !seenYears[int(y)] {
			seenYears[int(y)] = true
			f.Years = append(f.Years, int(y))
		}
	}
	sort.Ints(f.Years)
	f.Months = distinct(t, schema.Month)
	f.JobTypes = distinct(t, schema.JobType)
	f.ClientTypes = distinct(t, schema.ClientType)
	f.Channels = distinct(t, schema.Acquisition)
	f.Statuses = distinct(t, schema.Status)
	return f
}

func distinct(t *table.Table, column string) []string {
	out := []string{}
	seen := map[string]bool{}
	for i := 0; i < t.Len(); i++ {
		v := t.Get(i, column)
		if v.IsMissing() || seen[v.String()] {
			continue
		}
		seen[v.String()] = true
		out = append(out, v.String())
	}
	sort.Strings(out)
	return out
}
