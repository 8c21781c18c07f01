package core

import "math"

type (
	// Totals is the four-card summary shown at the top of the dashboard.
	Totals struct {
		ComponentCount     int     `json:"componentCount"`
		ActiveProjectCount int     `json:"activeProjectCount"`
		SupplierCount      int     `json:"supplierCount"`
		TotalProjectValue  float64 `json:"totalProjectValue"`
	}

	// ChartEntry is one bar of a chart: a category label and how many items carry it.
	ChartEntry struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	}

	// ChartSeries keeps entries in the order their label was first seen.
	ChartSeries []ChartEntry

	// Dashboard bundles everything the dashboard page renders.
	Dashboard struct {
		Totals           Totals      `json:"totals"`
		ComponentsByType ChartSeries `json:"componentsByType"`
		ProjectsByStatus ChartSeries `json:"projectsByStatus"`
	}
)

// ComputeTotals derives the summary metrics. It never fails: a project without a cost
// analysis, or with a NaN or infinite price, contributes 0 to the total value.
func ComputeTotals(components []Component, projects []Project, suppliers []Supplier) Totals {
	t := Totals{
		ComponentCount: len(components),
		SupplierCount:  len(suppliers),
	}
	for _, p := range projects {
		if p.IsActive() {
			t.ActiveProjectCount++
		}
		price := p.SellingPrice()
		if math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		t.TotalProjectValue += price
	}
	return t
}

// GroupBy counts items per label returned by field. Labels are open-ended: every
// distinct value, including the empty string, becomes its own entry. Output order is
// the order in which each label first appears in items.
func GroupBy[T any](items []T, field func(T) string) ChartSeries {
	index := make(map[string]int)
	out := make(ChartSeries, 0)
	for _, it := range items {
		label := field(it)
		if i, ok := index[label]; ok {
			out[i].Count++
			continue
		}
		index[label] = len(out)
		out = append(out, ChartEntry{Label: label, Count: 1})
	}
	return out
}

// ComponentsByType groups components by their type.
func ComponentsByType(components []Component) ChartSeries {
	return GroupBy(components, func(c Component) string { return c.Type })
}

// ProjectsByStatus groups projects by their status.
func ProjectsByStatus(projects []Project) ChartSeries {
	return GroupBy(projects, func(p Project) string { return p.Status })
}

// BuildDashboard computes totals and both chart series from a single snapshot.
func BuildDashboard(s Snapshot) Dashboard {
	return Dashboard{
		Totals:           ComputeTotals(s.Components, s.Projects, s.Suppliers),
		ComponentsByType: ComponentsByType(s.Components),
		ProjectsByStatus: ProjectsByStatus(s.Projects),
	}
}

// Total returns the sum of all counts in the series.
func (cs ChartSeries) Total() int {
	n := 0
	for _, e := range cs {
		n += e.Count
	}
	return n
}

// Max returns the largest count in the series, or 0 when empty.
func (cs ChartSeries) Max() int {
	m := 0
	for _, e := range cs {
		if e.Count > m {
			m = e.Count
		}
	}
	return m
}
