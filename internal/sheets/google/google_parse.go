package google

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"opsboard/internal/core"
)

// header maps a tab's first row to column indexes.
type header []string

func (h header) col(names ...string) int {
	for _, n := range names {
		for i, v := range h {
			if strings.EqualFold(normalize(v), normalize(n)) {
				return i
			}
		}
	}
	return -1
}

// normalize drops spaces and underscores so "Final Selling Price" matches
// "finalSellingPrice".
func normalize(s string) string {
	return strings.NewReplacer(" ", "", "_", "").Replace(strings.TrimSpace(s))
}

// toStrings keeps cells as they are in the sheet; callers decide what to trim.
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// verbatimGet returns the cell untouched. Used for the category columns (type, status),
// which are compared exactly.
func verbatimGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func safeGet(arr []string, idx int) string {
	return strings.TrimSpace(verbatimGet(arr, idx))
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// body returns the data rows after the header, skipping blank rows.
func body(values [][]interface{}) (header, [][]string) {
	if len(values) == 0 {
		return nil, nil
	}
	h := header(toStrings(values[0]))
	rows := make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		row := toStrings(v)
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return h, rows
}

func amount(s string) float64 {
	f, _ := core.ParseAmount(s)
	return f
}

func parseComponents(values [][]interface{}) []core.Component {
	h, rows := body(values)
	var (
		cID   = h.col("id")
		cName = h.col("name")
		cType = h.col("type", "category")
		cQty  = h.col("quantity", "qty")
		cSup  = h.col("supplier")
	)
	out := make([]core.Component, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.Component{
			ID:       safeGet(r, cID),
			Name:     safeGet(r, cName),
			Type:     verbatimGet(r, cType),
			Quantity: int(amount(safeGet(r, cQty))),
			Supplier: safeGet(r, cSup),
		})
	}
	return out
}

// parseProjects reads the cost breakdown either from flat price columns or from a
// costAnalysis column holding JSON. A row with neither keeps CostAnalysis nil.
func parseProjects(values [][]interface{}) []core.Project {
	h, rows := body(values)
	var (
		cID    = h.col("id")
		cName  = h.col("name")
		cCli   = h.col("client")
		cStat  = h.col("status")
		cPrice = h.col("finalSellingPrice")
		cCost  = h.col("totalCost")
		cCA    = h.col("costAnalysis")
	)
	out := make([]core.Project, 0, len(rows))
	for _, r := range rows {
		p := core.Project{
			ID:     safeGet(r, cID),
			Name:   safeGet(r, cName),
			Client: safeGet(r, cCli),
			Status: verbatimGet(r, cStat),
		}
		price, cost := safeGet(r, cPrice), safeGet(r, cCost)
		switch {
		case price != "" || cost != "":
			p.CostAnalysis = &core.CostAnalysis{TotalCost: amount(cost), FinalSellingPrice: amount(price)}
		case gjson.Valid(safeGet(r, cCA)):
			ca := gjson.Parse(safeGet(r, cCA))
			if ca.IsObject() {
				p.CostAnalysis = &core.CostAnalysis{
					TotalCost:         jsonAmount(ca.Get("totalCost")),
					FinalSellingPrice: jsonAmount(ca.Get("finalSellingPrice")),
				}
			}
		}
		out = append(out, p)
	}
	return out
}

func jsonAmount(v gjson.Result) float64 {
	if v.Type == gjson.Number {
		return v.Float()
	}
	return amount(v.String())
}

func parseSuppliers(values [][]interface{}) []core.Supplier {
	h, rows := body(values)
	var (
		cID   = h.col("id")
		cName = h.col("name")
		cCont = h.col("contact", "email", "phone")
	)
	out := make([]core.Supplier, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.Supplier{
			ID:      safeGet(r, cID),
			Name:    safeGet(r, cName),
			Contact: safeGet(r, cCont),
		})
	}
	return out
}
