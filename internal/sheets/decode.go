package sheets

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"opsboard/internal/core"
)

// ErrInvalidPayload is returned when a response body is not a JSON array of rows,
// nor an object wrapping one under "data".
var ErrInvalidPayload = errors.New("invalid payload: expected JSON rows")

// rows locates the row array in a payload. Scripted endpoints answer either with a bare
// array or with {"data": [...]}.
func rows(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidPayload
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root.Array(), nil
	}
	if data := root.Get("data"); data.IsArray() {
		return data.Array(), nil
	}
	return nil, ErrInvalidPayload
}

// text returns the first present field among names as a trimmed string.
func text(row gjson.Result, names ...string) string {
	return strings.TrimSpace(verbatim(row, names...))
}

// verbatim is text without trimming. Category fields (type, status) are compared
// exactly, so "In Progress " must stay distinct from "In Progress".
func verbatim(row gjson.Result, names ...string) string {
	for _, n := range names {
		if v := row.Get(n); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

// number reads a numeric field that may arrive as a JSON number or as formatted text.
// Anything unparseable reads as 0.
func number(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Float()
	case gjson.String:
		if f, ok := core.ParseAmount(v.Str); ok {
			return f
		}
	}
	return 0
}

// DecodeComponents decodes component rows. A row that is not an object still counts, as
// a component with every field empty.
func DecodeComponents(body []byte) ([]core.Component, error) {
	rs, err := rows(body)
	if err != nil {
		return nil, err
	}
	out := make([]core.Component, 0, len(rs))
	for _, r := range rs {
		out = append(out, core.Component{
			ID:       text(r, "id", "_id"),
			Name:     text(r, "name"),
			Type:     verbatim(r, "type"),
			Quantity: int(number(r.Get("quantity"))),
			Supplier: text(r, "supplier"),
		})
	}
	return out, nil
}

// DecodeProjects decodes project rows. The cost breakdown is read from a nested
// "costAnalysis" object, or from a JSON string holding one (spreadsheet cells often
// store it that way). A missing breakdown leaves CostAnalysis nil. Non-object rows count
// as projects with an empty status.
func DecodeProjects(body []byte) ([]core.Project, error) {
	rs, err := rows(body)
	if err != nil {
		return nil, err
	}
	out := make([]core.Project, 0, len(rs))
	for _, r := range rs {
		p := core.Project{
			ID:     text(r, "id", "_id"),
			Name:   text(r, "name"),
			Client: text(r, "client"),
			Status: verbatim(r, "status"),
		}
		ca := r.Get("costAnalysis")
		if ca.Type == gjson.String && gjson.Valid(ca.Str) {
			ca = gjson.Parse(ca.Str)
		}
		if ca.IsObject() {
			p.CostAnalysis = &core.CostAnalysis{
				TotalCost:         number(ca.Get("totalCost")),
				FinalSellingPrice: number(ca.Get("finalSellingPrice")),
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodeSuppliers decodes supplier rows. Every row is one supplier; rows without an id
// are numbered by position.
func DecodeSuppliers(body []byte) ([]core.Supplier, error) {
	rs, err := rows(body)
	if err != nil {
		return nil, err
	}
	out := make([]core.Supplier, 0, len(rs))
	for i, r := range rs {
		s := core.Supplier{
			ID:      text(r, "id", "_id"),
			Name:    text(r, "name"),
			Contact: text(r, "contact", "email", "phone"),
		}
		if s.ID == "" {
			s.ID = strconv.Itoa(i + 1)
		}
		out = append(out, s)
	}
	return out, nil
}
