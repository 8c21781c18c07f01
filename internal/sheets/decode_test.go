package sheets

import (
	"errors"
	"testing"

	"opsboard/internal/core"
)

func TestDecodeComponentsArrayAndWrapped(t *testing.T) {
	bodies := map[string]string{
		"array":   `[{"id":"1","type":"Panel","quantity":"12"},{"id":"2","type":"Inverter","quantity":3}]`,
		"wrapped": `{"data":[{"id":"1","type":"Panel","quantity":"12"},{"id":"2","type":"Inverter","quantity":3}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeComponents([]byte(body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != 2 || got[0].Type != "Panel" || got[1].Type != "Inverter" {
				t.Fatalf("unexpected components: %+v", got)
			}
			if got[0].Quantity != 12 || got[1].Quantity != 3 {
				t.Fatalf("unexpected quantities: %+v", got)
			}
		})
	}
}

func TestDecodeInvalidPayload(t *testing.T) {
	for _, body := range []string{`not json`, `{"error":"nope"}`, `42`} {
		if _, err := DecodeProjects([]byte(body)); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("%s: expected ErrInvalidPayload, got %v", body, err)
		}
	}
}

func TestDecodeProjectsCostAnalysis(t *testing.T) {
	body := `[
		{"id":"p1","status":"In Progress","costAnalysis":{"totalCost":100,"finalSellingPrice":150.5}},
		{"id":"p2","status":"Completed","costAnalysis":"{\"finalSellingPrice\":\"1 200,50\"}"},
		{"id":"p3","status":"Completed"},
		{"id":"p4","status":null,"costAnalysis":{"finalSellingPrice":"n/a"}}
	]`
	got, err := DecodeProjects([]byte(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 projects, got %d", len(got))
	}
	if got[0].SellingPrice() != 150.5 || got[0].CostAnalysis.TotalCost != 100 {
		t.Fatalf("unexpected p1: %+v", got[0].CostAnalysis)
	}
	if got[1].SellingPrice() != 1200.5 {
		t.Fatalf("unexpected p2 price: %v", got[1].SellingPrice())
	}
	if got[2].CostAnalysis != nil {
		t.Fatalf("expected nil cost analysis for p3")
	}
	if got[3].Status != "" || got[3].SellingPrice() != 0 {
		t.Fatalf("unexpected p4: %+v", got[3])
	}
}

func TestDecodeSuppliersAssignsIDs(t *testing.T) {
	got, err := DecodeSuppliers([]byte(`[{"name":"Acme","email":"a@acme.test"},{"id":"s9","name":"Beta"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0].ID != "1" || got[0].Contact != "a@acme.test" || got[1].ID != "s9" {
		t.Fatalf("unexpected suppliers: %+v", got)
	}
}

func TestDecodeKeepsCategoryWhitespace(t *testing.T) {
	projects, err := DecodeProjects([]byte(`[
		{"status":"In Progress "},
		{"status":" In Progress"},
		{"status":"In Progress","name":"  Roof  "}
	]`))
	if err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	if projects[0].Status != "In Progress " || projects[1].Status != " In Progress" {
		t.Fatalf("statuses were altered: %q %q", projects[0].Status, projects[1].Status)
	}
	if projects[2].Name != "Roof" {
		t.Errorf("informational fields are trimmed, got name %q", projects[2].Name)
	}

	totals := core.ComputeTotals(nil, projects, nil)
	if totals.ActiveProjectCount != 1 {
		t.Errorf("ActiveProjectCount = %d, want 1", totals.ActiveProjectCount)
	}
	if series := core.ProjectsByStatus(projects); len(series) != 3 {
		t.Errorf("ProjectsByStatus() = %v, want 3 distinct labels", series)
	}

	components, err := DecodeComponents([]byte(`[{"type":"Panel"},{"type":"Panel "}]`))
	if err != nil {
		t.Fatalf("decode components: %v", err)
	}
	if series := core.ComponentsByType(components); len(series) != 2 {
		t.Errorf("ComponentsByType() = %v, want Panel and \"Panel \" apart", series)
	}
}

func TestDecodeCountsNonObjectRows(t *testing.T) {
	body := []byte(`[{"type":"Panel"},null,"junk",42]`)

	components, err := DecodeComponents(body)
	if err != nil {
		t.Fatalf("decode components: %v", err)
	}
	if len(components) != 4 {
		t.Fatalf("expected 4 components, got %d", len(components))
	}
	if components[1].Type != "" || components[2].Type != "" {
		t.Errorf("non-object rows should have an empty type: %+v", components)
	}

	projects, err := DecodeProjects(body)
	if err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	if len(projects) != 4 || projects[1].CostAnalysis != nil {
		t.Errorf("unexpected projects: %+v", projects)
	}

	suppliers, err := DecodeSuppliers(body)
	if err != nil {
		t.Fatalf("decode suppliers: %v", err)
	}
	if len(suppliers) != 4 || suppliers[1].ID != "2" {
		t.Errorf("unexpected suppliers: %+v", suppliers)
	}
}
