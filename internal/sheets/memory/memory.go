package memory

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"opsboard/internal/core"
	"opsboard/internal/sheets"
)

var _ sheets.Source = (*Store)(nil)

type Store struct {
	mu         sync.Mutex
	components []core.Component
	projects   []core.Project
	suppliers  []core.Supplier
}

func New(s core.Snapshot) *Store {
	return &Store{components: s.Components, projects: s.Projects, suppliers: s.Suppliers}
}

// NewFromFiles seeds the store from components.json, projects.json and suppliers.json in
// base. A missing or unreadable file falls back to the built-in sample rows for that
// collection.
func NewFromFiles(base string) *Store {
	sample := Sample()
	s := core.Snapshot{
		Components: readSeed(base, "components.json", sheets.DecodeComponents, sample.Components),
		Projects:   readSeed(base, "projects.json", sheets.DecodeProjects, sample.Projects),
		Suppliers:  readSeed(base, "suppliers.json", sheets.DecodeSuppliers, sample.Suppliers),
	}
	return New(s)
}

func (s *Store) ListComponents(_ context.Context) ([]core.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Component(nil), s.components...), nil
}

func (s *Store) ListProjects(_ context.Context) ([]core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Project(nil), s.projects...), nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]core.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Supplier(nil), s.suppliers...), nil
}

func readSeed[T any](base, name string, decode func([]byte) ([]T, error), fallback []T) []T {
	path := filepath.Join(base, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	out, err := decode(b)
	if err != nil {
		slog.Warn("Ignoring invalid seed file", "path", path, "error", err)
		return fallback
	}
	return out
}

// Sample returns the rows used when no seed files are present.
func Sample() core.Snapshot {
	return core.Snapshot{
		Components: []core.Component{
			{ID: "c1", Name: "Mono 410W", Type: "Panel", Quantity: 120, Supplier: "SunSupply"},
			{ID: "c2", Name: "Hybrid 5kW", Type: "Inverter", Quantity: 14, Supplier: "VoltWorks"},
			{ID: "c3", Name: "Mono 450W", Type: "Panel", Quantity: 80, Supplier: "SunSupply"},
			{ID: "c4", Name: "LiFePO4 10kWh", Type: "Battery", Quantity: 6, Supplier: "VoltWorks"},
			{ID: "c5", Name: "Roof rail 4m", Type: "Mounting", Quantity: 200, Supplier: "FixIt"},
		},
		Projects: []core.Project{
			{ID: "p1", Name: "Farm pump", Client: "Ferme Atlas", Status: "In Progress",
				CostAnalysis: &core.CostAnalysis{TotalCost: 9800, FinalSellingPrice: 12500}},
			{ID: "p2", Name: "Villa rooftop", Client: "M. Idrissi", Status: "Completed",
				CostAnalysis: &core.CostAnalysis{TotalCost: 6100, FinalSellingPrice: 7900}},
			{ID: "p3", Name: "Warehouse array", Client: "LogiNord", Status: "In Progress",
				CostAnalysis: &core.CostAnalysis{TotalCost: 41000, FinalSellingPrice: 52000}},
			{ID: "p4", Name: "School canopy", Client: "Municipality", Status: "Quote"},
		},
		Suppliers: []core.Supplier{
			{ID: "s1", Name: "SunSupply", Contact: "orders@sunsupply.test"},
			{ID: "s2", Name: "VoltWorks", Contact: "+212 5 22 00 00 00"},
			{ID: "s3", Name: "FixIt", Contact: "sales@fixit.test"},
		},
	}
}
