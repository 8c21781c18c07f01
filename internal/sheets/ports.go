package sheets

import (
	"context"
	"opsboard/internal/core"
)

// Ports for outbound adapters.
type (
	ComponentReader interface {
		ListComponents(ctx context.Context) ([]core.Component, error)
	}

	ProjectReader interface {
		ListProjects(ctx context.Context) ([]core.Project, error)
	}

	SupplierReader interface {
		ListSuppliers(ctx context.Context) ([]core.Supplier, error)
	}

	// Source provides every collection the dashboard aggregates.
	Source interface {
		ComponentReader
		ProjectReader
		SupplierReader
	}
)

// Default tab names in the backing spreadsheet.
const (
	ComponentsSheet = "Components"
	ProjectsSheet   = "Projects"
	SuppliersSheet  = "Suppliers"
)
