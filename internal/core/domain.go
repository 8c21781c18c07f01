package core

// ActiveStatus is the only project status counted as active on the dashboard.
// The match is exact and case-sensitive.
const ActiveStatus = "In Progress"

type (
	// Component is an inventory item. Only Type feeds the aggregation.
	Component struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		Quantity int    `json:"quantity"`
		Supplier string `json:"supplier"`
	}

	// CostAnalysis is the cost breakdown attached to a project.
	CostAnalysis struct {
		TotalCost         float64 `json:"totalCost"`
		FinalSellingPrice float64 `json:"finalSellingPrice"`
	}

	// Project is one row of the projects sheet. Status is kept verbatim; see IsActive.
	Project struct {
		ID           string        `json:"id"`
		Name         string        `json:"name"`
		Client       string        `json:"client"`
		Status       string        `json:"status"`
		CostAnalysis *CostAnalysis `json:"costAnalysis,omitempty"`
	}

	// Supplier is opaque to the aggregation; only the count matters.
	Supplier struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Contact string `json:"contact"`
	}

	// Snapshot is a consistent view of the three collections taken at one point in time.
	Snapshot struct {
		Components []Component
		Projects   []Project
		Suppliers  []Supplier
	}
)

// IsActive reports whether the project status is exactly ActiveStatus.
func (p Project) IsActive() bool {
	return p.Status == ActiveStatus
}

// SellingPrice returns the final selling price, or 0 when the project has no cost analysis.
func (p Project) SellingPrice() float64 {
	if p.CostAnalysis == nil {
		return 0
	}
	return p.CostAnalysis.FinalSellingPrice
}
