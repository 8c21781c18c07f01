package http

import (
	"context"
	"net/http"
	"time"

	"opsboard/internal/backend"
	"opsboard/internal/core"
	applog "opsboard/internal/log"
)

type metricCard struct {
	Label string
	Value string
}

type dashboardPage struct {
	Backend    string
	Generation int
	Cards      []metricCard
	Charts     []chartView
	Error      string
}

// needsSetup reports whether this generation has no endpoint while its backend needs one.
func (s *Server) needsSetup() bool {
	return s.opts.RequiresEndpoint && !s.opts.Endpoint.Configured()
}

func (s *Server) loadDashboard(ctx context.Context) (core.Dashboard, error) {
	if s.opts.Dashboard == nil {
		if s.opts.BackendErr != nil {
			return core.Dashboard{}, s.opts.BackendErr
		}
		return core.Dashboard{}, backend.ErrUnconfigured
	}
	start := time.Now()
	d, err := s.opts.Dashboard.Dashboard(ctx)
	if err != nil {
		s.recordDashboardFailure()
		s.access.LogError(ctx, "Dashboard load failed", err, applog.OpFetch, applog.NewFields().
			WithComponent(applog.ComponentDashboard))
		return core.Dashboard{}, err
	}
	applog.FromContext(ctx).DebugContext(ctx, "Dashboard loaded",
		applog.FieldDuration, time.Since(start).Milliseconds())
	return d, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.needsSetup() {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	page := dashboardPage{Backend: s.opts.Backend, Generation: s.opts.Generation}
	d, err := s.loadDashboard(r.Context())
	if err != nil {
		page.Error = "Could not load data from the backend: " + err.Error()
	} else {
		page.Cards = []metricCard{
			{Label: "Components", Value: s.amounts.Count(d.Totals.ComponentCount)},
			{Label: "Active projects", Value: s.amounts.Count(d.Totals.ActiveProjectCount)},
			{Label: "Suppliers", Value: s.amounts.Count(d.Totals.SupplierCount)},
			{Label: "Total project value", Value: s.amounts.Format(d.Totals.TotalProjectValue)},
		}
		page.Charts = []chartView{
			newChartView("Components by type", d.ComponentsByType),
			newChartView("Projects by status", d.ProjectsByStatus),
		}
	}

	s.render(w, r, http.StatusOK, "dashboard.html", page)
}

func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	if s.needsSetup() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": backend.ErrUnconfigured.Error(),
		})
		return
	}
	d, err := s.loadDashboard(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.access.LogError(r.Context(), "Template execution failed", err, applog.OpRender, applog.NewFields().
			WithComponent(applog.ComponentTemplate))
	}
}
