package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"timestamp":  time.Now().Format(time.RFC3339),
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"generation": s.opts.Generation,
	})
}

// handleReady reports whether this generation can serve the dashboard. It does not call
// the backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"templates": "ok"}
	status, code := "ready", http.StatusOK

	switch {
	case s.needsSetup():
		checks["endpoint"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	case s.opts.Dashboard == nil:
		checks["backend"] = fmt.Sprintf("failed: %v", s.opts.BackendErr)
		status, code = "not_ready", http.StatusServiceUnavailable
	default:
		checks["backend"] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"backend":   s.opts.Backend,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides request and security counters in plain text
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	tm := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	var avgMs float64
	if tm.TotalRequests > 0 {
		avgMs = float64(tm.TotalDurationUS) / float64(tm.TotalRequests) / 1000
	}

	fmt.Fprintf(w, "opsboard_generation %d\n", s.opts.Generation)
	fmt.Fprintf(w, "opsboard_uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))
	fmt.Fprintf(w, "opsboard_http_requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(w, "opsboard_http_server_errors_total %d\n", tm.ServerErrors)
	fmt.Fprintf(w, "opsboard_http_request_duration_avg_ms %.3f\n", avgMs)
	fmt.Fprintf(w, "opsboard_rate_limit_hits_total %d\n", rl.TotalHits)
	fmt.Fprintf(w, "opsboard_rate_limit_clients %d\n", rl.ClientCount)
	fmt.Fprintf(w, "opsboard_suspicious_requests_total %d\n", sec.SuspiciousRequests)
	fmt.Fprintf(w, "opsboard_dashboard_failures_total %d\n", atomic.LoadInt64(&s.dashboardFails))

	if r, ok := s.opts.Dashboard.(CacheReporter); ok {
		cs := r.CacheStats()
		fmt.Fprintf(w, "opsboard_snapshot_cache_hits_total %d\n", cs.Hits)
		fmt.Fprintf(w, "opsboard_snapshot_cache_misses_total %d\n", cs.Misses)
		fmt.Fprintf(w, "opsboard_snapshot_cache_expirations_total %d\n", cs.Expirations)
	}
}
