package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "opsboard/internal/log"
)

func TestMiddlewareAssignsRequestIDAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" })

	var seenID string
	var scoped *applog.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		scoped = applog.FromContext(r.Context())
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if !strings.HasPrefix(seenID, "req_") {
		t.Fatalf("unexpected request id %q", seenID)
	}
	if rr.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("response header %q != %q", rr.Header().Get(RequestIDHeader), seenID)
	}
	if scoped == nil || scoped.Component() == "unknown" {
		t.Fatal("expected a request-scoped logger in context")
	}

	out := buf.String()
	for _, want := range []string{"status_code=502", "request_id=" + seenID, "client_ip=198.51.100.1", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}

	got := m.GetMetrics()
	if got.TotalRequests != 1 || got.ServerErrors != 1 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetRequestID(r.Context()) != "" {
		t.Fatal("expected empty request id")
	}
	if a, b := GenerateRequestID(), GenerateRequestID(); a == b {
		t.Fatal("request ids should be unique")
	}
}
