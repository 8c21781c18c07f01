package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})
	l.WithComponent(ComponentHTTP).Info("hello")

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=http") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}

	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf})
	var seen *Logger
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
			seen.Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == nil || seen.Component() != ComponentApp {
		t.Fatal("expected logger from middleware")
	}
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("expected request id in %q", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusBadGateway, 12, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "status_code=502") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	buf.Reset()
	sl.LogEndpointSaved(context.Background(), "https://secret.example/exec", "10.0.0.1")
	if strings.Contains(buf.String(), "secret") || !strings.Contains(buf.String(), "endpoint_set=true") {
		t.Fatalf("endpoint must not be logged verbatim: %q", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "fetch failed", errors.New("timeout"), OpFetch, nil)
	if !strings.Contains(buf.String(), "error=timeout") || !strings.Contains(buf.String(), "operation=fetch") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestStructuredLoggerPrefersRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: &base}))
	reqLogger := New(Config{Level: slog.LevelInfo, Output: &scoped}).With(FieldRequestID, "req-9")

	sl.LogError(NewContext(context.Background(), reqLogger), "render failed", errors.New("boom"), OpRender, nil)

	if base.Len() != 0 {
		t.Errorf("base logger should be unused, got %q", base.String())
	}
	if !strings.Contains(scoped.String(), "request_id=req-9") {
		t.Errorf("expected request id in %q", scoped.String())
	}
}
