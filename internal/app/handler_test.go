package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/language"

	"opsboard/internal/core"
	apphttp "opsboard/internal/http"
	applog "opsboard/internal/log"
	"opsboard/internal/settings"
	"opsboard/internal/storage"
)

func text(s string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, s)
	})
}

func TestHandlerSwitchWaitsForNextMount(t *testing.T) {
	sw := NewHandlerSwitch(2 * time.Second)
	unmount := sw.Mount(text("first"))
	if err := unmount(context.Background()); err != nil {
		t.Fatalf("unmount: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		sw.Mount(text("second"))
	}()

	rr := httptest.NewRecorder()
	sw.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "second" {
		t.Fatalf("got %d %q, want 200 \"second\"", rr.Code, rr.Body.String())
	}
}

func TestHandlerSwitchTimesOutWithoutGeneration(t *testing.T) {
	sw := NewHandlerSwitch(20 * time.Millisecond)
	rr := httptest.NewRecorder()
	sw.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestHoldKeepsInFlightRequestAndParksNewOnes(t *testing.T) {
	sw := NewHandlerSwitch(2 * time.Second)
	unmount := sw.Mount(text("old"))
	sw.Hold()

	got := make(chan string, 1)
	go func() {
		rr := httptest.NewRecorder()
		sw.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		got <- rr.Body.String()
	}()

	select {
	case body := <-got:
		t.Fatalf("request served while held: %q", body)
	case <-time.After(30 * time.Millisecond):
	}
	if err := unmount(context.Background()); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	sw.Mount(text("new"))
	if body := <-got; body != "new" {
		t.Fatalf("body = %q, want new", body)
	}
}

func TestUnmountWaitsForInFlightRequests(t *testing.T) {
	sw := NewHandlerSwitch(time.Second)
	entered := make(chan struct{})
	release := make(chan struct{})
	unmount := sw.Mount(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
	}))

	served := make(chan struct{})
	go func() {
		sw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		close(served)
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := unmount(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("unmount with request in flight = %v, want deadline exceeded", err)
	}

	close(release)
	<-served
	if err := unmount(context.Background()); err != nil {
		t.Fatalf("unmount after drain = %v", err)
	}
}

type staticDashboard struct{}

func (staticDashboard) Dashboard(context.Context) (core.Dashboard, error) {
	return core.Dashboard{}, nil
}

func TestSavedEndpointRedirectLandsOnNextGeneration(t *testing.T) {
	quiet := applog.New(applog.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
	sup := NewSupervisor(quiet.Logger, time.Second)
	sw := NewHandlerSwitch(2 * time.Second)
	registry := settings.NewRegistry(storage.NewMemoryStore(), settings.RestartFunc(func() {
		sw.Hold()
		sup.Restart()
	}))

	var built atomic.Int32
	build := func(ctx context.Context, gen int) (*Instance, error) {
		if gen > 1 {
			// Leave a visible gap between generations.
			time.Sleep(50 * time.Millisecond)
		}
		endpoint, err := registry.Load(ctx)
		if err != nil {
			return nil, err
		}
		opts := apphttp.Options{
			Backend:          "script",
			RequiresEndpoint: true,
			Endpoint:         endpoint,
			Settings:         registry,
			Locale:           language.AmericanEnglish,
			Generation:       gen,
			Logger:           quiet,
		}
		if endpoint.Configured() {
			opts.Dashboard = staticDashboard{}
		}
		srv, err := apphttp.NewServer(opts)
		if err != nil {
			return nil, err
		}
		built.Store(int32(gen))
		return &Instance{Shutdown: sw.Mount(srv), Cleanup: func() error { srv.Close(); return nil }}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx, build) }()
	defer func() {
		cancel()
		<-done
	}()

	ts := httptest.NewServer(sw)
	defer ts.Close()

	resp, err := http.PostForm(ts.URL+"/settings", url.Values{"api_url": {"https://script.example/exec"}})
	if err != nil {
		t.Fatalf("post settings: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status after redirect = %d, body %s", resp.StatusCode, body)
	}
	if resp.Request.URL.Path != "/" {
		t.Fatalf("final path = %q, want /", resp.Request.URL.Path)
	}
	if !strings.Contains(string(body), "<h1>Dashboard</h1>") {
		t.Fatalf("expected dashboard page, got %s", body)
	}
	if got := built.Load(); got != 2 {
		t.Fatalf("redirect served by generation %d, want 2", got)
	}
}
