package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsboard/internal/config"
	"opsboard/internal/settings"
)

func testConfig(t BackendType) Config {
	return Config{
		Type:          t,
		ComponentsTab: "Components",
		ProjectsTab:   "Projects",
		SuppliersTab:  "Suppliers",
		FetchTimeout:  time.Second,
	}
}

func TestRequiresEndpoint(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{MemoryBackend, false},
		{SheetsBackend, true},
		{ScriptBackend, true},
	}
	for _, tt := range tests {
		if got := tt.bt.RequiresEndpoint(); got != tt.want {
			t.Errorf("%s.RequiresEndpoint() = %v, want %v", tt.bt, got, tt.want)
		}
	}
	if BackendType("sqlite").IsValid() {
		t.Error("sqlite must not be a valid backend")
	}
}

func TestCreateBackendUnconfigured(t *testing.T) {
	f := NewFactory(nil)
	for _, bt := range []BackendType{SheetsBackend, ScriptBackend} {
		_, err := f.CreateBackend(context.Background(), testConfig(bt), settings.Endpoint{})
		if !errors.Is(err, ErrUnconfigured) {
			t.Errorf("%s: expected ErrUnconfigured, got %v", bt, err)
		}
	}
}

func TestCreateBackendMemoryIgnoresEndpoint(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), testConfig(MemoryBackend), settings.Endpoint{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Cleanup()
	cs, err := res.Source.ListComponents(context.Background())
	if err != nil || len(cs) == 0 {
		t.Fatalf("expected sample components, got %d (%v)", len(cs), err)
	}
}

func TestCreateBackendScript(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), testConfig(ScriptBackend),
		settings.Endpoint{URL: "https://script.example/exec"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Source == nil {
		t.Fatal("expected a source")
	}
}

func TestCreateBackendSheetsBadReference(t *testing.T) {
	cfg := testConfig(SheetsBackend)
	cfg.GoogleServiceAccountJSON = `{"type":"service_account"}`
	_, err := NewFactory(nil).CreateBackend(context.Background(), cfg, settings.Endpoint{URL: "not a sheet"})
	if err == nil {
		t.Fatal("expected error for a malformed spreadsheet reference")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sqlite"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	got, err := FromAppConfig(&config.Config{
		DataBackend:     "script",
		ComponentsSheet: "C",
		ProjectsSheet:   "P",
		SuppliersSheet:  "S",
		FetchRetries:    3,
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != ScriptBackend || got.ComponentsTab != "C" || got.FetchRetries != 3 {
		t.Fatalf("unexpected config %+v", got)
	}
	if err := (Config{Type: ScriptBackend}).Validate(); err == nil {
		t.Fatal("expected missing tabs to fail validation")
	}
}
