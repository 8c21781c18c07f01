package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

type kv interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "settings.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoresRoundTrip(t *testing.T) {
	stores := map[string]kv{
		"sqlite": newSQLite(t),
		"memory": NewMemoryStore(),
	}
	values := []string{
		"https://script.example.com/macros/s/abc/exec",
		"",
		"not a url at all",
		strings.Repeat("x", 64*1024),
		"ünïcödé ✓",
	}
	ctx := context.Background()
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get(ctx, "api_url"); err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}
			for _, v := range values {
				if err := s.Set(ctx, "api_url", v); err != nil {
					t.Fatalf("set: %v", err)
				}
				got, ok, err := s.Get(ctx, "api_url")
				if err != nil || !ok {
					t.Fatalf("get: ok=%v err=%v", ok, err)
				}
				if got != v {
					t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(v))
				}
			}
		})
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "api_url", "https://x"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Second open re-runs migrations, which must be a no-op.
	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if v := s.SchemaVersion(); v != 1 {
		t.Errorf("SchemaVersion() = %d, want 1", v)
	}
	got, ok, err := s.Get(ctx, "api_url")
	if err != nil || !ok || got != "https://x" {
		t.Fatalf("unexpected value after reopen: %q ok=%v err=%v", got, ok, err)
	}
}
