package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"opsboard/internal/core"
)

func TestNewFromFilesDefaults(t *testing.T) {
	s := NewFromFiles(t.TempDir())
	ctx := context.Background()
	cs, _ := s.ListComponents(ctx)
	ps, _ := s.ListProjects(ctx)
	ss, _ := s.ListSuppliers(ctx)
	sample := Sample()
	if len(cs) != len(sample.Components) || len(ps) != len(sample.Projects) || len(ss) != len(sample.Suppliers) {
		t.Fatalf("expected sample rows when seed files are missing")
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("components.json", `[{"type":"Panel"},{"type":"Cable"}]`)
	mustWrite("projects.json", `not json`)

	s := NewFromFiles(dir)
	ctx := context.Background()
	cs, _ := s.ListComponents(ctx)
	if len(cs) != 2 || cs[1].Type != "Cable" {
		t.Fatalf("unexpected components: %+v", cs)
	}
	ps, _ := s.ListProjects(ctx)
	if len(ps) != len(Sample().Projects) {
		t.Fatalf("invalid seed should fall back to sample, got %d projects", len(ps))
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := New(core.Snapshot{Components: []core.Component{{Type: "Panel"}}})
	cs, _ := s.ListComponents(context.Background())
	cs[0].Type = "mutated"
	again, _ := s.ListComponents(context.Background())
	if again[0].Type != "Panel" {
		t.Fatalf("store exposed internal slice")
	}
}
