package dataset

import (
	"context"
	"testing"
)

func TestMemoryConnector_MaterializeAppliesFilters(t *testing.T) {
	conn := NewMemoryConnector(testFrame(t))
	conn.ApplyFilters([]Predicate{{Left: "gdp", Op: ">", Right: int64(4)}})

	f, err := conn.Materialize(context.Background())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if f.NumRows() != 3 {
		t.Errorf("Materialize() rows = %d, want 3", f.NumRows())
	}
}

func TestMemoryConnector_SkipsUnknownColumns(t *testing.T) {
	conn := NewMemoryConnector(testFrame(t))
	conn.ApplyFilters([]Predicate{{Left: "population", Op: ">", Right: int64(1)}})

	f, err := conn.Materialize(context.Background())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	// Unknown columns are pruning hints only; all rows survive.
	if f.NumRows() != 4 {
		t.Errorf("Materialize() rows = %d, want 4", f.NumRows())
	}
}

func TestMemoryConnector_ApplyFiltersReplaces(t *testing.T) {
	conn := NewMemoryConnector(testFrame(t))
	conn.ApplyFilters([]Predicate{{Left: "gdp", Op: ">", Right: int64(100)}})
	conn.ApplyFilters(nil)

	f, err := conn.Materialize(context.Background())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if f.NumRows() != 4 {
		t.Errorf("stale filters applied, rows = %d, want 4", f.NumRows())
	}
}

func TestMemoryConnector_HonorsContext(t *testing.T) {
	conn := NewMemoryConnector(testFrame(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := conn.Materialize(ctx); err == nil {
		t.Error("expected error from canceled context")
	}
}
