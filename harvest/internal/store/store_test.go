package store

import (
	"context"
	"testing"

	"github.com/hazyhaar/glane/dbopen"
	_ "modernc.org/sqlite"
)

func setup(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return New(db)
}

func TestMarkSeen_Idempotent(t *testing.T) {
	// WHAT: inserting the same (entity, item) twice writes once.
	// WHY: duplicate inserts must be a no-op so re-runs never error.
	s := setup(t)
	ctx := context.Background()

	wrote, err := s.MarkSeen(ctx, "burgerplace", "https://example.com/p/abc/", "2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("first MarkSeen: %v", err)
	}
	if !wrote {
		t.Error("first insert should write")
	}

	wrote, err = s.MarkSeen(ctx, "burgerplace", "https://example.com/p/abc/", "2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("second MarkSeen: %v", err)
	}
	if wrote {
		t.Error("duplicate insert should be a no-op")
	}

	n, err := s.CountSeen(ctx, "burgerplace")
	if err != nil {
		t.Fatalf("CountSeen: %v", err)
	}
	if n != 1 {
		t.Errorf("CountSeen = %d, want 1", n)
	}
}

func TestLoadSeen_EmptyEntity(t *testing.T) {
	s := setup(t)
	seen, err := s.LoadSeen(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LoadSeen: %v", err)
	}
	if len(seen) != 0 {
		t.Errorf("expected empty set, got %d entries", len(seen))
	}
}

func TestSeen_EntitiesAreIsolated(t *testing.T) {
	// WHAT: the same item ID under two entities is two rows.
	// WHY: dedup is per source entity, never across entities.
	s := setup(t)
	ctx := context.Background()

	for _, entity := range []string{"a", "b"} {
		if _, err := s.MarkSeen(ctx, entity, "item-1", ""); err != nil {
			t.Fatalf("MarkSeen(%s): %v", entity, err)
		}
	}

	seen, err := s.LoadSeen(ctx, "a")
	if err != nil {
		t.Fatalf("LoadSeen: %v", err)
	}
	if _, ok := seen["item-1"]; !ok {
		t.Error("entity a should remember item-1")
	}

	entities, err := s.Entities(ctx)
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(entities) != 2 {
		t.Errorf("Entities = %v, want two", entities)
	}
}

func TestRunLog_RoundTrip(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	entries := []*RunEntry{
		{ID: "run_1", Entity: "a", Strategy: "chronological", Mode: "bounded", State: "stopping_target_met", Rounds: 3, Admitted: 10, Returned: 10, StartedAt: 100, FinishedAt: 200},
		{ID: "run_2", Entity: "b", Strategy: "engagement", Mode: "exhaustive", State: "stopping_stagnant", Rounds: 8, Admitted: 4, Returned: 4, StartedAt: 300, FinishedAt: 400},
	}
	for _, e := range entries {
		if err := s.RecordRun(ctx, e); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	got, err := s.RecentRuns(ctx, "", 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentRuns returned %d entries, want 2", len(got))
	}
	if got[0].ID != "run_2" {
		t.Errorf("expected newest first, got %s", got[0].ID)
	}

	only, err := s.RecentRuns(ctx, "a", 10)
	if err != nil {
		t.Fatalf("RecentRuns(a): %v", err)
	}
	if len(only) != 1 || only[0].Entity != "a" {
		t.Errorf("entity filter failed: %+v", only)
	}
}
