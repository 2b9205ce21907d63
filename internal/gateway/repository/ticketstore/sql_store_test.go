package ticketstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "tickets.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_RoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	batch := []Ticket{
		{
			ID: "t1", ProjectID: "p1", Title: "Set up repo", Type: "Task", Priority: "P0",
			Description:        "init everything",
			AcceptanceCriteria: []string{"repo exists", "CI runs"},
			EstimatedEffort:    "S",
			Labels:             []string{"setup"},
			SortOrder:          0, Status: StatusTodo, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "t2", ProjectID: "p1", Title: "Build core", Type: "Story", Priority: "P1",
			EstimatedEffort: "L",
			Dependencies:    []string{"t1"},
			SortOrder:       1, Status: StatusTodo, CreatedAt: now, UpdatedAt: now,
		},
	}
	if err := store.AppendBatch(ctx, "p1", batch); err != nil {
		t.Fatalf("AppendBatch: %v", err)
	}

	listed, err := store.ListByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(listed))
	}
	if listed[0].ID != "t1" || listed[1].ID != "t2" {
		t.Fatalf("wrong order: %s, %s", listed[0].ID, listed[1].ID)
	}
	if len(listed[0].AcceptanceCriteria) != 2 || listed[0].AcceptanceCriteria[1] != "CI runs" {
		t.Fatalf("criteria lost in round trip: %v", listed[0].AcceptanceCriteria)
	}
	if len(listed[1].Dependencies) != 1 || listed[1].Dependencies[0] != "t1" {
		t.Fatalf("dependencies lost: %v", listed[1].Dependencies)
	}
}

func TestSQLStore_UpdateScopedAndCounted(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	seed := []Ticket{{
		ID: "t1", ProjectID: "p1", Title: "x", Type: "Task", Priority: "P2",
		EstimatedEffort: "M", SortOrder: 0, Status: StatusTodo, CreatedAt: now, UpdatedAt: now,
	}}
	if err := store.AppendBatch(ctx, "p1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	done := StatusDone
	ok, err := store.Update(ctx, "p1", "t1", FieldPatch{Status: &done})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	got, err := store.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDone || got.Title != "x" {
		t.Fatalf("patch semantics broken: %+v", got)
	}

	// Wrong project scope: no row changes, no error.
	ok, err = store.Update(ctx, "p2", "t1", FieldPatch{Status: &done})
	if err != nil {
		t.Fatalf("scoped update: %v", err)
	}
	if ok {
		t.Fatal("update must not cross projects")
	}

	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStore_RemoveCountsScopedRows(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, pid := range []string{"p1", "p2"} {
		if err := store.AppendBatch(ctx, pid, []Ticket{{
			ID: pid + "-t1", ProjectID: pid, Title: "x", Type: "Task", Priority: "P2",
			EstimatedEffort: "M", Status: StatusTodo, CreatedAt: now, UpdatedAt: now,
		}}); err != nil {
			t.Fatalf("seed %s: %v", pid, err)
		}
	}

	n, err := store.Remove(ctx, "p1", []string{"p1-t1", "p2-t1", "ghost"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed in scope, got %d", n)
	}
	if left, _ := store.ListByProject(ctx, "p2"); len(left) != 1 {
		t.Fatalf("foreign project touched, got %d", len(left))
	}

	if err := store.DeleteByProject(ctx, "p2"); err != nil {
		t.Fatalf("delete by project: %v", err)
	}
	if left, _ := store.ListByProject(ctx, "p2"); len(left) != 0 {
		t.Fatalf("expected empty board, got %d", len(left))
	}
}
