package messagestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// Both backends must honor the same contract, so the suite runs against each.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "messages.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestAppend_IdempotentOnMessageID(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)
			msg := Message{ID: "m1", ProjectID: "p1", Role: RoleUser, Content: "hello", CreatedAt: base}

			if err := store.Append(ctx, msg); err != nil {
				t.Fatalf("first append: %v", err)
			}
			// Redelivery with different content must not duplicate or rewrite.
			dup := msg
			dup.Content = "hello again"
			dup.CreatedAt = base.Add(time.Minute)
			if err := store.Append(ctx, dup); err != nil {
				t.Fatalf("redelivery: %v", err)
			}

			msgs, err := store.ListByProject(ctx, "p1")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(msgs) != 1 {
				t.Fatalf("expected 1 message, got %d", len(msgs))
			}
			if msgs[0].Content != "hello" {
				t.Fatalf("redelivery rewrote content: %q", msgs[0].Content)
			}
		})
	}
}

func TestListByProject_OrderedByCreation(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)
			// Append out of order on purpose.
			for _, m := range []Message{
				{ID: "m2", ProjectID: "p1", Role: RoleAssistant, Content: "second", CreatedAt: base.Add(time.Second)},
				{ID: "m1", ProjectID: "p1", Role: RoleUser, Content: "first", CreatedAt: base},
				{ID: "m3", ProjectID: "p1", Role: RoleUser, Content: "third", CreatedAt: base.Add(2 * time.Second)},
				{ID: "x1", ProjectID: "p2", Role: RoleUser, Content: "other project", CreatedAt: base},
			} {
				if err := store.Append(ctx, m); err != nil {
					t.Fatalf("append %s: %v", m.ID, err)
				}
			}

			msgs, err := store.ListByProject(ctx, "p1")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(msgs) != 3 {
				t.Fatalf("expected 3 messages, got %d", len(msgs))
			}
			for i, want := range []string{"first", "second", "third"} {
				if msgs[i].Content != want {
					t.Fatalf("position %d: got %q, want %q", i, msgs[i].Content, want)
				}
			}
		})
	}
}

func TestDeleteByProject_Scoped(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()
			_ = store.Append(ctx, Message{ID: "m1", ProjectID: "p1", Role: RoleUser, Content: "a", CreatedAt: now})
			_ = store.Append(ctx, Message{ID: "m2", ProjectID: "p2", Role: RoleUser, Content: "b", CreatedAt: now})

			if err := store.DeleteByProject(ctx, "p1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if left, _ := store.ListByProject(ctx, "p1"); len(left) != 0 {
				t.Fatalf("p1 should be empty, got %d", len(left))
			}
			if left, _ := store.ListByProject(ctx, "p2"); len(left) != 1 {
				t.Fatalf("p2 must be untouched, got %d", len(left))
			}
		})
	}
}
