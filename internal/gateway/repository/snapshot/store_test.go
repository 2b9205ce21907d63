package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLStore(db),
	}
}

func TestPutGetList(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "p1", "board-1.json", []byte(`{"tickets":[]}`)))
			require.NoError(t, store.Put(ctx, "p1", "board-2.json", []byte(`{"tickets":[1]}`)))
			require.NoError(t, store.Put(ctx, "p2", "board-1.json", []byte(`{}`)))

			got, err := store.Get(ctx, "p1", "board-2.json")
			require.NoError(t, err)
			require.JSONEq(t, `{"tickets":[1]}`, string(got))

			names, err := store.List(ctx, "p1")
			require.NoError(t, err)
			require.Equal(t, []string{"board-1.json", "board-2.json"}, names)

			_, err = store.Get(ctx, "p1", "missing.json")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestPut_RequiresKeyParts(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.Error(t, store.Put(ctx, "", "x.json", []byte("{}")))
			require.Error(t, store.Put(ctx, "p1", "", []byte("{}")))
		})
	}
}

func TestGetURL_PlainBackendsHaveNone(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			url, err := store.GetURL(context.Background(), "p1", "board-1.json")
			require.NoError(t, err)
			require.Empty(t, url)
		})
	}
}
