package projectstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "projects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func sample(id, slug, owner string, at time.Time) Project {
	return Project{
		ID:        id,
		Name:      "Project " + id,
		Slug:      slug,
		OwnerID:   owner,
		CreatedAt: at,
	}
}

func TestCreateAndLookups(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, store.Create(ctx, sample("p1", "blog", "u1", now)))

			byID, err := store.Get(ctx, "p1")
			require.NoError(t, err)
			require.Equal(t, "blog", byID.Slug)

			bySlug, err := store.GetBySlug(ctx, "blog")
			require.NoError(t, err)
			require.Equal(t, "p1", bySlug.ID)

			_, err = store.Get(ctx, "nope")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCreate_DuplicateSlugRejected(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()
			require.NoError(t, store.Create(ctx, sample("p1", "blog", "u1", now)))
			err := store.Create(ctx, sample("p2", "blog", "u1", now))
			require.ErrorIs(t, err, ErrSlugTaken)
		})
	}
}

func TestList_OwnerScopedNewestFirst(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, store.Create(ctx, sample("p1", "one", "u1", base)))
			require.NoError(t, store.Create(ctx, sample("p2", "two", "u1", base.Add(time.Second))))
			require.NoError(t, store.Create(ctx, sample("p3", "three", "u2", base)))

			mine, err := store.List(ctx, "u1", 0, 10)
			require.NoError(t, err)
			require.Len(t, mine, 2)
			require.Equal(t, "p2", mine[0].ID)
			require.Equal(t, "p1", mine[1].ID)

			paged, err := store.List(ctx, "u1", 1, 10)
			require.NoError(t, err)
			require.Len(t, paged, 1)
			require.Equal(t, "p1", paged[0].ID)
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)
			p := sample("p1", "blog", "u1", now)
			require.NoError(t, store.Create(ctx, p))

			p.Name = "Renamed"
			require.NoError(t, store.Update(ctx, p))
			got, err := store.Get(ctx, "p1")
			require.NoError(t, err)
			require.Equal(t, "Renamed", got.Name)

			require.NoError(t, store.Delete(ctx, "p1"))
			_, err = store.Get(ctx, "p1")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}
