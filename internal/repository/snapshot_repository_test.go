package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSnapshotStore(t *testing.T, path string) *SQLiteSnapshotStore {
	store, err := NewSQLiteSnapshotStore(path)
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations())
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshot_LoadMissing(t *testing.T) {
	store := setupSnapshotStore(t, ":memory:")

	_, err := store.Load(context.Background(), "cartItems")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshot_SaveOverwrites(t *testing.T) {
	store := setupSnapshotStore(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cartItems", []byte(`[{"id":"p1"}]`)))
	require.NoError(t, store.Save(ctx, "cartItems", []byte(`[{"id":"p2"}]`)))

	data, err := store.Load(ctx, "cartItems")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p2"}]`, string(data))
}

func TestSnapshot_Delete(t *testing.T) {
	store := setupSnapshotStore(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cartItems", []byte(`[]`)))
	require.NoError(t, store.Delete(ctx, "cartItems"))
	require.NoError(t, store.Delete(ctx, "cartItems"))

	_, err := store.Load(ctx, "cartItems")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshot_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	ctx := context.Background()

	first, err := NewSQLiteSnapshotStore(path)
	require.NoError(t, err)
	require.NoError(t, first.RunMigrations())
	require.NoError(t, first.Save(ctx, "cartItems", []byte(`[{"id":"p1","quantity":2}]`)))
	require.NoError(t, first.Close())

	second := setupSnapshotStore(t, path)
	data, err := second.Load(ctx, "cartItems")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","quantity":2}]`, string(data))
}
