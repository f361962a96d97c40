package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.InitSchema(context.Background()))
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := newTestStore(t)

	value, ok, err := store.Get(context.Background(), "hint.U1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "optout.U1", "1"))

	value, ok, err := store.Get(ctx, "optout.U1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	// upsert overwrites
	require.NoError(t, store.Set(ctx, "optout.U1", "2"))
	value, _, err = store.Get(ctx, "optout.U1")
	require.NoError(t, err)
	assert.Equal(t, "2", value)

	require.NoError(t, store.Delete(ctx, "optout.U1"))
	_, ok, err = store.Get(ctx, "optout.U1")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting an absent key is fine
	require.NoError(t, store.Delete(ctx, "optout.U1"))
}

func TestInitSchemaIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.InitSchema(context.Background()))
}
