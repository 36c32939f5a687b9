package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestStore_SetGet(t *testing.T) {
	req := require.New(t)
	store := newStore(t)
	ctx := context.Background()

	req.NoError(store.Set(ctx, "greeting", "hello", 0))
	value, err := store.Get(ctx, "greeting")
	req.NoError(err)
	req.Equal("hello", value)

	req.NoError(store.Set(ctx, "greeting", "bonjour", time.Minute))
	value, err = store.Get(ctx, "greeting")
	req.NoError(err)
	req.Equal("bonjour", value)
}

func TestStore_GetMissing(t *testing.T) {
	req := require.New(t)
	store := newStore(t)

	_, err := store.Get(context.Background(), "absent")

	req.ErrorIs(err, repository.ErrNotFound)
}

func TestStore_Ping(t *testing.T) {
	require.NoError(t, newStore(t).Ping(context.Background()))
}
