// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quibble/quibble/internal/session"
	sessredis "github.com/quibble/quibble/internal/session/redis"
)

func newTestStore(t *testing.T) (*sessredis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return sessredis.NewStore(client), mr
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips session state", func(t *testing.T) {
		store, _ := newTestStore(t)

		uid := int64(42)
		created := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
		require.NoError(t, store.Save(ctx, "tok123", session.Data{UserID: &uid, CreatedAt: created}))

		got, err := store.Load(ctx, "tok123")
		require.NoError(t, err)
		require.NotNil(t, got.UserID)
		assert.Equal(t, int64(42), *got.UserID)
		assert.True(t, got.CreatedAt.Equal(created))
	})

	t.Run("save sets the expiry", func(t *testing.T) {
		store, mr := newTestStore(t)

		uid := int64(1)
		require.NoError(t, store.Save(ctx, "tok123", session.Data{UserID: &uid}))
		assert.Equal(t, session.TTL, mr.TTL("sess:tok123"))
	})

	t.Run("expired session loads as not found", func(t *testing.T) {
		store, mr := newTestStore(t)

		uid := int64(1)
		require.NoError(t, store.Save(ctx, "tok123", session.Data{UserID: &uid}))
		mr.FastForward(session.TTL + time.Second)

		_, err := store.Load(ctx, "tok123")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("missing token maps to ErrNotFound", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("corrupt stored value surfaces an error", func(t *testing.T) {
		store, mr := newTestStore(t)
		require.NoError(t, mr.Set("sess:tok123", "not json"))

		_, err := store.Load(ctx, "tok123")
		require.Error(t, err)
		assert.NotErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("server failure surfaces an error", func(t *testing.T) {
		store, mr := newTestStore(t)
		mr.Close()

		_, err := store.Load(ctx, "tok123")
		require.Error(t, err)
		assert.NotErrorIs(t, err, session.ErrNotFound)
	})
}

func TestStoreDestroy(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the session", func(t *testing.T) {
		store, mr := newTestStore(t)

		uid := int64(42)
		require.NoError(t, store.Save(ctx, "tok123", session.Data{UserID: &uid}))
		require.NoError(t, store.Destroy(ctx, "tok123"))

		assert.False(t, mr.Exists("sess:tok123"))
		_, err := store.Load(ctx, "tok123")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("absent token is a no-op", func(t *testing.T) {
		store, _ := newTestStore(t)
		assert.NoError(t, store.Destroy(ctx, "never-existed"))
	})
}
