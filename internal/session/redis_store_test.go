package session_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulnsite/internal/session"
)

func newRedisStore(t *testing.T, seed int64) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewRedisStore(client, "test:", seed)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_IDsFollowCounter(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t, session.DefaultSeed)
	ctx := context.Background()

	first, err := store.Create(ctx, session.Data{session.KeyUsername: "alice"})
	require.NoError(t, err)
	second, err := store.Create(ctx, session.Data{session.KeyUsername: "bob"})
	require.NoError(t, err)

	assert.Equal(t, "2", first)
	assert.Equal(t, "3", second)

	counter, err := mr.Get("test:counter")
	require.NoError(t, err)
	assert.Equal(t, "3", counter)
	assert.False(t, mr.Exists("test:session:1"))
}

func TestRedisStore_GetDelete(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t, 10)
	ctx := context.Background()

	id, err := store.Create(ctx, session.Data{session.KeyUsername: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "11", id)
	assert.Zero(t, mr.TTL("test:session:11"), "sessions carry no ttl")

	data, err := store.Get(ctx, id)
	require.NoError(t, err)
	name, ok := data.Username()
	assert.True(t, ok)
	assert.Equal(t, "alice", name)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	assert.NoError(t, store.Delete(ctx, id))
}

func TestRedisStore_SharedCounter(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a := session.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "shared:", session.DefaultSeed)
	b := session.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "shared:", session.DefaultSeed)
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })

	idA, err := a.Create(ctx, session.Data{session.KeyUsername: "alice"})
	require.NoError(t, err)
	idB, err := b.Create(ctx, session.Data{session.KeyUsername: "bob"})
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)

	data, err := b.Get(ctx, idA)
	require.NoError(t, err)
	assert.Equal(t, "alice", data[session.KeyUsername])
}

func TestNewStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	t.Run("memory by default", func(t *testing.T) {
		store, err := session.NewStore(ctx, session.Config{Seed: 1}, logger)
		require.NoError(t, err)
		assert.IsType(t, &session.MemoryStore{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, err := session.NewStore(ctx, session.Config{
			Backend: session.BackendRedis,
			Seed:    1,
			Redis:   session.RedisConfig{Addr: mr.Addr(), KeyPrefix: "x:"},
		}, logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		assert.IsType(t, &session.RedisStore{}, store)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := session.NewStore(ctx, session.Config{
			Backend: session.BackendRedis,
			Redis:   session.RedisConfig{Addr: addr},
		}, logger)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := session.NewStore(ctx, session.Config{Backend: "etcd"}, logger)
		assert.ErrorIs(t, err, session.ErrUnknownBackend)
	})
}
