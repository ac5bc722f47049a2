package idempotency

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestRedisStore(t *testing.T) {
	s := NewRedisStore(newTestRedis(t), time.Minute)
	ctx := context.Background()
	key := uuid.NewString()

	lease, err := s.Begin(ctx, "POST /api/lots", key, "fp")
	require.NoError(t, err)
	require.Nil(t, lease.Replay)

	_, err = s.Begin(ctx, "POST /api/lots", key, "fp")
	assert.ErrorIs(t, err, ErrInProgress)

	require.NoError(t, lease.Complete(ctx, Response{Status: 201, Body: []byte(`{}`)}))

	replay, err := s.Begin(ctx, "POST /api/lots", key, "fp")
	require.NoError(t, err)
	require.NotNil(t, replay.Replay)
	assert.Equal(t, 201, replay.Replay.Status)

	_, err = s.Begin(ctx, "POST /api/lots", key, "other")
	assert.ErrorIs(t, err, ErrKeyReused)
}

func TestRedisStoreRelease(t *testing.T) {
	s := NewRedisStore(newTestRedis(t), time.Minute)
	ctx := context.Background()
	key := uuid.NewString()

	lease, err := s.Begin(ctx, "scope", key, "fp")
	require.NoError(t, err)
	require.NoError(t, lease.Release(ctx))

	retry, err := s.Begin(ctx, "scope", key, "fp")
	require.NoError(t, err)
	assert.Nil(t, retry.Replay)
	require.NoError(t, retry.Release(ctx))
}
