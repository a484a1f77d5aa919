package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"move-improve-workers/internal/common/errors"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRedisResultCache_RoundTrip(t *testing.T) {
	client, mr := setupRedis(t)
	cache := NewRedisResultCache(client, time.Hour, "")
	ctx := context.Background()

	miss, err := cache.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	stored := &StoredResult{
		ID:        fixedID,
		SessionID: "s-1",
		VersionID: "v1",
		Result:    sampleResult(),
		CreatedAt: fixedNow,
	}
	require.NoError(t, cache.Set(ctx, stored))

	assert.True(t, mr.Exists("score:result:s-1"))
	assert.Equal(t, time.Hour, mr.TTL("score:result:s-1"))

	got, err := cache.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestRedisResultCache_Expires(t *testing.T) {
	client, mr := setupRedis(t)
	cache := NewRedisResultCache(client, time.Minute, "test:")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &StoredResult{ID: fixedID, SessionID: "s-1", Result: sampleResult()}))
	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisResultCache_CorruptEntry(t *testing.T) {
	client, mr := setupRedis(t)
	cache := NewRedisResultCache(client, 0, "")
	require.NoError(t, mr.Set("score:result:s-1", "{not json"))

	_, err := cache.Get(context.Background(), "s-1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCacheFailure))
}

func TestRedisResultCache_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisResultCache(db, time.Minute, "")
	ctx := context.Background()

	mock.ExpectGet("score:result:s-1").SetErr(stderrors.New("connection refused"))
	_, err := cache.Get(ctx, "s-1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCacheFailure))

	mock.Regexp().ExpectSet("score:result:s-1", `.*`, time.Minute).SetErr(stderrors.New("OOM"))
	err = cache.Set(ctx, &StoredResult{ID: fixedID, SessionID: "s-1", Result: sampleResult()})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCacheFailure))

	assert.NoError(t, mock.ExpectationsWereMet())
}
