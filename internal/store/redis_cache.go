package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"move-improve-workers/internal/common/errors"
)

const DefaultCacheKeyPrefix = "score:result:"

// RedisResultCache keeps stored results as JSON under prefix+sessionID.
type RedisResultCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisResultCache builds the cache. A ttl of zero keeps entries until
// evicted; results never change, so that is safe.
func NewRedisResultCache(client redis.Cmdable, ttl time.Duration, prefix string) *RedisResultCache {
	if prefix == "" {
		prefix = DefaultCacheKeyPrefix
	}
	return &RedisResultCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *RedisResultCache) key(sessionID string) string {
	return c.prefix + sessionID
}

func (c *RedisResultCache) Get(ctx context.Context, sessionID string) (*StoredResult, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewCacheFailureError("get", err)
	}

	var stored StoredResult
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.NewCacheFailureError("decode", err)
	}
	return &stored, nil
}

func (c *RedisResultCache) Set(ctx context.Context, res *StoredResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return errors.NewCacheFailureError("encode", err)
	}
	if err := c.client.Set(ctx, c.key(res.SessionID), data, c.ttl).Err(); err != nil {
		return errors.NewCacheFailureError("set", err)
	}
	return nil
}

var _ ResultCache = (*RedisResultCache)(nil)
