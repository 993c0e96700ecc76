package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// ResponseCache stores raw upstream response bodies keyed by request shape.
// A Redis failure is reported as a cache miss so that upstream calls still
// go through when the cache is down.
type ResponseCache struct {
	rdb    *goredis.Client
	prefix string
	log    *logger.Logger
}

// NewResponseCache creates a cache over an existing Redis connection
func NewResponseCache(rdb *goredis.Client, prefix string, log *logger.Logger) *ResponseCache {
	return &ResponseCache{
		rdb:    rdb,
		prefix: prefix,
		log:    log.With("component", "response_cache"),
	}
}

func (c *ResponseCache) key(k string) string {
	return c.prefix + ":" + k
}

// Get returns the cached body for a key, or errors.ErrCacheMiss
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, errors.ErrCacheMiss
	}
	if err != nil {
		c.log.Warnw("Cache read failed, treating as miss", "key", key, "error", err)
		return nil, errors.ErrCacheMiss
	}
	return data, nil
}

// Set stores a body with the given TTL. Write failures are logged, not returned.
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if err := c.rdb.Set(ctx, c.key(key), body, ttl).Err(); err != nil {
		c.log.Warnw("Cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops one or more keys
func (c *ResponseCache) Invalidate(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.rdb.Del(ctx, prefixed...).Err()
}
