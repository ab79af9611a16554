package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedClient puts a redis cache in front of another Client. Cache failures
// never fail a lookup; the wrapped client is the source of truth.
type CachedClient struct {
	inner  Client
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedClient {
	return &CachedClient{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(kind string, id int64) string {
	return fmt.Sprintf("catalog:%s:%d", kind, id)
}

func (c *CachedClient) Details(ctx context.Context, kind string, id int64) (*Metadata, error) {
	key := cacheKey(kind, id)

	raw, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var meta Metadata
		if err := json.Unmarshal([]byte(raw), &meta); err == nil {
			return &meta, nil
		}
		// Corrupt entry; fall through to the source.
	} else if err != redis.Nil {
		c.logger.Warn("catalog cache read failed", "key", key, "error", err)
	}

	meta, err := c.inner.Details(ctx, kind, id)
	if err != nil || meta == nil {
		return meta, err
	}

	if b, err := json.Marshal(meta); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return meta, nil
}
