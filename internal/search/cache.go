package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores search results keyed by query+count. Implementations must be
// safe for concurrent use; failures degrade to a miss, never an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]Result, bool)
	Set(ctx context.Context, key string, results []Result, ttl time.Duration)
}

// cacheKey derives a stable key for one search request.
func cacheKey(query string, count int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", count, query)))
	return "search:" + hex.EncodeToString(sum[:16])
}

// RedisCache is a Redis-backed Cache.
type RedisCache struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(rdb *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{rdb: rdb, log: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Result, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Search cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		c.log.Warn("Search cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false
	}
	return results, true
}

func (c *RedisCache) Set(ctx context.Context, key string, results []Result, ttl time.Duration) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn("Search cache write failed", zap.Error(err))
	}
}
