package cache

import (
	"context"
	"time"

	"ncaab_v2/ingestion/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache stores raw upstream responses for slow-changing reference
// payloads (athletes, venues, conference groups). A nil *RedisCache is
// a valid no-op cache, so callers never need to branch on whether
// caching is configured.
type RedisCache struct {
	client *redis.Client
}

// New connects to Redis. Returns nil, err only when the initial ping
// fails; the caller may treat that as "run without a cache".
func New(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Info().Str("addr", addr).Int("db", db).Msg("Redis cache connected")
	return &RedisCache{client: client}, nil
}

// Get returns the cached payload for key, if any
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		metrics.RecordCacheMiss()
		return nil, false
	}
	metrics.RecordCacheHit()
	return val, true
}

// Set stores a payload under key with the given TTL. Failures are
// logged and swallowed: the cache is advisory.
func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// Close releases the underlying connection
func (c *RedisCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
