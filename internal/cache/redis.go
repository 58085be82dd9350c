package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/trypguide/config"
	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort key/value store. Backend failures are logged and
// reported as a miss (reads) or false (writes), never as errors.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool
}

type RedisCache struct {
	client *redis.Client
	log    logger.Logger
}

func NewRedisCache(cfg config.RedisConfig, log logger.Logger) *RedisCache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), log)
}

func NewWithClient(client *redis.Client, log logger.Logger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get failed", logger.Field{Key: "key", Value: key}, logger.Field{Key: "error", Value: err})
		}
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", logger.Field{Key: "key", Value: key}, logger.Field{Key: "error", Value: err})
		return false
	}
	return true
}

func (c *RedisCache) Delete(ctx context.Context, key string) bool {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("cache delete failed", logger.Field{Key: "key", Value: key}, logger.Field{Key: "error", Value: err})
		return false
	}
	return true
}

// GetJSON decodes the cached value into dst. A value that fails to decode is
// treated as a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn("cache entry undecodable", logger.Field{Key: "key", Value: key}, logger.Field{Key: "error", Value: err})
		return false
	}
	return true
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache value unencodable", logger.Field{Key: "key", Value: key}, logger.Field{Key: "error", Value: err})
		return false
	}
	return c.Set(ctx, key, payload, ttl)
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
