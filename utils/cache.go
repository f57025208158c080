// File: utils/cache.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"easybook/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheClient is the generic cache client. It stays nil when Redis is unreachable.
var CacheClient *redis.Client

// InitCache initializes the generic Redis cache client (using DB from AppConfig for general caching).
func InitCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis (Cache): %w", err)
	}
	CacheClient = client
	return nil
}

// GetCacheClient returns the generic cache client, or nil when caching is disabled.
func GetCacheClient() *redis.Client {
	return CacheClient
}

// JSONCache stores JSON payloads under a key prefix. A nil client turns every
// call into a miss so callers never need to branch on Redis availability.
type JSONCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewJSONCache(client *redis.Client, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, prefix: prefix, ttl: ttl}
}

// Get decodes the cached value into dest and reports whether it was found.
func (c *JSONCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return false
	}
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			GetLogger().Warn("Cache read failed", zap.String("key", c.prefix+key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		GetLogger().Warn("Cache entry corrupt", zap.String("key", c.prefix+key), zap.Error(err))
		return false
	}
	return true
}

// Set stores value; failures are logged and otherwise ignored.
func (c *JSONCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		GetLogger().Warn("Cache encode failed", zap.String("key", c.prefix+key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		GetLogger().Warn("Cache write failed", zap.String("key", c.prefix+key), zap.Error(err))
	}
}
