// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"marketplace/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the Redis client used for read-through caching.
var CacheClient *redis.Client

// InitCache connects the cache client to the configured cache DB.
func InitCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis (Cache): %w", err)
	}
	CacheClient = client
	return nil
}

// GetCacheClient returns the cache client, or nil if InitCache has not
// succeeded.
func GetCacheClient() *redis.Client {
	return CacheClient
}
