package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Helper provides common caching operations for repositories and services.
// All operations degrade gracefully when no Redis client is configured.
type Helper struct {
	client *redis.Client
	prefix string
}

func NewHelper(client *redis.Client, prefix string) *Helper {
	return &Helper{
		client: client,
		prefix: prefix,
	}
}

// Config defines TTL and key prefix per cached data type.
type Config struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Navigation directory changes rarely but is read on every page load.
	DirectoryCacheConfig = Config{
		TTL:    5 * time.Minute,
		Prefix: "directory:",
	}

	// Analytics rollups are expensive group-by queries.
	StatsCacheConfig = Config{
		TTL:    2 * time.Minute,
		Prefix: "stats:",
	}
)

// Cache errors
var (
	ErrCacheNotAvailable = fmt.Errorf("cache not available")
	ErrCacheNotFound     = fmt.Errorf("cache key not found")
)

func (c *Helper) cacheKey(key string) string {
	return c.prefix + key
}

// Get retrieves and unmarshals data from cache.
func (c *Helper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.cacheKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores data in cache.
func (c *Helper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // graceful degradation when cache not available
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	return c.client.Set(ctx, c.cacheKey(key), data, ttl).Err()
}

// Delete removes keys from cache.
func (c *Helper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.cacheKey(key)
	}
	return c.client.Del(ctx, cacheKeys...).Err()
}

// InvalidatePattern removes all keys matching a pattern using SCAN.
func (c *Helper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	fullPattern := c.cacheKey(pattern)
	var cursor uint64
	var keys []string

	for {
		scanKeys, next, err := c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan pattern error: %w", err)
		}
		keys = append(keys, scanKeys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// CacheOrExecute implements the cache-aside pattern: serve from cache when
// possible, otherwise run fetchFunc, store the result and unmarshal it into
// dest.
func (c *Helper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheNotFound && err != ErrCacheNotAvailable {
		slog.InfoContext(ctx, "Cache get error, proceeding to fetch", "error", err, "key", key)
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		slog.ErrorContext(ctx, "Cache set error", "error", err, "key", key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// SafeInvalidatePattern invalidates a pattern, logging instead of failing
// the surrounding write when the cache is unreachable.
func SafeInvalidatePattern(ctx context.Context, helper *Helper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// Manager groups the cache helpers used across the service.
type Manager struct {
	Directory *Helper
	Stats     *Helper
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{
		Directory: NewHelper(client, DirectoryCacheConfig.Prefix),
		Stats:     NewHelper(client, StatsCacheConfig.Prefix),
	}
}
