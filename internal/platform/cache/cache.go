// Package cache provides a Redis-backed read-through cache for posts.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/folio-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments the counter at key and returns its new value.
	Incr(ctx context.Context, key string) (int64, error)
	// SetIfEqual stores value under key only while guardKey holds guard, and
	// reports whether it did. An absent guardKey reads as "0".
	SetIfEqual(ctx context.Context, key string, value []byte, ttl time.Duration, guardKey, guard string) (bool, error)
}

// setIfEqualScript compares and sets in one round trip so no writer can slip
// between the check and the SET.
var setIfEqualScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then current = '0' end
if current ~= ARGV[3] then return 0 end
if tonumber(ARGV[2]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps client. Every key is prefixed with prefix.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements Cache.Get
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

// Set implements Cache.Set
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete implements Cache.Delete
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}

// Incr implements Cache.Incr
func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, c.prefix+key).Result()
}

// SetIfEqual implements Cache.SetIfEqual
func (c *RedisCache) SetIfEqual(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
	guardKey, guard string,
) (bool, error) {
	stored, err := setIfEqualScript.Run(ctx, c.client,
		[]string{c.prefix + key, c.prefix + guardKey},
		value, ttl.Milliseconds(), guard).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr string, logger *slog.Logger) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: redis address is empty", store.ErrConfiguration)
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info("redis connection established", slog.String("addr", addr))
	return client, nil
}
