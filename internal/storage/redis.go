package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis, for deployments where session
// state must survive the process. Values are sonic-encoded JSON.
type RedisStore[T any] struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore connects to the Redis named by the REDIS_URL environment
// variable and verifies the connection.
func NewRedisStore[T any](ctx context.Context, keyPrefix string, ttl time.Duration) (*RedisStore[T], error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore[T]{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}, nil
}

func (r *RedisStore[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	data, err := r.client.Get(ctx, r.keyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("failed to load %s: %w", key, err)
	}

	var value T
	if err := sonic.Unmarshal([]byte(data), &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	// Refresh TTL on read so live sessions keep their state.
	if r.ttl > 0 {
		r.client.Expire(ctx, r.keyPrefix+key, r.ttl)
	}
	return value, nil
}

func (r *RedisStore[T]) Put(ctx context.Context, key string, value T) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return r.client.Set(ctx, r.keyPrefix+key, data, r.ttl).Err()
}

func (r *RedisStore[T]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.keyPrefix+key).Err()
}

// Sweep is a no-op for Redis; expiry is enforced server-side by TTL.
func (r *RedisStore[T]) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}

func (r *RedisStore[T]) Len() int {
	count, err := r.client.Keys(context.Background(), r.keyPrefix+"*").Result()
	if err != nil {
		return 0
	}
	return len(count)
}

// HealthCheck pings the backing Redis.
func (r *RedisStore[T]) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
