package store

import (
	"context"
	"errors"
	"time"

	"github.com/layer-3/polywallet/core"
	"github.com/layer-3/polywallet/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the KVStore interface
type RedisStore struct {
	client *redis.Client
}

var _ ports.KVStore = (*RedisStore)(nil)

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Set stores a key with a value and optional expiration time
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return core.E(core.KindStoreUnavailable, "redis.Set", err)
	}
	return nil
}

// Get retrieves a value by key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	return result(value, err, "redis.Get")
}

// Delete removes a key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return core.E(core.KindStoreUnavailable, "redis.Del", err)
	}
	return nil
}

// Take reads and deletes a key with a single GETDEL
func (s *RedisStore) Take(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.GetDel(ctx, key).Result()
	return result(value, err, "redis.GetDel")
}

// Client returns the underlying Redis client
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func result(value string, err error, op string) (string, bool, error) {
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, core.E(core.KindStoreUnavailable, op, err)
	}
	return value, true, nil
}
