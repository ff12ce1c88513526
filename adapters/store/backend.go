package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/polywallet/core"
	"github.com/layer-3/polywallet/ports"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Kind names a storage backend
type Kind string

const (
	KindAuto   Kind = "auto"
	KindRedis  Kind = "redis"
	KindMemory Kind = "memory"
)

const pingTimeout = 3 * time.Second

// Backend is the store selected at startup. Redis is nil for the memory backend.
type Backend struct {
	Kind  Kind
	Store ports.KVStore
	Redis *redis.Client
}

// Close releases the backend connection
func (b *Backend) Close() error {
	return b.Store.Close()
}

// Open selects a backend once. KindRedis fails when Redis is unreachable,
// KindMemory never dials and KindAuto falls back to memory with a warning.
func Open(ctx context.Context, kind Kind, redisURL string, log zerolog.Logger) (*Backend, error) {
	switch kind {
	case KindMemory:
		log.Warn().Msg("using in-memory store: nonces are lost on restart and not shared between instances")
		return &Backend{Kind: KindMemory, Store: NewMemoryStore()}, nil

	case KindRedis, KindAuto, "":
		client, err := dialRedis(ctx, redisURL)
		if err == nil {
			log.Info().Str("backend", string(KindRedis)).Msg("store connected")
			return &Backend{Kind: KindRedis, Store: NewRedisStore(client), Redis: client}, nil
		}
		if kind == KindRedis {
			return nil, core.E(core.KindStoreUnavailable, "store.Open", err)
		}
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory store: nonces are lost on restart and not shared between instances")
		return &Backend{Kind: KindMemory, Store: NewMemoryStore()}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

func dialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
