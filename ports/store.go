package ports

import (
	"context"
	"time"
)

// KVStore holds short-lived string values.
// A missing or expired key is reported as (value "", found false, err nil).
type KVStore interface {
	// Set stores value under key; a positive ttl makes it unreadable afterwards
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	// Take atomically reads and deletes key, so concurrent callers cannot
	// both observe the same value
	Take(ctx context.Context, key string) (string, bool, error)
	Close() error
}
