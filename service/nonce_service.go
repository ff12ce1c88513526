package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/layer-3/polywallet/core"
	"github.com/layer-3/polywallet/ports"
)

const (
	// DefaultNonceTTL is how long an issued nonce stays consumable
	DefaultNonceTTL = 5 * time.Minute

	nonceBytes  = 16
	noncePrefix = "nonce:"
)

// NonceService issues single-use login nonces
type NonceService struct {
	store ports.KVStore
	ttl   time.Duration
	now   func() time.Time
}

// NewNonceService creates a nonce service storing nonces in store for ttl
func NewNonceService(store ports.KVStore, ttl time.Duration) *NonceService {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &NonceService{store: store, ttl: ttl, now: time.Now}
}

// Generate creates a random nonce and stores it with the configured TTL
func (s *NonceService) Generate(ctx context.Context) (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hexutil.Encode(buf)

	record, err := json.Marshal(core.NonceRecord{
		Nonce:     nonce,
		ExpiresAt: s.now().Add(s.ttl).UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode nonce: %w", err)
	}

	if err := s.store.Set(ctx, nonceKey(nonce), string(record), s.ttl); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}

	return nonce, nil
}

// Consume accepts nonce at most once. Unknown, consumed and expired
// nonces all fail with core.ErrInvalidNonce.
func (s *NonceService) Consume(ctx context.Context, nonce string) error {
	const op = "nonce.Consume"

	if nonce == "" {
		return core.Ef(core.KindInvalidNonce, op, "empty nonce")
	}

	value, found, err := s.store.Take(ctx, nonceKey(nonce))
	if err != nil {
		return fmt.Errorf("failed to consume nonce: %w", err)
	}
	if !found {
		return core.Ef(core.KindInvalidNonce, op, "nonce not found")
	}

	var record core.NonceRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return core.Ef(core.KindInvalidNonce, op, "corrupt nonce record: %v", err)
	}
	if record.Nonce != nonce {
		return core.Ef(core.KindInvalidNonce, op, "nonce record mismatch")
	}
	if record.Expired(s.now()) {
		return core.Ef(core.KindInvalidNonce, op, "nonce expired")
	}

	return nil
}

func nonceKey(nonce string) string {
	return noncePrefix + nonce
}
