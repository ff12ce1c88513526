package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/polywallet/ports"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
	timer     *time.Timer
}

// MemoryStore is an in-process implementation of the KVStore interface.
// State is lost on restart and is not shared between processes.
type MemoryStore struct {
	data map[string]*memoryEntry
	mu   sync.Mutex
	now  func() time.Time
}

var _ ports.KVStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an in-memory store that reads time from now
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*memoryEntry),
		now:  now,
	}
}

// Set stores value under key, replacing any previous value
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(key)

	e := &memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
		// Purge the key once it expires, unless it was replaced meanwhile.
		e.timer = time.AfterFunc(ttl, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.data[key]; ok && cur == e {
				delete(s.data, key)
			}
		})
	}
	s.data[key] = e

	return nil
}

// Get retrieves a value by key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.liveLocked(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

// Delete removes key; deleting a missing key is not an error
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(key)
	return nil
}

// Take reads and removes key under a single lock acquisition
func (s *MemoryStore) Take(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.liveLocked(key)
	if !ok {
		return "", false, nil
	}
	s.removeLocked(key)
	return e.value, true, nil
}

// Len returns the number of keys currently held, expired or not
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Close stops pending expiry timers and drops all data
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.data {
		s.removeLocked(key)
	}
	return nil
}

// liveLocked returns the entry for key, dropping it if it has expired.
func (s *MemoryStore) liveLocked(key string) (*memoryEntry, bool) {
	e, ok := s.data[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.removeLocked(key)
		return nil, false
	}
	return e, true
}

func (s *MemoryStore) removeLocked(key string) {
	if e, ok := s.data[key]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.data, key)
	}
}
