// Package idempotency replays completed responses for requests that carry an
// Idempotency-Key header and rejects duplicates that arrive while the first
// is still running.
package idempotency

import (
	"context"
	"sync"
	"time"
)

// Response is a completed response kept for replay.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store holds in-flight locks and completed responses.
// Lock must be atomic: at most one caller wins a key until it is unlocked
// or the ttl passes.
type Store interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Load(ctx context.Context, key string) (*Response, error)
	Save(ctx context.Context, key string, resp Response, ttl time.Duration) error
}

type memoryEntry struct {
	resp      Response
	expiresAt time.Time
}

// MemoryStore is a single-process Store.
type MemoryStore struct {
	mu        sync.Mutex
	locks     map[string]time.Time
	responses map[string]memoryEntry
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:     make(map[string]time.Time),
		responses: make(map[string]memoryEntry),
		now:       time.Now,
	}
}

func (s *MemoryStore) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if until, held := s.locks[key]; held && now.Before(until) {
		return false, nil
	}
	s.locks[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryStore) Unlock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

// Load returns nil when nothing live is stored for key.
func (s *MemoryStore) Load(_ context.Context, key string) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.responses[key]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.responses, key)
		return nil, nil
	}
	resp := entry.resp
	resp.Body = append([]byte(nil), entry.resp.Body...)
	return &resp, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, resp Response, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp.Body = append([]byte(nil), resp.Body...)
	s.responses[key] = memoryEntry{resp: resp, expiresAt: s.now().Add(ttl)}
	return nil
}
