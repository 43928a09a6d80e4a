package callcontext

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hirevox/hirevox/internal/models"
)

type memoryEntry struct {
	mu        sync.Mutex
	raw       []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store with per-key locking. Used in tests
// and single-node deployments; values are copied through JSON so callers
// can never alias the stored context.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{entries: map[string]*memoryEntry{}, ttl: ttl}
}

func (s *MemoryStore) entry(interviewID string, create bool) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[interviewID]
	if !ok && create {
		e = &memoryEntry{}
		s.entries[interviewID] = e
	}
	return e
}

func (s *MemoryStore) Put(ctx context.Context, interviewID string, cc *models.CallContext) error {
	cc.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(cc)
	if err != nil {
		return err
	}

	e := s.entry(interviewID, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.raw = b
	e.expiresAt = time.Now().Add(s.ttl)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, interviewID string) (*models.CallContext, error) {
	e := s.entry(interviewID, false)
	if e == nil {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.raw == nil || time.Now().After(e.expiresAt) {
		return nil, ErrNotFound
	}

	var cc models.CallContext
	if err := json.Unmarshal(e.raw, &cc); err != nil {
		return nil, ErrNotFound
	}
	return &cc, nil
}

func (s *MemoryStore) Update(ctx context.Context, interviewID string, fn func(cc *models.CallContext) error) (*models.CallContext, error) {
	e := s.entry(interviewID, false)
	if e == nil {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.raw == nil || time.Now().After(e.expiresAt) {
		return nil, ErrNotFound
	}

	var cc models.CallContext
	if err := json.Unmarshal(e.raw, &cc); err != nil {
		return nil, ErrNotFound
	}

	if err := fn(&cc); err != nil {
		return nil, err
	}
	cc.UpdatedAt = time.Now().UTC()

	b, err := json.Marshal(&cc)
	if err != nil {
		return nil, err
	}
	e.raw = b
	e.expiresAt = time.Now().Add(s.ttl)
	return &cc, nil
}

func (s *MemoryStore) Expire(ctx context.Context, interviewID string, ttl time.Duration) error {
	e := s.entry(interviewID, false)
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expiresAt = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, interviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, interviewID)
	return nil
}
