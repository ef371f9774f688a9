package models

import (
	"context"
	"sync"
	"time"
)

// PageStore keeps the current page state of every session. It stores one
// state per key and never a history of submissions.
type PageStore interface {
	// Load returns the state for key, or a fresh untouched state.
	Load(ctx context.Context, key string) (*PageState, error)

	// Update runs fn on the state for key and saves the result atomically.
	// If fn returns an error the state is still saved, so rejections can
	// queue their notification; the error is returned to the caller.
	Update(ctx context.Context, key string, fn func(*PageState) error) (*PageState, error)

	Delete(ctx context.Context, key string) error
}

// DefaultStateTTL is how long an idle session state is kept.
const DefaultStateTTL = 24 * time.Hour

type memoryEntry struct {
	state     *PageState
	expiresAt time.Time
}

// MemoryStore is a PageStore for a single server process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, key string) (*PageState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(key).Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, key string, fn func(*PageState) error) (*PageState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.get(key).Clone()
	fnErr := fn(state)
	if err := state.Validate(); err != nil {
		return nil, err
	}

	state.UpdatedAt = s.now()
	s.entries[key] = &memoryEntry{state: state, expiresAt: state.UpdatedAt.Add(s.ttl)}
	return state.Clone(), fnErr
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// DeleteExpired drops idle sessions and reports how many were removed.
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}

// get must be called with mu held.
func (s *MemoryStore) get(key string) *PageState {
	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return NewPageState()
	}
	return e.state
}
