package stores

import (
	"context"
	"sync"
	"time"
)

// MemoryUndoStore keeps undo entries in a mutex-guarded map. Consumption
// deletes under the lock, so concurrent undo attempts on the same token see
// at most one success. A reaper evicts expired entries so the cache cannot
// leak even when tokens are never consumed.
type MemoryUndoStore struct {
	mu      sync.Mutex
	entries map[string]*UndoRecord

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryUndoStore builds an in-memory undo cache and starts its reaper.
func NewMemoryUndoStore(sweepInterval time.Duration) *MemoryUndoStore {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Second
	}
	s := &MemoryUndoStore{
		entries: make(map[string]*UndoRecord),
		done:    make(chan struct{}),
	}
	go s.reap(sweepInterval)
	return s
}

func (s *MemoryUndoStore) reap(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now().Unix()
			s.mu.Lock()
			for id, rec := range s.entries {
				if now > rec.ExpiresAt {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// Save stores the record under id for ttl.
func (s *MemoryUndoStore) Save(_ context.Context, id string, rec *UndoRecord, ttl time.Duration) error {
	now := time.Now()
	rec.CreatedAt = now.Unix()
	rec.ExpiresAt = now.Add(ttl).Unix()

	stored := *rec
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &stored
	return nil
}

// Consume atomically removes and returns the record, enforcing expiry on
// the consume path as well as in the reaper.
func (s *MemoryUndoStore) Consume(_ context.Context, id string) (*UndoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entries[id]
	if !ok {
		return nil, ErrUndoNotFound
	}
	delete(s.entries, id)
	if time.Now().Unix() > rec.ExpiresAt {
		return nil, ErrUndoNotFound
	}
	out := *rec
	return &out, nil
}

// Close stops the reaper.
func (s *MemoryUndoStore) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
