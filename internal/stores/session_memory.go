package stores

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore keeps edit sessions in a mutex-guarded map. A reaper
// goroutine evicts sessions idle past their TTL; the Get path also enforces
// expiry so a session never outlives its deadline between sweeps.
type MemorySessionStore struct {
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*EditSession

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemorySessionStore builds an in-memory session store and starts its
// reaper. sweepInterval bounds how long an abandoned session can linger.
func NewMemorySessionStore(idleTTL, sweepInterval time.Duration) *MemorySessionStore {
	if sweepInterval <= 0 {
		sweepInterval = 30 * time.Second
	}
	s := &MemorySessionStore{
		idleTTL:  idleTTL,
		sessions: make(map[string]*EditSession),
		done:     make(chan struct{}),
	}
	go s.reap(sweepInterval)
	return s
}

func (s *MemorySessionStore) reap(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now().Unix()
			s.mu.Lock()
			for id, sess := range s.sessions {
				if now > sess.ExpiresAt {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// Create stores a fresh session. The caller assigns the id.
func (s *MemorySessionStore) Create(_ context.Context, sess *EditSession) error {
	now := time.Now()
	sess.CreatedAt = now.Unix()
	sess.ExpiresAt = now.Add(s.idleTTL).Unix()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Get returns a copy of the session, or ErrSessionNotFound when missing or
// expired.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*EditSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().Unix() > sess.ExpiresAt {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// SetPage replaces one page's selection and refreshes the idle TTL.
func (s *MemorySessionStore) SetPage(_ context.Context, id string, page int, sel PageSelection) error {
	return s.mutate(id, func(sess *EditSession) {
		if sel.empty() {
			delete(sess.Pages, page)
			return
		}
		sess.Pages[page] = PageSelection{
			Keys:  append([]string(nil), sel.Keys...),
			Allow: append([]string(nil), sel.Allow...),
			Deny:  append([]string(nil), sel.Deny...),
			Clear: append([]string(nil), sel.Clear...),
		}
	})
}

// MarkAll sets or clears the all-selected sentinel.
func (s *MemorySessionStore) MarkAll(_ context.Context, id string, all bool) error {
	return s.mutate(id, func(sess *EditSession) {
		sess.AllSelected = all
	})
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Close stops the reaper. The store remains usable but no longer sweeps.
func (s *MemorySessionStore) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *MemorySessionStore) mutate(id string, apply func(*EditSession)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || time.Now().Unix() > sess.ExpiresAt {
		delete(s.sessions, id)
		return ErrSessionNotFound
	}
	apply(sess)
	sess.ExpiresAt = time.Now().Add(s.idleTTL).Unix()
	return nil
}
