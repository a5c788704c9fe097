// internal/store/memory.go
//
// In-memory implementation of the session Store.
// This is the default registry and also the hot layer of the Redis store.
//
// Characteristics:
//   - Stores *game.Session pointers keyed by session id.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Entries idle for longer than the TTL are treated as missing and swept lazily.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/narharikale/globe/internal/game"
)

// ErrNotFound is returned by Get for unknown or expired sessions.
var ErrNotFound = errors.New("store: session not found")

// Store is the session registry used by the HTTP layer.
// Get must return the same *game.Session for an id on every call while it is
// live, so that the session's own transition guard covers all requests.
type Store interface {
	// Save registers or refreshes a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Delete forgets a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

type entry struct {
	sess     *game.Session
	lastSeen time.Time
}

// Memory is a map-based Store.
type Memory struct {
	mu        sync.RWMutex
	sessions  map[string]*entry
	ttl       time.Duration // 0 disables expiry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore constructs an in-memory Store. ttl <= 0 keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *Memory {
	return &Memory{sessions: make(map[string]*entry), ttl: ttl, now: time.Now}
}

func (m *Memory) Save(ctx context.Context, s *game.Session) error {
	m.put(s.ID(), s)
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	m.mu.Lock()
	e.lastSeen = m.now()
	m.mu.Unlock()
	return e.sess, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of registered sessions, expired ones included until swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// put stores s under id and refreshes its idle timer.
func (m *Memory) put(id string, s *game.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sessions[id] = &entry{sess: s, lastSeen: now}
	m.sweepLocked(now)
}

func (m *Memory) expired(e *entry) bool {
	if m.ttl <= 0 {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now().Sub(e.lastSeen) > m.ttl
}

// sweepLocked drops expired entries at most once per TTL. Caller holds mu.
func (m *Memory) sweepLocked(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.sessions, id)
		}
	}
}
