// Package session maps opaque session identifiers to OAuth token bundles and
// profiles. The identifier is the only thing a client ever holds; token
// bundles stay on the server for their whole lifetime.
package session

import (
	"sync"
	"time"

	"fintrack/internal/models"
)

// Store persists session records. Implementations must treat an expired
// record the same as a missing one.
type Store interface {
	Put(rec *models.Session) error
	Get(id string) (*models.Session, error)
	Touch(id string, lastSeen, expiresAt time.Time) error
	Delete(id string) error
}

// MemoryStore keeps sessions in process memory. Records are dropped lazily on
// read and swept periodically so a long-running process does not accumulate
// expired sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	done     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a memory store and starts its expiry sweep.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*models.Session),
		done:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweep(sweepInterval)
	}
	return s
}

// Put stores a copy of the record.
func (s *MemoryStore) Put(rec *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.sessions[rec.ID] = &cp
	return nil
}

// Get returns the record for the identifier, or ErrNoSession when the
// identifier is unknown or the record has expired.
func (s *MemoryStore) Get(id string) (*models.Session, error) {
	s.mu.RLock()
	rec, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}
	if rec.Expired(time.Now()) {
		_ = s.Delete(id)
		return nil, ErrNoSession
	}
	cp := *rec
	return &cp, nil
}

// Touch slides the expiry window of an existing record.
func (s *MemoryStore) Touch(id string, lastSeen, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return ErrNoSession
	}
	rec.LastSeen = lastSeen
	rec.ExpiresAt = expiresAt
	return nil
}

// Delete removes the record, if present.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Close stops the background sweep.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, rec := range s.sessions {
				if rec.Expired(now) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
