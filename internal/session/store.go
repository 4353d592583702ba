package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Factory builds the controller for a new session id.
type Factory func(id string) *Controller

// Store keeps one Controller per browser session, keyed by a random id.
type Store struct {
	factory Factory
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
}

type storedSession struct {
	controller *Controller
	lastSeen   time.Time
}

// NewStore creates an empty store. A non-positive ttl uses DefaultTTL.
func NewStore(factory Factory, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*storedSession),
	}
}

// Get returns the controller for id and refreshes its idle timer.
// Expired sessions are treated as missing.
func (s *Store) Get(id string) (*Controller, bool) {
	if id == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(ss.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	ss.lastSeen = now
	return ss.controller, true
}

// Create starts a new session and returns its id.
func (s *Store) Create() (string, *Controller) {
	id := uuid.NewString()
	c := s.factory(id)

	s.mu.Lock()
	s.sessions[id] = &storedSession{controller: c, lastSeen: s.now()}
	s.mu.Unlock()

	return id, c
}

// GetOrCreate returns the session for id, or a new one when id is unknown
// or expired. The returned id is the one to hand back to the client.
func (s *Store) GetOrCreate(id string) (string, *Controller, bool) {
	if c, ok := s.Get(id); ok {
		return id, c, false
	}
	newID, c := s.Create()
	return newID, c, true
}

// Sweep removes every session idle for longer than the ttl and returns how
// many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, ss := range s.sessions {
		if now.Sub(ss.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// TTL returns the idle timeout.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
