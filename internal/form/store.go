package form

import (
	"sync"
	"time"

	"mercadito/internal/core/id"
)

// sessionTTL bounds how long an abandoned form survives.
const sessionTTL = 30 * time.Minute

type storedSession struct {
	session  *Session
	lastUsed time.Time
}

// Store keeps open form sessions keyed by generated id. Abandoned
// sessions are purged lazily on access.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*storedSession)}
}

// Put registers a session and returns its id.
func (s *Store) Put(session *Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()

	sid := id.New().String()
	s.sessions[sid] = &storedSession{session: session, lastUsed: time.Now()}
	return sid
}

// Get returns a session and refreshes its deadline.
func (s *Store) Get(sid string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()

	stored, ok := s.sessions[sid]
	if !ok {
		return nil, false
	}
	stored.lastUsed = time.Now()
	return stored.session, true
}

// Delete discards a session.
func (s *Store) Delete(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
}

func (s *Store) purgeLocked() {
	deadline := time.Now().Add(-sessionTTL)
	for sid, stored := range s.sessions {
		if stored.lastUsed.Before(deadline) {
			delete(s.sessions, sid)
		}
	}
}
