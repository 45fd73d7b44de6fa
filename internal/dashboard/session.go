package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionTTL bounds how long an issued session token stays valid.
const SessionTTL = 12 * time.Hour

// SessionStore hands out opaque tokens after a successful password check and
// validates them on every gated request. Tokens live in process memory; a
// restart logs everyone out, which is acceptable for a single shared session.
type SessionStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionStore creates a store with the default TTL.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		tokens: make(map[string]time.Time),
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// Issue creates and registers a fresh session token.
func (s *SessionStore) Issue() string {
	token := uuid.New().String()

	s.mu.Lock()
	s.tokens[token] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return token
}

// Valid reports whether the token is known and unexpired. Expired tokens are
// pruned on sight.
func (s *SessionStore) Valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.tokens[token]
	if !ok {
		return false
	}
	if s.now().After(deadline) {
		delete(s.tokens, token)
		return false
	}
	return true
}
