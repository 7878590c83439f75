package services

import (
	"sync"

	"github.com/google/uuid"

	"seat-assistant/internal/models"
)

// SessionStore owns the in-process conversations. Nothing is persisted:
// sessions live for the process lifetime only. The map is guarded because
// the HTTP server is concurrent, even though any one conversation is
// handled turn-by-turn.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
	}
}

// GetOrCreate returns the session with the given ID, creating it (with a
// fresh ID when none is supplied or the ID is unknown).
func (s *SessionStore) GetOrCreate(id string) *models.Session {
	if id != "" {
		s.mu.RLock()
		session, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			return session
		}
	}

	session := &models.Session{ID: uuid.NewString()}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
