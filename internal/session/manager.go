package session

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/futig/chatbot-backend/internal/entity"
)

// Manager owns the live sessions. Sessions expire after the configured
// idle TTL; an expired session ID behaves like an unknown one.
type Manager struct {
	ttl      time.Duration
	sessions *gocache.Cache
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: gocache.New(ttl, 2*ttl),
	}
}

// Create opens a new session with a generated ID.
func (m *Manager) Create() *Session {
	sess := newSession(uuid.New().String())
	m.sessions.Set(sess.ID(), sess, gocache.DefaultExpiration)
	return sess
}

// Get returns the session for the given ID, refreshing its TTL.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	sess := v.(*Session)
	// Sliding expiration: activity keeps the conversation alive.
	m.sessions.Set(id, sess, gocache.DefaultExpiration)
	return sess, nil
}
