// Package session holds per-conversation state: an append-only sequence of
// user/assistant turns and a TTL-bounded manager keyed by session ID.
package session

import (
	"sync"
	"time"

	"github.com/futig/chatbot-backend/internal/entity"
)

// Session is the conversation state of one dialog. Turns are append-only;
// no turn is mutated after being appended. The mutex makes a session safe
// to drive from the HTTP surface, where calls for different sessions
// interleave. A single session is still expected to have one caller at a
// time.
type Session struct {
	id        string
	createdAt time.Time

	mu    sync.Mutex
	turns []entity.Turn
}

func newSession(id string) *Session {
	return &Session{
		id:        id,
		createdAt: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Append records a turn at the end of the conversation.
func (s *Session) Append(role entity.Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, entity.Turn{Role: role, Text: text})
}

// Recent returns a copy of the last limit turns in arrival order, oldest
// first. A non-positive limit returns all turns.
func (s *Session) Recent(limit int) []entity.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if limit > 0 && len(s.turns) > limit {
		start = len(s.turns) - limit
	}
	out := make([]entity.Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// Len reports the number of turns recorded so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
