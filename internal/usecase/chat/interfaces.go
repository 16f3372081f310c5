package chat

import (
	"context"

	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/session"
)

type Normalizer interface {
	Normalize(query string) string
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, k, topN int) ([]entity.Candidate, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Sessions interface {
	Get(id string) (*session.Session, error)
}

// ConversationLog persists turns outside the in-memory session, e.g. in
// Postgres. Append failures are reported but must never fail an answer;
// reads serve history after the in-memory session has expired.
type ConversationLog interface {
	AppendMessage(ctx context.Context, sessionID string, role entity.Role, text string) error
	GetSessionMessages(ctx context.Context, sessionID string) ([]entity.Turn, error)
}
