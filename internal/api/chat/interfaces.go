package chat

import (
	"context"

	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/session"
)

type ChatUsecase interface {
	Ask(ctx context.Context, sessionID, query string) (string, error)
	History(ctx context.Context, sessionID string) ([]entity.Turn, error)
}

type SessionManager interface {
	Create() *session.Session
}
