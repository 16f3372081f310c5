package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/chatbot-backend/internal/entity"
)

// MessageRepository defines the interface for the append-only
// conversation log
type MessageRepository interface {
	AppendMessage(ctx context.Context, sessionID string, role entity.Role, text string) error
	GetSessionMessages(ctx context.Context, sessionID string) ([]entity.Turn, error)
}

var _ MessageRepository = &MessagePostgres{}

// MessagePostgres implements MessageRepository using PostgreSQL
type MessagePostgres struct {
	db *pgxpool.Pool
}

func NewMessagePostgres(db *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{db: db}
}

func (r *MessagePostgres) AppendMessage(
	ctx context.Context,
	sessionID string,
	role entity.Role,
	text string,
) error {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO messages (session_id, role, text)
		VALUES ($1, $2, $3)`,
		pgtype.UUID{Bytes: sessID, Valid: true}, string(role), text,
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	return nil
}

func (r *MessagePostgres) GetSessionMessages(
	ctx context.Context,
	sessionID string,
) ([]entity.Turn, error) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT role, text
		FROM messages
		WHERE session_id = $1
		ORDER BY id`,
		pgtype.UUID{Bytes: sessID, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("get session messages: %w", err)
	}
	defer rows.Close()

	var turns []entity.Turn
	for rows.Next() {
		var role, text string
		if err := rows.Scan(&role, &text); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		turns = append(turns, entity.Turn{Role: entity.Role(role), Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return turns, nil
}
