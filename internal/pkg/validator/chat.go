package validator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/futig/chatbot-backend/internal/config"
	"github.com/futig/chatbot-backend/internal/entity"
)

// Validator validates chat API requests
type Validator struct {
	cfg config.ChatConfig
}

func NewChatValidator(cfg config.ChatConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAsk validates AskRequest
func (v *Validator) ValidateAsk(req *entity.AskRequest) error {
	if req.SessionID == "" {
		return fmt.Errorf("%w: session_id", entity.ErrMissingField)
	}
	if _, err := uuid.Parse(req.SessionID); err != nil {
		return fmt.Errorf("%w: session_id must be a UUID", entity.ErrInvalidParameter)
	}
	if len(req.Query) > v.cfg.MaxQueryLength {
		return fmt.Errorf("%w: query is %d characters (max %d)", entity.ErrInvalidParameter, len(req.Query), v.cfg.MaxQueryLength)
	}

	return nil
}

// ValidateSessionID validates a path session id
func (v *Validator) ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: session_id", entity.ErrMissingField)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: session_id must be a UUID", entity.ErrInvalidParameter)
	}

	return nil
}
