package builder

import (
	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/pkg/logger"
)

func setupLogger(level string) (*zap.Logger, error) {
	return logger.New(level)
}
