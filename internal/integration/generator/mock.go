package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
)

// MockConnector is a stand-in generator for local runs without an API key.
// It echoes the last line of the prompt (the question) with a fixed frame.
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating answer")

	question := ""
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Question:") {
			question = strings.TrimSpace(strings.TrimPrefix(line, "Question:"))
		}
	}
	if question == "" {
		return "This is a mock answer based on the provided context.", nil
	}

	return fmt.Sprintf("Here is what I found about %s (mock answer based on the retrieved context).", question), nil
}
