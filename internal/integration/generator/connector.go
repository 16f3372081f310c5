// Package generator calls the external LLM that phrases the final answer.
// The wire format is the Gemini generateContent REST API.
package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/chatbot-backend/internal/config"
	"github.com/futig/chatbot-backend/internal/integration/common"
	pkgretry "github.com/futig/chatbot-backend/internal/pkg/retry"
	pkghttp "github.com/futig/chatbot-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.GeneratorConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.GeneratorConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate produces natural-language text for the assembled prompt.
// Failures (network, quota, timeout) are returned to the caller, which is
// expected to degrade gracefully rather than propagate them.
func (c *Connector) Generate(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("/models/%s:generateContent", c.config.Model)

	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{ResponseMimeType: "text/plain"},
	}

	var resp generateResponse
	err := pkgretry.Do(ctx, &c.config.Retry, pkghttp.IsRetryable, func() error {
		resp = generateResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp,
			pkghttp.WithHeader("x-goog-api-key", c.config.APIKey),
		)
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generator returned no candidates")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())

	ctxzap.Debug(ctx, "answer generated",
		zap.Int("prompt_length", len(prompt)),
		zap.Int("answer_length", len(text)),
	)

	return text, nil
}
