// Package embedding talks to the external embedding service: an
// OpenAI-compatible /embeddings endpoint that maps text to a fixed-length
// vector, deterministic for identical input.
package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/chatbot-backend/internal/config"
	"github.com/futig/chatbot-backend/internal/integration/common"
	pkgretry "github.com/futig/chatbot-backend/internal/pkg/retry"
	pkghttp "github.com/futig/chatbot-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const embeddingsEndpoint = "/embeddings"

type Connector struct {
	config    config.EmbeddingConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given text.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	req := embedRequest{Model: c.config.Model, Input: text}

	var resp embedResponse
	err := pkgretry.Do(ctx, &c.config.Retry, pkghttp.IsRetryable, func() error {
		resp = embedResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, embeddingsEndpoint, req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned no vector")
	}

	ctxzap.Debug(ctx, "text embedded",
		zap.Int("text_length", len(text)),
		zap.Int("dimension", len(resp.Data[0].Embedding)),
	)

	return resp.Data[0].Embedding, nil
}
