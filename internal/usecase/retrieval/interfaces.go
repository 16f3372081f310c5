package retrieval

import (
	"context"

	"github.com/futig/chatbot-backend/internal/entity"
)

type Index interface {
	Search(ctx context.Context, query string, k int) ([]entity.ScoredChunk, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
