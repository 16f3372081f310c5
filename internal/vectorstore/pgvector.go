// Package vectorstore exposes the narrow vector-index contract the
// pipeline consumes: search(query, k) and count. Backing storage is
// opaque to callers.
package vectorstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/repository"
)

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Pgvector is the production index: query embedding plus cosine k-NN over
// the pgvector chunks table.
type Pgvector struct {
	chunks   repository.ChunkRepository
	embedder Embedder
	logger   *zap.Logger
}

func NewPgvector(chunks repository.ChunkRepository, embedder Embedder, logger *zap.Logger) *Pgvector {
	return &Pgvector{
		chunks:   chunks,
		embedder: embedder,
		logger:   logger,
	}
}

// Search returns the k nearest chunks for the query, best first.
func (s *Pgvector) Search(ctx context.Context, query string, k int) ([]entity.ScoredChunk, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}

	results, err := s.chunks.NearestByVector(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return results, nil
}

func (s *Pgvector) Count(ctx context.Context) (int, error) {
	return s.chunks.CountChunks(ctx)
}

// Upsert indexes chunks with their precomputed vectors.
func (s *Pgvector) Upsert(ctx context.Context, chunks []entity.Chunk, vectors [][]float32) error {
	return s.chunks.UpsertChunks(ctx, chunks, vectors)
}
