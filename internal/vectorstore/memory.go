package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/pkg/rerank"
)

// Memory is a brute-force cosine index used when no database is
// configured, and by tests.
type Memory struct {
	embedder Embedder

	mu      sync.RWMutex
	chunks  []entity.Chunk
	vectors [][]float32
	byID    map[string]int
}

func NewMemory(embedder Embedder) *Memory {
	return &Memory{embedder: embedder, byID: make(map[string]int)}
}

func (s *Memory) Search(ctx context.Context, query string, k int) ([]entity.ScoredChunk, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]entity.ScoredChunk, len(s.chunks))
	for i := range s.chunks {
		scored[i] = entity.ScoredChunk{
			Chunk: s.chunks[i],
			Score: rerank.Cosine(vec, s.vectors[i]),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func (s *Memory) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func (s *Memory) Upsert(ctx context.Context, chunks []entity.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		if idx, ok := s.byID[chunks[i].ID]; ok {
			s.chunks[idx] = chunks[i]
			s.vectors[idx] = vectors[i]
			continue
		}
		s.byID[chunks[i].ID] = len(s.chunks)
		s.chunks = append(s.chunks, chunks[i])
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}
