package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/pkg/rerank"
)

type Usecase struct {
	index    Index
	embedder Embedder
	weights  rerank.Weights
	minScore float64
	logger   *zap.Logger
}

func NewUsecase(index Index, embedder Embedder, weights rerank.Weights, minScore float64, logger *zap.Logger) *Usecase {
	return &Usecase{
		index:    index,
		embedder: embedder,
		weights:  weights,
		minScore: minScore,
		logger:   logger,
	}
}

// Retrieve searches the index for the query, reranks the candidates by a
// weighted mix of embedding cosine similarity and word-level Jaccard
// overlap, and returns at most topN passages best-first.
func (u *Usecase) Retrieve(ctx context.Context, query string, k, topN int) ([]entity.Candidate, error) {
	hits, err := u.index.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(hits) == 0 {
		return nil, entity.ErrNoResults
	}

	queryVec, err := u.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates := make([]entity.Candidate, 0, len(hits))
	for _, hit := range hits {
		chunkVec, err := u.embedder.Embed(ctx, hit.Chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("embed candidate %s: %w", hit.Chunk.ID, err)
		}
		cand := entity.Candidate{
			Chunk:    hit.Chunk,
			Semantic: rerank.Cosine(queryVec, chunkVec),
			Lexical:  rerank.Jaccard(query, hit.Chunk.Text),
		}
		cand.Combined = u.weights.Combine(cand.Semantic, cand.Lexical)
		candidates = append(candidates, cand)
	}

	candidates = rerank.Rank(candidates)

	if u.minScore > 0 {
		kept := candidates[:0]
		for _, cand := range candidates {
			if cand.Combined >= u.minScore {
				kept = append(kept, cand)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			return nil, entity.ErrNoResults
		}
	}

	if topN < len(candidates) {
		candidates = candidates[:topN]
	}

	u.logger.Debug("retrieval done",
		zap.String("query", query),
		zap.Int("candidates", len(hits)),
		zap.Int("returned", len(candidates)),
		zap.Float64("best_score", candidates[0].Combined),
	)
	return candidates, nil
}
