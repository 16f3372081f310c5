// Package ingest walks a data directory and loads its documents into the
// vector index.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Index interface {
	Upsert(ctx context.Context, chunks []entity.Chunk, vectors [][]float32) error
	Count(ctx context.Context) (int, error)
}

type Pipeline struct {
	embedder Embedder
	index    Index
	logger   *zap.Logger
}

func NewPipeline(embedder Embedder, index Index, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Run indexes every supported file under dataDir and returns the number
// of chunks written. Unsupported files are skipped, unreadable ones
// abort the run.
func (p *Pipeline) Run(ctx context.Context, dataDir string) (int, error) {
	total := 0

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !SupportedExtensions[strings.ToLower(filepath.Ext(path))] {
			p.logger.Debug("skipping unsupported file", zap.String("path", path))
			return nil
		}

		n, err := p.indexFile(ctx, path)
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}

		p.logger.Info("indexed file", zap.String("path", path), zap.Int("chunks", n))
		total += n
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("walk %s: %w", dataDir, err)
	}

	count, err := p.index.Count(ctx)
	if err != nil {
		return total, fmt.Errorf("count chunks: %w", err)
	}
	p.logger.Info("indexing complete", zap.Int("written", total), zap.Int("index_size", count))

	return total, nil
}

func (p *Pipeline) indexFile(ctx context.Context, path string) (int, error) {
	texts, err := extractTexts(path)
	if err != nil {
		return 0, err
	}
	if len(texts) == 0 {
		return 0, nil
	}

	source := filepath.Base(path)
	chunks := make([]entity.Chunk, 0, len(texts))
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("embed chunk: %w", err)
		}
		chunks = append(chunks, entity.Chunk{
			ID:     uuid.NewString(),
			Text:   text,
			Source: source,
		})
		vectors = append(vectors, vec)
	}

	if err := p.index.Upsert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("upsert chunks: %w", err)
	}
	return len(chunks), nil
}
