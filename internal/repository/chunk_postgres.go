package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/futig/chatbot-backend/internal/entity"
)

// ChunkRepository defines the interface for indexed chunk persistence
type ChunkRepository interface {
	UpsertChunks(ctx context.Context, chunks []entity.Chunk, vectors [][]float32) error
	NearestByVector(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error)
	CountChunks(ctx context.Context) (int, error)
}

var _ ChunkRepository = &ChunkPostgres{}

// ChunkPostgres implements ChunkRepository using PostgreSQL + pgvector
type ChunkPostgres struct {
	db *pgxpool.Pool
}

func NewChunkPostgres(db *pgxpool.Pool) *ChunkPostgres {
	return &ChunkPostgres{db: db}
}

func (r *ChunkPostgres) UpsertChunks(ctx context.Context, chunks []entity.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	batch := &pgx.Batch{}
	for i, ch := range chunks {
		batch.Queue(`
			INSERT INTO chunks (id, text, source, embedding)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET text = EXCLUDED.text, source = EXCLUDED.source, embedding = EXCLUDED.embedding`,
			ch.ID, ch.Text, ch.Source, pgvector.NewVector(vectors[i]),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert chunk: %w", err)
		}
	}

	return nil
}

// NearestByVector returns the k chunks closest to vector by cosine
// distance, scored as cosine similarity in [-1,1].
func (r *ChunkPostgres) NearestByVector(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, text, source, created_at, 1 - (embedding <=> $1) AS score
		FROM chunks
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(vector), k,
	)
	if err != nil {
		return nil, fmt.Errorf("nearest chunks query: %w", err)
	}
	defer rows.Close()

	var out []entity.ScoredChunk
	for rows.Next() {
		var sc entity.ScoredChunk
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.Text, &sc.Chunk.Source, &sc.Chunk.CreatedAt, &sc.Score); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}

	return out, nil
}

func (r *ChunkPostgres) CountChunks(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return int(count), nil
}
