package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/entity"
)

type lengthEmbedder struct{}

func (lengthEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

type recordingIndex struct {
	chunks []entity.Chunk
}

func (r *recordingIndex) Upsert(_ context.Context, chunks []entity.Chunk, vectors [][]float32) error {
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *recordingIndex) Count(_ context.Context) (int, error) {
	return len(r.chunks), nil
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.csv"),
		[]byte("question,answer\nWho?,IDC.\nWhat?,Staffing.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "about.txt"),
		[]byte("About IDC Technologies.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.xyz"),
		[]byte("ignored\n"), 0o644))

	index := &recordingIndex{}
	p := NewPipeline(lengthEmbedder{}, index, zap.NewNop())

	n, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, n, "two CSV rows plus one text file")
	require.Len(t, index.chunks, 3)

	sources := map[string]int{}
	for _, c := range index.chunks {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Text)
		sources[c.Source]++
	}
	assert.Equal(t, map[string]int{"faq.csv": 2, "about.txt": 1}, sources)
}

func TestPipeline_RunMissingDirectory(t *testing.T) {
	t.Parallel()

	p := NewPipeline(lengthEmbedder{}, &recordingIndex{}, zap.NewNop())

	_, err := p.Run(context.Background(), "does/not/exist")
	assert.Error(t, err)
}
