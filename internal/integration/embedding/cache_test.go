package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text))}, nil
}

func TestCached_HitsSkipInner(t *testing.T) {
	t.Parallel()

	inner := &countingEmbedder{}
	c := NewCached(inner, time.Minute)
	ctx := context.Background()

	first, err := c.Embed(ctx, "hello")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCached_DistinctTextsMiss(t *testing.T) {
	t.Parallel()

	inner := &countingEmbedder{}
	c := NewCached(inner, time.Minute)
	ctx := context.Background()

	_, err := c.Embed(ctx, "one")
	require.NoError(t, err)
	_, err = c.Embed(ctx, "two")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	inner := &countingEmbedder{err: errors.New("boom")}
	c := NewCached(inner, time.Minute)
	ctx := context.Background()

	_, err := c.Embed(ctx, "hello")
	require.Error(t, err)

	inner.err = nil
	_, err = c.Embed(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
