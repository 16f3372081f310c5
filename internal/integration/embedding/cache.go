package embedding

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Embedder is the narrow embedding capability the cache decorates.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cached is a read-through cache over an Embedder. The embedding contract
// is deterministic for identical input, so caching by text is sound.
type Cached struct {
	inner Embedder
	cache *gocache.Cache
}

func NewCached(inner Embedder, ttl time.Duration) *Cached {
	return &Cached{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(text, vec, gocache.DefaultExpiration)
	return vec, nil
}
