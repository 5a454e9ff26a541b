package embedding

import (
	"context"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
)

// CachedEmbedder memoizes single-text embeddings, which is how queries are
// embedded. Batches go straight to the wrapped embedder.
type CachedEmbedder struct {
	next  Embedder
	cache *gocache.Cache
}

func NewCachedEmbedder(next Embedder, ttl, cleanup time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		next:  next,
		cache: gocache.New(ttl, cleanup),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		ctxzap.Debug(ctx, "query embedding cache hit")
		return v.([]float32), nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(text, vec, gocache.DefaultExpiration)
	return vec, nil
}

func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.next.EmbedBatch(ctx, texts)
}

func (c *CachedEmbedder) Name() string {
	return c.next.Name() + "+cache"
}

// Len is the number of cached entries, expired ones included until cleanup.
func (c *CachedEmbedder) Len() int {
	return c.cache.ItemCount()
}
