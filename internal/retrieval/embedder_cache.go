package retrieval

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/merchant-assistant/backend/internal/metrics"
	"github.com/merchant-assistant/backend/pkg/logger"
	"github.com/merchant-assistant/backend/pkg/utils"
)

// EmbeddingCache stores query vectors keyed by a hash of the embedded text.
// Satisfied by the redis client.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error
}

// CachedEmbedder wraps an Embedder with a cache lookup. Canonical queries
// repeat often across sessions, so a hit skips a backend round trip. Cache
// trouble never fails the embedding; the inner embedder is the fallback.
type CachedEmbedder struct {
	inner Embedder
	cache EmbeddingCache
	ttl   time.Duration
}

func NewCachedEmbedder(inner Embedder, cache EmbeddingCache, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedEmbedder{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	textHash := utils.HashString(text)

	cached, hit, err := c.cache.GetEmbedding(ctx, textHash)
	if err != nil {
		logger.Warn("Embedding cache lookup failed", zap.Error(err))
	}
	if hit {
		metrics.CacheHits.WithLabelValues("embedding").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("embedding").Inc()

	embedding, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetEmbedding(ctx, textHash, embedding, c.ttl); err != nil {
		logger.Warn("Embedding cache store failed", zap.Error(err))
	}

	return embedding, nil
}
