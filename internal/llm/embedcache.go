package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avolkov/byline/internal/cache"
	"golang.org/x/sync/singleflight"
)

// CachedEmbedder wraps an Embedder with a TTL cache and single-flight
// deduplication. Reformulated queries and concurrent requests often repeat
// the same text; this keeps the embedding provider's rate limit for queries
// that actually differ.
type CachedEmbedder struct {
	inner Embedder
	store cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedEmbedder creates a caching wrapper around inner
func NewCachedEmbedder(inner Embedder, store cache.Cache, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		store: store,
		ttl:   ttl,
	}
}

// Embed returns the cached vector for text, or embeds and caches it.
// Concurrent calls for identical text collapse into one provider call.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key("embed", text)

	if data, found := e.store.Get(key); found {
		var vector []float32
		if err := json.Unmarshal(data, &vector); err == nil {
			return vector, nil
		}
		// A corrupt entry falls through to a fresh embed.
		_ = e.store.Delete(key)
	}

	result, err, _ := e.group.Do(key, func() (interface{}, error) {
		vector, err := e.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(vector); err == nil {
			_ = e.store.Set(key, data, e.ttl)
		}
		return vector, nil
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	return result.([]float32), nil
}
