package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider memoizes embeddings in Redis keyed by task type and a hash
// of the text. Embeddings are deterministic for a fixed model, so entries
// expire only to bound memory, not for correctness.
type CachedProvider struct {
	inner EmbeddingProvider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner EmbeddingProvider, rdb *redis.Client, ttl time.Duration) EmbeddingProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func cacheKey(text string, taskType string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", taskType, hex.EncodeToString(sum[:]))
}

func (c *CachedProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	// The provider interface carries no context, so cache calls use Background.
	ctx := context.Background()
	key := cacheKey(text, taskType)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var values []float32
		if err := json.Unmarshal(raw, &values); err == nil && len(values) > 0 {
			return &EmbeddingResponse{
				Embedding: EmbeddingResponseEmbedding{Values: values},
			}, nil
		}
	}

	res, err := c.inner.Generate(text, taskType)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(res.Embedding.Values); err == nil {
		// Cache write failures are non-fatal; the provider result stands.
		c.rdb.Set(ctx, key, raw, c.ttl)
	}
	return res, nil
}
