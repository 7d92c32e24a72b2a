package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type BatchEmbedderConfig struct {
	BatchSize int // texts per batch, processed sequentially
	Workers   int // concurrent provider calls within a batch
}

func DefaultBatchEmbedderConfig() BatchEmbedderConfig {
	return BatchEmbedderConfig{
		BatchSize: 32,
		Workers:   4,
	}
}

// BatchEmbedder embeds many texts through a single-text provider while
// keeping output order aligned with input order.
type BatchEmbedder struct {
	provider EmbeddingProvider
	cfg      BatchEmbedderConfig
}

func NewBatchEmbedder(provider EmbeddingProvider, cfg BatchEmbedderConfig) *BatchEmbedder {
	def := DefaultBatchEmbedderConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &BatchEmbedder{provider: provider, cfg: cfg}
}

// Embed returns one vector per input text, in input order. Any provider
// failure aborts the whole call; there are never partial results.
func (b *BatchEmbedder) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	for batchStart := 0; batchStart < len(texts); batchStart += b.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batchEnd := batchStart + b.cfg.BatchSize
		if batchEnd > len(texts) {
			batchEnd = len(texts)
		}

		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(b.cfg.Workers)
		for i := batchStart; i < batchEnd; i++ {
			i := i
			g.Go(func() error {
				res, err := b.provider.Generate(texts[i], taskType)
				if err != nil {
					return fmt.Errorf("embed text %d: %w", i, err)
				}
				out[i] = res.Embedding.Values
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
