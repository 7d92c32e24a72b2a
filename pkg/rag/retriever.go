package rag

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"ai-docchat-be/pkg/vectorstore"
)

// RetrievedChunk is one similarity hit that survived the threshold.
type RetrievedChunk struct {
	ID         string
	Text       string
	Metadata   map[string]string
	Distance   float32
	Similarity float32 // 1 - Distance; both wired backends use cosine distance
}

// RetrievalResult carries the assembled context alongside the raw survivors.
type RetrievalResult struct {
	Context   string
	Citations []string
	Chunks    []RetrievedChunk
}

// RetrieverConfig encapsulates retrieval parameters.
type RetrieverConfig struct {
	TopK          int     // nearest neighbours fetched from the store
	MinSimilarity float32 // strict lower bound; results at the bound are dropped
	ContextDocs   int     // survivors included in the prompt context
}

// DefaultRetrieverConfig returns the default retrieval configuration. The
// context cap is intentionally below TopK to bound prompt size while the
// citation list still names every survivor.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		TopK:          5,
		MinSimilarity: 0.3,
		ContextDocs:   3,
	}
}

// Retriever queries a session's collection and assembles prompt context.
type Retriever struct {
	store  vectorstore.Store
	cfg    RetrieverConfig
	logger *log.Logger
}

func NewRetriever(store vectorstore.Store, cfg RetrieverConfig, logger *log.Logger) *Retriever {
	def := DefaultRetrieverConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.ContextDocs <= 0 {
		cfg.ContextDocs = def.ContextDocs
	}
	return &Retriever{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Retrieve returns the context, citations and chunks for a query vector. A
// session without a collection yields an empty result, not an error; callers
// treat a returned error as a degraded (empty) retrieval, never as fatal.
func (r *Retriever) Retrieve(ctx context.Context, sessionID string, queryVector []float32) (*RetrievalResult, error) {
	result := &RetrievalResult{}

	col, ok, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("look up collection: %w", err)
	}
	if !ok {
		r.logger.Printf("[DEBUG] No document collection found for session %s", sessionID)
		return result, nil
	}

	matches, err := col.Query(ctx, queryVector, r.cfg.TopK)
	if err != nil {
		return result, fmt.Errorf("query collection: %w", err)
	}

	var contextParts []string
	for _, m := range matches {
		similarity := 1 - m.Distance
		if similarity <= r.cfg.MinSimilarity {
			r.logger.Printf("[DEBUG] Chunk %s filtered: similarity=%.4f", m.ID, similarity)
			continue
		}

		chunk := RetrievedChunk{
			ID:         m.ID,
			Text:       m.Document,
			Metadata:   m.Metadata,
			Distance:   m.Distance,
			Similarity: similarity,
		}
		result.Chunks = append(result.Chunks, chunk)

		filename := m.Metadata["filename"]
		if filename == "" {
			filename = "Unknown"
		}
		chunkIndex, _ := strconv.Atoi(m.Metadata["chunk_index"])
		result.Citations = append(result.Citations, fmt.Sprintf("%s (section %d)", filename, chunkIndex+1))

		if len(contextParts) < r.cfg.ContextDocs {
			contextParts = append(contextParts, fmt.Sprintf("[Document %d]: %s", len(contextParts)+1, chunk.Text))
		}
	}

	result.Context = strings.Join(contextParts, "\n\n")
	r.logger.Printf("[DEBUG] Retrieved %d relevant chunks for session %s", len(result.Chunks), sessionID)
	return result, nil
}
