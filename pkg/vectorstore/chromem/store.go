// Package chromem backs the vector store with chromem-go, an embedded pure-Go
// vector database. It is the default backend: no external service, optional
// disk persistence.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"ai-docchat-be/pkg/vectorstore"
)

// Store wraps a chromem DB with per-session collections.
type Store struct {
	mu sync.RWMutex
	db *chromem.DB
}

// NewInMemory creates a volatile store. Contents are lost on process exit.
func NewInMemory() *Store {
	return &Store{db: chromem.NewDB()}
}

// NewPersistent creates (or reopens) a store persisted under dir.
func NewPersistent(dir string) (*Store, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	return &Store{db: db}, nil
}

// Embeddings are always supplied by the caller, so chromem's own embedding
// func must never run. The stub turns any accidental use into an explicit error.
func noEmbed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("vectorstore: text embedding is handled upstream")
}

func (s *Store) Ensure(_ context.Context, sessionID string) (vectorstore.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.db.GetOrCreateCollection(vectorstore.CollectionName(sessionID), nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("ensure collection for session %s: %w", sessionID, err)
	}
	return &collection{col: col}, nil
}

func (s *Store) Get(_ context.Context, sessionID string) (vectorstore.Collection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.db.GetCollection(vectorstore.CollectionName(sessionID), noEmbed)
	if col == nil {
		return nil, false, nil
	}
	return &collection{col: col}, true, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.DeleteCollection(vectorstore.CollectionName(sessionID))
}

type collection struct {
	col *chromem.Collection
}

func (c *collection) Add(ctx context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]string) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("vectorstore: mismatched batch lengths ids=%d vectors=%d documents=%d metadatas=%d",
			len(ids), len(vectors), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(ids))
	for i := range ids {
		docs[i] = chromem.Document{
			ID:        ids[i],
			Embedding: vectors[i],
			Content:   documents[i],
			Metadata:  metadatas[i],
		}
	}
	return c.col.AddDocuments(ctx, docs, runtime.NumCPU())
}

func (c *collection) Query(ctx context.Context, vector []float32, k int) ([]vectorstore.Match, error) {
	count := c.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	// chromem occasionally rejects nResults even after the Count clamp when
	// documents race in. Step k down instead of failing the query.
	var (
		results []chromem.Result
		err     error
	)
	for attemptK := k; attemptK > 0; attemptK-- {
		results, err = c.col.QueryEmbedding(ctx, vector, attemptK, nil, nil)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]vectorstore.Match, 0, len(results))
	for _, r := range results {
		out = append(out, vectorstore.Match{
			ID:       r.ID,
			Document: r.Content,
			Metadata: r.Metadata,
			Distance: 1 - r.Similarity,
		})
	}
	return out, nil
}

func (c *collection) DeleteIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.col.Delete(ctx, nil, nil, ids...)
}

func (c *collection) Count(_ context.Context) (int, error) {
	return c.col.Count(), nil
}
