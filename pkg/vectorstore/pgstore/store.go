// Package pgstore backs the vector store with Postgres and the pgvector
// extension. Chunks from all sessions share one table partitioned by a
// collection column; a small registry table tracks which collections exist.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ai-docchat-be/pkg/vectorstore"
)

type ChunkEmbedding struct {
	Id             string          `gorm:"type:text;primaryKey"`
	Collection     string          `gorm:"type:text;not null;index"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text and text-embedding-004 both emit 768 dimensions
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}

type ChunkCollection struct {
	Name      string    `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChunkCollection) TableName() string {
	return "chunk_collections"
}

// Migrate installs the pgvector extension and creates both tables.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("install pgvector extension: %w", err)
	}
	return db.AutoMigrate(&ChunkCollection{}, &ChunkEmbedding{})
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ensure(ctx context.Context, sessionID string) (vectorstore.Collection, error) {
	name := vectorstore.CollectionName(sessionID)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ChunkCollection{Name: name}).Error
	if err != nil {
		return nil, fmt.Errorf("ensure collection %s: %w", name, err)
	}
	return &collection{db: s.db, name: name}, nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (vectorstore.Collection, bool, error) {
	name := vectorstore.CollectionName(sessionID)
	var reg ChunkCollection
	err := s.db.WithContext(ctx).First(&reg, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &collection{db: s.db, name: name}, true, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	name := vectorstore.CollectionName(sessionID)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", name).Delete(&ChunkEmbedding{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ChunkCollection{Name: name}).Error
	})
}

type collection struct {
	db   *gorm.DB
	name string
}

func (c *collection) Add(ctx context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]string) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("vectorstore: mismatched batch lengths ids=%d vectors=%d documents=%d metadatas=%d",
			len(ids), len(vectors), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	rows := make([]*ChunkEmbedding, len(ids))
	for i := range ids {
		meta, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", ids[i], err)
		}
		rows[i] = &ChunkEmbedding{
			Id:             ids[i],
			Collection:     c.name,
			Document:       documents[i],
			EmbeddingValue: pgvector.NewVector(vectors[i]),
			Metadata:       meta,
		}
	}

	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(rows).Error
}

func (c *collection) Query(ctx context.Context, vector []float32, k int) ([]vectorstore.Match, error) {
	if k <= 0 {
		return nil, nil
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so ascending
	// order puts the closest chunks first.
	type row struct {
		Id       string
		Document string
		Metadata datatypes.JSON
		Distance float32
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)
	err := c.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("id, document, metadata, embedding_value <=> ? AS distance", queryVector).
		Where("collection = ?", c.name).
		Order("distance ASC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]vectorstore.Match, 0, len(rows))
	for _, r := range rows {
		meta := map[string]string{}
		if len(r.Metadata) > 0 {
			if err := json.Unmarshal(r.Metadata, &meta); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", r.Id, err)
			}
		}
		out = append(out, vectorstore.Match{
			ID:       r.Id,
			Document: r.Document,
			Metadata: meta,
			Distance: r.Distance,
		})
	}
	return out, nil
}

func (c *collection) DeleteIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).
		Where("collection = ? AND id IN ?", c.name, ids).
		Delete(&ChunkEmbedding{}).Error
}

func (c *collection) Count(ctx context.Context) (int, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&ChunkEmbedding{}).
		Where("collection = ?", c.name).
		Count(&count).Error
	return int(count), err
}
