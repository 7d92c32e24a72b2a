package rag

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/extract"
	"ai-docchat-be/pkg/store"
	"ai-docchat-be/pkg/textproc"
	"ai-docchat-be/pkg/vectorstore"
)

// Ingestor runs the document branch of the workflow: extract, normalize,
// chunk, embed, store. One Ingestor serves all sessions; per-run state lives
// in the arguments and the returned result.
type Ingestor struct {
	registry   *extract.Registry
	normalizer *textproc.Normalizer
	chunker    *textproc.Chunker
	embedder   *embedding.BatchEmbedder
	store      vectorstore.Store
	logger     *log.Logger
}

func NewIngestor(
	registry *extract.Registry,
	normalizer *textproc.Normalizer,
	chunker *textproc.Chunker,
	embedder *embedding.BatchEmbedder,
	store vectorstore.Store,
	logger *log.Logger,
) *Ingestor {
	return &Ingestor{
		registry:   registry,
		normalizer: normalizer,
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		logger:     logger,
	}
}

// IngestResult reports what one ingestion pass actually stored. Errors are
// user-readable strings; the orchestrator merges them into the run's error
// list without treating them as fatal.
type IngestResult struct {
	ChunkIDs      []string
	DocumentCount int // documents whose chunks reached the store
	ChunkCount    int
	Errors        []string
}

// Ingest processes docs into sessionID's collection. A document that fails
// extraction is skipped and the rest proceed; an embedding failure aborts the
// remainder of the branch because partial embeddings are never stored. All
// chunks of a run share runTime, so chunk ids from the same run sort together
// and re-running a document appends rather than overwrites.
func (ing *Ingestor) Ingest(ctx context.Context, sessionID string, docs []store.RawDocument, runTime time.Time, rl *RunLogger) *IngestResult {
	result := &IngestResult{}
	rl.NodeStart("process_documents", map[string]interface{}{"documents": len(docs)})

	col, err := ing.store.Ensure(ctx, sessionID)
	if err != nil {
		ing.logger.Printf("[ERROR] Failed to ensure collection for session %s: %v", sessionID, err)
		result.Errors = append(result.Errors, fmt.Sprintf("Vector storage error: %v", err))
		rl.Error("process_documents", err)
		return result
	}

	// Run-wide chunk counter. Uploading the same filename twice in one run
	// still yields distinct ids.
	runIdx := 0

	for _, doc := range docs {
		text, err := ing.registry.Extract(doc.Content, doc.Filename)
		if err != nil {
			ing.logger.Printf("[WARN] Skipping %s: %v", doc.Filename, err)
			result.Errors = append(result.Errors, fmt.Sprintf("Text extraction error: %v", err))
			rl.Error("extract_text", err)
			continue
		}

		cleaned := ing.normalizer.Normalize(text)
		if cleaned == "" {
			ing.logger.Printf("[WARN] Skipping %s: no text left after cleaning", doc.Filename)
			continue
		}

		chunks := ing.chunker.Chunk(cleaned)
		if len(chunks) == 0 {
			continue
		}
		rl.Intermediate("chunking", map[string]interface{}{
			"filename": doc.Filename,
			"chunks":   len(chunks),
		}, "Document split into chunks")

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := ing.embedder.Embed(ctx, texts, embedding.TaskRetrievalDocument)
		if err != nil {
			ing.logger.Printf("[ERROR] Embedding failed for %s: %v", doc.Filename, err)
			result.Errors = append(result.Errors, fmt.Sprintf("Document embedding error: %v", err))
			rl.Error("embed_documents", err)
			return result
		}

		ids := make([]string, len(chunks))
		documents := make([]string, len(chunks))
		metadatas := make([]map[string]string, len(chunks))
		for i, c := range chunks {
			ids[i] = ChunkID(doc.Filename, sessionID, runTime, runIdx)
			runIdx++
			documents[i] = c.Text
			metadatas[i] = map[string]string{
				"filename":     doc.Filename,
				"chat_id":      sessionID,
				"chunk_index":  strconv.Itoa(c.Index),
				"total_chunks": strconv.Itoa(c.Total),
				"start_pos":    strconv.Itoa(c.Start),
				"end_pos":      strconv.Itoa(c.End),
				"token_count":  strconv.Itoa(c.TokenCount),
				"created_at":   runTime.Format(time.RFC3339),
			}
		}

		if err := col.Add(ctx, ids, vectors, documents, metadatas); err != nil {
			ing.logger.Printf("[ERROR] Failed to store chunks of %s: %v", doc.Filename, err)
			result.Errors = append(result.Errors, fmt.Sprintf("Vector storage error: %v", err))
			rl.Error("store_chunks", err)
			continue
		}

		result.ChunkIDs = append(result.ChunkIDs, ids...)
		result.ChunkCount += len(chunks)
		result.DocumentCount++
		ing.logger.Printf("[PHASE] Stored %d chunks from %s in session %s", len(chunks), doc.Filename, sessionID)
	}

	rl.NodeEnd("process_documents", map[string]interface{}{
		"documents_stored": result.DocumentCount,
		"chunks_stored":    result.ChunkCount,
		"errors":           len(result.Errors),
	})
	return result
}
