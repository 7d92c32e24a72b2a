package rag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/extract"
	"ai-docchat-be/pkg/store"
	"ai-docchat-be/pkg/textproc"
	"ai-docchat-be/pkg/vectorstore"
)

type fakeEmbedProvider struct {
	mu     sync.Mutex
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

func newTestIngestor(vs vectorstore.Store, provider embedding.EmbeddingProvider) *Ingestor {
	return NewIngestor(
		extract.NewRegistry(),
		textproc.NewNormalizer(textproc.NormalizerConfig{}),
		textproc.NewChunker(textproc.DefaultChunkerConfig()),
		embedding.NewBatchEmbedder(provider, embedding.DefaultBatchEmbedderConfig()),
		vs,
		discardLogger(),
	)
}

func TestIngestStoresChunks(t *testing.T) {
	vs := newFakeStore()
	ing := newTestIngestor(vs, &fakeEmbedProvider{vector: []float32{1, 0, 0}})
	runTime := time.Now()

	docs := []store.RawDocument{{Filename: "notes.txt", Content: []byte("Paris is the capital of France.")}}
	result := ing.Ingest(context.Background(), "s1", docs, runTime, &RunLogger{})

	if len(result.Errors) != 0 {
		t.Fatalf("Errors = %v, want none", result.Errors)
	}
	if result.DocumentCount != 1 || result.ChunkCount != 1 {
		t.Errorf("DocumentCount = %d, ChunkCount = %d, want 1 and 1", result.DocumentCount, result.ChunkCount)
	}
	if len(result.ChunkIDs) != 1 {
		t.Fatalf("ChunkIDs = %v, want one id", result.ChunkIDs)
	}

	col := vs.collections["s1"]
	if col == nil {
		t.Fatal("collection was not created")
	}
	if col.addCalls != 1 {
		t.Errorf("addCalls = %d, want 1", col.addCalls)
	}
	if col.documents[0] != "Paris is the capital of France." {
		t.Errorf("stored document = %q", col.documents[0])
	}

	md := col.metadatas[0]
	for _, key := range []string{"filename", "chat_id", "chunk_index", "total_chunks", "start_pos", "end_pos", "token_count", "created_at"} {
		if _, ok := md[key]; !ok {
			t.Errorf("metadata missing %q: %v", key, md)
		}
	}
	if md["filename"] != "notes.txt" || md["chat_id"] != "s1" || md["chunk_index"] != "0" || md["total_chunks"] != "1" {
		t.Errorf("metadata = %v", md)
	}
	if _, err := time.Parse(time.RFC3339, md["created_at"]); err != nil {
		t.Errorf("created_at %q is not RFC3339: %v", md["created_at"], err)
	}
}

func TestIngestSkipsFailedExtraction(t *testing.T) {
	vs := newFakeStore()
	ing := newTestIngestor(vs, &fakeEmbedProvider{vector: []float32{1, 0, 0}})

	// No PDF extractor is registered, so the first document fails and the
	// second must still be processed.
	docs := []store.RawDocument{
		{Filename: "scan.pdf", Content: []byte("%PDF-1.4")},
		{Filename: "notes.txt", Content: []byte("The second document survives.")},
	}
	result := ing.Ingest(context.Background(), "s1", docs, time.Now(), &RunLogger{})

	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Text extraction error:") {
		t.Errorf("Errors[0] = %q, want text extraction prefix", result.Errors[0])
	}
	if result.DocumentCount != 1 {
		t.Errorf("DocumentCount = %d, want 1", result.DocumentCount)
	}
}

func TestIngestEmbedFailureAbortsBranch(t *testing.T) {
	vs := newFakeStore()
	ing := newTestIngestor(vs, &fakeEmbedProvider{err: errors.New("model offline")})

	docs := []store.RawDocument{
		{Filename: "a.txt", Content: []byte("first")},
		{Filename: "b.txt", Content: []byte("second")},
	}
	result := ing.Ingest(context.Background(), "s1", docs, time.Now(), &RunLogger{})

	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Document embedding error:") {
		t.Fatalf("Errors = %v, want one embedding error", result.Errors)
	}
	if result.DocumentCount != 0 || result.ChunkCount != 0 {
		t.Errorf("stored counts = %d/%d, want nothing stored", result.DocumentCount, result.ChunkCount)
	}
	if vs.collections["s1"].addCalls != 0 {
		t.Errorf("addCalls = %d, want 0 after embed failure", vs.collections["s1"].addCalls)
	}
}

func TestIngestStorageFailureContinues(t *testing.T) {
	vs := newFakeStore()
	vs.collections["s1"] = &fakeCollection{addErr: errors.New("disk full")}
	ing := newTestIngestor(vs, &fakeEmbedProvider{vector: []float32{1, 0, 0}})

	docs := []store.RawDocument{
		{Filename: "a.txt", Content: []byte("first")},
		{Filename: "b.txt", Content: []byte("second")},
	}
	result := ing.Ingest(context.Background(), "s1", docs, time.Now(), &RunLogger{})

	if len(result.Errors) != 2 {
		t.Fatalf("Errors = %v, want one per document", result.Errors)
	}
	for _, e := range result.Errors {
		if !strings.HasPrefix(e, "Vector storage error:") {
			t.Errorf("error = %q, want storage prefix", e)
		}
	}
	if result.DocumentCount != 0 {
		t.Errorf("DocumentCount = %d, want 0", result.DocumentCount)
	}
}

func TestIngestEnsureFailure(t *testing.T) {
	vs := newFakeStore()
	vs.ensureErr = errors.New("no backend")
	ing := newTestIngestor(vs, &fakeEmbedProvider{vector: []float32{1, 0, 0}})

	docs := []store.RawDocument{{Filename: "a.txt", Content: []byte("text")}}
	result := ing.Ingest(context.Background(), "s1", docs, time.Now(), &RunLogger{})

	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Vector storage error:") {
		t.Fatalf("Errors = %v, want one storage error", result.Errors)
	}
}

func TestIngestChunkIDsAreRunWideUnique(t *testing.T) {
	vs := newFakeStore()
	ing := newTestIngestor(vs, &fakeEmbedProvider{vector: []float32{1, 0, 0}})

	// Same filename twice in one run: the run-wide counter keeps ids apart.
	docs := []store.RawDocument{
		{Filename: "dup.txt", Content: []byte("first copy")},
		{Filename: "dup.txt", Content: []byte("second copy")},
	}
	result := ing.Ingest(context.Background(), "s1", docs, time.Now(), &RunLogger{})

	if len(result.ChunkIDs) != 2 {
		t.Fatalf("ChunkIDs = %v, want 2", result.ChunkIDs)
	}
	if result.ChunkIDs[0] == result.ChunkIDs[1] {
		t.Errorf("duplicate ids for same filename: %q", result.ChunkIDs[0])
	}
	if !strings.HasSuffix(result.ChunkIDs[0], "_0") || !strings.HasSuffix(result.ChunkIDs[1], "_1") {
		t.Errorf("ids not numbered run-wide: %v", result.ChunkIDs)
	}
}

func TestIngestSkipsContentCleanedToNothing(t *testing.T) {
	vs := newFakeStore()
	provider := &fakeEmbedProvider{vector: []float32{1, 0, 0}}
	ing := newTestIngestor(vs, provider)

	docs := []store.RawDocument{{Filename: "junk.txt", Content: []byte("@ @@ @")}}
	result := ing.Ingest(context.Background(), "s1", docs, time.Now(), &RunLogger{})

	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none for cleaned-away content", result.Errors)
	}
	if result.ChunkCount != 0 || provider.calls != 0 {
		t.Errorf("ChunkCount = %d, provider calls = %d, want 0 and 0", result.ChunkCount, provider.calls)
	}
}
