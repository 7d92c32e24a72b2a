package vectorstore

import "context"

// Match is a single similarity hit returned by Collection.Query.
type Match struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float32 // cosine distance, lower is closer
}

// Collection holds the embedded chunks of one chat session.
type Collection interface {
	// Add stores documents with caller-supplied embeddings. The four slices
	// are parallel and must have equal length. Existing ids are overwritten;
	// callers that want append semantics use fresh ids per run.
	Add(ctx context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]string) error

	// Query returns up to k matches ordered by ascending distance. k larger
	// than the collection is clamped, never an error.
	Query(ctx context.Context, vector []float32, k int) ([]Match, error)

	// DeleteIDs removes the given chunk ids. Absent ids are ignored.
	DeleteIDs(ctx context.Context, ids []string) error

	Count(ctx context.Context) (int, error)
}

// Store manages per-session collections. Each chat session owns exactly one
// collection, created on first ingestion and dropped with the session.
type Store interface {
	// Ensure returns the session's collection, creating it if needed.
	Ensure(ctx context.Context, sessionID string) (Collection, error)

	// Get returns the session's collection if it exists. A missing
	// collection is (nil, false, nil), not an error.
	Get(ctx context.Context, sessionID string) (Collection, bool, error)

	// Delete drops the session's collection and all chunks in it. Deleting
	// an absent collection is a no-op.
	Delete(ctx context.Context, sessionID string) error
}

// CollectionName returns the collection name owning sessionID's chunks.
func CollectionName(sessionID string) string {
	return "chat_" + sessionID
}
