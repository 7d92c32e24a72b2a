package chromem

import (
	"context"
	"fmt"
	"math"
	"testing"
)

func seedCollection(t *testing.T) *Store {
	t.Helper()

	store := NewInMemory()
	col, err := store.Ensure(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	ids := []string{"doc_a", "doc_b", "doc_c"}
	vectors := [][]float32{
		{1, 0, 0},
		{0.8, 0.6, 0},
		{0, 0, 1},
	}
	documents := []string{"alpha text", "beta text", "gamma text"}
	metadatas := []map[string]string{
		{"filename": "a.txt"},
		{"filename": "b.txt"},
		{"filename": "c.txt"},
	}
	if err := col.Add(context.Background(), ids, vectors, documents, metadatas); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return store
}

func TestQueryOrdersByDistance(t *testing.T) {
	store := seedCollection(t)
	col, ok, err := store.Get(context.Background(), "s1")
	if err != nil || !ok {
		t.Fatalf("Get returned ok=%v err=%v, want collection", ok, err)
	}

	matches, err := col.Query(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].ID != "doc_a" || matches[1].ID != "doc_b" {
		t.Errorf("got order [%s %s], want [doc_a doc_b]", matches[0].ID, matches[1].ID)
	}
	if matches[0].Distance > matches[1].Distance {
		t.Errorf("distances not ascending: %v then %v", matches[0].Distance, matches[1].Distance)
	}
	if math.Abs(float64(matches[0].Distance)) > 1e-3 {
		t.Errorf("exact match distance = %v, want ~0", matches[0].Distance)
	}
	if math.Abs(float64(matches[1].Distance)-0.2) > 1e-3 {
		t.Errorf("doc_b distance = %v, want ~0.2", matches[1].Distance)
	}
	if matches[0].Document != "alpha text" {
		t.Errorf("Document = %q, want %q", matches[0].Document, "alpha text")
	}
	if matches[0].Metadata["filename"] != "a.txt" {
		t.Errorf("Metadata[filename] = %q, want %q", matches[0].Metadata["filename"], "a.txt")
	}
}

func TestQueryClampsK(t *testing.T) {
	store := seedCollection(t)
	col, ok, err := store.Get(context.Background(), "s1")
	if err != nil || !ok {
		t.Fatalf("Get returned ok=%v err=%v, want collection", ok, err)
	}

	matches, err := col.Query(context.Background(), []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("got %d matches, want all 3", len(matches))
	}
}

func TestQueryEmptyCollection(t *testing.T) {
	store := NewInMemory()
	col, err := store.Ensure(context.Background(), "empty")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	matches, err := col.Query(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Errorf("Query on empty collection errored: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches from empty collection, want 0", len(matches))
	}
}

func TestGetMissingCollection(t *testing.T) {
	store := NewInMemory()
	_, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get errored: %v", err)
	}
	if ok {
		t.Error("Get reported a collection that was never created")
	}
}

func TestDeleteDropsCollection(t *testing.T) {
	store := seedCollection(t)
	if err := store.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, ok, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get errored: %v", err)
	}
	if ok {
		t.Error("collection still present after Delete")
	}
}

func TestDeleteIDsRemovesOnlyNamedChunks(t *testing.T) {
	store := seedCollection(t)
	col, ok, err := store.Get(context.Background(), "s1")
	if err != nil || !ok {
		t.Fatalf("Get returned ok=%v err=%v, want collection", ok, err)
	}

	if err := col.DeleteIDs(context.Background(), []string{"doc_a", "doc_c"}); err != nil {
		t.Fatalf("DeleteIDs failed: %v", err)
	}
	n, err := col.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d after deleting 2 of 3, want 1", n)
	}
	matches, err := col.Query(context.Background(), []float32{0.8, 0.6, 0}, 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "doc_b" {
		t.Errorf("matches = %v, want only doc_b left", matches)
	}

	if err := col.DeleteIDs(context.Background(), nil); err != nil {
		t.Errorf("DeleteIDs with no ids errored: %v", err)
	}
}

func TestAddRejectsMismatchedBatch(t *testing.T) {
	store := NewInMemory()
	col, err := store.Ensure(context.Background(), "s2")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	err = col.Add(context.Background(),
		[]string{"one", "two"},
		[][]float32{{1, 0}},
		[]string{"text"},
		[]map[string]string{nil},
	)
	if err == nil {
		t.Error("Add accepted mismatched slice lengths")
	}
}

func TestCount(t *testing.T) {
	store := seedCollection(t)
	col, ok, err := store.Get(context.Background(), "s1")
	if err != nil || !ok {
		t.Fatalf("Get returned ok=%v err=%v, want collection", ok, err)
	}
	n, err := col.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewInMemory()
	for _, session := range []string{"s1", "s2"} {
		col, err := store.Ensure(context.Background(), session)
		if err != nil {
			t.Fatalf("Ensure(%s) failed: %v", session, err)
		}
		id := fmt.Sprintf("chunk_%s", session)
		err = col.Add(context.Background(),
			[]string{id},
			[][]float32{{1, 0}},
			[]string{"text for " + session},
			[]map[string]string{{"chat_id": session}},
		)
		if err != nil {
			t.Fatalf("Add(%s) failed: %v", session, err)
		}
	}

	col, ok, err := store.Get(context.Background(), "s1")
	if err != nil || !ok {
		t.Fatalf("Get returned ok=%v err=%v, want collection", ok, err)
	}
	matches, err := col.Query(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "chunk_s1" {
		t.Errorf("session s1 sees %d matches, want only its own chunk", len(matches))
	}
}
