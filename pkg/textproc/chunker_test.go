package textproc

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkSingleShortCircuit(t *testing.T) {
	c := NewChunker(ChunkerConfig{MaxSize: 100, Overlap: 20, MinSize: 10})

	text := "Paris is the capital of France."
	chunks := c.Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	got := chunks[0]
	if got.Text != text || got.Index != 0 || got.Total != 1 {
		t.Errorf("unexpected chunk: %+v", got)
	}
	if got.Start != 0 || got.End != utf8.RuneCountInString(text) {
		t.Errorf("expected full span, got [%d, %d)", got.Start, got.End)
	}
	if got.TokenCount != 6 {
		t.Errorf("expected 6 tokens, got %d", got.TokenCount)
	}
}

func TestChunkEmptyText(t *testing.T) {
	c := NewChunker(DefaultChunkerConfig())
	if chunks := c.Chunk(""); chunks != nil {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestChunkCoverage(t *testing.T) {
	c := NewChunker(ChunkerConfig{MaxSize: 200, Overlap: 50, MinSize: 40})

	text := strings.TrimSpace(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40))
	total := utf8.RuneCountInString(text)
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].Start != 0 {
		t.Errorf("first chunk starts at %d, want 0", chunks[0].Start)
	}
	if last := chunks[len(chunks)-1]; last.End != total {
		t.Errorf("last chunk ends at %d, want %d", last.End, total)
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.Total != len(chunks) {
			t.Errorf("chunk %d has total %d, want %d", i, ch.Total, len(chunks))
		}
		if ch.Start < 0 || ch.Start >= ch.End || ch.End > total {
			t.Errorf("chunk %d has invalid span [%d, %d)", i, ch.Start, ch.End)
		}
		if i > 0 && ch.Start >= chunks[i-1].End {
			t.Errorf("gap between chunk %d (end %d) and chunk %d (start %d)",
				i-1, chunks[i-1].End, i, ch.Start)
		}
	}
}

func TestChunkDeterminism(t *testing.T) {
	c := NewChunker(ChunkerConfig{MaxSize: 150, Overlap: 30, MinSize: 25})
	text := strings.Repeat("Sentences vary in length here. Some are short. Others drag on for a while longer. ", 12)

	first := c.Chunk(text)
	second := c.Chunk(text)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated chunking produced different boundaries")
	}
}

func TestChunkPrefersParagraphBreak(t *testing.T) {
	para1 := strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 7))
	para2 := strings.TrimSpace(strings.Repeat("omega psi chi phi ", 12))
	text := para1 + "\n\n" + para2

	c := NewChunker(ChunkerConfig{MaxSize: 200, Overlap: 20, MinSize: 50})
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != para1 {
		t.Errorf("first chunk did not snap to the paragraph break:\n got: %q\nwant: %q", chunks[0].Text, para1)
	}
}

func TestChunkSentenceBoundaryLeavesCapital(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40))

	c := NewChunker(ChunkerConfig{MaxSize: 200, Overlap: 50, MinSize: 40})
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// The cut lands after "dog. "; the following capital opens the next chunk
	// instead of dangling at the end of this one.
	if !strings.HasSuffix(chunks[0].Text, "dog.") {
		t.Errorf("first chunk ends %q, want it to end at the sentence", chunks[0].Text[len(chunks[0].Text)-10:])
	}
}

func TestChunkDropsShortFragments(t *testing.T) {
	// The middle window trims down to "zz", which is shorter than MinSize and
	// not the final window, so it must not be emitted.
	text := strings.Repeat("a", 150) + strings.Repeat(" ", 99) + "zz" +
		strings.Repeat(" ", 149) + strings.Repeat("b", 200)

	c := NewChunker(ChunkerConfig{MaxSize: 200, Overlap: 0, MinSize: 100})
	chunks := c.Chunk(text)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Text == "zz" {
			t.Error("short fragment was emitted")
		}
		if ch.Index != i {
			t.Errorf("chunk indexes not contiguous: chunk %d has index %d", i, ch.Index)
		}
	}
}

func TestChunkFinalShortChunkKept(t *testing.T) {
	text := strings.Repeat("a", 250)

	c := NewChunker(ChunkerConfig{MaxSize: 200, Overlap: 0, MinSize: 100})
	chunks := c.Chunk(text)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := utf8.RuneCountInString(chunks[1].Text); got != 50 {
		t.Errorf("final chunk has %d runes, want 50", got)
	}
}

func TestChunkTerminatesWithExcessiveOverlap(t *testing.T) {
	c := NewChunker(ChunkerConfig{MaxSize: 100, Overlap: 500, MinSize: 20})
	text := strings.Repeat("word ", 120)

	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks despite overlap exceeding max size")
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start <= chunks[i-1].Start {
			t.Fatal("window start did not advance")
		}
	}
}
