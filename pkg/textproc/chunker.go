package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chunk is a bounded segment of cleaned text, the unit of embedding and
// retrieval. Start and End are rune offsets into the cleaned text (half-open
// range, recorded before the emitted text is trimmed).
type Chunk struct {
	Text       string
	Index      int
	Total      int
	Start      int
	End        int
	TokenCount int
}

// Boundary candidates in priority order. The first pattern with a usable
// match inside the search window wins. trail is how many runes at the end of
// the match belong to the next chunk, not the current one.
var boundaryPatterns = []struct {
	re    *regexp.Regexp
	trail int
}{
	{regexp.MustCompile(`\n\n+`), 0},    // paragraph breaks
	{regexp.MustCompile(`\. [A-Z]`), 1}, // sentence end, capital confirms it and starts the next chunk
	{regexp.MustCompile(`[.!?]\s+`), 0}, // any sentence terminator
	{regexp.MustCompile(`\n`), 0},       // line breaks
	{regexp.MustCompile(`[,;]\s+`), 0},  // clause breaks
	{regexp.MustCompile(`\s+`), 0},      // plain whitespace
}

// boundaryWindow is how far back from the window end a boundary may be.
const boundaryWindow = 200

type ChunkerConfig struct {
	MaxSize int
	Overlap int
	MinSize int
}

func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxSize: 1000,
		Overlap: 200,
		MinSize: 100,
	}
}

// Chunker splits normalized text into overlapping, boundary-aware segments.
// Chunking is deterministic: the same text and config always produce the same
// boundaries.
type Chunker struct {
	maxSize int
	overlap int
	minSize int
}

// NewChunker normalizes the config so chunking always terminates: overlap is
// clamped below maxSize and minSize below maxSize.
func NewChunker(cfg ChunkerConfig) *Chunker {
	def := DefaultChunkerConfig()
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = def.Overlap
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = def.MinSize
	}
	if cfg.Overlap >= cfg.MaxSize {
		cfg.Overlap = cfg.MaxSize - 1
	}
	if cfg.MinSize >= cfg.MaxSize {
		cfg.MinSize = cfg.MaxSize / 2
	}
	return &Chunker{
		maxSize: cfg.MaxSize,
		overlap: cfg.Overlap,
		minSize: cfg.MinSize,
	}
}

// Chunk splits text into ordered chunks. Text no longer than MaxSize yields a
// single chunk spanning the whole input. Otherwise a sliding window walks the
// text; each window end is snapped back to the best boundary available in its
// last boundaryWindow runes, never earlier than start+MinSize. A trimmed chunk
// shorter than MinSize is dropped unless the window is the final one. The
// window start advances to end-Overlap but always by at least one rune, so
// the loop terminates for any input.
func (c *Chunker) Chunk(text string) []Chunk {
	runes := []rune(text)
	total := len(runes)

	if total <= c.maxSize {
		if total == 0 {
			return nil
		}
		return []Chunk{{
			Text:       text,
			Index:      0,
			Total:      1,
			Start:      0,
			End:        total,
			TokenCount: len(strings.Fields(text)),
		}}
	}

	var chunks []Chunk
	start := 0
	index := 0

	for start < total {
		end := start + c.maxSize
		if end > total {
			end = total
		}
		if end < total {
			end = c.snapToBoundary(runes, start, end)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" && (utf8.RuneCountInString(piece) >= c.minSize || end >= total) {
			chunks = append(chunks, Chunk{
				Text:       piece,
				Index:      index,
				Start:      start,
				End:        end,
				TokenCount: len(strings.Fields(piece)),
			})
			index++
		}

		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	for i := range chunks {
		chunks[i].Total = len(chunks)
	}
	return chunks
}

// snapToBoundary searches backward from end for the highest-priority boundary
// in the window [max(start+minSize, end-boundaryWindow), end). It returns the
// rune offset just past the match, or end unchanged when nothing qualifies.
func (c *Chunker) snapToBoundary(runes []rune, start, end int) int {
	searchStart := start + c.minSize
	if floor := end - boundaryWindow; floor > searchStart {
		searchStart = floor
	}
	if searchStart >= end {
		return end
	}

	window := string(runes[searchStart:end])
	for _, pattern := range boundaryPatterns {
		locs := pattern.re.FindAllStringIndex(window, -1)
		if len(locs) == 0 {
			continue
		}
		last := locs[len(locs)-1]
		boundary := searchStart + utf8.RuneCountInString(window[:last[1]]) - pattern.trail
		if boundary > start+c.minSize {
			return boundary
		}
	}
	return end
}
