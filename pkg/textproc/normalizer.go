package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

// Unicode punctuation that commonly survives PDF/DOCX extraction, mapped to
// plain ASCII so downstream tokenization stays predictable.
var punctuationReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
	" ", " ", // non-breaking space
)

var (
	strayChars     = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:\-()\[\]{}"'/\\]`)
	horizontalRuns = regexp.MustCompile(`[ \t\r\f\v]+`)
	newlinePadding = regexp.MustCompile(` *\n *`)
	blankLineRuns  = regexp.MustCompile(`\n{2,}`)
)

// NormalizerConfig controls the optional linguistic stage.
type NormalizerConfig struct {
	// RemoveStopwords enables the aggressive mode: tokens are lowercased and
	// function words dropped. Guarded by MaxReduction below.
	RemoveStopwords bool

	// MaxReduction is the share of content the linguistic stage may remove
	// before the result is considered destroyed and the basic cleaning is
	// returned instead. Zero means the 0.7 default.
	MaxReduction float64
}

const defaultMaxReduction = 0.7

// Normalizer cleans raw extracted text. It is a pure transformation; the
// stopword set is package data loaded once.
type Normalizer struct {
	removeStopwords bool
	maxReduction    float64
}

func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	maxReduction := cfg.MaxReduction
	if maxReduction <= 0 || maxReduction >= 1 {
		maxReduction = defaultMaxReduction
	}
	return &Normalizer{
		removeStopwords: cfg.RemoveStopwords,
		maxReduction:    maxReduction,
	}
}

// Normalize applies, in order: punctuation normalization, stray-character
// removal, whitespace collapsing (runs of spaces to one space, runs of blank
// lines to one blank line), then the optional stopword filter. If filtering
// would remove more than maxReduction of the content length the filtered
// result is discarded and the whitespace-only cleaning is returned, so short
// or jargon-heavy inputs are not destroyed. Empty input yields "".
func (n *Normalizer) Normalize(text string) string {
	cleaned := n.BasicClean(text)
	if cleaned == "" || !n.removeStopwords {
		return cleaned
	}

	filtered := n.filterTokens(cleaned)
	if float64(len(filtered)) < float64(len(cleaned))*(1-n.maxReduction) {
		return cleaned
	}
	return filtered
}

// BasicClean performs the non-linguistic stages only. Paragraph breaks are
// preserved as exactly one blank line so the chunker can snap to them.
func (n *Normalizer) BasicClean(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	t := punctuationReplacer.Replace(text)
	t = strayChars.ReplaceAllString(t, " ")
	t = horizontalRuns.ReplaceAllString(t, " ")
	t = newlinePadding.ReplaceAllString(t, "\n")
	t = blankLineRuns.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}

func (n *Normalizer) filterTokens(text string) string {
	tokens := strings.Fields(text)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if isPunctOnly(tok) {
			continue
		}
		word := strings.ToLower(strings.TrimFunc(tok, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		}))
		if len([]rune(word)) <= 1 {
			continue
		}
		if IsStopword(word) {
			continue
		}
		kept = append(kept, strings.ToLower(tok))
	}
	return strings.Join(kept, " ")
}

func isPunctOnly(tok string) bool {
	for _, r := range tok {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return len(tok) > 0
}
