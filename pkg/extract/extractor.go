package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"
)

// Extractor converts the raw bytes of one file format into plain text.
type Extractor interface {
	Extract(content []byte, filename string) (string, error)
}

// Document types reported by TypeOf.
const (
	TypePDF         = "pdf"
	TypeWord        = "word"
	TypeText        = "txt"
	TypeUnsupported = "unsupported"
)

var typeByExtension = map[string]string{
	".pdf":  TypePDF,
	".docx": TypeWord,
	".txt":  TypeText,
	".md":   TypeText,
}

// TypeOf maps a filename to its document type, or TypeUnsupported.
func TypeOf(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := typeByExtension[ext]; ok {
		return t
	}
	return TypeUnsupported
}

// IsSupported reports whether the filename carries an ingestable extension.
func IsSupported(filename string) bool {
	return TypeOf(filename) != TypeUnsupported
}

// Registry dispatches extraction by file extension. Plain-text formats are
// built in; binary formats (.pdf, .docx) are valid document types whose
// extractors the embedding application registers.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	r.Register(".txt", plainText{})
	r.Register(".md", plainText{})
	return r
}

// Register installs an extractor for the given extension (".pdf" form,
// case-insensitive), replacing any previous one.
func (r *Registry) Register(ext string, e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[strings.ToLower(ext)] = e
}

// Extract converts content to plain text based on the filename's extension.
// Unknown extensions and supported-but-unregistered formats both return
// errors; callers decide whether that skips the document or fails the run.
func (r *Registry) Extract(content []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := typeByExtension[ext]; !ok {
		return "", fmt.Errorf("unsupported file format: %s", filename)
	}

	r.mu.RLock()
	e, ok := r.extractors[ext]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no extractor registered for %s files", ext)
	}

	text, err := e.Extract(content, filename)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	return text, nil
}

// plainText decodes UTF-8 bytes, tolerating a leading BOM.
type plainText struct{}

func (plainText) Extract(content []byte, filename string) (string, error) {
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%s is not valid UTF-8", filename)
	}
	return string(content), nil
}
