package store

// RawDocument is a caller-supplied upload: raw bytes plus the filename used
// to resolve the extraction backend. It is consumed during ingestion and
// never persisted in this form.
type RawDocument struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// RetrievedDocument is a scored chunk returned from the vector store for a
// query, after similarity filtering.
type RetrievedDocument struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`

	// Source attribution carried through chunk metadata.
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}
