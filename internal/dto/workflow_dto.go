package dto

import "time"

type DocumentUploadDTO struct {
	Filename string `json:"filename" validate:"required"`
	Content  []byte `json:"content" validate:"required"`
}

type WorkflowRequest struct {
	Query     string              `json:"query" validate:"required"`
	Documents []DocumentUploadDTO `json:"documents,omitempty" validate:"max=10,dive"`
	SessionId string              `json:"session_id,omitempty"`
}

type WorkflowResponse struct {
	SessionId              string   `json:"session_id"`
	Query                  string   `json:"query"`
	Response               string   `json:"response"`
	Citations              []string `json:"citations"`
	ChunkIds               []string `json:"chunk_ids"`
	Status                 string   `json:"status"`
	Errors                 []string `json:"errors"`
	DocProcessingCompleted bool     `json:"doc_processing_completed"`
	RetrievedDocsCount     int      `json:"retrieved_docs_count"`
	TotalChunksProcessed   int      `json:"total_chunks_processed"`
}

type CreateSessionRequest struct {
	SessionId string `json:"session_id,omitempty"`
}

type SessionResponse struct {
	SessionId     string    `json:"session_id"`
	CreatedAt     time.Time `json:"created_at"`
	DocumentCount int       `json:"document_count"`
	ChunkCount    int       `json:"chunk_count"`
	Exchanges     int       `json:"exchanges"`
}

type ExchangeResponse struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Citations []string  `json:"citations"`
	AskedAt   time.Time `json:"asked_at"`
}

// IngestDocumentMessage is the payload published on the ingest topic for
// documents uploaded outside of a chat turn.
type IngestDocumentMessage struct {
	SessionId string `json:"session_id" validate:"required"`
	Filename  string `json:"filename" validate:"required"`
	Content   []byte `json:"content" validate:"required"`
}
