package store

import "time"

// Exchange is one completed query/response turn within a chat session.
type Exchange struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Citations []string  `json:"citations"`
	AskedAt   time.Time `json:"asked_at"`
}

// Session represents the active chat session state in memory. Each session
// owns exactly one vector collection named after its ID; documents ingested
// into the session accumulate there across runs.
type Session struct {
	ID        string    `json:"id"` // ChatSessionID
	CreatedAt time.Time `json:"created_at"`

	// Conversation history for this session, oldest first.
	History []Exchange `json:"history"`

	// Running totals across all workflow runs in this session.
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
}

// AppendExchange records a completed turn and returns the session for chaining.
func (s *Session) AppendExchange(ex Exchange) *Session {
	s.History = append(s.History, ex)
	return s
}
