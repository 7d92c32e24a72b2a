package rag

// Status tracks a workflow run through the processing pipeline.
type Status string

const (
	StatusInitialized        Status = "initialized"
	StatusDocumentValidated  Status = "document_validated"
	StatusNoDocument         Status = "no_document"
	StatusDocumentProcessed  Status = "document_processed"
	StatusSkipped            Status = "skipped"
	StatusQueryEmbedded      Status = "query_embedded"
	StatusReadyForRetrieval  Status = "ready_for_retrieval"
	StatusDocumentsRetrieved Status = "documents_retrieved"
	StatusCompleted          Status = "completed"
	StatusError              Status = "error"
)

// transitions lists the legal successors of each status. StatusError is
// handled separately: it is reachable from every non-terminal status and
// absorbing once entered.
var transitions = map[Status][]Status{
	StatusInitialized:        {StatusDocumentValidated, StatusNoDocument},
	StatusDocumentValidated:  {StatusDocumentProcessed, StatusSkipped},
	StatusNoDocument:         {StatusDocumentProcessed, StatusSkipped},
	StatusDocumentProcessed:  {StatusQueryEmbedded},
	StatusSkipped:            {StatusQueryEmbedded},
	StatusQueryEmbedded:      {StatusReadyForRetrieval},
	StatusReadyForRetrieval:  {StatusDocumentsRetrieved},
	StatusDocumentsRetrieved: {StatusCompleted},
}

// Terminal reports whether no further transitions may occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusError {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
