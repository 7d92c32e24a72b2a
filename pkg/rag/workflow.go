package rag

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/extract"
	"ai-docchat-be/pkg/store"
	"ai-docchat-be/pkg/textproc"
	"ai-docchat-be/pkg/utils"
)

var tracer = otel.Tracer("ai-docchat-be/pkg/rag")

// Request is one workflow invocation: a query plus optional document uploads.
// An empty SessionID gets a timestamp-derived one.
type Request struct {
	Query     string              `json:"query"`
	Documents []store.RawDocument `json:"documents"`
	SessionID string              `json:"session_id"`
}

// Result is everything a caller needs to persist the exchange. The workflow
// itself stores nothing but vector chunks; chat history is the caller's job.
type Result struct {
	SessionID              string   `json:"session_id"`
	Query                  string   `json:"query"`
	Response               string   `json:"response"`
	Citations              []string `json:"citations"`
	ChunkIDs               []string `json:"chunk_ids"`
	Status                 Status   `json:"status"`
	Errors                 []string `json:"errors"`
	DocProcessingCompleted bool     `json:"doc_processing_completed"`
	RetrievedDocsCount     int      `json:"retrieved_docs_count"`
	TotalChunksProcessed   int      `json:"total_chunks_processed"`
}

// Workflow is the orchestrator: it validates input, runs the document and
// query branches concurrently, joins them, retrieves context and generates
// the final response. All collaborators are injected once at construction
// and shared across runs; per-run state never leaves Run.
type Workflow struct {
	ingestor   *Ingestor
	normalizer *textproc.Normalizer
	embedder   *embedding.BatchEmbedder
	retriever  *Retriever
	generator  *Generator
	runLogs    *RunLogFactory
	logger     *log.Logger
}

func NewWorkflow(
	ingestor *Ingestor,
	normalizer *textproc.Normalizer,
	embedder *embedding.BatchEmbedder,
	retriever *Retriever,
	generator *Generator,
	runLogs *RunLogFactory,
	logger *log.Logger,
) *Workflow {
	return &Workflow{
		ingestor:   ingestor,
		normalizer: normalizer,
		embedder:   embedder,
		retriever:  retriever,
		generator:  generator,
		runLogs:    runLogs,
		logger:     logger,
	}
}

// Run executes the full pipeline for one request. It always returns a usable
// Result: failures surface as recorded error strings and fallback response
// text, never as a Go error, so callers can persist whatever happened.
func (w *Workflow) Run(ctx context.Context, req Request) *Result {
	if req.SessionID == "" {
		req.SessionID = NewSessionID(time.Now())
	}
	runID := uuid.New().String()[:8]
	rl := w.runLogs.For(req.SessionID, runID)
	defer rl.Close()

	ctx, span := tracer.Start(ctx, "rag.workflow.run")
	span.SetAttributes(
		attribute.String("session.id", req.SessionID),
		attribute.Int("documents.count", len(req.Documents)),
	)
	defer span.End()

	state := &State{
		Query:     req.Query,
		Documents: req.Documents,
		SessionID: req.SessionID,
		Status:    StatusInitialized,
	}
	w.logger.Printf("[PHASE] Workflow %s started for session %s (%d documents)", runID, req.SessionID, len(req.Documents))

	w.validate(state, rl)
	if state.Status == StatusError {
		return w.finish(state, nil, rl)
	}

	// Both branches run concurrently and only record their outcome; the
	// group is a join barrier, so neither branch can cancel the other.
	// All chunk ids of this run share one timestamp.
	runTime := time.Now()
	var (
		ingestRes    *IngestResult
		cleanedQuery string
		queryVector  []float32
		queryErrMsg  string
	)
	g, gctx := errgroup.WithContext(ctx)
	if state.Status == StatusDocumentValidated {
		g.Go(func() error {
			ingestRes = w.ingestor.Ingest(gctx, state.SessionID, state.Documents, runTime, rl)
			return nil
		})
	}
	g.Go(func() error {
		cleanedQuery, queryVector, queryErrMsg = w.embedQuery(gctx, state.Query, rl)
		return nil
	})
	_ = g.Wait()

	if state.Status == StatusDocumentValidated {
		state.advance(StatusDocumentProcessed, rl)
	} else {
		state.advance(StatusSkipped, rl)
	}
	state.DocProcessingCompleted = true
	state.CleanedQuery = cleanedQuery
	if ingestRes != nil {
		state.ChunkIDs = ingestRes.ChunkIDs
		state.Errors = append(state.Errors, ingestRes.Errors...)
	}

	// The query vector is the one hard prerequisite: without it retrieval
	// and generation are meaningless, so the run goes terminal.
	if queryErrMsg != "" {
		state.appendError(queryErrMsg)
		state.fail(queryErrMsg, rl)
		return w.finish(state, ingestRes, rl)
	}
	if len(queryVector) == 0 {
		msg := "Query embedding error: provider returned an empty embedding"
		state.appendError(msg)
		state.fail(msg, rl)
		return w.finish(state, ingestRes, rl)
	}
	state.QueryVector = queryVector
	state.advance(StatusQueryEmbedded, rl)
	state.advance(StatusReadyForRetrieval, rl)

	retrieval, err := w.retriever.Retrieve(ctx, state.SessionID, state.QueryVector)
	if err != nil {
		w.logger.Printf("[ERROR] Retrieval failed for session %s: %v", state.SessionID, err)
		state.appendError(fmt.Sprintf("Document retrieval error: %v", err))
		rl.Error("retrieve_documents", err)
		retrieval = &RetrievalResult{}
	}
	state.Retrieved = retrieval.Chunks
	state.Context = retrieval.Context
	state.Citations = retrieval.Citations
	state.advance(StatusDocumentsRetrieved, rl)
	rl.Intermediate("retrieval", map[string]interface{}{
		"retrieved":       len(state.Retrieved),
		"context_length":  len(state.Context),
		"context_preview": utils.Truncate(state.Context, 200),
	}, "Assembled retrieval context")

	// The generator gets the original query, not the cleaned one; cleaning
	// serves embedding, the LLM sees what the user typed. Generate never
	// fails, it degrades to a fallback response string.
	rl.NodeStart("generate_response", map[string]interface{}{"context_length": len(state.Context)})
	state.Response = w.generator.Generate(ctx, state.Query, state.Context)
	rl.NodeEnd("generate_response", map[string]interface{}{"response_length": len(state.Response)})

	state.advance(StatusCompleted, rl)
	return w.finish(state, ingestRes, rl)
}

// validate checks the uploads before any branch starts. Validation failures
// are terminal: nothing is extracted, embedded or stored afterwards.
func (w *Workflow) validate(state *State, rl *RunLogger) {
	rl.NodeStart("check_documents", map[string]interface{}{"documents": len(state.Documents)})

	if len(state.Documents) == 0 {
		state.advance(StatusNoDocument, rl)
		w.logger.Printf("[DEBUG] No documents to process for session %s", state.SessionID)
		rl.NodeEnd("check_documents", map[string]interface{}{"status": string(state.Status)})
		return
	}

	for _, doc := range state.Documents {
		if doc.Filename == "" || len(doc.Content) == 0 {
			w.logger.Printf("[ERROR] Rejected malformed document upload for session %s", state.SessionID)
			state.appendError("Invalid document format")
			state.DocProcessingCompleted = true
			state.fail("Invalid document format", rl)
			return
		}
		if !extract.IsSupported(doc.Filename) {
			msg := fmt.Sprintf("Unsupported file format: %s", doc.Filename)
			w.logger.Printf("[ERROR] %s", msg)
			state.appendError(msg)
			state.DocProcessingCompleted = true
			state.fail(msg, rl)
			return
		}
	}

	state.advance(StatusDocumentValidated, rl)
	w.logger.Printf("[DEBUG] Validated %d documents for session %s", len(state.Documents), state.SessionID)
	rl.NodeEnd("check_documents", map[string]interface{}{"status": string(state.Status)})
}

// embedQuery is the query branch. The cleaned form feeds the embedder; when
// cleaning strips the query to nothing (emoji-only input and the like) the
// raw text is embedded instead. A non-empty errMsg marks the branch failed.
func (w *Workflow) embedQuery(ctx context.Context, query string, rl *RunLogger) (cleaned string, vector []float32, errMsg string) {
	rl.NodeStart("embed_query", map[string]interface{}{"query_length": len(query)})

	cleaned = w.normalizer.Normalize(query)
	if cleaned == "" {
		cleaned = query
	}

	vectors, err := w.embedder.Embed(ctx, []string{cleaned}, embedding.TaskRetrievalQuery)
	if err != nil {
		w.logger.Printf("[ERROR] Query embedding failed: %v", err)
		rl.Error("embed_query", err)
		return cleaned, nil, fmt.Sprintf("Query embedding error: %v", err)
	}

	vector = vectors[0]
	rl.NodeEnd("embed_query", map[string]interface{}{"dimension": len(vector)})
	return cleaned, vector, ""
}

// finish freezes the state into the caller-facing result and writes the
// end-of-run stats line.
func (w *Workflow) finish(state *State, ingest *IngestResult, rl *RunLogger) *Result {
	chunkCount := 0
	if ingest != nil {
		chunkCount = ingest.ChunkCount
	}
	rl.Stats(map[string]interface{}{
		"total_documents_processed": len(state.Documents),
		"total_chunks_created":      chunkCount,
		"retrieved_documents":       len(state.Retrieved),
		"errors_encountered":        len(state.Errors),
		"processing_completed":      state.DocProcessingCompleted,
	})

	response := state.Response
	if response == "" {
		response = "No response generated"
	}
	errs := state.Errors
	if errs == nil {
		errs = []string{}
	}
	citations := state.Citations
	if citations == nil {
		citations = []string{}
	}
	chunkIDs := state.ChunkIDs
	if chunkIDs == nil {
		chunkIDs = []string{}
	}

	w.logger.Printf("[STATE] Workflow finished for session %s: status=%s errors=%d retrieved=%d",
		state.SessionID, state.Status, len(errs), len(state.Retrieved))

	return &Result{
		SessionID:              state.SessionID,
		Query:                  state.Query,
		Response:               response,
		Citations:              citations,
		ChunkIDs:               chunkIDs,
		Status:                 state.Status,
		Errors:                 errs,
		DocProcessingCompleted: state.DocProcessingCompleted,
		RetrievedDocsCount:     len(state.Retrieved),
		TotalChunksProcessed:   chunkCount,
	}
}
