package events

import (
	"context"
	"time"

	"ai-docchat-be/internal/pkg/logger"
	pkgEvents "ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"
)

// Publisher abstracts lifecycle event publishing for the workflow domain.
type Publisher interface {
	PublishSessionCreated(ctx context.Context, sessionID string)
	PublishSessionDeleted(ctx context.Context, sessionID string, chunkCount int)
	PublishDocumentIngested(ctx context.Context, sessionID, filename string, chunks int)
	PublishWorkflowCompleted(ctx context.Context, sessionID, status string, retrievedDocs, storedChunks, errorCount int)
}

// NatsPublisher implements Publisher using NATS
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

// NewNatsPublisher creates a new NATS-based event publisher
func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishSessionCreated emits SESSION_CREATED when a chat session is opened
func (p *NatsPublisher) PublishSessionCreated(ctx context.Context, sessionID string) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.New("SESSION_CREATED", map[string]interface{}{
		"session_id":  sessionID,
		"entity_type": "session",
		"entity_id":   sessionID,
	})

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("WORKFLOW", "Failed to publish SESSION_CREATED event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishSessionDeleted emits SESSION_DELETED after a session and its chunks are dropped
func (p *NatsPublisher) PublishSessionDeleted(ctx context.Context, sessionID string, chunkCount int) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.New("SESSION_DELETED", map[string]interface{}{
		"session_id":    sessionID,
		"chunks_purged": chunkCount,
		"entity_type":   "session",
		"entity_id":     sessionID,
	})

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("WORKFLOW", "Failed to publish SESSION_DELETED event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishDocumentIngested emits DOCUMENT_INGESTED after an upload lands in the vector store
func (p *NatsPublisher) PublishDocumentIngested(ctx context.Context, sessionID, filename string, chunks int) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.New("DOCUMENT_INGESTED", map[string]interface{}{
		"session_id":  sessionID,
		"filename":    filename,
		"chunks":      chunks,
		"entity_type": "document",
		"entity_id":   filename,
	})

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("WORKFLOW", "Failed to publish DOCUMENT_INGESTED event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishWorkflowCompleted emits WORKFLOW_COMPLETED after every run, terminal errors included
func (p *NatsPublisher) PublishWorkflowCompleted(ctx context.Context, sessionID, status string, retrievedDocs, storedChunks, errorCount int) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.New("WORKFLOW_COMPLETED", map[string]interface{}{
		"session_id":     sessionID,
		"status":         status,
		"retrieved_docs": retrievedDocs,
		"stored_chunks":  storedChunks,
		"errors":         errorCount,
		"entity_type":    "workflow",
		"entity_id":      sessionID,
		"occurred_at":    time.Now(),
	})

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("WORKFLOW", "Failed to publish WORKFLOW_COMPLETED event", map[string]interface{}{"error": err.Error()})
	}
}
