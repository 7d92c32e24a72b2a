// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/pkg/rag"
	"ai-docchat-be/pkg/rag/events"
	"ai-docchat-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	ingestor    *rag.Ingestor
	sessionRepo *memory.SessionRepository
	runLogs     *rag.RunLogFactory
	publisher   events.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestor *rag.Ingestor,
	sessionRepo *memory.SessionRepository,
	runLogs *rag.RunLogFactory,
	publisher events.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		ingestor:    ingestor,
		sessionRepo: sessionRepo,
		runLogs:     runLogs,
		publisher:   publisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}
	if err := serverutils.ValidateRequest(&payload); err != nil {
		log.Printf("[ERROR] Invalid ingest message %s: %v", msg.UUID, err)
		msg.Ack() // Malformed payloads never get better on retry
		return
	}

	log.Printf("[INFO] Ingesting document %s into session %s", payload.Filename, payload.SessionId)

	ctx, span := otel.Tracer("ai-docchat-be/internal/service").Start(ctx, "ConsumerService.ProcessMessage")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", payload.SessionId),
		attribute.String("document.filename", payload.Filename),
	)

	runID := "ingest_" + msg.UUID
	if len(msg.UUID) > 8 {
		runID = "ingest_" + msg.UUID[:8]
	}
	rl := cs.runLogs.For(payload.SessionId, runID)
	defer rl.Close()

	docs := []store.RawDocument{{Filename: payload.Filename, Content: payload.Content}}
	res := cs.ingestor.Ingest(ctx, payload.SessionId, docs, time.Now(), rl)
	span.SetAttributes(attribute.Int("ingest.chunks", res.ChunkCount), attribute.Int("ingest.errors", len(res.Errors)))

	for _, e := range res.Errors {
		log.Printf("[WARN] Ingestion issue for %s: %s", payload.Filename, e)
	}

	if res.ChunkCount == 0 && len(res.Errors) > 0 {
		if retriable(res.Errors) {
			msg.Nack() // Nack for retriable errors
			return
		}
		msg.Ack() // Unreadable content never gets better on retry
		return
	}

	session, ok := cs.sessionRepo.Get(payload.SessionId)
	if !ok {
		session = &store.Session{
			ID:        payload.SessionId,
			CreatedAt: time.Now(),
		}
	}
	session.DocumentCount += res.DocumentCount
	session.ChunkCount += res.ChunkCount
	cs.sessionRepo.Save(session)

	if res.ChunkCount == 0 {
		log.Printf("[WARN] Document %s produced no chunks, nothing stored", payload.Filename)
		msg.Ack()
		return
	}

	cs.publisher.PublishDocumentIngested(ctx, payload.SessionId, payload.Filename, res.ChunkCount)

	log.Printf("[SUCCESS] Document processed: %d chunks from %s in session %s", res.ChunkCount, payload.Filename, payload.SessionId)
	msg.Ack()
}

// retriable reports whether any error came from the store or the embedding
// backend rather than from the document itself. Extraction failures are
// content problems and re-running them cannot succeed.
func retriable(errs []string) bool {
	for _, e := range errs {
		if !strings.HasPrefix(e, "Text extraction error") {
			return true
		}
	}
	return false
}
