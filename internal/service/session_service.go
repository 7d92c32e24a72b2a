// FILE: internal/service/session_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/mapper"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/pkg/rag"
	"ai-docchat-be/pkg/rag/events"
	"ai-docchat-be/pkg/store"
	"ai-docchat-be/pkg/vectorstore"
)

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Show(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	History(ctx context.Context, sessionID string) ([]*dto.ExchangeResponse, error)
	Delete(ctx context.Context, sessionID string) error
	RecordRun(ctx context.Context, req rag.Request, result *rag.Result)
}

type sessionService struct {
	sessionRepo *memory.SessionRepository
	vectorStore vectorstore.Store
	publisher   events.Publisher
	mapper      *mapper.WorkflowMapper
}

func NewSessionService(
	sessionRepo *memory.SessionRepository,
	vectorStore vectorstore.Store,
	publisher events.Publisher,
	workflowMapper *mapper.WorkflowMapper,
) ISessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		vectorStore: vectorStore,
		publisher:   publisher,
		mapper:      workflowMapper,
	}
}

// Create opens a chat session and its vector collection. Creating a session
// that already exists returns the existing one unchanged.
func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	id := req.SessionId
	if id == "" {
		id = rag.NewSessionID(time.Now())
	}

	if existing, ok := s.sessionRepo.Get(id); ok {
		return s.mapper.SessionToResponse(existing), nil
	}

	if _, err := s.vectorStore.Ensure(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to prepare vector collection for session %s: %w", id, err)
	}

	session := &store.Session{
		ID:        id,
		CreatedAt: time.Now(),
	}
	s.sessionRepo.Save(session)
	s.publisher.PublishSessionCreated(ctx, id)

	return s.mapper.SessionToResponse(session), nil
}

func (s *sessionService) Show(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, ok := s.sessionRepo.Get(sessionID)
	if !ok {
		return nil, nil
	}
	return s.mapper.SessionToResponse(session), nil
}

func (s *sessionService) History(ctx context.Context, sessionID string) ([]*dto.ExchangeResponse, error) {
	session, ok := s.sessionRepo.Get(sessionID)
	if !ok {
		return nil, nil
	}

	result := make([]*dto.ExchangeResponse, 0, len(session.History))
	for i := range session.History {
		result = append(result, s.mapper.ExchangeToResponse(&session.History[i]))
	}
	return result, nil
}

// Delete drops the session's vector collection first, then the registry
// entry. The published event carries how many chunks were purged with it.
func (s *sessionService) Delete(ctx context.Context, sessionID string) error {
	chunkCount := 0
	if col, ok, err := s.vectorStore.Get(ctx, sessionID); err == nil && ok {
		if n, err := col.Count(ctx); err == nil {
			chunkCount = n
		}
	}

	if err := s.vectorStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to drop vector collection for session %s: %w", sessionID, err)
	}
	s.sessionRepo.Delete(sessionID)
	s.publisher.PublishSessionDeleted(ctx, sessionID, chunkCount)

	return nil
}

// RecordRun folds a finished workflow run into the session's history and
// running totals. The session is created on the fly when the run minted its
// own id. Counts are informational; chunk ids in the store are authoritative.
func (s *sessionService) RecordRun(ctx context.Context, req rag.Request, result *rag.Result) {
	if result == nil {
		return
	}

	session, ok := s.sessionRepo.Get(result.SessionID)
	if !ok {
		session = &store.Session{
			ID:        result.SessionID,
			CreatedAt: time.Now(),
		}
	}

	session.AppendExchange(store.Exchange{
		Query:     result.Query,
		Response:  result.Response,
		Citations: result.Citations,
		AskedAt:   time.Now(),
	})
	session.ChunkCount += result.TotalChunksProcessed
	if result.TotalChunksProcessed > 0 {
		session.DocumentCount += len(req.Documents)
	}

	s.sessionRepo.Save(session)
}
