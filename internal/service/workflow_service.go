package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/mapper"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/pkg/rag"
	"ai-docchat-be/pkg/rag/events"
)

type IRagWorkflowService interface {
	RunWorkflow(ctx context.Context, req *dto.WorkflowRequest) (*dto.WorkflowResponse, error)
}

type ragWorkflowService struct {
	workflow       *rag.Workflow
	sessionService ISessionService
	publisher      events.Publisher
	mapper         *mapper.WorkflowMapper
}

func NewRagWorkflowService(
	workflow *rag.Workflow,
	sessionService ISessionService,
	publisher events.Publisher,
	workflowMapper *mapper.WorkflowMapper,
) IRagWorkflowService {
	return &ragWorkflowService{
		workflow:       workflow,
		sessionService: sessionService,
		publisher:      publisher,
		mapper:         workflowMapper,
	}
}

// RunWorkflow executes one full query turn. The workflow itself never fails;
// errors it survived are listed inside the response, so the only error
// returned here is request validation.
func (s *ragWorkflowService) RunWorkflow(ctx context.Context, req *dto.WorkflowRequest) (*dto.WorkflowResponse, error) {
	ctx, span := otel.Tracer("ai-docchat-be/internal/service").Start(ctx, "WorkflowService.RunWorkflow")
	defer span.End()

	if err := serverutils.ValidateRequest(req); err != nil {
		span.RecordError(err)
		return nil, err
	}

	ragReq := s.mapper.RequestToRag(req)
	result := s.workflow.Run(ctx, ragReq)

	span.SetAttributes(
		attribute.String("session.id", result.SessionID),
		attribute.String("workflow.status", string(result.Status)),
		attribute.Int("retrieval.documents", result.RetrievedDocsCount),
		attribute.Int("workflow.errors", len(result.Errors)),
	)

	s.sessionService.RecordRun(ctx, ragReq, result)
	s.publisher.PublishWorkflowCompleted(ctx, result.SessionID, string(result.Status),
		result.RetrievedDocsCount, result.TotalChunksProcessed, len(result.Errors))

	return s.mapper.ResultToResponse(result), nil
}
