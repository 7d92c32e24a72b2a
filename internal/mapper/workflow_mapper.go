package mapper

import (
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/pkg/rag"
	"ai-docchat-be/pkg/store"
)

type WorkflowMapper struct{}

func NewWorkflowMapper() *WorkflowMapper {
	return &WorkflowMapper{}
}

func (m *WorkflowMapper) RequestToRag(req *dto.WorkflowRequest) rag.Request {
	docs := make([]store.RawDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, store.RawDocument{
			Filename: d.Filename,
			Content:  d.Content,
		})
	}
	return rag.Request{
		Query:     req.Query,
		Documents: docs,
		SessionID: req.SessionId,
	}
}

func (m *WorkflowMapper) ResultToResponse(res *rag.Result) *dto.WorkflowResponse {
	if res == nil {
		return nil
	}
	return &dto.WorkflowResponse{
		SessionId:              res.SessionID,
		Query:                  res.Query,
		Response:               res.Response,
		Citations:              res.Citations,
		ChunkIds:               res.ChunkIDs,
		Status:                 string(res.Status),
		Errors:                 res.Errors,
		DocProcessingCompleted: res.DocProcessingCompleted,
		RetrievedDocsCount:     res.RetrievedDocsCount,
		TotalChunksProcessed:   res.TotalChunksProcessed,
	}
}

func (m *WorkflowMapper) SessionToResponse(s *store.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}
	return &dto.SessionResponse{
		SessionId:     s.ID,
		CreatedAt:     s.CreatedAt,
		DocumentCount: s.DocumentCount,
		ChunkCount:    s.ChunkCount,
		Exchanges:     len(s.History),
	}
}

func (m *WorkflowMapper) ExchangeToResponse(ex *store.Exchange) *dto.ExchangeResponse {
	if ex == nil {
		return nil
	}
	return &dto.ExchangeResponse{
		Query:     ex.Query,
		Response:  ex.Response,
		Citations: ex.Citations,
		AskedAt:   ex.AskedAt,
	}
}
