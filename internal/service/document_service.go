// FILE: internal/service/document_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/pkg/extract"
)

type IDocumentService interface {
	Upload(ctx context.Context, req *dto.IngestDocumentMessage) error
}

type documentService struct {
	publisherService IPublisherService
}

func NewDocumentService(publisherService IPublisherService) IDocumentService {
	return &documentService{
		publisherService: publisherService,
	}
}

// Upload queues a document for background ingestion. Unsupported formats are
// rejected here, before the queue, so the uploader hears about it
// synchronously instead of finding a stuck message later.
func (s *documentService) Upload(ctx context.Context, req *dto.IngestDocumentMessage) error {
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if !extract.IsSupported(req.Filename) {
		return fmt.Errorf("unsupported file format: %s", req.Filename)
	}

	msgJson, err := json.Marshal(req)
	if err != nil {
		return err
	}

	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return err
	}

	log.Printf("[INFO] Queued document %s for ingestion into session %s", req.Filename, req.SessionId)
	return nil
}
