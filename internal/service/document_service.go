package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sparkeditor/spark/internal/domain"
	"github.com/sparkeditor/spark/pkg/logger"
)

// RenderCache stores rendered markup by key
type RenderCache interface {
	GetOrSet(key string, compute func() (string, error)) (string, error)
}

type DocumentService struct {
	repo        domain.DocumentRepository
	conversion  domain.ConversionService
	logger      logger.Logger
	renderCache RenderCache
}

type DocumentServiceOption func(*DocumentService)

// WithRenderCache caches Render output. Entries are keyed by the document's
// UpdatedAt so a save never serves stale markup.
func WithRenderCache(c RenderCache) DocumentServiceOption {
	return func(s *DocumentService) {
		s.renderCache = c
	}
}

func NewDocumentService(repo domain.DocumentRepository, conversion domain.ConversionService, logger logger.Logger, opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{
		repo:       repo,
		conversion: conversion,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentService) CreateFromHTML(ctx context.Context, req *domain.CreateDocumentRequest) (*domain.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := s.conversion.Import(ctx, &domain.ImportRequest{HTML: req.HTML})
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Sections: result.Sections,
		Warnings: result.Warnings,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.WithField("document_id", doc.ID).Error(fmt.Sprintf("Failed to create document: %v", err))
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"document_id":   doc.ID,
		"layout":        result.Layout,
		"warning_count": len(doc.Warnings),
	}).Info("Document created")

	return doc, nil
}

// Save replaces the sections of an edited document. Import warnings are
// cleared because they describe markup that is no longer the source.
func (s *DocumentService) Save(ctx context.Context, req *domain.UpdateDocumentRequest) (*domain.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, s.wrapRepoError(err, req.ID, "get")
	}

	doc.Name = req.Name
	doc.Sections = req.Sections
	doc.Warnings = []string{}

	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, s.wrapRepoError(err, req.ID, "update")
	}

	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if err := domain.ValidateDocumentID(id); err != nil {
		return nil, err
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err, id, "get")
	}
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, req *domain.ListDocumentsRequest) (*domain.DocumentList, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = domain.DefaultListLimit
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	docs, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to list documents: %v", err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &domain.DocumentList{
		Documents:  docs,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateDocumentID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.wrapRepoError(err, id, "delete")
	}

	s.logger.WithField("document_id", id).Info("Document deleted")
	return nil
}

// Render exports a stored document through the conversion service
func (s *DocumentService) Render(ctx context.Context, req *domain.RenderDocumentRequest) (string, error) {
	doc, err := s.Get(ctx, req.ID)
	if err != nil {
		return "", err
	}

	title := req.Title
	if title == "" {
		title = doc.Name
	}

	export := func() (string, error) {
		return s.conversion.Export(ctx, &domain.ExportRequest{
			Sections: doc.Sections,
			Format:   req.Format,
			Title:    title,
		})
	}
	if s.renderCache == nil {
		return export()
	}

	key := fmt.Sprintf("%s|%d|%s|%s", doc.ID, doc.UpdatedAt.UnixNano(), req.Format, title)
	return s.renderCache.GetOrSet(key, export)
}

func (s *DocumentService) wrapRepoError(err error, id, action string) error {
	if domain.IsNotFound(err) {
		return err
	}
	s.logger.WithField("document_id", id).Error(fmt.Sprintf("Failed to %s document: %v", action, err))
	return fmt.Errorf("failed to %s document: %w", action, err)
}
