package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sparkeditor/spark/config"
	"github.com/sparkeditor/spark/internal/domain"
	"github.com/sparkeditor/spark/pkg/exporter"
	"github.com/sparkeditor/spark/pkg/importer"
	"github.com/sparkeditor/spark/pkg/logger"
)

// ConversionService runs imports and exports with the configured engine
// options. It holds no per-request state.
type ConversionService struct {
	importOpts    importer.Options
	importer      *importer.Importer
	exporter      *exporter.Exporter
	maxInputBytes int64
	concurrency   int
	logger        logger.Logger
}

func NewConversionService(cfg *config.Config, logger logger.Logger) *ConversionService {
	opts := importer.Options{
		BlocksPerSection: cfg.Import.BlocksPerSection,
		MaxDepth:         cfg.Import.MaxDepth,
		SkipSanitize:     !cfg.Import.Sanitize,
	}

	concurrency := cfg.Batch.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &ConversionService{
		importOpts:    opts,
		importer:      importer.New(opts),
		exporter:      exporter.New(exporter.Options{DefaultTitle: cfg.Export.DefaultTitle}),
		maxInputBytes: cfg.Import.MaxInputBytes,
		concurrency:   concurrency,
		logger:        logger,
	}
}

func (s *ConversionService) Import(ctx context.Context, req *domain.ImportRequest) (*domain.ImportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.maxInputBytes > 0 && int64(len(req.HTML)) > s.maxInputBytes {
		return nil, &domain.ErrInputTooLarge{Size: int64(len(req.HTML)), Limit: s.maxInputBytes}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := s.importerFor(req).Import(req.HTML)

	log := s.logger.WithFields(map[string]interface{}{
		"layout":        string(result.Layout),
		"section_count": len(result.Sections),
		"warning_count": len(result.Warnings),
	})
	if len(result.Warnings) > 0 {
		log.Warn("Import completed with warnings")
	} else {
		log.Debug("Import completed")
	}

	return &domain.ImportResult{
		Sections: result.Sections,
		Warnings: result.Warnings,
		Layout:   string(result.Layout),
	}, nil
}

func (s *ConversionService) importerFor(req *domain.ImportRequest) *importer.Importer {
	if req.BlocksPerSection <= 0 || req.BlocksPerSection == s.importOpts.BlocksPerSection {
		return s.importer
	}
	opts := s.importOpts
	opts.BlocksPerSection = req.BlocksPerSection
	return importer.New(opts)
}

// ImportBatch imports items concurrently. Imports share nothing, so the
// only coordination is collecting results by index.
func (s *ConversionService) ImportBatch(ctx context.Context, req *domain.ImportBatchRequest) ([]*domain.ImportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	results := make([]*domain.ImportResult, len(req.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range req.Items {
		i := i
		g.Go(func() error {
			result, err := s.Import(gctx, &req.Items[i])
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.WithField("item_count", len(results)).Info("Batch import completed")
	return results, nil
}

func (s *ConversionService) Export(ctx context.Context, req *domain.ExportRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if req.Format == domain.ExportFormatBody {
		return s.exporter.RenderBody(req.Sections, exporter.BodyOptions{IncludeMetadata: req.IncludeMetadata}), nil
	}
	return s.exporter.RenderDocument(req.Sections, exporter.DocumentOptions{
		Title:        req.Title,
		OmitMetadata: req.OmitMetadata,
	}), nil
}
