package domain

import (
	"context"
	"fmt"

	"github.com/asaskevich/govalidator"

	"github.com/sparkeditor/spark/pkg/blocks"
)

//go:generate mockgen -destination mocks/mock_conversion_service.go -package mocks github.com/sparkeditor/spark/internal/domain ConversionService

// MaxBatchSize caps the number of imports in one batch request
const MaxBatchSize = 50

// ExportFormat selects between a full page and a body fragment
type ExportFormat string

const (
	ExportFormatDocument ExportFormat = "document"
	ExportFormatBody     ExportFormat = "body"
)

func (f ExportFormat) Validate() error {
	if !govalidator.IsIn(string(f), string(ExportFormatDocument), string(ExportFormatBody)) {
		return NewValidationError(fmt.Sprintf("format must be %q or %q", ExportFormatDocument, ExportFormatBody))
	}
	return nil
}

// ImportRequest converts one HTML string into sections
type ImportRequest struct {
	HTML string `json:"html"`
	// BlocksPerSection overrides the configured chunk size when positive
	BlocksPerSection int `json:"blocks_per_section,omitempty"`
}

func (r *ImportRequest) Validate() error {
	if r.BlocksPerSection < 0 {
		return NewValidationError("blocks_per_section must not be negative")
	}
	return nil
}

// ImportResult is the outcome of one import
type ImportResult struct {
	Sections blocks.Document `json:"sections"`
	Warnings []string        `json:"warnings"`
	Layout   string          `json:"layout"`
}

type ImportBatchRequest struct {
	Items []ImportRequest `json:"items"`
}

func (r *ImportBatchRequest) Validate() error {
	if len(r.Items) == 0 {
		return NewValidationError("items is required")
	}
	if len(r.Items) > MaxBatchSize {
		return NewValidationError(fmt.Sprintf("at most %d items can be imported at once", MaxBatchSize))
	}
	for i := range r.Items {
		if err := r.Items[i].Validate(); err != nil {
			return NewValidationError(fmt.Sprintf("item %d: %s", i, err.(ValidationError).Message))
		}
	}
	return nil
}

// ExportRequest renders sections back into HTML
type ExportRequest struct {
	Sections blocks.Document `json:"sections"`
	Format   ExportFormat    `json:"format"`
	Title    string          `json:"title,omitempty"`
	// IncludeMetadata only affects the body format; documents always carry it
	// unless OmitMetadata is set
	IncludeMetadata bool `json:"include_metadata,omitempty"`
	OmitMetadata    bool `json:"omit_metadata,omitempty"`
}

func (r *ExportRequest) Validate() error {
	if r.Format == "" {
		r.Format = ExportFormatDocument
	}
	if err := r.Format.Validate(); err != nil {
		return err
	}
	if r.Sections == nil {
		return NewValidationError("sections is required")
	}
	if err := blocks.Validate(r.Sections); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// ConversionService runs the import and export engine
type ConversionService interface {
	Import(ctx context.Context, req *ImportRequest) (*ImportResult, error)

	// ImportBatch imports every item independently and returns the results in
	// request order
	ImportBatch(ctx context.Context, req *ImportBatchRequest) ([]*ImportResult, error)

	Export(ctx context.Context, req *ExportRequest) (string, error)
}
