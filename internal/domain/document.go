package domain

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/sparkeditor/spark/pkg/blocks"
)

//go:generate mockgen -destination mocks/mock_document_service.go -package mocks github.com/sparkeditor/spark/internal/domain DocumentService
//go:generate mockgen -destination mocks/mock_document_repository.go -package mocks github.com/sparkeditor/spark/internal/domain DocumentRepository

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	maxNameLength    = 255
)

// Document is a stored block document
type Document struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Sections  blocks.Document `json:"sections"`
	Warnings  []string        `json:"warnings"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate performs validation on the document fields
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("invalid document: id is required")
	}
	if !govalidator.IsUUID(d.ID) {
		return fmt.Errorf("invalid document: id must be a UUID")
	}
	if err := validateName(d.Name); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if err := blocks.Validate(d.Sections); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if !govalidator.StringLength(name, "1", strconv.Itoa(maxNameLength)) {
		return fmt.Errorf("name length must be between 1 and %d", maxNameLength)
	}
	return nil
}

// DocumentList is one page of stored documents
type DocumentList struct {
	Documents  []*Document `json:"documents"`
	TotalCount int         `json:"total_count"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

// CreateDocumentRequest imports markup and stores the result
type CreateDocumentRequest struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

func (r *CreateDocumentRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// UpdateDocumentRequest replaces a stored document's name and sections
type UpdateDocumentRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Sections blocks.Document `json:"sections"`
}

func (r *UpdateDocumentRequest) Validate() error {
	if err := ValidateDocumentID(r.ID); err != nil {
		return err
	}
	if err := validateName(r.Name); err != nil {
		return NewValidationError(err.Error())
	}
	if r.Sections == nil {
		return NewValidationError("sections is required")
	}
	if err := blocks.Validate(r.Sections); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

type GetDocumentRequest struct {
	ID string `json:"id"`
}

func (r *GetDocumentRequest) FromURLParams(queryParams url.Values) error {
	r.ID = queryParams.Get("id")
	return ValidateDocumentID(r.ID)
}

type DeleteDocumentRequest struct {
	ID string `json:"id"`
}

func (r *DeleteDocumentRequest) Validate() error {
	return ValidateDocumentID(r.ID)
}

type ListDocumentsRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (r *ListDocumentsRequest) FromURLParams(queryParams url.Values) error {
	r.Limit = DefaultListLimit
	if v := queryParams.Get("limit"); v != "" {
		if !govalidator.IsInt(v) {
			return NewValidationError("limit must be an integer")
		}
		r.Limit, _ = strconv.Atoi(v)
	}
	if v := queryParams.Get("offset"); v != "" {
		if !govalidator.IsInt(v) {
			return NewValidationError("offset must be an integer")
		}
		r.Offset, _ = strconv.Atoi(v)
	}

	if r.Limit < 1 || r.Limit > MaxListLimit {
		return NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxListLimit))
	}
	if r.Offset < 0 {
		return NewValidationError("offset must not be negative")
	}
	return nil
}

// RenderDocumentRequest exports a stored document
type RenderDocumentRequest struct {
	ID     string       `json:"id"`
	Format ExportFormat `json:"format"`
	Title  string       `json:"title"`
}

func (r *RenderDocumentRequest) FromURLParams(queryParams url.Values) error {
	r.ID = queryParams.Get("id")
	r.Format = ExportFormat(queryParams.Get("format"))
	r.Title = queryParams.Get("title")
	if r.Format == "" {
		r.Format = ExportFormatDocument
	}

	if err := ValidateDocumentID(r.ID); err != nil {
		return err
	}
	return r.Format.Validate()
}

// ValidateDocumentID checks that id is present and a UUID
func ValidateDocumentID(id string) error {
	if id == "" {
		return NewValidationError("id is required")
	}
	if !govalidator.IsUUID(id) {
		return NewValidationError("id must be a UUID")
	}
	return nil
}

// DocumentService manages stored documents
type DocumentService interface {
	// CreateFromHTML imports markup and stores the resulting document
	CreateFromHTML(ctx context.Context, req *CreateDocumentRequest) (*Document, error)

	// Save replaces the name and sections of an existing document
	Save(ctx context.Context, req *UpdateDocumentRequest) (*Document, error)

	Get(ctx context.Context, id string) (*Document, error)

	List(ctx context.Context, req *ListDocumentsRequest) (*DocumentList, error)

	Delete(ctx context.Context, id string) error

	// Render exports a stored document as HTML
	Render(ctx context.Context, req *RenderDocumentRequest) (string, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error

	GetByID(ctx context.Context, id string) (*Document, error)

	List(ctx context.Context, limit, offset int) ([]*Document, int, error)

	Update(ctx context.Context, doc *Document) error

	Delete(ctx context.Context, id string) error
}
