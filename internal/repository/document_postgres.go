package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/sparkeditor/spark/internal/domain"
	"github.com/sparkeditor/spark/pkg/blocks"
)

var documentColumns = []string{"id", "name", "sections", "warnings", "created_at", "updated_at"}

type documentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new PostgreSQL document repository
func NewDocumentRepository(db *sql.DB) domain.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	sections, warnings, err := encodeDocumentPayload(doc)
	if err != nil {
		return err
	}

	query, args, err := r.psql().Insert("documents").
		Columns(documentColumns...).
		Values(doc.ID, doc.Name, sections, warnings, doc.CreatedAt, doc.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query, args, err := r.psql().Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// List returns one page ordered by newest first together with the total count
func (r *documentRepository) List(ctx context.Context, limit, offset int) ([]*domain.Document, int, error) {
	countSQL, countArgs, err := r.psql().Select("COUNT(*)").From("documents").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	dataSQL, dataArgs, err := r.psql().Select(documentColumns...).
		From("documents").
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*domain.Document, 0, limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, total, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()

	sections, warnings, err := encodeDocumentPayload(doc)
	if err != nil {
		return err
	}

	query, args, err := r.psql().Update("documents").
		Set("name", doc.Name).
		Set("sections", sections).
		Set("warnings", warnings).
		Set("updated_at", doc.UpdatedAt).
		Where(sq.Eq{"id": doc.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return requireAffected(result, doc.ID)
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.psql().Delete("documents").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireAffected(result, id)
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrDocumentNotFound(id)
	}
	return nil
}

func encodeDocumentPayload(doc *domain.Document) (sections, warnings []byte, err error) {
	if doc.Sections == nil {
		sections = []byte("[]")
	} else if sections, err = json.Marshal(doc.Sections); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal sections: %w", err)
	}

	if doc.Warnings == nil {
		warnings = []byte("[]")
	} else if warnings, err = json.Marshal(doc.Warnings); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal warnings: %w", err)
	}
	return sections, warnings, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var (
		doc      domain.Document
		sections []byte
		warnings []byte
	)
	if err := row.Scan(&doc.ID, &doc.Name, &sections, &warnings, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	parsed, err := blocks.UnmarshalDocument(sections)
	if err != nil {
		return nil, err
	}
	doc.Sections = parsed
	if doc.Sections == nil {
		doc.Sections = blocks.Document{}
	}

	doc.Warnings = []string{}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &doc.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}
	return &doc, nil
}
