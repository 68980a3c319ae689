package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkeditor/spark/internal/domain"
	"github.com/sparkeditor/spark/internal/repository/testutil"
	"github.com/sparkeditor/spark/pkg/blocks"
)

const testDocumentID = "5f0c4d6e-3b1a-4f59-9a43-6d2b8f3c1e7a"

func testDocument() *domain.Document {
	paragraph := blocks.NewParagraph("Hello")
	paragraph.ID = "p1"
	section := blocks.NewSectionWithBlocks([]blocks.Block{paragraph})
	section.ID = "s1"

	now := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Document{
		ID:        testDocumentID,
		Name:      "Signup form",
		Sections:  blocks.Document{section},
		Warnings:  []string{"radio inputs are not supported"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDocumentRepository_Create(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	t.Run("successful creation", func(t *testing.T) {
		doc := testDocument()
		sections, _ := json.Marshal(doc.Sections)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (id,name,sections,warnings,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6)`)).
			WithArgs(doc.ID, doc.Name, sections, []byte(`["radio inputs are not supported"]`), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		before := time.Now().UTC()
		err := repo.Create(context.Background(), doc)
		require.NoError(t, err)
		assert.False(t, doc.CreatedAt.Before(before))
		assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil sections and warnings are stored as empty arrays", func(t *testing.T) {
		doc := &domain.Document{ID: testDocumentID, Name: "Empty"}

		mock.ExpectExec(`INSERT INTO documents`).
			WithArgs(doc.ID, doc.Name, []byte("[]"), []byte("[]"), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(context.Background(), doc))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO documents`).WillReturnError(errors.New("database error"))

		err := repo.Create(context.Background(), testDocument())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create document")
	})
}

func TestDocumentRepository_GetByID(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	t.Run("found", func(t *testing.T) {
		expected := testDocument()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, sections, warnings, created_at, updated_at FROM documents WHERE id = $1`)).
			WithArgs(testDocumentID).
			WillReturnRows(testutil.DocumentRows(t, expected))

		doc, err := repo.GetByID(context.Background(), testDocumentID)
		require.NoError(t, err)

		assert.Equal(t, expected.Name, doc.Name)
		assert.Equal(t, expected.Warnings, doc.Warnings)
		assert.Equal(t, expected.CreatedAt, doc.CreatedAt)

		want, _ := json.Marshal(expected.Sections)
		got, _ := json.Marshal(doc.Sections)
		assert.JSONEq(t, string(want), string(got))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents`).
			WithArgs(testDocumentID).
			WillReturnRows(sqlmock.NewRows(testutil.DocumentColumns))

		doc, err := repo.GetByID(context.Background(), testDocumentID)
		assert.Nil(t, doc)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("corrupt sections", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM documents`).
			WithArgs(testDocumentID).
			WillReturnRows(sqlmock.NewRows(testutil.DocumentColumns).
				AddRow(testDocumentID, "Broken", []byte(`{"not":"an array"}`), []byte(`[]`), now, now))

		_, err := repo.GetByID(context.Background(), testDocumentID)
		require.Error(t, err)
		assert.False(t, domain.IsNotFound(err))
		assert.Contains(t, err.Error(), "failed to get document")
	})
}

func TestDocumentRepository_List(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	t.Run("returns page and total", func(t *testing.T) {
		first := testDocument()
		second := testDocument()
		second.ID = "0b7c2a55-8f0e-4c84-9d0a-3f8e1b2c4d5e"
		second.Warnings = nil

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM documents`)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
		mock.ExpectQuery(`SELECT id, name, sections, warnings, created_at, updated_at FROM documents ORDER BY created_at DESC, id LIMIT 2 OFFSET 4`).
			WillReturnRows(testutil.DocumentRows(t, first, second))

		docs, total, err := repo.List(context.Background(), 2, 4)
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		require.Len(t, docs, 2)
		assert.Equal(t, second.ID, docs[1].ID)
		assert.Empty(t, docs[1].Warnings)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty page", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT (.+) FROM documents ORDER BY`).WillReturnRows(sqlmock.NewRows(testutil.DocumentColumns))

		docs, total, err := repo.List(context.Background(), 20, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("timeout"))

		_, _, err := repo.List(context.Background(), 20, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to count documents")
	})
}

func TestDocumentRepository_Update(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	t.Run("successful update", func(t *testing.T) {
		doc := testDocument()
		created := doc.CreatedAt

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET name = $1, sections = $2, warnings = $3, updated_at = $4 WHERE id = $5`)).
			WithArgs(doc.Name, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), doc.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), doc))
		assert.Equal(t, created, doc.CreatedAt)
		assert.True(t, doc.UpdatedAt.After(created))
	})

	t.Run("missing document", func(t *testing.T) {
		mock.ExpectExec(`UPDATE documents`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), testDocument())
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestDocumentRepository_Delete(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	t.Run("successful delete", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE id = $1`)).
			WithArgs(testDocumentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), testDocumentID))
	})

	t.Run("missing document", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM documents`).
			WithArgs(testDocumentID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), testDocumentID)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM documents`).WillReturnError(errors.New("boom"))

		err := repo.Delete(context.Background(), testDocumentID)
		require.Error(t, err)
		assert.False(t, domain.IsNotFound(err))
	})
}
