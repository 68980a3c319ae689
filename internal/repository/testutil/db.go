package testutil

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/sparkeditor/spark/internal/domain"
)

// DocumentColumns are the columns selected by the document repository
var DocumentColumns = []string{"id", "name", "sections", "warnings", "created_at", "updated_at"}

// SetupMockDB creates a mock database connection for testing
func SetupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

// DocumentRows builds result rows holding docs as the database stores them
func DocumentRows(t *testing.T, docs ...*domain.Document) *sqlmock.Rows {
	rows := sqlmock.NewRows(DocumentColumns)
	for _, doc := range docs {
		rows.AddRow(documentValues(t, doc)...)
	}
	return rows
}

func documentValues(t *testing.T, doc *domain.Document) []driver.Value {
	sections, err := json.Marshal(doc.Sections)
	require.NoError(t, err)
	warnings, err := json.Marshal(doc.Warnings)
	require.NoError(t, err)
	return []driver.Value{doc.ID, doc.Name, sections, warnings, doc.CreatedAt, doc.UpdatedAt}
}
