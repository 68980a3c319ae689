// Package schema holds the table definitions of the document store.
package schema

// TableDefinitions creates the document store tables.
// Don't put REFERENCES and don't put CHECK constraints in the CREATE TABLE statements
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		sections JSONB NOT NULL DEFAULT '[]'::jsonb,
		warnings JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC)`,
}

// TableNames lists the tables in creation order
var TableNames = []string{
	"documents",
}
