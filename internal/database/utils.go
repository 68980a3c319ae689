package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/sparkeditor/spark/config"
)

// sqlOpen is swapped in tests
var sqlOpen = sql.Open

// GetConnectionPoolSettings returns connection pool settings based on environment
func GetConnectionPoolSettings(environment string) (maxOpen, maxIdle int, maxLifetime time.Duration) {
	if environment == "test" || environment == "development" {
		return 10, 5, 2 * time.Minute
	}
	return 25, 25, 20 * time.Minute
}

// GetDSN returns the DSN of the document store database
func GetDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// GetPostgresDSN returns the DSN for connecting to PostgreSQL server without specifying a database
func GetPostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/postgres?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.SSLMode,
	)
}

// ConnectToDatabase makes sure the database exists, opens a pooled connection
// to it and creates the tables
func ConnectToDatabase(cfg *config.DatabaseConfig, environment string) (*sql.DB, error) {
	server, err := sqlOpen("postgres", GetPostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL server: %w", err)
	}
	err = EnsureDatabaseExists(server, cfg.DBName)
	server.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to ensure database exists: %w", err)
	}

	db, err := sqlOpen("postgres", GetDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen, maxIdle, maxLifetime := GetConnectionPoolSettings(environment)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(maxLifetime / 2)

	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureDatabaseExists creates dbName through a server-level connection if it
// doesn't exist
func EnsureDatabaseExists(server *sql.DB, dbName string) error {
	if err := server.Ping(); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL server: %w", err)
	}

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := server.QueryRow(query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createDBQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, strings.ReplaceAll(dbName, `"`, `""`))
		if _, err := server.Exec(createDBQuery); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	return nil
}
