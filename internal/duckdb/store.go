// Package duckdb persists canonical transcript tables in a DuckDB database
// so installed gene models can be queried by symbol or region with SQL.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding canonical transcript tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS canonical_transcripts (
		db VARCHAR,
		gene_type VARCHAR,
		chrom VARCHAR,
		tx_start BIGINT,
		tx_end BIGINT,
		gene_id VARCHAR,
		rank BIGINT,
		strand VARCHAR,
		cds_start BIGINT,
		cds_end BIGINT,
		exon_count INTEGER,
		block_sizes VARCHAR,
		block_starts VARCHAR,
		symbol VARCHAR,
		PRIMARY KEY (db, gene_type, gene_id)
	)`)
	return err
}
