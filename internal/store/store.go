// Package store provides the SQLite-backed repositories consumed by the
// acquisition pipeline.
package store

import (
	"database/sql"

	"github.com/rs/zerolog"
)

// Store bundles the repositories over one database connection pool.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// New creates a store over an open database connection.
func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// nullableInt64 converts sql.NullInt64 to *int64.
func nullableInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// nullableString converts sql.NullString to *string.
func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
