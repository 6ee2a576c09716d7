package repository

import (
	"database/sql"
	"errors"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// ValidationError marks entity rule violations so handlers can answer 400
// instead of treating them as store failures.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Store wraps the database handle. It is constructed in cmd/api (and in
// tests) and passed to the handlers; there is no package-level connection.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
