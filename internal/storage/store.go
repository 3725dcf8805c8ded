package storage

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned whenever a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the postgres persistence layer. Services depend on the
// narrow interfaces they declare; Store satisfies all of them.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}
