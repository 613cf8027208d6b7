package database

import "errors"

var ErrDuplicateEmail = errors.New("email already registered")

// Repository is the data access layer over DB.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}
