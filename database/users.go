package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"repo-browser/models"

	"github.com/mattn/go-sqlite3"
)

// ==================== USER OPERATIONS ====================

// CreateUser inserts a user and returns it with its assigned ID
func (r *Repository) CreateUser(email, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()

	res, err := r.db.Exec(`
		INSERT INTO users (email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, email, passwordHash, now, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read user id: %w", err)
	}

	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// GetUserByEmail returns nil, nil when no user has the email
func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(`
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = ?
	`, email))
}

// GetUserByID returns nil, nil when the user does not exist
func (r *Repository) GetUserByID(id int64) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(`
		SELECT id, email, password_hash, created_at
		FROM users WHERE id = ?
	`, id))
}

func (r *Repository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
