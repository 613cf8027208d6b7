package services

import (
	"context"

	"repo-browser/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	CreateUser(email, passwordHash string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
}

// SessionStore defines the interface for session management
type SessionStore interface {
	Create(userID int64, email string) (*models.Session, error)
	Get(sessionID string) (*models.Session, error)
	Touch(sessionID string) error
	Delete(sessionID string) error
}

// RepositorySource is the upstream the repository API reads from.
// Production uses githubapi.Client.
type RepositorySource interface {
	SearchRepositories(ctx context.Context, query string, perPage int) ([]models.Repository, error)
	GetRepository(ctx context.Context, owner, name string) (*models.Repository, error)
}
