package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"repo-browser/database"
	"repo-browser/models"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication business logic
type AuthService struct {
	users        UserRepository
	sessionStore SessionStore
	hashCost     int
}

// NewAuthService creates a new auth service
func NewAuthService(users UserRepository, sessionStore SessionStore) *AuthService {
	return &AuthService{
		users:        users,
		sessionStore: sessionStore,
		hashCost:     bcrypt.DefaultCost,
	}
}

// AuthResult is a signed-in user and the session created for them
type AuthResult struct {
	User    *models.User
	Session *models.Session
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a user and signs them in
func (as *AuthService) SignUp(email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	existing, err := as.users.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := as.users.CreateUser(email, string(hash))
	if err != nil {
		// Lost a race with a concurrent sign up
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return as.startSession(user)
}

// SignIn checks the credentials and creates a new session
func (as *AuthService) SignIn(email, password string) (*AuthResult, error) {
	user, err := as.users.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return as.startSession(user)
}

func (as *AuthService) startSession(user *models.User) (*AuthResult, error) {
	sess, err := as.sessionStore.Create(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	slog.Info("user signed in", "user_id", user.ID)
	return &AuthResult{User: user, Session: sess}, nil
}

// SignOut handles user sign out
func (as *AuthService) SignOut(sessionID string) error {
	if sessionID == "" {
		return ErrSessionNotFound
	}
	return as.sessionStore.Delete(sessionID)
}

// CurrentUser resolves a session cookie to its user. It returns nil, nil when
// nobody is signed in, including for unknown or expired sessions.
func (as *AuthService) CurrentUser(sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	sess, err := as.sessionStore.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	user, err := as.users.GetUserByID(sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	if err := as.sessionStore.Touch(sessionID); err != nil {
		slog.Warn("failed to update session last use", "error", err)
	}

	return user, nil
}
