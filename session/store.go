package session

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"repo-browser/models"

	"github.com/google/uuid"
)

const DefaultTTL = 30 * 24 * time.Hour

// Store persists sessions in the sessions table.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		ttl: DefaultTTL,
		now: time.Now,
	}
}

func (s *Store) Create(userID int64, email string) (*models.Session, error) {
	now := s.now().UTC()
	session := &models.Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		Email:      email,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
		LastUsedAt: now,
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, user_id, email, expires_at, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, session.ID, session.UserID, session.Email, session.ExpiresAt, session.CreatedAt, session.LastUsedAt)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Get returns nil, nil for unknown or expired sessions.
func (s *Store) Get(sessionID string) (*models.Session, error) {
	var session models.Session
	err := s.db.QueryRow(`
		SELECT id, user_id, email, expires_at, created_at, last_used_at
		FROM sessions WHERE id = ?
	`, sessionID).Scan(
		&session.ID, &session.UserID, &session.Email,
		&session.ExpiresAt, &session.CreatedAt, &session.LastUsedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !s.now().Before(session.ExpiresAt) {
		return nil, nil
	}

	return &session, nil
}

func (s *Store) Touch(sessionID string) error {
	_, err := s.db.Exec(`UPDATE sessions SET last_used_at = ? WHERE id = ?`, s.now().UTC(), sessionID)
	return err
}

func (s *Store) Delete(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

func (s *Store) CleanupExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, s.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanupRoutine removes expired sessions hourly until ctx is done.
func (s *Store) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed, err := s.CleanupExpired()
				if err != nil {
					slog.Error("session cleanup failed", "error", err)
					continue
				}
				if removed > 0 {
					slog.Info("expired sessions removed", "count", removed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
