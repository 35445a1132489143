package repository

import (
	"database/sql"
	"fmt"

	"curiousminds/internal/database"
)

// activeSessionKey is the single row holding the logged-in profile snapshot
const activeSessionKey = "active"

// SessionRepository stores the active-session snapshot: the signed session
// token plus the serialized profile the identity resolver merges against.
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the stored token and profile snapshot, or ("", nil) when no
// session is active.
func (r *SessionRepository) Get() (string, []byte, error) {
	var token, profile string
	err := r.db.QueryRow("SELECT token, profile FROM sessions WHERE id = ?", activeSessionKey).
		Scan(&token, &profile)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read session: %w", err)
	}
	return token, []byte(profile), nil
}

// Save stores the session token and profile snapshot
func (r *SessionRepository) Save(token string, profile []byte) error {
	query := r.db.Dialect.UpsertQuery("sessions", []string{"id", "token", "profile"}, "id")
	if _, err := r.db.Exec(query, activeSessionKey, token, string(profile)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the active session, forcing a fresh login
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", activeSessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
