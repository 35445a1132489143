package repository

import (
	"database/sql"
	"fmt"
	"time"

	"curiousminds/internal/database"
)

// LastPullSyncKey tracks when the last clean pull-sync completed
const LastPullSyncKey = "last_pull_sync"

// MetaRepository stores reconciliation bookkeeping in the sync_meta table
type MetaRepository struct {
	db *database.DB
}

// NewMetaRepository creates a new meta repository
func NewMetaRepository(db *database.DB) *MetaRepository {
	return &MetaRepository{db: db}
}

// GetTime reads a timestamp value; ok is false when the key has never been set
func (r *MetaRepository) GetTime(key string) (time.Time, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM sync_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read sync meta %s: %w", key, err)
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse sync meta %s: %w", key, err)
	}
	return t, true, nil
}

// SetTime writes a timestamp value
func (r *MetaRepository) SetTime(key string, t time.Time) error {
	query := r.db.Dialect.UpsertQuery("sync_meta", []string{"key", "value"}, "key")
	if _, err := r.db.Exec(query, key, t.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to write sync meta %s: %w", key, err)
	}
	return nil
}
