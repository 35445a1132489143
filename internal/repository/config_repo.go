package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"curiousminds/internal/database"
	"curiousminds/internal/models"
)

// ConfigRepository handles local-cache storage of the SystemConfig singleton
type ConfigRepository struct {
	db *database.DB
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(db *database.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get returns the stored configuration, falling back to defaults when nothing
// has been saved yet or the stored row cannot be decoded.
func (r *ConfigRepository) Get() models.SystemConfig {
	var data string
	err := r.db.QueryRow("SELECT data FROM system_config WHERE id = ?", models.ConfigKey).Scan(&data)
	if err == sql.ErrNoRows {
		return models.DefaultConfig()
	}
	if err != nil {
		log.Printf("Failed to read system config, using defaults: %v", err)
		return models.DefaultConfig()
	}

	cfg := models.DefaultConfig()
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		log.Printf("Corrupt system config, using defaults: %v", err)
		return models.DefaultConfig()
	}
	return cfg
}

// Save stores the configuration
func (r *ConfigRepository) Save(cfg models.SystemConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode system config: %w", err)
	}

	query := r.db.Dialect.UpsertQuery("system_config", []string{"id", "data"}, "id")
	if _, err := r.db.Exec(query, models.ConfigKey, string(data)); err != nil {
		return fmt.Errorf("failed to save system config: %w", err)
	}
	return nil
}
