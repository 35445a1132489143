package repository

import (
	"fmt"
	"strings"

	"curiousminds/internal/database"
	"curiousminds/internal/models"
)

var wordColumns = []string{"id", "stage", "native_text", "english_gloss", "secondary_gloss"}

// WordRepository handles local-cache storage of the master vocabulary registry
type WordRepository struct {
	db *database.DB
}

// NewWordRepository creates a new master word repository
func NewWordRepository(db *database.DB) *WordRepository {
	return &WordRepository{db: db}
}

// SaveWords upserts a batch of registry words in one transaction
func (r *WordRepository) SaveWords(words []models.MasterWord) error {
	if len(words) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Dialect.UpsertQuery("master_words", wordColumns, "id")
	for _, w := range words {
		if _, err := tx.Exec(query,
			w.ID, strings.ToLower(w.Stage), w.NativeText, w.EnglishGloss, w.SecondaryGloss,
		); err != nil {
			return fmt.Errorf("failed to save word %s: %w", w.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit words: %w", err)
	}
	return nil
}

// GetByStage retrieves a stage's registry words ordered by id. The id order
// fixes block membership for set generation, so it must be stable.
func (r *WordRepository) GetByStage(stage string) ([]models.MasterWord, error) {
	query := `
		SELECT id, stage, native_text, english_gloss, secondary_gloss
		FROM master_words
		WHERE stage = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, strings.ToLower(stage))
	if err != nil {
		return nil, fmt.Errorf("failed to query master words: %w", err)
	}
	defer rows.Close()

	var words []models.MasterWord
	for rows.Next() {
		var w models.MasterWord
		if err := rows.Scan(&w.ID, &w.Stage, &w.NativeText, &w.EnglishGloss, &w.SecondaryGloss); err != nil {
			return nil, fmt.Errorf("failed to scan master word: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read master words: %w", err)
	}

	return words, nil
}

// GetAll retrieves every registry word ordered by id
func (r *WordRepository) GetAll() ([]models.MasterWord, error) {
	query := `
		SELECT id, stage, native_text, english_gloss, secondary_gloss
		FROM master_words
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query master words: %w", err)
	}
	defer rows.Close()

	var words []models.MasterWord
	for rows.Next() {
		var w models.MasterWord
		if err := rows.Scan(&w.ID, &w.Stage, &w.NativeText, &w.EnglishGloss, &w.SecondaryGloss); err != nil {
			return nil, fmt.Errorf("failed to scan master word: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read master words: %w", err)
	}

	return words, nil
}
