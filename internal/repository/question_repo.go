package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"curiousminds/internal/database"
	"curiousminds/internal/models"
)

// questionColumns is the column order used for question upserts
var questionColumns = []string{
	"id", "level", "test_id", "question_num", "sub_question",
	"text", "answer", "definition", "context",
}

// QuestionRepository handles local-cache storage of generated questions
type QuestionRepository struct {
	db *database.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// SaveQuestions upserts a batch of questions in one transaction. Last put wins
// per id, which is what makes regeneration and re-sync idempotent. Readers
// never observe a partial batch.
func (r *QuestionRepository) SaveQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Dialect.UpsertQuery("questions", questionColumns, "id")
	for _, q := range questions {
		if _, err := tx.Exec(query,
			q.ID, strings.ToLower(q.Level), q.TestID, q.QuestionNum, q.SubQuestion,
			q.Text, q.Answer, q.Definition, q.Context,
		); err != nil {
			return fmt.Errorf("failed to save question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit questions: %w", err)
	}
	return nil
}

// GetByLevel retrieves all cached questions for a grouping key. Lookup is
// case-insensitive; an unknown level yields an empty slice, not an error.
func (r *QuestionRepository) GetByLevel(level string) ([]models.Question, error) {
	query := `
		SELECT id, level, test_id, question_num, sub_question, text, answer, definition, context
		FROM questions
		WHERE level = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// GetAll retrieves every cached question
func (r *QuestionRepository) GetAll() ([]models.Question, error) {
	query := `
		SELECT id, level, test_id, question_num, sub_question, text, answer, definition, context
		FROM questions
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// Count returns the number of cached questions
func (r *QuestionRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM questions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// DeleteByLevel removes all cached questions for a grouping key. The store has
// no range delete, so the group is read and each member deleted by primary key
// within one transaction.
func (r *QuestionRepository) DeleteByLevel(level string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT id FROM questions WHERE level = ?", strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("failed to query level %s: %w", level, err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to read level %s: %w", level, err)
	}
	rows.Close()

	for _, id := range ids {
		if _, err := tx.Exec("DELETE FROM questions WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete question %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit level clear: %w", err)
	}
	return nil
}

func scanQuestions(rows *sql.Rows) ([]models.Question, error) {
	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(
			&q.ID, &q.Level, &q.TestID, &q.QuestionNum, &q.SubQuestion,
			&q.Text, &q.Answer, &q.Definition, &q.Context,
		); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	return questions, nil
}
