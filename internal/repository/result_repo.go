package repository

import (
	"encoding/json"
	"fmt"

	"curiousminds/internal/database"
	"curiousminds/internal/models"
)

// ResultRepository handles local-cache storage of test results. The table is
// append only: results are inserted on submission and never updated.
type ResultRepository struct {
	db *database.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Insert stores a new result
func (r *ResultRepository) Insert(result *models.TestResult) error {
	scores, err := json.Marshal(result.WordScores)
	if err != nil {
		return fmt.Errorf("failed to encode word scores: %w", err)
	}

	query := `
		INSERT INTO test_results (
			id, user_id, level, test_id, duration, speed_gap, correct_answers,
			total_questions, score_percentage, time_taken_seconds, questions_json,
			word_scores, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query,
		result.ID, result.UserID, result.Level, result.TestID, result.Duration,
		result.SpeedGap, result.CorrectAnswers, result.TotalQuestions,
		result.ScorePercentage, result.TimeTakenSeconds, result.QuestionsJSON,
		string(scores), result.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert result %s: %w", result.ID, err)
	}
	return nil
}

// GetByUser retrieves a user's results, newest first
func (r *ResultRepository) GetByUser(userID string) ([]models.TestResult, error) {
	return r.query(resultSelect+" WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// GetAll retrieves every cached result, newest first
func (r *ResultRepository) GetAll() ([]models.TestResult, error) {
	return r.query(resultSelect + " ORDER BY created_at DESC")
}

const resultSelect = `
	SELECT id, user_id, level, test_id, duration, speed_gap, correct_answers,
	       total_questions, score_percentage, time_taken_seconds, questions_json,
	       word_scores, created_at
	FROM test_results
`

func (r *ResultRepository) query(query string, args ...interface{}) ([]models.TestResult, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.TestResult
	for rows.Next() {
		var result models.TestResult
		var scores string
		if err := rows.Scan(
			&result.ID, &result.UserID, &result.Level, &result.TestID, &result.Duration,
			&result.SpeedGap, &result.CorrectAnswers, &result.TotalQuestions,
			&result.ScorePercentage, &result.TimeTakenSeconds, &result.QuestionsJSON,
			&scores, &result.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if scores != "" && scores != "null" {
			if err := json.Unmarshal([]byte(scores), &result.WordScores); err != nil {
				return nil, fmt.Errorf("failed to decode word scores: %w", err)
			}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	return results, nil
}
