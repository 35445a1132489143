package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"curiousminds/internal/database"
	"curiousminds/internal/models"
)

var questionColumns = []string{
	"id", "level", "test_id", "question_num", "sub_question",
	"text", "answer", "definition", "context",
}

var wordColumns = []string{"id", "stage", "native_text", "english_gloss", "secondary_gloss"}

var userColumns = []string{
	"id", "username", "full_name", "role", "email", "phone", "password_hash",
	"active", "allowed_modules", "institute", "school", "assigned_teacher_id",
	"teacher_notes", "avatar_url",
}

// SQLStore implements Store against a remote PostgreSQL or MySQL service.
// Every call runs under a deadline so a dead connection can never hang an
// operation indefinitely.
type SQLStore struct {
	db      *database.DB
	timeout time.Duration
}

// NewSQLStore creates a remote store over an open remote connection
func NewSQLStore(db *database.DB, timeout time.Duration) *SQLStore {
	return &SQLStore{db: db, timeout: timeout}
}

func (s *SQLStore) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// SelectQuestionsByLevel reads one page of a level's questions
func (s *SQLStore) SelectQuestionsByLevel(ctx context.Context, level string, offset, limit int) ([]models.Question, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	query := `
		SELECT id, level, test_id, question_num, sub_question, text, answer, definition, context
		FROM questions
		WHERE level = ?
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, strings.ToLower(level), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("remote question select failed: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(
			&q.ID, &q.Level, &q.TestID, &q.QuestionNum, &q.SubQuestion,
			&q.Text, &q.Answer, &q.Definition, &q.Context,
		); err != nil {
			return nil, fmt.Errorf("remote question scan failed: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// UpsertQuestions writes a batch of questions, overwrite by id
func (s *SQLStore) UpsertQuestions(ctx context.Context, questions []models.Question) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	query := s.db.Dialect.UpsertQuery("questions", questionColumns, "id")
	for _, q := range questions {
		if _, err := s.db.ExecContext(ctx, query,
			q.ID, strings.ToLower(q.Level), q.TestID, q.QuestionNum, q.SubQuestion,
			q.Text, q.Answer, q.Definition, q.Context,
		); err != nil {
			return fmt.Errorf("remote question upsert failed: %w", err)
		}
	}
	return nil
}

// DeleteQuestionsByLevel removes every question in a grouping key
func (s *SQLStore) DeleteQuestionsByLevel(ctx context.Context, level string) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM questions WHERE level = ?", strings.ToLower(level)); err != nil {
		return fmt.Errorf("remote level clear failed: %w", err)
	}
	return nil
}

// UpsertMasterWords writes a batch of registry words, overwrite by id
func (s *SQLStore) UpsertMasterWords(ctx context.Context, words []models.MasterWord) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	query := s.db.Dialect.UpsertQuery("master_words", wordColumns, "id")
	for _, w := range words {
		if _, err := s.db.ExecContext(ctx, query,
			w.ID, strings.ToLower(w.Stage), w.NativeText, w.EnglishGloss, w.SecondaryGloss,
		); err != nil {
			return fmt.Errorf("remote word upsert failed: %w", err)
		}
	}
	return nil
}

// FindUser looks a profile up by id or normalized username
func (s *SQLStore) FindUser(ctx context.Context, id, username string) (*models.User, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	query := `
		SELECT id, username, full_name, role, email, phone, password_hash,
		       active, allowed_modules, institute, school, assigned_teacher_id,
		       teacher_notes, avatar_url
		FROM users
		WHERE id = ? OR username = ?
		LIMIT 1
	`
	var user models.User
	var role, modules string
	err := s.db.QueryRowContext(ctx, query, id, models.NormalizeUsername(username)).Scan(
		&user.ID, &user.Username, &user.FullName, &role, &user.Email, &user.Phone,
		&user.PasswordHash, &user.Active, &modules, &user.Institute, &user.School,
		&user.AssignedTeacherID, &user.TeacherNotes, &user.AvatarURL,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("remote user lookup failed: %w", err)
	}

	user.Role = models.UserRole(role)
	user.AllowedModules = []string{}
	if modules != "" {
		if err := json.Unmarshal([]byte(modules), &user.AllowedModules); err != nil {
			return nil, fmt.Errorf("remote user modules decode failed: %w", err)
		}
	}

	return &user, nil
}

// UpsertUser writes a profile, overwrite by id
func (s *SQLStore) UpsertUser(ctx context.Context, user *models.User) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	modules, err := json.Marshal(user.AllowedModules)
	if err != nil {
		return fmt.Errorf("failed to encode modules: %w", err)
	}

	query := s.db.Dialect.UpsertQuery("users", userColumns, "id")
	if _, err := s.db.ExecContext(ctx, query,
		user.ID, models.NormalizeUsername(user.Username), user.FullName, string(user.Role),
		user.Email, user.Phone, user.PasswordHash, user.Active, string(modules),
		user.Institute, user.School, user.AssignedTeacherID, user.TeacherNotes, user.AvatarURL,
	); err != nil {
		return fmt.Errorf("remote user upsert failed: %w", err)
	}
	return nil
}

// DeleteUser removes a profile
func (s *SQLStore) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("remote user delete failed: %w", err)
	}
	return nil
}

// InsertResult appends a test result
func (s *SQLStore) InsertResult(ctx context.Context, result *models.TestResult) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

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
	if _, err := s.db.ExecContext(ctx, query,
		result.ID, result.UserID, result.Level, result.TestID, result.Duration,
		result.SpeedGap, result.CorrectAnswers, result.TotalQuestions,
		result.ScorePercentage, result.TimeTakenSeconds, result.QuestionsJSON,
		string(scores), result.CreatedAt,
	); err != nil {
		return fmt.Errorf("remote result insert failed: %w", err)
	}
	return nil
}

// UpsertConfig replaces the single system_config row
func (s *SQLStore) UpsertConfig(ctx context.Context, cfg models.SystemConfig) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode system config: %w", err)
	}

	query := s.db.Dialect.UpsertQuery("system_config", []string{"id", "data"}, "id")
	if _, err := s.db.ExecContext(ctx, query, models.ConfigKey, string(data)); err != nil {
		return fmt.Errorf("remote config upsert failed: %w", err)
	}
	return nil
}
