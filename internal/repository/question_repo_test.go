package repository

import (
	"path/filepath"
	"strconv"
	"testing"

	"curiousminds/internal/database"
	"curiousminds/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenLocal(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func sampleQuestions(level string, count int) []models.Question {
	questions := make([]models.Question, 0, count)
	for i := 1; i <= count; i++ {
		questions = append(questions, models.Question{
			ID:          models.QuestionID(level, "1", i, "main"),
			Level:       level,
			TestID:      "1",
			QuestionNum: i,
			Text:        "3 X " + strconv.Itoa(i),
			Answer:      strconv.Itoa(3 * i),
		})
	}
	return questions
}

func TestQuestionRepositoryRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := NewQuestionRepository(newTestDB(t))

	if err := repo.SaveQuestions(sampleQuestions("novice", 9)); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}

	questions, err := repo.GetByLevel("novice")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(questions) != 9 {
		t.Fatalf("GetByLevel() returned %d questions, want 9", len(questions))
	}
	if questions[0].Text != "3 X 1" || questions[0].Answer != "3" {
		t.Errorf("round-trip mangled question: %+v", questions[0])
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if count != 9 {
		t.Errorf("Count() = %d, want 9", count)
	}
}

func TestQuestionRepositoryOverwriteByID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := NewQuestionRepository(newTestDB(t))

	if err := repo.SaveQuestions(sampleQuestions("novice", 5)); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}

	// Same ids, new content: a regeneration must replace, not append
	updated := sampleQuestions("novice", 5)
	for i := range updated {
		updated[i].Answer = "0"
	}
	if err := repo.SaveQuestions(updated); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}

	questions, err := repo.GetByLevel("novice")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("GetByLevel() returned %d questions after overwrite, want 5", len(questions))
	}
	for _, q := range questions {
		if q.Answer != "0" {
			t.Errorf("question %s answer = %q, want overwritten value", q.ID, q.Answer)
		}
	}
}

func TestQuestionRepositoryCaseInsensitiveLevel(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := NewQuestionRepository(newTestDB(t))

	mixed := sampleQuestions("Novice", 3)
	if err := repo.SaveQuestions(mixed); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}

	for _, lookup := range []string{"novice", "NOVICE", "Novice"} {
		questions, err := repo.GetByLevel(lookup)
		if err != nil {
			t.Fatalf("GetByLevel(%q) unexpected error: %v", lookup, err)
		}
		if len(questions) != 3 {
			t.Errorf("GetByLevel(%q) returned %d questions, want 3", lookup, len(questions))
		}
	}
}

func TestQuestionRepositoryUnknownLevel(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := NewQuestionRepository(newTestDB(t))

	questions, err := repo.GetByLevel("expert")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if questions == nil || len(questions) != 0 {
		t.Errorf("GetByLevel(unknown) = %v, want empty slice", questions)
	}
}

func TestQuestionRepositoryDeleteByLevel(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := NewQuestionRepository(newTestDB(t))

	if err := repo.SaveQuestions(sampleQuestions("novice", 4)); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}
	if err := repo.SaveQuestions(sampleQuestions("expert", 6)); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}

	if err := repo.DeleteByLevel("NOVICE"); err != nil {
		t.Fatalf("DeleteByLevel() unexpected error: %v", err)
	}

	novice, err := repo.GetByLevel("novice")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(novice) != 0 {
		t.Errorf("novice still holds %d questions after clear", len(novice))
	}

	expert, err := repo.GetByLevel("expert")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(expert) != 6 {
		t.Errorf("expert holds %d questions, want 6 untouched by the novice clear", len(expert))
	}
}

func TestQuestionRepositoryDurability(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := database.OpenLocal(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	if err := NewQuestionRepository(db).SaveQuestions(sampleQuestions("novice", 7)); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	// Reopen: the cache must survive a full restart
	reopened, err := database.OpenLocal(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen test database: %v", err)
	}
	defer reopened.Close()

	questions, err := NewQuestionRepository(reopened).GetByLevel("novice")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(questions) != 7 {
		t.Errorf("reopened cache holds %d questions, want 7", len(questions))
	}
}
