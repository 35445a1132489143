package service

import (
	"bytes"
	"testing"

	"curiousminds/internal/models"
	"curiousminds/internal/repository"
)

func newBackupService(t *testing.T) (*BackupService, *repository.QuestionRepository, *repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	questionRepo := repository.NewQuestionRepository(db)
	wordRepo := repository.NewWordRepository(db)
	userRepo := repository.NewUserRepository(db)
	resultRepo := repository.NewResultRepository(db)
	configRepo := repository.NewConfigRepository(db)
	svc := NewBackupService(questionRepo, wordRepo, userRepo, resultRepo, configRepo)
	return svc, questionRepo, userRepo
}

func TestBackupRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	source, questionRepo, userRepo := newBackupService(t)

	bank, err := BuildMathBank("novice", []int{2, 5}, 2, false, testRng())
	if err != nil {
		t.Fatalf("BuildMathBank() unexpected error: %v", err)
	}
	if err := questionRepo.SaveQuestions(bank); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}
	if err := userRepo.Save(&models.User{
		ID: "u-1", Username: "ANAYA", FullName: "Anaya",
		Role: models.RoleStudent, Active: true,
		AllowedModules: []string{"math"},
	}); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := source.ExportToWriter(&buf); err != nil {
		t.Fatalf("ExportToWriter() unexpected error: %v", err)
	}

	// Restore into a second, empty cache
	target, targetQuestions, targetUsers := newBackupService(t)
	if err := target.ImportFromReader(&buf); err != nil {
		t.Fatalf("ImportFromReader() unexpected error: %v", err)
	}

	questions, err := targetQuestions.GetByLevel("novice")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(questions) != len(bank) {
		t.Errorf("restored %d questions, want %d", len(questions), len(bank))
	}

	user, err := targetUsers.GetByID("u-1")
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if user == nil || user.Username != "ANAYA" {
		t.Fatalf("restored user = %+v, want ANAYA", user)
	}
	if len(user.AllowedModules) != 1 || user.AllowedModules[0] != "math" {
		t.Errorf("restored entitlements = %v, want [math]", user.AllowedModules)
	}
}

func TestImportRejectsMalformedBackup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, _, _ := newBackupService(t)
	if err := svc.ImportFromReader(bytes.NewReader([]byte("{not json"))); err == nil {
		t.Error("ImportFromReader() should reject a malformed document")
	}
}
