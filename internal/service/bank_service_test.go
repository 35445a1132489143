package service

import (
	"context"
	"errors"
	"testing"

	"curiousminds/internal/remote"
	"curiousminds/internal/repository"
)

func newBankService(t *testing.T) (*BankService, *repository.QuestionRepository, *repository.WordRepository) {
	t.Helper()
	db := newTestDB(t)
	questionRepo := repository.NewQuestionRepository(db)
	wordRepo := repository.NewWordRepository(db)
	svc := NewBankService(questionRepo, wordRepo, remote.Disabled{}, nil, testRng())
	return svc, questionRepo, wordRepo
}

func TestGenerateMathBank(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, questionRepo, _ := newBankService(t)

	count, err := svc.GenerateMathBank(context.Background(), "novice", "1, 10, 100", 2)
	if err != nil {
		t.Fatalf("GenerateMathBank() unexpected error: %v", err)
	}
	if count != 18 {
		t.Errorf("GenerateMathBank() = %d questions, want 18", count)
	}

	cached, err := questionRepo.GetByLevel("novice")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(cached) != 18 {
		t.Errorf("cache holds %d novice questions, want 18", len(cached))
	}
}

func TestGenerateMathBankReplacesOldBank(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, questionRepo, _ := newBankService(t)
	ctx := context.Background()

	if _, err := svc.GenerateMathBank(ctx, "novice", "2,5", 3); err != nil {
		t.Fatalf("GenerateMathBank() unexpected error: %v", err)
	}
	// Smaller regeneration: the old, larger bank must be fully cleared first
	if _, err := svc.GenerateMathBank(ctx, "novice", "2", 1); err != nil {
		t.Fatalf("GenerateMathBank() unexpected error: %v", err)
	}

	count, err := questionRepo.Count()
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("cache holds %d questions after regeneration, want 3", count)
	}
}

func TestGenerateMathBankValidatesBeforeClearing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, questionRepo, _ := newBankService(t)
	ctx := context.Background()

	if _, err := svc.GenerateMathBank(ctx, "novice", "2,5", 1); err != nil {
		t.Fatalf("GenerateMathBank() unexpected error: %v", err)
	}

	if _, err := svc.GenerateMathBank(ctx, "novice", "not,numbers", 1); !errors.Is(err, ErrNoBaseNumbers) {
		t.Fatalf("GenerateMathBank(bad bases) error = %v, want ErrNoBaseNumbers", err)
	}
	if _, err := svc.GenerateMathBank(ctx, "no-such-level", "2,5", 1); err == nil {
		t.Fatal("GenerateMathBank(unknown level) should fail")
	}

	// Failed validation must leave the existing bank untouched
	cached, err := questionRepo.GetByLevel("novice")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(cached) != 6 {
		t.Errorf("cache holds %d questions after rejected input, want 6 untouched", len(cached))
	}
}

func TestGenerateVocabularySets(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, questionRepo, wordRepo := newBankService(t)
	ctx := context.Background()

	if err := wordRepo.SaveWords(registryWords("stage-3", 10)); err != nil {
		t.Fatalf("SaveWords() unexpected error: %v", err)
	}

	count, err := svc.GenerateVocabularySets(ctx, "stage-3")
	if err != nil {
		t.Fatalf("GenerateVocabularySets() unexpected error: %v", err)
	}
	// 10 words fill two blocks per set
	if count != VocabularySets*2 {
		t.Errorf("GenerateVocabularySets() = %d questions, want %d", count, VocabularySets*2)
	}

	cached, err := questionRepo.GetByLevel("stage-3")
	if err != nil {
		t.Fatalf("GetByLevel() unexpected error: %v", err)
	}
	if len(cached) != count {
		t.Errorf("cache holds %d stage-3 questions, want %d", len(cached), count)
	}

	// No cached words for the stage: rejected before any write
	if _, err := svc.GenerateVocabularySets(ctx, "stage-9"); !errors.Is(err, ErrEmptyRegistry) {
		t.Errorf("GenerateVocabularySets(empty stage) error = %v, want ErrEmptyRegistry", err)
	}
}

func TestGetQuestions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, questionRepo, _ := newBankService(t)

	bank, err := BuildMathBank("novice", []int{2}, 1, false, testRng())
	if err != nil {
		t.Fatalf("BuildMathBank() unexpected error: %v", err)
	}
	if err := questionRepo.SaveQuestions(bank); err != nil {
		t.Fatalf("SaveQuestions() unexpected error: %v", err)
	}

	scoped, err := svc.GetQuestions("novice")
	if err != nil {
		t.Fatalf("GetQuestions() unexpected error: %v", err)
	}
	if len(scoped) != 3 {
		t.Errorf("GetQuestions(novice) = %d questions, want 3", len(scoped))
	}

	all, err := svc.GetQuestions("")
	if err != nil {
		t.Fatalf("GetQuestions() unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("GetQuestions(all) = %d questions, want 3", len(all))
	}
}
