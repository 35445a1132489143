package repository

import (
	"testing"
	"time"

	"curiousminds/internal/models"
)

func TestResultRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := NewResultRepository(newTestDB(t))

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	results := []models.TestResult{
		{
			ID: "r-1", UserID: "u-1", Level: "novice", TestID: "1",
			Duration: 10, CorrectAnswers: 14, TotalQuestions: 15,
			ScorePercentage: 93.3, TimeTakenSeconds: 412,
			CreatedAt: base,
		},
		{
			ID: "r-2", UserID: "u-1", Level: "stage-7", TestID: "3",
			SpeedGap: "8s", CorrectAnswers: 38, TotalQuestions: 40,
			ScorePercentage: 95, WordScores: []int{1, 1, 0, 1},
			CreatedAt: base.Add(time.Hour),
		},
		{
			ID: "r-3", UserID: "u-2", Level: "novice", TestID: "1",
			CorrectAnswers: 9, TotalQuestions: 15, ScorePercentage: 60,
			CreatedAt: base.Add(2 * time.Hour),
		},
	}
	for i := range results {
		if err := repo.Insert(&results[i]); err != nil {
			t.Fatalf("Insert(%s) unexpected error: %v", results[i].ID, err)
		}
	}

	t.Run("GetByUser newest first", func(t *testing.T) {
		mine, err := repo.GetByUser("u-1")
		if err != nil {
			t.Fatalf("GetByUser() unexpected error: %v", err)
		}
		if len(mine) != 2 {
			t.Fatalf("GetByUser() returned %d results, want 2", len(mine))
		}
		if mine[0].ID != "r-2" || mine[1].ID != "r-1" {
			t.Errorf("GetByUser() order = [%s %s], want newest first", mine[0].ID, mine[1].ID)
		}
	})

	t.Run("word scores round trip", func(t *testing.T) {
		mine, err := repo.GetByUser("u-1")
		if err != nil {
			t.Fatalf("GetByUser() unexpected error: %v", err)
		}
		dictation := mine[0]
		if !dictation.IsDictation() {
			t.Fatal("dictation result lost its word scores")
		}
		want := []int{1, 1, 0, 1}
		for i, score := range dictation.WordScores {
			if score != want[i] {
				t.Errorf("WordScores = %v, want %v", dictation.WordScores, want)
				break
			}
		}

		drill := mine[1]
		if drill.IsDictation() {
			t.Errorf("numeric drill result has word scores: %v", drill.WordScores)
		}
	})

	t.Run("retake appends", func(t *testing.T) {
		retake := models.TestResult{
			ID: "r-4", UserID: "u-2", Level: "novice", TestID: "1",
			CorrectAnswers: 15, TotalQuestions: 15, ScorePercentage: 100,
			CreatedAt: base.Add(3 * time.Hour),
		}
		if err := repo.Insert(&retake); err != nil {
			t.Fatalf("Insert() unexpected error: %v", err)
		}

		theirs, err := repo.GetByUser("u-2")
		if err != nil {
			t.Fatalf("GetByUser() unexpected error: %v", err)
		}
		if len(theirs) != 2 {
			t.Errorf("retake replaced the original result: %d results, want 2", len(theirs))
		}
	})
}
