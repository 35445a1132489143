package models

import "time"

// TestResult is one completed attempt at a question set. Results are append
// only: a retake creates a new result, nothing ever updates an existing one.
type TestResult struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Level            string    `json:"level"`
	TestID           string    `json:"testId"`
	Duration         int       `json:"duration"` // minutes, timed numeric drills
	SpeedGap         string    `json:"speedGap,omitempty"` // inter-word gap, dictation (e.g. "8s")
	CorrectAnswers   int       `json:"correctAnswers"`
	TotalQuestions   int       `json:"totalQuestions"`
	ScorePercentage  float64   `json:"scorePercentage"`
	TimeTakenSeconds int       `json:"timeTakenSeconds"`
	QuestionsJSON    string    `json:"questionsJson"` // per-item responses for later review
	WordScores       []int     `json:"wordScores,omitempty"` // dictation-only 0/1 per word
	CreatedAt        time.Time `json:"timestamp"`
}

// IsDictation reports whether this result came from a dictation session.
// Only dictation results are forwarded to the results webhook.
func (r *TestResult) IsDictation() bool {
	return len(r.WordScores) > 0
}
