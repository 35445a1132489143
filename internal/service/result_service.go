package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"curiousminds/internal/models"
	"curiousminds/internal/remote"
	"curiousminds/internal/repository"
)

// ResultService persists completed attempts. Results are append only and
// local first; the remote copy and the dictation webhook are best effort.
type ResultService struct {
	results    *repository.ResultRepository
	sessions   *repository.SessionRepository
	config     *repository.ConfigRepository
	remote     remote.Store
	webhookURL string
	client     *http.Client
}

// NewResultService creates a result service. webhookURL is the
// environment-configured results endpoint; it takes precedence over the
// endpoint stored in the system config row.
func NewResultService(
	results *repository.ResultRepository,
	sessions *repository.SessionRepository,
	config *repository.ConfigRepository,
	remoteStore remote.Store,
	webhookURL string,
) *ResultService {
	return &ResultService{
		results:    results,
		sessions:   sessions,
		config:     config,
		remote:     remoteStore,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// GetResults returns cached results, scoped to a user when userID is set
func (s *ResultService) GetResults(userID string) ([]models.TestResult, error) {
	if userID == "" {
		return s.results.GetAll()
	}
	return s.results.GetByUser(userID)
}

// SaveResult stores a new attempt locally, then forwards it to the remote
// store and, for dictation results, to the configured results webhook. Only
// the local write can fail the call; both forwards are logged and swallowed.
func (s *ResultService) SaveResult(ctx context.Context, result *models.TestResult) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	if err := s.results.Insert(result); err != nil {
		return err
	}

	if err := s.remote.InsertResult(ctx, result); err != nil {
		log.Printf("Cloud result sync failed: %v", err)
	}

	if result.IsDictation() {
		s.forwardToWebhook(ctx, result)
	}

	return nil
}

// webhookPayload is the flattened record the external results sheet expects
type webhookPayload struct {
	Action     string    `json:"action"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Timestamp  time.Time `json:"timestamp"`
	LevelName  string    `json:"levelName"`
	Stage      string    `json:"stage"`
	Gap        string    `json:"gap"`
	Set        string    `json:"set"`
	Marks      int       `json:"marks"`
	Total      int       `json:"total"`
	WordScores []int     `json:"wordScores"`
}

// forwardToWebhook fires the dictation result at the configured endpoint.
// Failures are logged, never surfaced.
func (s *ResultService) forwardToWebhook(ctx context.Context, result *models.TestResult) {
	url := s.webhookURL
	if url == "" {
		url = s.config.Get().ResultWebhookURL
	}
	if url == "" {
		return
	}

	payload := webhookPayload{
		Action:     "saveResult",
		Code:       "GUEST",
		Name:       "Unknown",
		Timestamp:  result.CreatedAt,
		LevelName:  result.Level,
		Stage:      stageNumber(result.Level),
		Gap:        result.SpeedGap,
		Set:        result.TestID,
		Marks:      result.CorrectAnswers,
		Total:      result.TotalQuestions,
		WordScores: result.WordScores,
	}
	if payload.Gap == "" {
		payload.Gap = "N/A"
	}

	if user := s.activeUser(); user != nil {
		payload.Code = user.Username
		payload.Name = user.FullName
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Results webhook encode failed: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("Results webhook request failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Results webhook failed: %v", err)
		return
	}
	resp.Body.Close()
}

// activeUser decodes the logged-in profile snapshot, nil when none is usable
func (s *ResultService) activeUser() *models.User {
	_, profile, err := s.sessions.Get()
	if err != nil || profile == nil {
		return nil
	}
	user, err := models.DecodeUser(profile)
	if err != nil {
		return nil
	}
	return user
}

// stageNumber extracts the numeric part of a stage grouping key ("stage-7"
// -> "7"), defaulting to "1" for keys without one.
func stageNumber(level string) string {
	parts := strings.SplitN(level, "-", 2)
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return "1"
}
