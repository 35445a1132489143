package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"curiousminds/internal/models"
)

// ErrNoWords is returned when the registry returns an empty word list
var ErrNoWords = errors.New("registry returned no words")

// Client fetches raw vocabulary from the external content registry, a
// deployed web app answering ?action=getQuestions&stage=<n>.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a registry client for the configured endpoint
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// rawWord is the loosely shaped wire record. Current deployments send
// text/definition/context; older ones sent english/secondary.
type rawWord struct {
	Text       string `json:"text"`
	Definition string `json:"definition"`
	Context    string `json:"context"`
	English    string `json:"english"`
	Secondary  string `json:"secondary"`
}

type stagePayload struct {
	Error     string    `json:"error"`
	Questions []rawWord `json:"questions"`
}

// FetchStage downloads one stage's registry words. A non-empty error field in
// the response is a hard failure. Word ids encode the stage plus the 1-based
// ordinal, fixing each word's position for block partitioning.
func (c *Client) FetchStage(ctx context.Context, stageID string) ([]models.MasterWord, error) {
	if c.baseURL == "" {
		return nil, errors.New("registry endpoint not configured")
	}

	stage := strings.ToLower(stageID)
	stageNum := strings.TrimPrefix(stage, "stage-")

	endpoint := fmt.Sprintf("%s?action=getQuestions&stage=%s", c.baseURL, url.QueryEscape(stageNum))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry fetch failed for %s: %w", stage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry fetch failed for %s: status %d", stage, resp.StatusCode)
	}

	var payload stagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode registry response for %s: %w", stage, err)
	}

	if payload.Error != "" {
		return nil, fmt.Errorf("registry error for %s: %s", stage, payload.Error)
	}
	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoWords, stage)
	}

	words := make([]models.MasterWord, 0, len(payload.Questions))
	for i, raw := range payload.Questions {
		words = append(words, normalizeWord(stage, i+1, raw))
	}
	return words, nil
}

// normalizeWord maps a wire record to the canonical registry shape. Field
// precedence: definition over english, context over secondary.
func normalizeWord(stage string, ordinal int, raw rawWord) models.MasterWord {
	english := raw.Definition
	if english == "" {
		english = raw.English
	}
	secondary := raw.Context
	if secondary == "" {
		secondary = raw.Secondary
	}

	return models.MasterWord{
		ID:             models.MasterWordID(stage, ordinal),
		Stage:          stage,
		NativeText:     raw.Text,
		EnglishGloss:   english,
		SecondaryGloss: secondary,
	}
}
