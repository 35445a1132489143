package remote

import (
	"context"
	"errors"

	"curiousminds/internal/models"
)

// Store is the contract the reconciliation engine holds against the remote
// relational service. Any call may fail due to connectivity; callers decide
// per write path whether a failure is logged and swallowed (offline-first
// default) or surfaced (explicit admin cloud actions).
type Store interface {
	// SelectQuestionsByLevel reads one page of a level's questions,
	// rows [offset, offset+limit).
	SelectQuestionsByLevel(ctx context.Context, level string, offset, limit int) ([]models.Question, error)

	// UpsertQuestions writes a batch of questions, overwrite by id
	UpsertQuestions(ctx context.Context, questions []models.Question) error

	// DeleteQuestionsByLevel removes every question in a grouping key
	DeleteQuestionsByLevel(ctx context.Context, level string) error

	// UpsertMasterWords writes a batch of registry words, overwrite by id
	UpsertMasterWords(ctx context.Context, words []models.MasterWord) error

	// FindUser looks a profile up by storage id OR normalized username;
	// either match is accepted. Returns nil when no row matches.
	FindUser(ctx context.Context, id, username string) (*models.User, error)

	// UpsertUser writes a profile, overwrite by id
	UpsertUser(ctx context.Context, user *models.User) error

	// DeleteUser removes a profile
	DeleteUser(ctx context.Context, id string) error

	// InsertResult appends a test result
	InsertResult(ctx context.Context, result *models.TestResult) error

	// UpsertConfig replaces the single system_config row
	UpsertConfig(ctx context.Context, cfg models.SystemConfig) error
}

// ErrDisabled is returned by every call when no remote store is configured
var ErrDisabled = errors.New("remote store not configured")

// Disabled is the Store used when the deployment has no remote database.
// Every call fails with ErrDisabled, which the offline-first write paths
// already log and swallow.
type Disabled struct{}

func (Disabled) SelectQuestionsByLevel(context.Context, string, int, int) ([]models.Question, error) {
	return nil, ErrDisabled
}

func (Disabled) UpsertQuestions(context.Context, []models.Question) error { return ErrDisabled }

func (Disabled) DeleteQuestionsByLevel(context.Context, string) error { return ErrDisabled }

func (Disabled) UpsertMasterWords(context.Context, []models.MasterWord) error { return ErrDisabled }

func (Disabled) FindUser(context.Context, string, string) (*models.User, error) {
	return nil, ErrDisabled
}

func (Disabled) UpsertUser(context.Context, *models.User) error { return ErrDisabled }

func (Disabled) DeleteUser(context.Context, string) error { return ErrDisabled }

func (Disabled) InsertResult(context.Context, *models.TestResult) error { return ErrDisabled }

func (Disabled) UpsertConfig(context.Context, models.SystemConfig) error { return ErrDisabled }
