package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"curiousminds/internal/models"
	"curiousminds/internal/registry"
	"curiousminds/internal/remote"
	"curiousminds/internal/repository"
)

const (
	// remote write batch sizes, matching the remote service's row limits
	questionBatchSize = 1000
	wordBatchSize     = 500
)

// BankService owns the question banks: local-first persistence, level
// clearing, and the two generation modes. Every write lands in the local
// cache synchronously; remote propagation is best effort and never blocks or
// rolls back the local write.
type BankService struct {
	questions *repository.QuestionRepository
	words     *repository.WordRepository
	remote    remote.Store
	registry  *registry.Client
	rng       *rand.Rand
}

// NewBankService creates a bank service. Pass a nil rng for time-seeded
// randomness; tests inject a seeded source.
func NewBankService(
	questions *repository.QuestionRepository,
	words *repository.WordRepository,
	remoteStore remote.Store,
	registryClient *registry.Client,
	rng *rand.Rand,
) *BankService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &BankService{
		questions: questions,
		words:     words,
		remote:    remoteStore,
		registry:  registryClient,
		rng:       rng,
	}
}

// GetQuestions returns the cached questions for a level, or every cached
// question when level is empty.
func (s *BankService) GetQuestions(level string) ([]models.Question, error) {
	if level == "" {
		return s.questions.GetAll()
	}
	return s.questions.GetByLevel(level)
}

// SaveQuestions writes a batch to the local cache first, then forwards it to
// the remote store in pages. A remote failure is logged and swallowed; the
// local write already succeeded and the app stays fully usable offline.
func (s *BankService) SaveQuestions(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	if err := s.questions.SaveQuestions(questions); err != nil {
		return err
	}

	for start := 0; start < len(questions); start += questionBatchSize {
		end := start + questionBatchSize
		if end > len(questions) {
			end = len(questions)
		}
		if err := s.remote.UpsertQuestions(ctx, questions[start:end]); err != nil {
			log.Printf("Cloud question sync failed: %v", err)
			break
		}
	}
	return nil
}

// ClearLevel removes a grouping key's questions locally and remotely. The
// remote half is non-fatal: regeneration re-upserts by id, so a missed remote
// clear self-heals on the next save.
func (s *BankService) ClearLevel(ctx context.Context, level string) error {
	if err := s.questions.DeleteByLevel(level); err != nil {
		return err
	}

	if err := s.remote.DeleteQuestionsByLevel(ctx, level); err != nil {
		log.Printf("Cloud level clear failed for %s: %v", level, err)
	}
	return nil
}

// GenerateMathBank builds numSets numeric-drill sets for a level and replaces
// the level's existing bank. Input validation happens before any write: an
// unusable base list leaves the current bank untouched.
func (s *BankService) GenerateMathBank(ctx context.Context, levelID, baseNumbersCSV string, numSets int) (int, error) {
	level, ok := models.MathLevelByID(levelID)
	if !ok {
		return 0, fmt.Errorf("unknown math level: %s", levelID)
	}

	baseNumbers, err := ParseBaseNumbers(baseNumbersCSV)
	if err != nil {
		return 0, err
	}

	generated, err := BuildMathBank(level.ID, baseNumbers, numSets, level.Advanced(), s.rng)
	if err != nil {
		return 0, err
	}

	if err := s.ClearLevel(ctx, level.ID); err != nil {
		return 0, err
	}
	if err := s.SaveQuestions(ctx, generated); err != nil {
		return 0, err
	}
	return len(generated), nil
}

// GenerateVocabularySets builds the fixed 50 dictation sets for a stage from
// its cached registry words, clearing the stage's old sets first so stale
// sets never linger next to new ones.
func (s *BankService) GenerateVocabularySets(ctx context.Context, stageID string) (int, error) {
	words, err := s.words.GetByStage(stageID)
	if err != nil {
		return 0, err
	}

	generated, err := BuildVocabularySets(stageID, words, s.rng)
	if err != nil {
		return 0, err
	}

	if err := s.ClearLevel(ctx, stageID); err != nil {
		return 0, err
	}
	if err := s.SaveQuestions(ctx, generated); err != nil {
		return 0, err
	}
	return len(generated), nil
}

// SyncStageFromRegistry refreshes one stage's registry words from the
// external content registry, then regenerates that stage's sets. The
// registry fetch is an explicit admin action, so its failure surfaces.
func (s *BankService) SyncStageFromRegistry(ctx context.Context, stageID string) (int, error) {
	words, err := s.registry.FetchStage(ctx, stageID)
	if err != nil {
		return 0, err
	}

	if err := s.saveWords(ctx, words); err != nil {
		return 0, err
	}

	return s.GenerateVocabularySets(ctx, stageID)
}

// SyncMasterRegistry refreshes every stage's registry words. A single failing
// stage is logged and skipped so one bad sheet doesn't block the other
// seventeen; fetching nothing at all is an error.
func (s *BankService) SyncMasterRegistry(ctx context.Context, onProgress func(string)) (int, error) {
	var all []models.MasterWord
	for _, stageID := range models.StageIDs() {
		if onProgress != nil {
			onProgress(fmt.Sprintf("Fetching registry: %s...", stageID))
		}
		words, err := s.registry.FetchStage(ctx, stageID)
		if err != nil {
			log.Printf("Registry sync skipped %s: %v", stageID, err)
			continue
		}
		all = append(all, words...)
	}

	if len(all) == 0 {
		return 0, fmt.Errorf("could not fetch any words from registry")
	}

	if err := s.saveWords(ctx, all); err != nil {
		return 0, err
	}
	return len(all), nil
}

// saveWords persists registry words locally then forwards them remotely in
// pages, best effort.
func (s *BankService) saveWords(ctx context.Context, words []models.MasterWord) error {
	if err := s.words.SaveWords(words); err != nil {
		return err
	}

	for start := 0; start < len(words); start += wordBatchSize {
		end := start + wordBatchSize
		if end > len(words) {
			end = len(words)
		}
		if err := s.remote.UpsertMasterWords(ctx, words[start:end]); err != nil {
			log.Printf("Cloud registry backup failed: %v", err)
			break
		}
	}
	return nil
}
