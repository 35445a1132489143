package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"curiousminds/internal/models"
	"curiousminds/internal/remote"
	"curiousminds/internal/repository"
)

// SyncState is the reconciliation engine's cycle state
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncPulling
	SyncMerging
)

func (s SyncState) String() string {
	switch s {
	case SyncPulling:
		return "pulling"
	case SyncMerging:
		return "merging"
	default:
		return "idle"
	}
}

// pullPageSize is the fixed remote page size for pull-sync
const pullPageSize = 1000

// SyncService is the reconciliation engine. At most one pull cycle runs at a
// time; a refresh request arriving mid-cycle is dropped, not queued, so
// callers must not assume a later retry. Writes are not guarded by the cycle
// lock: a write landing during a pull wins at the storage layer (last put by
// id).
type SyncService struct {
	questions *repository.QuestionRepository
	meta      *repository.MetaRepository
	remote    remote.Store

	freshness     time.Duration
	minLocalCount int

	mu    sync.Mutex
	state SyncState
}

// NewSyncService creates the reconciliation engine
func NewSyncService(
	questions *repository.QuestionRepository,
	meta *repository.MetaRepository,
	remoteStore remote.Store,
	freshness time.Duration,
	minLocalCount int,
) *SyncService {
	return &SyncService{
		questions:     questions,
		meta:          meta,
		remote:        remoteStore,
		freshness:     freshness,
		minLocalCount: minLocalCount,
	}
}

// State reports the current cycle state
func (s *SyncService) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// tryAcquire atomically moves idle -> pulling; false means a cycle is running
func (s *SyncService) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SyncIdle {
		return false
	}
	s.state = SyncPulling
	return true
}

func (s *SyncService) setState(state SyncState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Refresh runs a pull-sync across all grouping keys. It returns
// proceeded=false without error when another cycle is already running or the
// cache is still fresh; pass force to bypass the freshness check. Page
// failures are isolated per grouping key: remaining keys still pull, the
// errors are joined, and the last-sync stamp is only written after a clean
// pass so the next refresh retries.
func (s *SyncService) Refresh(ctx context.Context, force bool) (bool, error) {
	if !s.tryAcquire() {
		return false, nil
	}
	defer s.setState(SyncIdle)

	if !force && s.isFresh() {
		return false, nil
	}

	var errs []error
	for _, level := range models.AllLevelIDs() {
		if err := s.pullLevel(ctx, level); err != nil {
			log.Printf("Pull sync failed for %s, local cache stays authoritative: %v", level, err)
			errs = append(errs, fmt.Errorf("%s: %w", level, err))
		}
	}

	if len(errs) > 0 {
		return true, errors.Join(errs...)
	}

	if err := s.meta.SetTime(repository.LastPullSyncKey, time.Now()); err != nil {
		return true, err
	}
	return true, nil
}

// Bootstrap forces a pull when the local cache is completely empty, e.g. on a
// first run after install. A remote failure here is non-fatal: the app starts
// with an empty cache.
func (s *SyncService) Bootstrap(ctx context.Context) {
	count, err := s.questions.Count()
	if err != nil {
		log.Printf("Failed to inspect local cache: %v", err)
		return
	}
	if count > 0 {
		return
	}
	if _, err := s.Refresh(ctx, true); err != nil {
		log.Printf("Initial sync incomplete, continuing with local cache: %v", err)
	}
}

// isFresh reports whether the last clean pull completed inside the freshness
// window AND the cache holds more than the minimum item count. The count
// guard prevents skipping on a still-empty cache.
func (s *SyncService) isFresh() bool {
	last, ok, err := s.meta.GetTime(repository.LastPullSyncKey)
	if err != nil {
		log.Printf("Failed to read last sync time: %v", err)
		return false
	}
	if !ok || time.Since(last) >= s.freshness {
		return false
	}

	count, err := s.questions.Count()
	if err != nil {
		log.Printf("Failed to count local cache: %v", err)
		return false
	}
	return count > s.minLocalCount
}

// pullLevel pages through one grouping key on the remote and merges the
// accumulated rows into the local cache. Overwrite-by-id handles staleness:
// a re-pull can never grow the cache beyond the remote's true count.
func (s *SyncService) pullLevel(ctx context.Context, level string) error {
	s.setState(SyncPulling)

	var accumulated []models.Question
	offset := 0
	for {
		page, err := s.remote.SelectQuestionsByLevel(ctx, level, offset, pullPageSize)
		if err != nil {
			return err
		}
		accumulated = append(accumulated, page...)
		if len(page) < pullPageSize {
			break
		}
		offset += pullPageSize
	}

	if len(accumulated) == 0 {
		return nil
	}

	s.setState(SyncMerging)
	defer s.setState(SyncPulling)
	return s.questions.SaveQuestions(accumulated)
}
