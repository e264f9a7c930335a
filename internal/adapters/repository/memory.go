package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/freethrow/internal/domain/model"
	"github.com/okian/freethrow/pkg/metrics"
)

// MemoryStore keeps the latest run in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	latest *Run
	index  map[string]int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	summaries := make([]model.TrialSummary, len(run.Summaries))
	copy(summaries, run.Summaries)
	run.Summaries = summaries

	index := make(map[string]int, len(summaries))
	for i := range summaries {
		index[summaries[i].TrialID] = i
	}

	s.mu.Lock()
	s.latest = &run
	s.index = index
	s.mu.Unlock()

	metrics.RecordStoreSave(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

func (s *MemoryStore) Latest(_ context.Context) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Run{}, fmt.Errorf("%w: no run saved", ErrNotFound)
	}
	return *s.latest, nil
}

func (s *MemoryStore) Trials(_ context.Context) ([]model.TrialSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, nil
	}
	out := make([]model.TrialSummary, len(s.latest.Summaries))
	copy(out, s.latest.Summaries)
	return out, nil
}

func (s *MemoryStore) Trial(_ context.Context, trialID string) (model.TrialSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest != nil {
		if i, ok := s.index[trialID]; ok {
			return s.latest.Summaries[i], nil
		}
	}
	return model.TrialSummary{}, fmt.Errorf("%w: trial %s", ErrNotFound, trialID)
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return 0, nil
	}
	return len(s.latest.Summaries), nil
}

func (s *MemoryStore) Close() error { return nil }
