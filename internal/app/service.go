// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/freethrow/internal/adapters/repository"
	"github.com/okian/freethrow/internal/domain/aggregate"
	"github.com/okian/freethrow/internal/domain/deviation"
	"github.com/okian/freethrow/internal/domain/model"
	"github.com/okian/freethrow/pkg/logger"
	"github.com/okian/freethrow/pkg/metrics"
)

// TrialLoader reads the trials of one participant in load order.
type TrialLoader interface {
	LoadParticipant(ctx context.Context, participantID string) ([]model.Trial, error)
}

// Publisher forwards the summaries of a run to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, participantID string, summaries []model.TrialSummary, groups model.Groups) error
}

// Service runs analyses over a participant's trials and serves their results.
type Service struct {
	mu sync.RWMutex
	// analyzeMu serializes Analyze; trials are processed one after another.
	analyzeMu sync.Mutex

	// Core components
	loader    TrialLoader
	store     repository.Store
	publisher Publisher

	// Configuration
	participantID string
	spread        aggregate.Spread

	// State
	started bool
	frames  map[string]deviation.TrialAnalysis
	lastRun repository.Run
	runs    int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets the trial source.
func WithLoader(l TrialLoader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithStore sets the summary store. Defaults to an in-memory store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithPublisher enables publishing of every completed run.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithParticipant sets the participant analyzed by Analyze.
func WithParticipant(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.participantID = id
		}
	}
}

// WithSpread sets the standard deviation convention of the summaries.
func WithSpread(sp aggregate.Spread) Option {
	return func(s *Service) {
		s.spread = sp
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		participantID: "P0001",
		spread:        aggregate.SampleStdDev,
		frames:        make(map[string]deviation.TrialAnalysis),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the service for use.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using memory store")
	}

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.String("participant", s.participantID),
		logger.String("spread", s.spread.String()),
		logger.Bool("publish", s.publisher != nil),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "analysis service stopped")
}

// Analyze loads every trial of the configured participant, computes per-frame
// deviations, summarizes each trial and stores the run. A publish failure is
// logged and does not fail the run.
func (s *Service) Analyze(ctx context.Context) (repository.Run, error) {
	s.analyzeMu.Lock()
	defer s.analyzeMu.Unlock()

	start := time.Now()
	run, frames, err := s.analyze(ctx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordAnalysisRun("error", elapsed)
		metrics.RecordErrorByComponent("service", "analyze")
		return repository.Run{}, err
	}
	metrics.RecordAnalysisRun("ok", elapsed)

	s.mu.Lock()
	s.frames = frames
	s.lastRun = run
	s.runs++
	s.mu.Unlock()

	groups := aggregate.Partition(run.Summaries)
	for outcome, n := range aggregate.Distribution(run.Summaries) {
		metrics.UpdateTrialsByOutcome(string(outcome), n)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, run.ParticipantID, run.Summaries, groups); err != nil {
			metrics.RecordErrorByComponent("publish", "publish")
			s.logger.Error(ctx, "publishing run", logger.String("run_id", run.ID.String()), logger.Error(err))
		}
	}

	s.logger.Info(ctx, "analysis complete",
		logger.String("run_id", run.ID.String()),
		logger.String("participant", run.ParticipantID),
		logger.Int("trials", len(run.Summaries)),
		logger.Int("made", len(groups.Made)),
		logger.Int("missed", len(groups.Missed)),
		logger.Duration("took", time.Since(start)),
	)
	return run, nil
}

func (s *Service) analyze(ctx context.Context) (repository.Run, map[string]deviation.TrialAnalysis, error) {
	s.mu.RLock()
	started, loader, store := s.started, s.loader, s.store
	s.mu.RUnlock()

	if !started {
		return repository.Run{}, nil, ErrNotStarted
	}
	if loader == nil {
		return repository.Run{}, nil, ErrNoLoader
	}

	trials, err := loader.LoadParticipant(ctx, s.participantID)
	if err != nil {
		return repository.Run{}, nil, fmt.Errorf("load participant %s: %w", s.participantID, err)
	}

	run := repository.Run{
		ID:            uuid.New(),
		ParticipantID: s.participantID,
		Spread:        s.spread.String(),
		CreatedAt:     time.Now().UTC(),
		Summaries:     make([]model.TrialSummary, 0, len(trials)),
	}
	frames := make(map[string]deviation.TrialAnalysis, len(trials))

	for i := range trials {
		if err := ctx.Err(); err != nil {
			return repository.Run{}, nil, err
		}
		if err := trials[i].Validate(); err != nil {
			return repository.Run{}, nil, fmt.Errorf("trial %d: %w", i+1, err)
		}
		if _, dup := frames[trials[i].TrialID]; dup {
			return repository.Run{}, nil, fmt.Errorf("trial %d: %w: %s", i+1, model.ErrDuplicateTrial, trials[i].TrialID)
		}
		ta := deviation.AnalyzeTrial(&trials[i])
		metrics.RecordFramesAnalyzed(len(ta.Frames))
		for _, j := range model.Joints() {
			if n := ta.MissingSamples(j); n > 0 {
				metrics.RecordMissingSamples(string(j), n)
			}
		}
		frames[ta.TrialID] = ta
		run.Summaries = append(run.Summaries, aggregate.SummarizeTrial(i+1, &ta, s.spread))
	}

	if err := store.Save(ctx, run); err != nil {
		return repository.Run{}, nil, fmt.Errorf("save run: %w", err)
	}
	return run, frames, nil
}

// Trials returns the trial summaries of the latest run.
func (s *Service) Trials(ctx context.Context) ([]model.TrialSummary, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}
	return store.Trials(ctx)
}

// Trial returns one trial summary of the latest run.
func (s *Service) Trial(ctx context.Context, trialID string) (model.TrialSummary, error) {
	store, err := s.readStore()
	if err != nil {
		return model.TrialSummary{}, err
	}
	return store.Trial(ctx, trialID)
}

// Frames returns the per-frame analysis of a trial from the latest run in
// this process.
func (s *Service) Frames(_ context.Context, trialID string) ([]deviation.FrameAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ta, ok := s.frames[trialID]
	if !ok {
		return nil, fmt.Errorf("%w: trial %s", repository.ErrNotFound, trialID)
	}
	return ta.Frames, nil
}

// Groups partitions the latest run's summaries into made and missed.
func (s *Service) Groups(ctx context.Context) (model.Groups, error) {
	trials, err := s.Trials(ctx)
	if err != nil {
		return model.Groups{}, err
	}
	return aggregate.Partition(trials), nil
}

// Profile summarizes the per-trial deviation spreads of each outcome group
// using the spread convention the latest run was stored with.
func (s *Service) Profile(ctx context.Context) (map[model.Outcome]map[model.Joint]model.Summary, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}
	run, err := store.Latest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return aggregate.Profile(model.Groups{}, s.spread), nil
	}
	if err != nil {
		return nil, err
	}
	conv, err := aggregate.ParseSpread(run.Spread)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return aggregate.Profile(aggregate.Partition(run.Summaries), conv), nil
}

// Distribution counts the latest run's trials per outcome.
func (s *Service) Distribution(ctx context.Context) (map[model.Outcome]int, error) {
	trials, err := s.Trials(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.Distribution(trials), nil
}

func (s *Service) readStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(goroutines)

	stats := map[string]interface{}{
		"started":     s.started,
		"participant": s.participantID,
		"spread":      s.spread.String(),
		"publishing":  s.publisher != nil,
		"runs":        s.runs,
		"goroutines":  goroutines,
	}

	if s.runs > 0 {
		stats["lastRunId"] = s.lastRun.ID.String()
		stats["lastRunAt"] = s.lastRun.CreatedAt.Format(time.RFC3339)
		stats["trials"] = len(s.lastRun.Summaries)
	}
	if s.started {
		if n, err := s.store.Count(context.Background()); err == nil {
			stats["storedTrials"] = n
		} else if !errors.Is(err, repository.ErrNotFound) {
			stats["storeError"] = err.Error()
		}
	}
	return stats
}
