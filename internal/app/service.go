// Package service runs weekly matching: it reads the pool and history from
// the repository, builds groups and hands each one to the persistence gateway.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/okian/cohort/internal/adapters/repository"
	"github.com/okian/cohort/internal/domain/cohort"
	"github.com/okian/cohort/internal/domain/model"
	"github.com/okian/cohort/internal/domain/recency"
	"github.com/okian/cohort/internal/domain/types"
	"github.com/okian/cohort/internal/domain/welcome"
	"github.com/okian/cohort/pkg/logger"
	"github.com/okian/cohort/pkg/metrics"
)

const defaultRunTimeout = 2 * time.Minute

// ErrRunInProgress is returned when another matching run holds the run lock.
var ErrRunInProgress = types.ErrRunInProgress

// Store is the repository surface a run needs.
type Store interface {
	repository.CandidateSource
	repository.HistorySource
	repository.GroupWriter
	repository.GroupReader
}

// GroupBuilder partitions a pool into groups.
type GroupBuilder interface {
	Build(pool []model.CandidateProfile, excluded model.ExclusionSet) cohort.Result
}

// Service runs matching and serves stored groups.
type Service struct {
	mu sync.RWMutex

	store   Store
	builder GroupBuilder

	cooldownWeeks int
	runTimeout    time.Duration
	newRunID      func() string

	runLock *semaphore.Weighted
	running atomic.Bool

	// Stats
	runs    int
	lastRun *types.RunReport

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the repository used for pools, history and persistence.
func WithStore(store Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithBuilder sets the group builder.
func WithBuilder(b GroupBuilder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithCooldownWeeks sets how many weeks past groups keep their pairs apart.
func WithCooldownWeeks(weeks int) Option {
	return func(s *Service) {
		if weeks > 0 {
			s.cooldownWeeks = weeks
		}
	}
}

// WithRunTimeout bounds a single run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.runTimeout = d
		}
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

// New constructs a Service. Without WithStore it uses an empty in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		cooldownWeeks: recency.DefaultCooldownWeeks,
		runTimeout:    defaultRunTimeout,
		newRunID:      uuid.NewString,
		runLock:       semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.builder == nil {
		s.builder = cohort.NewBuilder()
	}
	return s
}

// RunMatching performs one matching run for the week containing now. Only one
// run executes at a time; a concurrent call fails fast with ErrRunInProgress.
//
// A failure to store one group is logged and counted and does not stop the
// others. An error is returned only when the pool or history cannot be read;
// the report is returned in every case except lock contention.
func (s *Service) RunMatching(ctx context.Context, now time.Time) (*types.RunReport, error) {
	if !s.runLock.TryAcquire(1) {
		metrics.RecordRunLockContended()
		return nil, ErrRunInProgress
	}
	defer s.runLock.Release(1)
	s.running.Store(true)
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := time.Now()
	report := &types.RunReport{
		RunID:     s.newRunID(),
		WeekOf:    model.WeekOf(now),
		StartedAt: now,
		Groups:    []types.GroupReport{},
	}
	log := s.logger
	log.Info(ctx, "matching run started",
		logger.String("run_id", report.RunID),
		logger.String("week_of", report.WeekOf.Format(time.DateOnly)),
	)

	err := s.run(ctx, now, report)
	if err != nil {
		report.Outcome = types.OutcomeFailed
		report.Error = err.Error()
	}

	report.Duration = time.Since(start)
	report.DurationMS = report.Duration.Milliseconds()
	s.record(report)
	metrics.RecordRun(string(report.Outcome), report.Duration)

	fields := []logger.Field{
		logger.String("run_id", report.RunID),
		logger.String("outcome", string(report.Outcome)),
		logger.Int("pool_size", report.PoolSize),
		logger.Int("excluded_pairs", report.ExcludedPairs),
		logger.Int("already_grouped", report.AlreadyGrouped),
		logger.Int("attempted", report.Attempted),
		logger.Int("persisted", report.Persisted),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration),
	}
	if err != nil {
		log.Error(ctx, "matching run failed", append(fields, logger.Error(err))...)
		return report, err
	}
	log.Info(ctx, "matching run finished", fields...)
	return report, nil
}

func (s *Service) run(ctx context.Context, now time.Time, report *types.RunReport) error {
	pool, err := s.store.EligibleCandidates(ctx)
	if err != nil {
		return fmt.Errorf("loading candidate pool: %w", err)
	}
	report.PoolSize = len(pool)
	metrics.UpdatePoolSize(len(pool))

	history, err := s.store.MembershipsSince(ctx, recency.Cutoff(now, s.cooldownWeeks))
	if err != nil {
		return fmt.Errorf("loading membership history: %w", err)
	}
	excluded := recency.ExcludedPairs(history, s.cooldownWeeks, now)
	report.ExcludedPairs = excluded.Len()
	metrics.UpdateExcludedPairs(excluded.Len())

	pool, report.AlreadyGrouped = withoutGroupedThisWeek(pool, history, report.WeekOf)

	res := s.builder.Build(pool, excluded)
	report.PairsScored = res.PairsScored
	report.Discarded = res.Discarded
	metrics.RecordPairsScored(res.PairsScored)
	metrics.RecordGroupsDiscarded(res.Discarded)

	switch {
	case res.InsufficientPool:
		report.Outcome = types.OutcomeInsufficientPool
		return nil
	case len(res.Groups) == 0:
		report.Outcome = types.OutcomeNoViableGroups
		return nil
	}
	report.Outcome = types.OutcomeFormed

	for _, g := range res.Groups {
		metrics.RecordGroupFormed(len(g.Members), g.Score)
		report.Attempted++

		gr := types.GroupReport{ID: g.ID, MemberIDs: g.MemberIDs(), Score: g.Score}
		if err := s.persist(ctx, g, report.WeekOf, now); err != nil {
			report.Failed++
			gr.Error = err.Error()
			metrics.RecordGroupPersistFailed()
			s.logger.Error(ctx, "group not persisted",
				logger.String("run_id", report.RunID),
				logger.String("group_id", g.ID),
				logger.Strings("member_ids", gr.MemberIDs),
				logger.Error(err),
			)
		} else {
			report.Persisted++
			gr.Persisted = true
			metrics.RecordGroupPersisted()
		}
		report.Groups = append(report.Groups, gr)
	}
	return nil
}

// withoutGroupedThisWeek drops members who already belong to a group of week,
// so a second run in the same week never assigns anyone twice.
func withoutGroupedThisWeek(pool []model.CandidateProfile, history []model.Membership, week time.Time) ([]model.CandidateProfile, int) {
	grouped := make(map[string]struct{})
	for _, m := range history {
		if m.WeekOf.Equal(week) {
			grouped[m.MemberID] = struct{}{}
		}
	}
	if len(grouped) == 0 {
		return pool, 0
	}
	out := make([]model.CandidateProfile, 0, len(pool))
	for _, c := range pool {
		if _, ok := grouped[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out, len(pool) - len(out)
}

func (s *Service) persist(ctx context.Context, g model.CandidateGroup, weekOf, now time.Time) error {
	msg, err := welcome.Render(g.Members)
	if err != nil {
		return fmt.Errorf("rendering welcome message: %w", err)
	}
	return s.store.SaveGroup(ctx, model.GroupRecord{
		ID:             g.ID,
		WeekOf:         weekOf,
		Score:          g.Score,
		MemberIDs:      g.MemberIDs(),
		WelcomeMessage: msg,
		CreatedAt:      now,
	})
}

func (s *Service) record(report *types.RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.lastRun = report
}

// GroupsForWeek returns the stored groups of the week containing t.
func (s *Service) GroupsForWeek(ctx context.Context, t time.Time) ([]model.GroupRecord, error) {
	return s.store.GroupsForWeek(ctx, t)
}

// LastRun returns the most recent run report, or nil before the first run.
func (s *Service) LastRun() *types.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"runs":              s.runs,
		"running":           s.running.Load(),
		"cooldownWeeks":     s.cooldownWeeks,
		"runTimeoutSeconds": int(s.runTimeout.Seconds()),
		"lastRunOutcome":    "",
		"lastRunPersisted":  0,
		"lastRunPoolSize":   0,
		"lastRunWeekOf":     "",
		"lastRunDurationMs": int64(0),
	}
	if r := s.lastRun; r != nil {
		stats["lastRunOutcome"] = string(r.Outcome)
		stats["lastRunPersisted"] = r.Persisted
		stats["lastRunPoolSize"] = r.PoolSize
		stats["lastRunWeekOf"] = r.WeekOf.Format(time.DateOnly)
		stats["lastRunDurationMs"] = r.DurationMS
	}
	return stats
}
