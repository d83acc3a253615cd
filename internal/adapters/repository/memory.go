package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/cohort/internal/domain/model"
	"github.com/okian/cohort/pkg/logger"
	"github.com/okian/cohort/pkg/metrics"
)

// MemoryStore is a mutex-guarded, in-memory Store. Members keep insertion
// order so pools are read back in a stable order.
type MemoryStore struct {
	mu       sync.RWMutex
	members  []Member
	index    map[string]int
	groups   []model.GroupRecord
	groupIDs map[string]bool
	saveHook func(model.GroupRecord) error
	log      logger.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		index:    make(map[string]int),
		groupIDs: make(map[string]bool),
		log:      logger.Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// put inserts or replaces m. Callers hold the write lock or own s exclusively.
func (s *MemoryStore) put(m Member) {
	if i, ok := s.index[m.ID]; ok {
		s.members[i] = m
		return
	}
	s.index[m.ID] = len(s.members)
	s.members = append(s.members, m)
}

// AddMember stores m after validating its profile.
func (s *MemoryStore) AddMember(ctx context.Context, m Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateCandidate(m.CandidateProfile); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrMemberExists, m.ID)
	}
	s.put(m)
	return nil
}

// EligibleCandidates returns eligible members that pass validation.
func (s *MemoryStore) EligibleCandidates(ctx context.Context) ([]model.CandidateProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := make([]model.CandidateProfile, 0, len(s.members))
	rejected := 0
	for _, m := range s.members {
		if !m.Eligible() {
			continue
		}
		if err := ValidateCandidate(m.CandidateProfile); err != nil {
			rejected++
			s.log.Warn(ctx, "skipping invalid candidate", logger.String("member_id", m.ID), logger.Error(err))
			continue
		}
		pool = append(pool, cloneProfile(m.CandidateProfile))
	}
	if rejected > 0 {
		metrics.RecordCandidatesRejected(rejected)
	}
	return pool, nil
}

// MembershipsSince returns memberships of stored groups whose week is not before since.
func (s *MemoryStore) MembershipsSince(ctx context.Context, since time.Time) ([]model.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Membership
	for _, g := range s.groups {
		if g.WeekOf.Before(since) {
			continue
		}
		for _, id := range g.MemberIDs {
			out = append(out, model.Membership{GroupID: g.ID, MemberID: id, WeekOf: g.WeekOf})
		}
	}
	return out, nil
}

// SaveGroup stores rec. The save hook runs before anything is written, so a
// hook failure leaves the store untouched.
func (s *MemoryStore) SaveGroup(ctx context.Context, rec model.GroupRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkGroup(rec); err != nil {
		return fmt.Errorf("save group %q: %w", rec.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.groupIDs[rec.ID] {
		return fmt.Errorf("save group %q: %w", rec.ID, ErrGroupExists)
	}
	if s.saveHook != nil {
		if err := s.saveHook(rec); err != nil {
			return fmt.Errorf("save group %q: %w", rec.ID, err)
		}
	}

	rec.WeekOf = model.WeekOf(rec.WeekOf)
	rec.MemberIDs = slices.Clone(rec.MemberIDs)
	s.groups = append(s.groups, rec)
	s.groupIDs[rec.ID] = true
	return nil
}

// GroupsForWeek returns groups stored for the week containing weekOf, in save order.
func (s *MemoryStore) GroupsForWeek(ctx context.Context, weekOf time.Time) ([]model.GroupRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	week := model.WeekOf(weekOf)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.GroupRecord{}
	for _, g := range s.groups {
		if g.WeekOf.Equal(week) {
			g.MemberIDs = slices.Clone(g.MemberIDs)
			out = append(out, g)
		}
	}
	return out, nil
}

func cloneProfile(c model.CandidateProfile) model.CandidateProfile {
	c.Interests = slices.Clone(c.Interests)
	c.Availability = slices.Clone(c.Availability)
	return c
}
