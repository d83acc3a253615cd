// Package repository defines the candidate repository and persistence gateway
// used by matching runs, plus an in-memory implementation.
package repository

import (
	"context"
	"time"

	"github.com/okian/cohort/internal/domain/model"
)

// Member is a stored profile together with the account flags that decide
// whether it may enter a matching pool.
type Member struct {
	model.CandidateProfile
	Verified            bool `json:"verified"`
	Subscribed          bool `json:"subscribed"`
	OnboardingCompleted bool `json:"onboarding_completed"`
}

// Eligible reports whether the account flags admit the member to a pool.
func (m Member) Eligible() bool {
	return m.Verified && m.Subscribed && m.OnboardingCompleted
}

// CandidateSource supplies the eligible pool of one run.
type CandidateSource interface {
	// EligibleCandidates returns eligible, valid profiles in a stable order.
	EligibleCandidates(ctx context.Context) ([]model.CandidateProfile, error)
}

// HistorySource supplies past group memberships.
type HistorySource interface {
	// MembershipsSince returns memberships of groups whose week is on or after since.
	MembershipsSince(ctx context.Context, since time.Time) ([]model.Membership, error)
}

// GroupWriter stores a formed group.
type GroupWriter interface {
	// SaveGroup stores the group, one membership per member and the welcome
	// message as a single unit. On error nothing is stored.
	SaveGroup(ctx context.Context, rec model.GroupRecord) error
}

// GroupReader lists stored groups.
type GroupReader interface {
	// GroupsForWeek returns the groups whose week reference equals WeekOf(weekOf).
	GroupsForWeek(ctx context.Context, weekOf time.Time) ([]model.GroupRecord, error)
}

// MemberWriter adds members to the repository.
type MemberWriter interface {
	AddMember(ctx context.Context, m Member) error
}

// Store is the full repository surface used by the service and the CLI.
type Store interface {
	CandidateSource
	HistorySource
	GroupWriter
	GroupReader
	MemberWriter
}

// checkGroup validates a record before it is written.
func checkGroup(rec model.GroupRecord) error {
	if rec.ID == "" {
		return ErrInvalidGroup
	}
	if len(rec.MemberIDs) < 2 {
		return ErrInvalidGroup
	}
	seen := make(map[string]bool, len(rec.MemberIDs))
	for _, id := range rec.MemberIDs {
		if id == "" || seen[id] {
			return ErrInvalidGroup
		}
		seen[id] = true
	}
	return nil
}
