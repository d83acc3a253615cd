// Package types contains common types used across the application
package types

import (
	"errors"
	"time"
)

// ErrRunInProgress is returned when another matching run holds the run lock.
var ErrRunInProgress = errors.New("matching run already in progress")

// Outcome classifies a finished matching run.
type Outcome string

// Run outcomes. OutcomeFailed marks an infrastructure failure; the others are results.
const (
	OutcomeFormed           Outcome = "formed"
	OutcomeInsufficientPool Outcome = "insufficient_pool"
	OutcomeNoViableGroups   Outcome = "no_viable_groups"
	OutcomeFailed           Outcome = "failed"
)

// GroupReport describes one group of a run and whether it was stored
type GroupReport struct {
	ID        string   `json:"id"`
	MemberIDs []string `json:"member_ids"`
	Score     float64  `json:"score"`
	Persisted bool     `json:"persisted"`
	Error     string   `json:"error,omitempty"`
}

// RunReport summarises one matching run. AlreadyGrouped counts pool members
// left out because they already have a group in the run's week.
type RunReport struct {
	RunID          string        `json:"run_id"`
	WeekOf         time.Time     `json:"week_of"`
	StartedAt      time.Time     `json:"started_at"`
	PoolSize       int           `json:"pool_size"`
	ExcludedPairs  int           `json:"excluded_pairs"`
	AlreadyGrouped int           `json:"already_grouped"`
	PairsScored    int           `json:"pairs_scored"`
	Discarded      int           `json:"discarded"`
	Attempted      int           `json:"attempted"`
	Persisted      int           `json:"persisted"`
	Failed         int           `json:"failed"`
	Outcome        Outcome       `json:"outcome"`
	Groups         []GroupReport `json:"groups"`
	Duration       time.Duration `json:"-"`
	DurationMS     int64         `json:"duration_ms"`
	Error          string        `json:"error,omitempty"`
}

// Partial reports whether some but not all groups of the run were stored.
func (r *RunReport) Partial() bool {
	return r.Failed > 0 && r.Persisted > 0
}
