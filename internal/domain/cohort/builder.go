package cohort

import (
	"sort"

	"github.com/google/uuid"

	"github.com/okian/cohort/internal/domain/constraints"
	"github.com/okian/cohort/internal/domain/model"
	"github.com/okian/cohort/internal/domain/scoring"
)

// Default run parameters.
const (
	DefaultMinGroupScore = 0.55
	minPoolSize          = 3
	minTargetSize        = 3
)

// DefaultTargetSizes returns the sizes used when none are configured.
func DefaultTargetSizes() []int { return []int{3, 4} }

// Scorer computes pair and group quality.
type Scorer interface {
	Score(a, b model.CandidateProfile) model.PairScore
	GroupScore(members []model.CandidateProfile) float64
}

// Checker decides whether a set of members may form a group.
type Checker interface {
	Satisfies(members []model.CandidateProfile) bool
}

// Result is the output of one Build call.
type Result struct {
	Groups []model.CandidateGroup
	// InsufficientPool is set when the pool had fewer than three candidates.
	InsufficientPool bool
	PairsScored      int
	SeedsTried       int
	Discarded        int
}

// Builder runs the greedy pair-seeded grouping. A Builder holds only
// configuration; each Build call owns its own assignment state.
type Builder struct {
	scorer        Scorer
	checker       Checker
	minGroupScore float64
	sizes         []int
	allowPairOnly bool
	newID         func() string
}

// NewBuilder creates a builder with default scoring, constraints and run parameters.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		scorer:        scoring.NewScorer(),
		checker:       constraints.NewChecker(),
		minGroupScore: DefaultMinGroupScore,
		sizes:         DefaultTargetSizes(),
		newID:         func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build partitions pool into disjoint groups. Pairs in excluded are never
// placed in the same group. The result is deterministic for a given pool order.
//
// A seeded group that ends below the quality bar or fails constraints is
// discarded and its members stay unassigned, so later seeds may use them.
func (b *Builder) Build(pool []model.CandidateProfile, excluded model.ExclusionSet) Result {
	pool = uniqueByID(pool)
	if len(pool) < minPoolSize {
		return Result{InsufficientPool: true}
	}

	pairs := b.rankedPairs(pool, excluded)
	res := Result{PairsScored: len(pairs)}

	byID := make(map[string]model.CandidateProfile, len(pool))
	for _, c := range pool {
		byID[c.ID] = c
	}
	assigned := make(map[string]bool, len(pool))

	for _, p := range pairs {
		if assigned[p.Pair.A] || assigned[p.Pair.B] {
			continue
		}
		res.SeedsTried++

		seed := []model.CandidateProfile{byID[p.Pair.A], byID[p.Pair.B]}
		members, ok := b.grow(seed, pool, assigned, excluded)
		if !ok {
			res.Discarded++
			continue
		}

		for _, m := range members {
			assigned[m.ID] = true
		}
		res.Groups = append(res.Groups, model.CandidateGroup{
			ID:      b.newID(),
			Members: members,
			Score:   b.scorer.GroupScore(members),
		})
	}
	return res
}

// rankedPairs scores every non-excluded pair and orders them by total desc,
// breaking ties on the ids so the order is reproducible.
func (b *Builder) rankedPairs(pool []model.CandidateProfile, excluded model.ExclusionSet) []model.PairScore {
	pairs := make([]model.PairScore, 0, len(pool)*(len(pool)-1)/2)
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			if excluded.Contains(pool[i].ID, pool[j].ID) {
				continue
			}
			pairs = append(pairs, b.scorer.Score(pool[i], pool[j]))
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Total != pairs[j].Total {
			return pairs[i].Total > pairs[j].Total
		}
		if pairs[i].Pair.A != pairs[j].Pair.A {
			return pairs[i].Pair.A < pairs[j].Pair.A
		}
		return pairs[i].Pair.B < pairs[j].Pair.B
	})
	return pairs
}

// grow extends seed one member at a time up to the largest target size and
// returns the largest state that lands on a target size and passes the final
// quality and constraint checks.
func (b *Builder) grow(seed, pool []model.CandidateProfile, assigned map[string]bool, excluded model.ExclusionSet) ([]model.CandidateProfile, bool) {
	maxSize := b.sizes[len(b.sizes)-1]

	group := seed
	var accepted []model.CandidateProfile
	if b.allowPairOnly {
		accepted = seed
	}

	for len(group) < maxSize {
		next, ok := b.extend(group, pool, assigned, excluded)
		if !ok {
			break
		}
		group = next
		if b.isTargetSize(len(group)) {
			accepted = group
		}
	}

	if accepted == nil {
		return nil, false
	}
	if b.scorer.GroupScore(accepted) < b.minGroupScore || !b.checker.Satisfies(accepted) {
		return nil, false
	}
	return accepted, true
}

// extend returns group plus the first unassigned pool candidate, in pool
// order, that keeps the group above the bar, satisfies constraints and forms
// no excluded pair with a current member.
func (b *Builder) extend(group, pool []model.CandidateProfile, assigned map[string]bool, excluded model.ExclusionSet) ([]model.CandidateProfile, bool) {
	for _, c := range pool {
		if assigned[c.ID] || contains(group, c.ID) || clashes(group, c.ID, excluded) {
			continue
		}
		tentative := make([]model.CandidateProfile, len(group), len(group)+1)
		copy(tentative, group)
		tentative = append(tentative, c)

		if b.scorer.GroupScore(tentative) >= b.minGroupScore && b.checker.Satisfies(tentative) {
			return tentative, true
		}
	}
	return nil, false
}

func (b *Builder) isTargetSize(n int) bool {
	for _, s := range b.sizes {
		if s == n {
			return true
		}
	}
	return false
}

func contains(group []model.CandidateProfile, id string) bool {
	for _, m := range group {
		if m.ID == id {
			return true
		}
	}
	return false
}

func clashes(group []model.CandidateProfile, id string, excluded model.ExclusionSet) bool {
	for _, m := range group {
		if excluded.Contains(m.ID, id) {
			return true
		}
	}
	return false
}

// uniqueByID drops repeated ids, keeping the first occurrence.
func uniqueByID(pool []model.CandidateProfile) []model.CandidateProfile {
	seen := make(map[string]bool, len(pool))
	out := make([]model.CandidateProfile, 0, len(pool))
	for _, c := range pool {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
