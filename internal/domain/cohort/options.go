// Package cohort partitions a pool of candidates into small disjoint groups.
package cohort

import (
	"sort"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithScorer replaces the pairwise scorer and group evaluator.
func WithScorer(s Scorer) Option {
	return func(b *Builder) {
		if s != nil {
			b.scorer = s
		}
	}
}

// WithChecker replaces the constraint checker.
func WithChecker(c Checker) Option {
	return func(b *Builder) {
		if c != nil {
			b.checker = c
		}
	}
}

// WithMinGroupScore sets the quality bar every accepted group must clear.
func WithMinGroupScore(score float64) Option {
	return func(b *Builder) {
		if score >= 0 && score <= 1 {
			b.minGroupScore = score
		}
	}
}

// WithTargetSizes sets the group sizes the builder aims for. Sizes below 3
// are ignored; use WithAllowPairOnlyGroups for two-member groups.
func WithTargetSizes(sizes ...int) Option {
	return func(b *Builder) {
		seen := make(map[int]bool)
		var out []int
		for _, s := range sizes {
			if s >= minTargetSize && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			sort.Ints(out)
			b.sizes = out
		}
	}
}

// WithAllowPairOnlyGroups keeps two-member groups that never found a valid
// extension but clear the quality bar on their own.
func WithAllowPairOnlyGroups(allow bool) Option {
	return func(b *Builder) {
		b.allowPairOnly = allow
	}
}

// WithIDGenerator sets how group identifiers are produced.
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) {
		if gen != nil {
			b.newID = gen
		}
	}
}
