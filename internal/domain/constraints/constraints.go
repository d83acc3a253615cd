// Package constraints validates candidate groups against gender preferences
// and the preferred gender split.
package constraints

import "github.com/okian/cohort/internal/domain/model"

// Option applies a configuration option to the Checker.
type Option func(*Checker)

// WithBalancedShape toggles the preferred-split heuristic.
func WithBalancedShape(enabled bool) Option {
	return func(c *Checker) {
		c.balancedShape = enabled
	}
}

// Checker decides whether a set of members may form a group.
type Checker struct {
	balancedShape bool
}

// NewChecker returns a checker with the balanced-shape heuristic enabled.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{balancedShape: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Satisfies reports whether members pass every preference rule and, when the
// heuristic is enabled, have an acceptable gender split.
func (c *Checker) Satisfies(members []model.CandidateProfile) bool {
	counts := genderCounts(members)
	for _, m := range members {
		switch m.GenderPreference {
		case model.SameGenderOnly:
			if len(counts) > 1 {
				return false
			}
		case model.MixedRequired:
			if len(counts) < 2 {
				return false
			}
		}
	}
	if c.balancedShape {
		return balanced(counts, len(members))
	}
	return true
}

// Balanced reports whether the gender split matches the preferred shape:
// 2/2 for four members and 2/1 for three when exactly two genders are present.
// Other shapes (one gender, three or more genders, other sizes) are accepted.
func (c *Checker) Balanced(members []model.CandidateProfile) bool {
	return balanced(genderCounts(members), len(members))
}

func balanced(counts map[string]int, size int) bool {
	if len(counts) != 2 {
		return true
	}
	for _, n := range counts {
		switch size {
		case 4:
			if n != 2 {
				return false
			}
		case 3:
			if n != 1 && n != 2 {
				return false
			}
		}
	}
	return true
}

func genderCounts(members []model.CandidateProfile) map[string]int {
	counts := make(map[string]int, 2)
	for _, m := range members {
		counts[m.Gender]++
	}
	return counts
}
