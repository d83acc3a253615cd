// Package scoring computes pairwise compatibility between candidates and the
// aggregate quality of a candidate group.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/cohort/internal/domain/model"
)

// Component values.
const (
	sameSpecialtyScore  = 1.0
	crossSpecialtyScore = 0.3
	sameCityScore       = 1.0
	weightSumTolerance  = 1e-9
)

// ErrInvalidWeights is returned when weights are negative or do not sum to 1.
var ErrInvalidWeights = errors.New("invalid scoring weights")

// Weights are the coefficients of the weighted sum. They must sum to 1.
type Weights struct {
	Specialty    float64 `json:"specialty"`
	Interests    float64 `json:"interests"`
	Proximity    float64 `json:"proximity"`
	Availability float64 `json:"availability"`
}

// DefaultWeights returns 0.3/0.4/0.2/0.1.
func DefaultWeights() Weights {
	return Weights{Specialty: 0.3, Interests: 0.4, Proximity: 0.2, Availability: 0.1}
}

// Validate checks that each weight is non-negative and that they sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Specialty, w.Interests, w.Proximity, w.Availability} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: negative or NaN weight in %+v", ErrInvalidWeights, w)
		}
	}
	sum := w.Specialty + w.Interests + w.Proximity + w.Availability
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, sum)
	}
	return nil
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the default weights. Invalid weights are ignored;
// callers that take weights from configuration should Validate first.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Validate() == nil {
			s.weights = w
		}
	}
}

// Scorer computes PairScores. It holds no mutable state and is safe to share.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the default weights unless overridden.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weights in use.
func (s *Scorer) Weights() Weights { return s.weights }

// Score returns the compatibility of a and b. It is symmetric in its arguments.
func (s *Scorer) Score(a, b model.CandidateProfile) model.PairScore {
	bd := model.Breakdown{
		Specialty:    crossSpecialtyScore,
		Interests:    overlap(a.Interests, b.Interests),
		Availability: overlap(a.Availability, b.Availability),
	}
	if a.Specialty == b.Specialty {
		bd.Specialty = sameSpecialtyScore
	}
	if a.City == b.City {
		bd.Proximity = sameCityScore
	}

	w := s.weights
	total := w.Specialty*bd.Specialty +
		w.Interests*bd.Interests +
		w.Proximity*bd.Proximity +
		w.Availability*bd.Availability

	// Weights summing to 1 within tolerance may leave a perfect pair a hair below 1.
	if math.Abs(total-1) <= weightSumTolerance {
		total = 1
	}

	return model.PairScore{
		Pair:      model.NewPairKey(a.ID, b.ID),
		Total:     math.Max(0, math.Min(1, total)),
		Breakdown: bd,
	}
}

// GroupScore is the mean pairwise total over all unordered pairs of members.
// Groups of fewer than two members score 0.
func (s *Scorer) GroupScore(members []model.CandidateProfile) float64 {
	if len(members) < 2 {
		return 0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sum += s.Score(members[i], members[j]).Total
			pairs++
		}
	}
	return sum / float64(pairs)
}

// overlap is |a ∩ b| / min(|a|, |b|) over the distinct tags, 0 if either is empty.
func overlap(a, b []string) float64 {
	sa, sb := toSet(a), toSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	small, large := sa, sb
	if len(large) < len(small) {
		small, large = large, small
	}
	var common int
	for tag := range small {
		if _, ok := large[tag]; ok {
			common++
		}
	}
	return float64(common) / float64(len(small))
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
