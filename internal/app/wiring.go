package service

import (
	"fmt"

	"github.com/okian/cohort/internal/config"
	"github.com/okian/cohort/internal/domain/cohort"
	"github.com/okian/cohort/internal/domain/constraints"
	"github.com/okian/cohort/internal/domain/scoring"
)

// NewBuilderFromConfig assembles the scorer, checker and builder described by cfg.
func NewBuilderFromConfig(cfg *config.Config) (*cohort.Builder, error) {
	weights := cfg.Weights()
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("building matcher: %w", err)
	}
	return cohort.NewBuilder(
		cohort.WithScorer(scoring.NewScorer(scoring.WithWeights(weights))),
		cohort.WithChecker(constraints.NewChecker(constraints.WithBalancedShape(cfg.PreferBalancedShape))),
		cohort.WithMinGroupScore(cfg.MinGroupScore),
		cohort.WithTargetSizes(cfg.GroupSizes...),
		cohort.WithAllowPairOnlyGroups(cfg.AllowPairOnlyGroups),
	), nil
}

// NewFromConfig creates a Service over store configured by cfg.
func NewFromConfig(cfg *config.Config, store Store, opts ...Option) (*Service, error) {
	builder, err := NewBuilderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithStore(store),
		WithBuilder(builder),
		WithCooldownWeeks(cfg.CooldownWeeks),
		WithRunTimeout(cfg.RunTimeout()),
	}
	return New(append(base, opts...)...), nil
}
