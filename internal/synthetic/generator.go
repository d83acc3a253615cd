// Package synthetic generates reproducible candidate pools for simulations,
// seeding development databases and property tests.
package synthetic

import (
	"fmt"
	"math/rand"

	"github.com/okian/cohort/internal/domain/model"
)

// Default generator configuration constants.
const (
	defaultPoolSize     = 60
	defaultSeed         = 42
	minInterests        = 2
	interestSpread      = 4
	minSlots            = 1
	slotSpread          = 4
	samePreferenceRate  = 0.1
	mixedPreferenceRate = 0.15
)

var (
	firstNames   = []string{"Ada", "Bruno", "Chloe", "Dmitri", "Esra", "Farid", "Greta", "Hiro", "Ines", "Jonas", "Kemi", "Luca", "Mara", "Nils", "Olu", "Priya"}
	specialties  = []string{"engineering", "design", "product", "marketing", "finance", "legal"}
	cities       = []string{"berlin", "lisbon", "paris", "amsterdam"}
	genders      = []string{"f", "m"}
	interestTags = []string{"ai", "climbing", "running", "startups", "photography", "cooking", "jazz", "chess", "cycling", "books", "film", "travel"}
	slotTags     = []string{"mon-am", "mon-pm", "tue-am", "tue-pm", "wed-am", "wed-pm", "thu-am", "thu-pm", "fri-am", "fri-pm"}
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSize sets the number of candidates per pool.
func WithSize(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.size = n
		}
	}
}

// WithSeed sets the random seed. The same seed always yields the same pool.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithCities limits the generated cities, which raises proximity scores.
func WithCities(c ...string) Option {
	return func(g *Generator) {
		if len(c) > 0 {
			g.cities = c
		}
	}
}

// Generator produces candidate pools.
type Generator struct {
	size   int
	seed   int64
	cities []string
}

// New creates a generator with default size and seed.
func New(opts ...Option) *Generator {
	g := &Generator{size: defaultPoolSize, seed: defaultSeed, cities: cities}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Pool returns size candidates with ids cand-0001, cand-0002, ...
func (g *Generator) Pool() []model.CandidateProfile {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // reproducible pools, not security sensitive
	pool := make([]model.CandidateProfile, g.size)
	for i := range pool {
		pool[i] = model.CandidateProfile{
			ID:               fmt.Sprintf("cand-%04d", i+1),
			FirstName:        pick(rng, firstNames),
			Specialty:        pick(rng, specialties),
			City:             pick(rng, g.cities),
			Gender:           pick(rng, genders),
			GenderPreference: preference(rng),
			Interests:        sample(rng, interestTags, minInterests+rng.Intn(interestSpread)),
			Availability:     sample(rng, slotTags, minSlots+rng.Intn(slotSpread)),
		}
	}
	return pool
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.Intn(len(from))]
}

func preference(rng *rand.Rand) model.GenderPreference {
	switch r := rng.Float64(); {
	case r < samePreferenceRate:
		return model.SameGenderOnly
	case r < samePreferenceRate+mixedPreferenceRate:
		return model.MixedRequired
	default:
		return model.NoPreference
	}
}

// sample returns n distinct tags in a random order.
func sample(rng *rand.Rand, from []string, n int) []string {
	if n > len(from) {
		n = len(from)
	}
	idx := rng.Perm(len(from))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}
