package model

// PairKey is an unordered pair of candidate ids stored with A <= B.
type PairKey struct {
	A string
	B string
}

// NewPairKey returns the canonical key for ids a and b in either order.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

func (k PairKey) String() string { return k.A + "|" + k.B }

// Breakdown holds the labeled components of a pair score, each in [0,1].
type Breakdown struct {
	Specialty    float64 `json:"specialty"`
	Interests    float64 `json:"interests"`
	Proximity    float64 `json:"proximity"`
	Availability float64 `json:"availability"`
}

// PairScore is the transient compatibility of two candidates.
type PairScore struct {
	Pair      PairKey   `json:"pair"`
	Total     float64   `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// ExclusionSet holds pairs that must not be grouped again.
type ExclusionSet map[PairKey]struct{}

// Add inserts the pair (a, b).
func (s ExclusionSet) Add(a, b string) {
	s[NewPairKey(a, b)] = struct{}{}
}

// Contains reports whether (a, b) is excluded. A nil set excludes nothing.
func (s ExclusionSet) Contains(a, b string) bool {
	_, ok := s[NewPairKey(a, b)]
	return ok
}

// Len returns the number of excluded pairs.
func (s ExclusionSet) Len() int { return len(s) }
