// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGenderPreference is returned for preference values outside the closed set.
var ErrInvalidGenderPreference = errors.New("invalid gender preference")

// GenderPreference is the member's stated grouping preference.
type GenderPreference int

const (
	// NoPreference never constrains a group on its own.
	NoPreference GenderPreference = iota
	// SameGenderOnly requires every member to share one gender.
	SameGenderOnly
	// MixedRequired requires at least two distinct genders.
	MixedRequired
)

// ParseGenderPreference maps stored preference strings onto the enum.
func ParseGenderPreference(s string) (GenderPreference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "no-preference", "no_preference", "any":
		return NoPreference, nil
	case "same", "same-gender-only", "same_gender_only":
		return SameGenderOnly, nil
	case "mixed", "mixed-required", "mixed_required":
		return MixedRequired, nil
	default:
		return NoPreference, fmt.Errorf("%w: %q", ErrInvalidGenderPreference, s)
	}
}

func (p GenderPreference) String() string {
	switch p {
	case SameGenderOnly:
		return "same"
	case MixedRequired:
		return "mixed"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p GenderPreference) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *GenderPreference) UnmarshalText(b []byte) error {
	v, err := ParseGenderPreference(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// CandidateProfile is a read-only snapshot of an eligible member for one run.
// Interests and Availability are sets; nil means empty.
type CandidateProfile struct {
	ID               string           `json:"id" validate:"required"`
	FirstName        string           `json:"first_name"`
	Specialty        string           `json:"specialty"`
	City             string           `json:"city"`
	Gender           string           `json:"gender" validate:"required"`
	GenderPreference GenderPreference `json:"gender_preference"`
	Interests        []string         `json:"interests"`
	Availability     []string         `json:"availability"`
}
