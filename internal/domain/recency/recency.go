// Package recency derives the pairs that must not be grouped again because
// they already shared a group inside the cooldown window.
package recency

import (
	"sort"
	"time"

	"github.com/okian/cohort/internal/domain/model"
)

// DefaultCooldownWeeks is the window used when callers pass a non-positive value.
const DefaultCooldownWeeks = 6

// Cutoff returns the earliest week start that still falls inside the window:
// the Monday cooldownWeeks weeks before the week containing now.
func Cutoff(now time.Time, cooldownWeeks int) time.Time {
	if cooldownWeeks <= 0 {
		cooldownWeeks = DefaultCooldownWeeks
	}
	return model.WeekOf(now).AddDate(0, 0, -7*cooldownWeeks)
}

// ExcludedPairs returns every unordered member pair of each historical group
// whose WeekOf is on or after Cutoff(now, cooldownWeeks).
func ExcludedPairs(history []model.Membership, cooldownWeeks int, now time.Time) model.ExclusionSet {
	cutoff := Cutoff(now, cooldownWeeks)

	byGroup := make(map[string][]string)
	for _, m := range history {
		if m.WeekOf.Before(cutoff) {
			continue
		}
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m.MemberID)
	}

	excluded := make(model.ExclusionSet)
	for _, members := range byGroup {
		sort.Strings(members)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				if members[i] == members[j] {
					continue
				}
				excluded.Add(members[i], members[j])
			}
		}
	}
	return excluded
}
