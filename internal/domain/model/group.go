package model

import "time"

// CandidateGroup is one output unit of a matching run.
type CandidateGroup struct {
	ID      string             `json:"id"`
	Members []CandidateProfile `json:"members"`
	Score   float64            `json:"score"`
}

// MemberIDs returns the member ids in group order.
func (g CandidateGroup) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Membership is a historical row linking a member to a group of a given week.
type Membership struct {
	GroupID  string
	MemberID string
	WeekOf   time.Time
}

// GroupRecord is what the persistence gateway stores for one group.
type GroupRecord struct {
	ID             string    `json:"id"`
	WeekOf         time.Time `json:"week_of"`
	Score          float64   `json:"score"`
	MemberIDs      []string  `json:"member_ids"`
	WelcomeMessage string    `json:"welcome_message"`
	CreatedAt      time.Time `json:"created_at"`
}

// WeekOf returns Monday 00:00 UTC of the ISO week containing t.
func WeekOf(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
