package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/okian/cohort/internal/adapters/repository"
	"github.com/okian/cohort/internal/domain/model"
	"github.com/okian/cohort/pkg/logger"
	"github.com/okian/cohort/pkg/metrics"
)

const (
	weekLayout  = "2006-01-02"
	stampLayout = "2006-01-02T15:04:05.000000000Z"
)

var _ repository.Store = (*Store)(nil)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped rows and rollbacks.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock sets the time source for created_at columns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is a repository.Store backed by sqlx.
type Store struct {
	db  *sqlx.DB
	log logger.Logger
	now func() time.Time
}

// New wraps db. Call Migrate before first use on a fresh database.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db, log: logger.Named("sqlstore"), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type memberRow struct {
	ID                  string `db:"id"`
	FirstName           string `db:"first_name"`
	Specialty           string `db:"specialty"`
	City                string `db:"city"`
	Gender              string `db:"gender"`
	GenderPreference    string `db:"gender_preference"`
	Interests           string `db:"interests"`
	Availability        string `db:"availability"`
	Verified            bool   `db:"verified"`
	Subscribed          bool   `db:"subscribed"`
	OnboardingCompleted bool   `db:"onboarding_completed"`
	CreatedAt           string `db:"created_at"`
}

func (r memberRow) profile() (model.CandidateProfile, error) {
	c := model.CandidateProfile{
		ID:        r.ID,
		FirstName: r.FirstName,
		Specialty: r.Specialty,
		City:      r.City,
		Gender:    r.Gender,
	}
	pref, err := model.ParseGenderPreference(r.GenderPreference)
	if err != nil {
		return c, err
	}
	c.GenderPreference = pref
	if err := json.Unmarshal([]byte(r.Interests), &c.Interests); err != nil {
		return c, fmt.Errorf("decoding interests: %w", err)
	}
	if err := json.Unmarshal([]byte(r.Availability), &c.Availability); err != nil {
		return c, fmt.Errorf("decoding availability: %w", err)
	}
	return c, nil
}

// AddMember inserts m. The profile must pass repository.ValidateCandidate.
func (s *Store) AddMember(ctx context.Context, m repository.Member) error {
	if err := repository.ValidateCandidate(m.CandidateProfile); err != nil {
		return err
	}
	interests, err := json.Marshal(nonNil(m.Interests))
	if err != nil {
		return err
	}
	availability, err := json.Marshal(nonNil(m.Availability))
	if err != nil {
		return err
	}

	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM members WHERE id = ?`), m.ID); err != nil {
		return fmt.Errorf("checking member %q: %w", m.ID, err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", repository.ErrMemberExists, m.ID)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO members
		(id, first_name, specialty, city, gender, gender_preference, interests, availability,
		 verified, subscribed, onboarding_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.FirstName, m.Specialty, m.City, m.Gender, m.GenderPreference.String(),
		string(interests), string(availability),
		m.Verified, m.Subscribed, m.OnboardingCompleted, s.now().UTC().Format(stampLayout))
	if err != nil {
		return fmt.Errorf("inserting member %q: %w", m.ID, err)
	}
	return nil
}

// EligibleCandidates returns verified, subscribed, onboarded members ordered
// by id. Rows that fail to decode or validate are skipped, logged and counted.
func (s *Store) EligibleCandidates(ctx context.Context) ([]model.CandidateProfile, error) {
	var rows []memberRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`SELECT * FROM members
		WHERE verified = ? AND subscribed = ? AND onboarding_completed = ?
		ORDER BY id`), true, true, true)
	if err != nil {
		return nil, fmt.Errorf("selecting eligible members: %w", err)
	}

	pool := make([]model.CandidateProfile, 0, len(rows))
	rejected := 0
	for _, r := range rows {
		c, err := r.profile()
		if err == nil {
			err = repository.ValidateCandidate(c)
		}
		if err != nil {
			rejected++
			s.log.Warn(ctx, "skipping invalid candidate", logger.String("member_id", r.ID), logger.Error(err))
			continue
		}
		pool = append(pool, c)
	}
	if rejected > 0 {
		metrics.RecordCandidatesRejected(rejected)
	}
	return pool, nil
}

// MembershipsSince returns memberships of groups whose week is on or after since.
func (s *Store) MembershipsSince(ctx context.Context, since time.Time) ([]model.Membership, error) {
	var rows []struct {
		GroupID  string `db:"group_id"`
		MemberID string `db:"member_id"`
		WeekOf   string `db:"week_of"`
	}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`SELECT gm.group_id, gm.member_id, g.week_of
		FROM cohort_group_members gm
		JOIN cohort_groups g ON g.id = gm.group_id
		WHERE g.week_of >= ?
		ORDER BY g.week_of, gm.group_id, gm.position`), since.UTC().Format(weekLayout))
	if err != nil {
		return nil, fmt.Errorf("selecting memberships: %w", err)
	}

	out := make([]model.Membership, 0, len(rows))
	for _, r := range rows {
		week, err := time.Parse(weekLayout, r.WeekOf)
		if err != nil {
			return nil, fmt.Errorf("parsing week of group %q: %w", r.GroupID, err)
		}
		out = append(out, model.Membership{GroupID: r.GroupID, MemberID: r.MemberID, WeekOf: week})
	}
	return out, nil
}

// SaveGroup writes the group, its memberships and its welcome message in one
// transaction. Any failure rolls the whole group back.
func (s *Store) SaveGroup(ctx context.Context, rec model.GroupRecord) (err error) {
	if rec.ID == "" || len(rec.MemberIDs) < 2 {
		return fmt.Errorf("save group %q: %w", rec.ID, repository.ErrInvalidGroup)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	stamp := createdAt.UTC().Format(stampLayout)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save group %q: begin: %w", rec.ID, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Error(ctx, "rollback failed", logger.String("group_id", rec.ID), logger.Error(rbErr))
		}
	}()

	var n int
	if err = tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM cohort_groups WHERE id = ?`), rec.ID); err != nil {
		return fmt.Errorf("save group %q: %w", rec.ID, err)
	}
	if n > 0 {
		return fmt.Errorf("save group %q: %w", rec.ID, repository.ErrGroupExists)
	}

	if _, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO cohort_groups (id, week_of, score, created_at) VALUES (?, ?, ?, ?)`),
		rec.ID, model.WeekOf(rec.WeekOf).Format(weekLayout), rec.Score, stamp); err != nil {
		return fmt.Errorf("save group %q: inserting group: %w", rec.ID, err)
	}
	for i, id := range rec.MemberIDs {
		if _, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO cohort_group_members (group_id, member_id, position) VALUES (?, ?, ?)`),
			rec.ID, id, i); err != nil {
			return fmt.Errorf("save group %q: inserting member %q: %w", rec.ID, id, err)
		}
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO cohort_messages (id, group_id, body, created_at) VALUES (?, ?, ?, ?)`),
		uuid.NewString(), rec.ID, rec.WelcomeMessage, stamp); err != nil {
		return fmt.Errorf("save group %q: inserting welcome message: %w", rec.ID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save group %q: commit: %w", rec.ID, err)
	}
	return nil
}

// GroupsForWeek returns the groups of the week containing weekOf ordered by
// creation time, each with its members in group order and its welcome message.
func (s *Store) GroupsForWeek(ctx context.Context, weekOf time.Time) ([]model.GroupRecord, error) {
	week := model.WeekOf(weekOf)
	key := week.Format(weekLayout)

	var groups []struct {
		ID        string         `db:"id"`
		Score     float64        `db:"score"`
		CreatedAt string         `db:"created_at"`
		Body      sql.NullString `db:"body"`
	}
	err := s.db.SelectContext(ctx, &groups, s.db.Rebind(`SELECT g.id, g.score, g.created_at, m.body
		FROM cohort_groups g
		LEFT JOIN cohort_messages m ON m.group_id = g.id
		WHERE g.week_of = ?
		ORDER BY g.created_at, g.id`), key)
	if err != nil {
		return nil, fmt.Errorf("selecting groups: %w", err)
	}

	var members []struct {
		GroupID  string `db:"group_id"`
		MemberID string `db:"member_id"`
	}
	err = s.db.SelectContext(ctx, &members, s.db.Rebind(`SELECT gm.group_id, gm.member_id
		FROM cohort_group_members gm
		JOIN cohort_groups g ON g.id = gm.group_id
		WHERE g.week_of = ?
		ORDER BY gm.group_id, gm.position`), key)
	if err != nil {
		return nil, fmt.Errorf("selecting group members: %w", err)
	}
	byGroup := make(map[string][]string, len(groups))
	for _, m := range members {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m.MemberID)
	}

	out := make([]model.GroupRecord, 0, len(groups))
	for _, g := range groups {
		created, err := time.Parse(stampLayout, g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of group %q: %w", g.ID, err)
		}
		out = append(out, model.GroupRecord{
			ID:             g.ID,
			WeekOf:         week,
			Score:          g.Score,
			MemberIDs:      byGroup[g.ID],
			WelcomeMessage: g.Body.String,
			CreatedAt:      created,
		})
	}
	return out, nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
