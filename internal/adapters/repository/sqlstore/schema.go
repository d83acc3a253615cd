package sqlstore

import (
	"context"
	"fmt"
)

var schema = []string{ //nolint:gochecknoglobals // static DDL
	`CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		specialty TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		gender_preference TEXT NOT NULL DEFAULT 'none',
		interests TEXT NOT NULL DEFAULT '[]',
		availability TEXT NOT NULL DEFAULT '[]',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		subscribed BOOLEAN NOT NULL DEFAULT FALSE,
		onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cohort_groups (
		id TEXT PRIMARY KEY,
		week_of TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS cohort_groups_week_of_idx ON cohort_groups (week_of)`,
	`CREATE TABLE IF NOT EXISTS cohort_group_members (
		group_id TEXT NOT NULL REFERENCES cohort_groups (id),
		member_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (group_id, member_id)
	)`,
	`CREATE TABLE IF NOT EXISTS cohort_messages (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL UNIQUE REFERENCES cohort_groups (id),
		body TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

// Migrate creates the tables used by the store. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}
	return nil
}
