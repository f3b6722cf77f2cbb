package db

import (
	"context"
	"fmt"
)

// schema creates the tracker tables. candidate_actions deliberately has no
// foreign key to candidates: the audit trail outlives deleted candidates.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
		id                 UUID PRIMARY KEY,
		name               TEXT NOT NULL,
		email              TEXT NOT NULL,
		role               TEXT NOT NULL,
		fit_score          INTEGER NOT NULL CHECK (fit_score BETWEEN 0 AND 100),
		fit_category       TEXT NOT NULL CHECK (fit_category IN ('Strong', 'Medium', 'Low')),
		status             TEXT NOT NULL CHECK (status IN ('Pending', 'Review', 'Invited', 'Rejected')),
		screened_at        TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL,
		action_comment     TEXT NOT NULL DEFAULT '',
		is_duplicate       BOOLEAN NOT NULL DEFAULT FALSE,
		duplicate_info     TEXT NOT NULL DEFAULT '',
		resume_text        TEXT NOT NULL DEFAULT '',
		job_description    TEXT NOT NULL DEFAULT '',
		screening_summary  TEXT NOT NULL DEFAULT '',
		strengths          TEXT[] NOT NULL DEFAULT '{}',
		gaps               TEXT[] NOT NULL DEFAULT '{}',
		recommended_action TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_email_lower ON candidates (LOWER(email))`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates (status)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_screened_at ON candidates (screened_at DESC)`,
	`CREATE TABLE IF NOT EXISTS candidate_actions (
		id              UUID PRIMARY KEY,
		candidate_id    UUID NOT NULL,
		action_type     TEXT NOT NULL,
		comment         TEXT NOT NULL DEFAULT '',
		previous_status TEXT NOT NULL DEFAULT '',
		new_status      TEXT NOT NULL DEFAULT '',
		actor           TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_actions_candidate ON candidate_actions (candidate_id, created_at DESC)`,
}

// Migrate creates the schema if it does not exist. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
