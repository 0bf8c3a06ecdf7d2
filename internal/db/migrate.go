package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS weeks (
		id                    TEXT NOT NULL,
		owner_id              TEXT NOT NULL,
		start_date            TEXT NOT NULL,
		end_date              TEXT NOT NULL,
		overall_rating        INTEGER,
		review_note           TEXT NOT NULL DEFAULT '',
		reviewed_at           TEXT,
		planning_completed_at TEXT,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL,
		PRIMARY KEY (id, owner_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_weeks_owner ON weeks(owner_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                  TEXT PRIMARY KEY,
		week_id             TEXT NOT NULL,
		owner_id            TEXT NOT NULL,
		title               TEXT NOT NULL,
		notes               TEXT NOT NULL DEFAULT '',
		priority            TEXT NOT NULL DEFAULT 'normal'
		                    CHECK(priority IN ('low','normal','high')),
		labels              TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL DEFAULT 'pending'
		                    CHECK(status IN ('pending','pending_acceptance','completed','tried','skipped','declined')),
		linked_goal_id      TEXT,
		rolled_from_week_id TEXT,
		requested_by        TEXT,
		review_note         TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_week_owner ON tasks(week_id, owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,

	`CREATE TABLE IF NOT EXISTS goals (
		id            TEXT PRIMARY KEY,
		owner_id      TEXT NOT NULL,
		title         TEXT NOT NULL,
		target_count  INTEGER NOT NULL DEFAULT 0,
		current_count INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'active'
		              CHECK(status IN ('active','achieved','archived')),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner_id)`,

	`CREATE TABLE IF NOT EXISTS user_profile (
		id                        TEXT PRIMARY KEY DEFAULT 'default',
		user_id                   TEXT NOT NULL DEFAULT '',
		display_name              TEXT NOT NULL DEFAULT '',
		partner_id                TEXT NOT NULL DEFAULT '',
		partner_name              TEXT NOT NULL DEFAULT '',
		last_celebrated_milestone INTEGER NOT NULL DEFAULT 0
	)`,

	// Seed default user profile
	`INSERT OR IGNORE INTO user_profile (id) VALUES ('default')`,

	`CREATE TABLE IF NOT EXISTS wizard_progress (
		kind       TEXT PRIMARY KEY CHECK(kind IN ('planning','review')),
		week_id    TEXT NOT NULL,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}
