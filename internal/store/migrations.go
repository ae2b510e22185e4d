package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			user_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Raw activity documents, one row per (activity, endpoint).
		// The primary key enforces at most one payload variant per activity.
		`CREATE TABLE IF NOT EXISTS activity_records (
			activity_id INTEGER NOT NULL,
			endpoint_name TEXT NOT NULL,
			raw_json TEXT NOT NULL,
			synced_at TEXT NOT NULL,
			PRIMARY KEY (activity_id, endpoint_name)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activity_records_endpoint ON activity_records(endpoint_name)`,

		// Raw workout documents from the set-logging platform
		`CREATE TABLE IF NOT EXISTS workouts (
			workout_id TEXT PRIMARY KEY,
			raw_json TEXT NOT NULL,
			synced_at TEXT NOT NULL
		)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
