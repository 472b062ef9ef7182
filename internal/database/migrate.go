package database

import "fmt"

// schema is the single source of truth for the engine's tables.
// All statements are idempotent so Migrate can run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS tracking_jobs (
	id           TEXT PRIMARY KEY,
	owner        TEXT NOT NULL,
	url          TEXT NOT NULL,
	target_price REAL NOT NULL,
	status       TEXT NOT NULL DEFAULT 'tracking',
	last_name    TEXT NOT NULL DEFAULT '',
	last_price   REAL,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tracking_jobs_owner  ON tracking_jobs(owner);
CREATE INDEX IF NOT EXISTS idx_tracking_jobs_status ON tracking_jobs(status);

CREATE TABLE IF NOT EXISTS price_observations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	url         TEXT NOT NULL,
	owner       TEXT NOT NULL,
	price       REAL NOT NULL,
	observed_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_price_observations_pair
	ON price_observations(url, owner, observed_at);
`

// Migrate applies the database schema
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
