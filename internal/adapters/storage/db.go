package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS applicant (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		prefix TEXT NOT NULL,
		full_name TEXT NOT NULL,
		education_level INTEGER NOT NULL,
		school TEXT NOT NULL,
		food_allergies TEXT,
		parent_name TEXT NOT NULL,
		parent_email TEXT NOT NULL,
		secondary_email TEXT,
		phone_number TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id)
	);

	CREATE TABLE IF NOT EXISTS stored_file (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		mimetype TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL DEFAULT 0,
		path TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activity (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		description_short TEXT NOT NULL DEFAULT '',
		thumbnail_file_id TEXT,
		registration_open_at TEXT NOT NULL,
		registration_close_at TEXT NOT NULL,
		approved INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (thumbnail_file_id) REFERENCES stored_file(id)
	);

	CREATE TABLE IF NOT EXISTS schedule (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL,
		event_start_at TEXT NOT NULL,
		price INTEGER NOT NULL,
		max_users INTEGER NOT NULL,
		FOREIGN KEY (activity_id) REFERENCES activity(id)
	);

	CREATE TABLE IF NOT EXISTS schedule_registration (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		applicant_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		payment_file_id TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (schedule_id, applicant_id),
		FOREIGN KEY (schedule_id) REFERENCES schedule(id),
		FOREIGN KEY (payment_file_id) REFERENCES stored_file(id)
	);

	CREATE INDEX IF NOT EXISTS idx_schedule_activity ON schedule(activity_id);
	CREATE INDEX IF NOT EXISTS idx_registration_schedule ON schedule_registration(schedule_id);
	CREATE INDEX IF NOT EXISTS idx_registration_applicant ON schedule_registration(applicant_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
