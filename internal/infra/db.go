package infra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS donations (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    donor_name    TEXT NOT NULL,
    donor_phone   TEXT NOT NULL DEFAULT '',
    donor_email   TEXT NOT NULL DEFAULT '',
    donation_type TEXT NOT NULL DEFAULT '',
    quantity      INTEGER NOT NULL DEFAULT 0,
    destination   TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMP NOT NULL,
    status        TEXT NOT NULL,
    token         TEXT NOT NULL UNIQUE,
    photo_path    TEXT
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_donations_created_at ON donations (created_at);
CREATE INDEX IF NOT EXISTS idx_donations_status ON donations (status);
`

// OpenDB opens the SQLite database at path and verifies the connection.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	// case_sensitive_like keeps substring search case sensitive; SQLite's
	// LIKE is case insensitive for ASCII by default.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_case_sensitive_like=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer. Serializing through one connection keeps
	// concurrent admin requests from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// InitSchema creates the tables and indexes when they do not exist yet.
// It is safe to call on every startup.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
