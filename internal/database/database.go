package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQL database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes tables
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serialises writers; one connection avoids "database is locked".
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	if err := db.initTables(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initTables creates the necessary database tables
func (db *DB) initTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS user_timezones (
		user_id TEXT PRIMARY KEY,
		timezone TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		guild_id TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		due_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		delivered_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(delivered_at, due_at);
	CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);
	`

	_, err := db.conn.Exec(query)
	return err
}

// GetStats returns some basic statistics about the database
func (db *DB) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var timezones int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM user_timezones").Scan(&timezones); err != nil {
		return nil, fmt.Errorf("failed to count timezones: %w", err)
	}
	stats["timezones"] = timezones

	var pending int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM reminders WHERE delivered_at IS NULL").Scan(&pending); err != nil {
		return nil, fmt.Errorf("failed to count pending reminders: %w", err)
	}
	stats["pending_reminders"] = pending

	return stats, nil
}
