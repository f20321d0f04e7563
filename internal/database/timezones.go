package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SetUserTimezone stores or replaces a user's IANA zone name.
func (db *DB) SetUserTimezone(ctx context.Context, userID, zone string) error {
	if _, err := time.LoadLocation(zone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", zone, err)
	}

	query := `
	INSERT INTO user_timezones (user_id, timezone, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id)
	DO UPDATE SET
		timezone = excluded.timezone,
		updated_at = CURRENT_TIMESTAMP
	`

	if _, err := db.conn.ExecContext(ctx, query, userID, zone); err != nil {
		return fmt.Errorf("failed to store timezone: %w", err)
	}
	return nil
}

// GetUserTimezone returns the stored zone name, or "" when none is set.
func (db *DB) GetUserTimezone(ctx context.Context, userID string) (string, error) {
	var zone string
	err := db.conn.QueryRowContext(ctx, `SELECT timezone FROM user_timezones WHERE user_id = ?`, userID).Scan(&zone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get timezone: %w", err)
	}
	return zone, nil
}

// DeleteUserTimezone forgets a user's zone. It reports whether one was set.
func (db *DB) DeleteUserTimezone(ctx context.Context, userID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM user_timezones WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete timezone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// UserTimezone resolves a user's stored zone. Users without one, or with a
// zone this system no longer knows, get nil so callers fall back to UTC.
func (db *DB) UserTimezone(ctx context.Context, userID string) (*time.Location, error) {
	zone, err := db.GetUserTimezone(ctx, userID)
	if err != nil || zone == "" {
		return nil, err
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, nil
	}
	return loc, nil
}
