package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Reminder is a message to deliver to a user at a point in time.
type Reminder struct {
	ID          int64
	UserID      string
	ChannelID   string
	GuildID     string
	Message     string
	DueAt       time.Time
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

const reminderColumns = `id, user_id, channel_id, guild_id, message, due_at, created_at, delivered_at`

// AddReminder stores r and returns its ID.
func (db *DB) AddReminder(ctx context.Context, r Reminder) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO reminders (user_id, channel_id, guild_id, message, due_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.ExecContext(ctx, query, r.UserID, r.ChannelID, r.GuildID, r.Message, dbTime(r.DueAt), dbTime(r.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to store reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get reminder id: %w", err)
	}
	return id, nil
}

// DueReminders returns undelivered reminders due at or before now, oldest
// first.
func (db *DB) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	query := `SELECT ` + reminderColumns + `
	FROM reminders
	WHERE delivered_at IS NULL AND due_at <= ?
	ORDER BY due_at, id
	`
	return db.queryReminders(ctx, query, dbTime(now))
}

// UserReminders returns a user's undelivered reminders, soonest first.
func (db *DB) UserReminders(ctx context.Context, userID string) ([]Reminder, error) {
	query := `SELECT ` + reminderColumns + `
	FROM reminders
	WHERE delivered_at IS NULL AND user_id = ?
	ORDER BY due_at, id
	`
	return db.queryReminders(ctx, query, userID)
}

// MarkReminderDelivered records that a reminder was sent.
func (db *DB) MarkReminderDelivered(ctx context.Context, id int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `UPDATE reminders SET delivered_at = ? WHERE id = ?`, dbTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder delivered: %w", err)
	}
	return nil
}

// DeleteReminder removes one of the user's pending reminders. It reports
// whether anything was removed.
func (db *DB) DeleteReminder(ctx context.Context, userID string, id int64) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND user_id = ? AND delivered_at IS NULL`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// PruneDeliveredReminders deletes reminders delivered before cutoff.
func (db *DB) PruneDeliveredReminders(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM reminders WHERE delivered_at IS NOT NULL AND delivered_at < ?`, dbTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune reminders: %w", err)
	}
	return result.RowsAffected()
}

func (db *DB) queryReminders(ctx context.Context, query string, args ...any) ([]Reminder, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		var (
			r         Reminder
			delivered sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.ChannelID, &r.GuildID, &r.Message, &r.DueAt, &r.CreatedAt, &delivered); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		if delivered.Valid {
			t := delivered.Time
			r.DeliveredAt = &t
		}
		reminders = append(reminders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return reminders, nil
}

// dbTime normalises times to whole UTC seconds so the stored text compares
// in time order.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
