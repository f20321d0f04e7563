package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserTimezones(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	zone, err := db.GetUserTimezone(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, zone)

	loc, err := db.UserTimezone(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, loc)

	require.NoError(t, db.SetUserTimezone(ctx, "u1", "Europe/Berlin"))
	require.NoError(t, db.SetUserTimezone(ctx, "u1", "America/New_York"))

	zone, err = db.GetUserTimezone(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", zone)

	loc, err = db.UserTimezone(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "America/New_York", loc.String())

	assert.Error(t, db.SetUserTimezone(ctx, "u2", "Mars/Olympus_Mons"))

	removed, err := db.DeleteUserTimezone(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = db.DeleteUserTimezone(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestReminders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	pastID, err := db.AddReminder(ctx, Reminder{UserID: "u1", ChannelID: "c1", Message: "stretch", DueAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	futureID, err := db.AddReminder(ctx, Reminder{UserID: "u1", ChannelID: "c1", Message: "sleep", DueAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)
	_, err = db.AddReminder(ctx, Reminder{UserID: "u2", ChannelID: "c2", GuildID: "g", Message: "eat", DueAt: now, CreatedAt: now})
	require.NoError(t, err)

	due, err := db.DueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, pastID, due[0].ID)
	assert.Equal(t, "stretch", due[0].Message)
	assert.True(t, due[0].DueAt.Equal(now.Add(-time.Minute)))
	assert.Nil(t, due[0].DeliveredAt)
	assert.Equal(t, "eat", due[1].Message)

	mine, err := db.UserReminders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, futureID, mine[1].ID)

	require.NoError(t, db.MarkReminderDelivered(ctx, pastID, now))

	due, err = db.DueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "eat", due[0].Message)

	// Someone else's reminder cannot be removed.
	removed, err := db.DeleteReminder(ctx, "u2", futureID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = db.DeleteReminder(ctx, "u1", futureID)
	require.NoError(t, err)
	assert.True(t, removed)

	pruned, err := db.PruneDeliveredReminders(ctx, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["timezones"])
	assert.Equal(t, 1, stats["pending_reminders"])
}
