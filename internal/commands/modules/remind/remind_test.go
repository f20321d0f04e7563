package remind

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"palbot/internal/commands/types"
	"palbot/internal/config"
	"palbot/internal/database"
	"palbot/internal/paginator"
	"palbot/internal/timeparse"
	"palbot/internal/usererr"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// offsetParser reads "in an hour" / "an hour ago" at the start of the text.
type offsetParser struct{}

func (offsetParser) Parse(_ context.Context, text string, now time.Time, _ *time.Location) ([]timeparse.Candidate, error) {
	for phrase, offset := range map[string]time.Duration{"in an hour": time.Hour, "an hour ago": -time.Hour} {
		if strings.HasPrefix(text, phrase) {
			return []timeparse.Candidate{{When: now.Add(offset), Start: 0, End: len(phrase), Dim: "duration"}}, nil
		}
	}
	return nil, nil
}

type fakePager struct {
	source paginator.PageSource
}

func (f *fakePager) Start(_ context.Context, _ *discordgo.Session, _ *discordgo.InteractionCreate, source paginator.PageSource, _ paginator.StartOptions) (*paginator.View, error) {
	f.source = source
	return nil, nil
}

type hookCapture struct {
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	sent      map[string][]string
	failChan  map[string]bool
}

func withHooks(t *testing.T, cap *hookCapture) {
	t.Helper()
	cap.sent = map[string][]string{}
	origRespond, origEdit, origSend, origDM, origNow := remindRespond, remindEdit, channelSend, dmChannel, now
	remindRespond = func(_ *discordgo.Session, _ *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		cap.responses = append(cap.responses, resp)
		return nil
	}
	remindEdit = func(_ *discordgo.Session, _ *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
		cap.edits = append(cap.edits, edit)
		return nil, nil
	}
	channelSend = func(_ *discordgo.Session, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
		if cap.failChan[channelID] {
			return nil, errors.New("missing access")
		}
		cap.sent[channelID] = append(cap.sent[channelID], msg.Content)
		return &discordgo.Message{}, nil
	}
	dmChannel = func(_ *discordgo.Session, userID string) (*discordgo.Channel, error) {
		return &discordgo.Channel{ID: "dm-" + userID}, nil
	}
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		remindRespond, remindEdit, channelSend, dmChannel, now = origRespond, origEdit, origSend, origDM, origNow
	})
}

func newModule(t *testing.T) (*RemindModule, *database.DB, *fakePager) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "remind.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pager := &fakePager{}
	deps := &types.Dependencies{
		Config:   config.NewMockConfig(map[string]interface{}{}),
		DB:       db,
		Splitter: timeparse.NewSplitter(offsetParser{}, db),
		Pager:    pager,
	}
	m := New(deps)
	m.Register(map[string]*types.Command{}, deps)
	return m, db, pager
}

func command(sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "guild1",
		ChannelID: "chan1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "user1"}},
		Data: discordgo.ApplicationCommandInteractionData{Name: "remind", Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: sub, Type: discordgo.ApplicationCommandOptionSubCommand, Options: opts},
		}},
	}}
}

func whenOpt(text string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: "when", Type: discordgo.ApplicationCommandOptionString, Value: text}
}

func idOpt(id int64) *discordgo.ApplicationCommandInteractionDataOption {
	// Discord sends numbers as JSON floats.
	return &discordgo.ApplicationCommandInteractionDataOption{Name: "id", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(id)}
}

func TestRemindSet(t *testing.T) {
	cap := &hookCapture{}
	withHooks(t, cap)
	m, db, _ := newModule(t)

	m.handleRemind(&discordgo.Session{}, command("me", whenOpt("me to in an hour, stretch")))

	require.Len(t, cap.edits, 1)
	require.NotNil(t, cap.edits[0].Content)
	assert.Equal(t, "Alright <@user1>, <t:1714568400:R>: stretch", *cap.edits[0].Content)

	pending, err := db.UserReminders(context.Background(), "user1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "chan1", pending[0].ChannelID)
	assert.Equal(t, "guild1", pending[0].GuildID)
	assert.True(t, pending[0].DueAt.Equal(fixedNow.Add(time.Hour)))
}

func TestRemindRejectsBadInput(t *testing.T) {
	cap := &hookCapture{}
	withHooks(t, cap)
	m, _, _ := newModule(t)

	_, err := m.create(context.Background(), command("me").Interaction, "an hour ago, stretch")
	assert.ErrorIs(t, err, usererr.InvalidInput)
	assert.Equal(t, "That time is in the past.", usererr.Message(err))

	_, err = m.create(context.Background(), command("me").Interaction, "whenever")
	assert.ErrorIs(t, err, usererr.ParseFailure)
}

func TestRemindListAndDelete(t *testing.T) {
	cap := &hookCapture{}
	withHooks(t, cap)
	m, db, pager := newModule(t)
	ctx := context.Background()

	// Nothing pending yet.
	m.handleRemind(&discordgo.Session{}, command("list"))
	require.Len(t, cap.responses, 1)
	assert.Equal(t, "You have no pending reminders.", cap.responses[0].Data.Embeds[0].Description)

	id, err := db.AddReminder(ctx, database.Reminder{UserID: "user1", ChannelID: "chan1", Message: "line one\nline two", DueAt: fixedNow.Add(time.Hour)})
	require.NoError(t, err)

	m.handleRemind(&discordgo.Session{}, command("list"))
	require.NotNil(t, pager.source)
	page, err := pager.source.Page(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"`#1` <t:1714568400:R> - line one line two"}, page)

	m.handleRemind(&discordgo.Session{}, command("delete", idOpt(id+10)))
	assert.Contains(t, cap.responses[len(cap.responses)-1].Data.Embeds[0].Description, "no pending reminder")

	m.handleRemind(&discordgo.Session{}, command("delete", idOpt(id)))
	assert.Equal(t, "Reminder deleted", cap.responses[len(cap.responses)-1].Data.Embeds[0].Title)

	pending, err := db.UserReminders(ctx, "user1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeliverDue(t *testing.T) {
	cap := &hookCapture{failChan: map[string]bool{"gone": true}}
	withHooks(t, cap)
	m, db, _ := newModule(t)
	ctx := context.Background()

	_, err := db.AddReminder(ctx, database.Reminder{UserID: "user1", ChannelID: "chan1", GuildID: "guild1", Message: "stretch", DueAt: fixedNow.Add(-time.Minute), CreatedAt: fixedNow.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = db.AddReminder(ctx, database.Reminder{UserID: "user2", ChannelID: "gone", Message: "water", DueAt: fixedNow, CreatedAt: fixedNow.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = db.AddReminder(ctx, database.Reminder{UserID: "user1", ChannelID: "chan1", Message: "later", DueAt: fixedNow.Add(time.Hour), CreatedAt: fixedNow})
	require.NoError(t, err)

	svc := m.Service().(*ReminderService)
	assert.Error(t, svc.DeliverDue(ctx, fixedNow), "no session yet")

	require.NoError(t, svc.HydrateServiceDiscordSession(&discordgo.Session{}))
	require.NoError(t, svc.DeliverDue(ctx, fixedNow))

	require.Len(t, cap.sent["chan1"], 1)
	assert.True(t, strings.HasPrefix(cap.sent["chan1"][0], "<@user1>, <t:1714561200:R>: stretch"))
	assert.Contains(t, cap.sent["chan1"][0], "https://discord.com/channels/guild1/chan1")
	require.Len(t, cap.sent["dm-user2"], 1)
	assert.Contains(t, cap.sent["dm-user2"][0], "water")

	due, err := db.DueReminders(ctx, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, due)

	// Delivered reminders are pruned once they are old enough.
	now = func() time.Time { return fixedNow.Add(8 * 24 * time.Hour) }
	for _, fn := range svc.HourFuncs() {
		require.NoError(t, fn())
	}
	pending, err := db.UserReminders(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["pending_reminders"])
}
