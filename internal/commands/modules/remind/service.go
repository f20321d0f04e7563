package remind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"palbot/internal/commands/types"
	"palbot/internal/config"
	"palbot/internal/database"
	"palbot/internal/utils"

	"github.com/MakeNowJust/heredoc"
	"github.com/bwmarrin/discordgo"
)

// deliveredRetention is how long delivered reminders are kept.
const deliveredRetention = 7 * 24 * time.Hour

var (
	channelSend = func(s *discordgo.Session, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
		return s.ChannelMessageSendComplex(channelID, msg)
	}
	dmChannel = func(s *discordgo.Session, userID string) (*discordgo.Channel, error) {
		return s.UserChannelCreate(userID)
	}
)

// ReminderService delivers due reminders once a minute and prunes delivered
// ones hourly.
type ReminderService struct {
	types.BaseService
	config *config.Config
	db     *database.DB
}

func NewReminderService(deps *types.Dependencies) *ReminderService {
	return &ReminderService{config: deps.Config, db: deps.DB}
}

func (rs *ReminderService) MinuteFuncs() []func() error {
	return []func() error{
		func() error { return rs.DeliverDue(context.Background(), now()) },
	}
}

func (rs *ReminderService) HourFuncs() []func() error {
	return []func() error{
		func() error {
			pruned, err := rs.db.PruneDeliveredReminders(context.Background(), now().Add(-deliveredRetention))
			if err == nil && pruned > 0 {
				rs.config.Logger.Infof("Pruned %d delivered reminder(s)", pruned)
			}
			return err
		},
	}
}

// DeliverDue sends every reminder due at now. A reminder that cannot be
// delivered to its channel goes to the user's DMs; one that cannot be
// delivered anywhere is logged and dropped.
func (rs *ReminderService) DeliverDue(ctx context.Context, now time.Time) error {
	if rs.Session == nil {
		return errors.New("reminder service has no discord session")
	}

	due, err := rs.db.DueReminders(ctx, now)
	if err != nil {
		return err
	}

	var errs []error
	for _, r := range due {
		if err := rs.deliver(r); err != nil {
			rs.config.Logger.Warnf("Dropping reminder %d for user %s: %v", r.ID, r.UserID, err)
		}
		if err := rs.db.MarkReminderDelivered(ctx, r.ID, now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (rs *ReminderService) deliver(r database.Reminder) error {
	msg := &discordgo.MessageSend{
		Content: reminderMessage(r),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{r.UserID},
		},
	}

	_, chanErr := channelSend(rs.Session, r.ChannelID, msg)
	if chanErr == nil {
		return nil
	}

	dm, err := dmChannel(rs.Session, r.UserID)
	if err != nil {
		return fmt.Errorf("channel send failed (%v) and could not open DM: %w", chanErr, err)
	}
	if _, err := channelSend(rs.Session, dm.ID, msg); err != nil {
		return fmt.Errorf("channel send failed (%v) and DM failed: %w", chanErr, err)
	}
	return nil
}

func reminderMessage(r database.Reminder) string {
	msg := heredoc.Docf(`
		<@%s>, %s: %s
	`, r.UserID, utils.DiscordTimestamp(r.CreatedAt, "R"), r.Message)

	if r.GuildID != "" {
		msg += fmt.Sprintf("\nhttps://discord.com/channels/%s/%s", r.GuildID, r.ChannelID)
	}
	return msg
}
