package remind

import (
	"context"
	"fmt"
	"time"

	"palbot/internal/commands/types"
	"palbot/internal/database"
	"palbot/internal/paginator"
	"palbot/internal/timeparse"
	"palbot/internal/usererr"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var (
	remindRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		return s.InteractionRespond(i, resp)
	}
	remindEdit = func(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
		return s.InteractionResponseEdit(i, edit)
	}
	now = time.Now
)

// RemindModule stores reminders and delivers them from the scheduler.
type RemindModule struct {
	db       *database.DB
	splitter *timeparse.Splitter
	pager    types.Pager
	service  *ReminderService
}

func New(deps *types.Dependencies) *RemindModule {
	return &RemindModule{
		db:       deps.DB,
		splitter: deps.Splitter,
		pager:    deps.Pager,
		service:  NewReminderService(deps),
	}
}

func (m *RemindModule) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["remind"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "remind",
			Description: "Reminders delivered in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "me",
					Description: "Set a reminder, e.g. \"in 2 hours take the bread out\"",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "when",
							Description: "When and what, in any order: \"tomorrow at 9 call mom\"",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show your pending reminders",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete one of your reminders",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "id",
							Description: "The reminder ID shown by /remind list",
							Required:    true,
							MinValue:    utils.Float64Ptr(1),
						},
					},
				},
			},
		},
		HandlerFunc: m.handleRemind,
	}
}

func (m *RemindModule) handleRemind(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch sub := options[0]; sub.Name {
	case "me":
		var text string
		if len(sub.Options) > 0 {
			text = sub.Options[0].StringValue()
		}
		m.handleSet(s, i, text)
	case "list":
		m.handleList(s, i)
	case "delete":
		var id int64
		if len(sub.Options) > 0 {
			id = sub.Options[0].IntValue()
		}
		m.handleDelete(s, i, id)
	}
}

func (m *RemindModule) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	_ = remindRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	reminder, err := m.create(context.Background(), i.Interaction, text)
	if err != nil {
		_, _ = remindEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewUserErrorEmbed("Could not set reminder", err)},
		})
		return
	}

	_, _ = remindEdit(s, i.Interaction, &discordgo.WebhookEdit{
		Content: utils.StringPtr(fmt.Sprintf("Alright <@%s>, %s: %s", reminder.UserID, utils.DiscordTimestamp(reminder.DueAt, "R"), reminder.Message)),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{reminder.UserID},
		},
	})
}

// create reads text as "when + what" and stores the reminder.
func (m *RemindModule) create(ctx context.Context, i *discordgo.Interaction, text string) (*database.Reminder, error) {
	if m.db == nil {
		return nil, usererr.New(usererr.UpstreamUnavailable, "Reminders are not available right now.")
	}

	userID := paginator.InteractionUserID(i)
	current := now()

	result, err := m.splitter.SplitForUser(ctx, userID, text, current)
	if err != nil {
		return nil, err
	}
	if !result.When.After(current) {
		return nil, usererr.New(usererr.InvalidInput, "That time is in the past.")
	}

	reminder := &database.Reminder{
		UserID:    userID,
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
		Message:   result.What,
		DueAt:     result.When,
		CreatedAt: current,
	}
	id, err := m.db.AddReminder(ctx, *reminder)
	if err != nil {
		return nil, err
	}
	reminder.ID = id
	return reminder, nil
}

func (m *RemindModule) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := paginator.InteractionUserID(i.Interaction)

	var reminders []database.Reminder
	err := usererr.New(usererr.UpstreamUnavailable, "Reminders are not available right now.")
	if m.db != nil {
		reminders, err = m.db.UserReminders(ctx, userID)
	}
	if err == nil && len(reminders) == 0 {
		err = usererr.New(usererr.InvalidInput, "You have no pending reminders.")
	}
	if err == nil && m.pager == nil {
		err = usererr.New(usererr.UpstreamUnavailable, "Reminders are not available right now.")
	}
	if err == nil {
		_, err = m.pager.Start(ctx, s, i, listSource(reminders), paginator.StartOptions{Ephemeral: true})
	}

	if err != nil {
		_ = remindRespond(s, i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{utils.NewUserErrorEmbed("Reminders", err)},
				Flags:  discordgo.MessageFlagsEphemeral,
			},
		})
	}
}

// listSource pages through reminders, ten per page.
func listSource(reminders []database.Reminder) *paginator.SimplePageSource {
	entries := make([]string, 0, len(reminders))
	for _, r := range reminders {
		entries = append(entries, fmt.Sprintf("`#%d` %s - %s", r.ID, utils.DiscordTimestamp(r.DueAt, "R"), embedsafe(r.Message)))
	}

	source := paginator.NewSimplePageSource(entries, 10)
	source.Embed = &discordgo.MessageEmbed{
		Title: "⏰ Your reminders",
		Color: utils.Colors.Info(),
	}
	return source
}

func (m *RemindModule) handleDelete(s *discordgo.Session, i *discordgo.InteractionCreate, id int64) {
	var embed *discordgo.MessageEmbed

	removed := false
	err := usererr.New(usererr.UpstreamUnavailable, "Reminders are not available right now.")
	if m.db != nil {
		removed, err = m.db.DeleteReminder(context.Background(), paginator.InteractionUserID(i.Interaction), id)
	}

	switch {
	case err != nil:
		embed = utils.NewUserErrorEmbed("Could not delete reminder", err)
	case !removed:
		embed = utils.NewErrorEmbed("Could not delete reminder", fmt.Sprintf("You have no pending reminder with ID `%d`.", id))
	default:
		embed = utils.NewOKEmbed("Reminder deleted", fmt.Sprintf("Reminder `#%d` will not be sent.", id))
	}

	_ = remindRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// embedsafe keeps list entries on one line and within a sane length.
func embedsafe(msg string) string {
	runes := []rune(msg)
	for i, r := range runes {
		if r == '\n' {
			runes[i] = ' '
		}
	}
	if len(runes) > 100 {
		return string(runes[:99]) + "…"
	}
	return string(runes)
}

// Service returns the delivery service, or nil without a database to
// deliver from.
func (m *RemindModule) Service() types.ModuleService {
	if m.db == nil {
		return nil
	}
	return m.service
}
