package status

import (
	"fmt"

	"palbot/internal/commands/types"
	"palbot/internal/config"
	"palbot/internal/database"
	"palbot/internal/paginator"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

// maxStatusLength is Discord's limit on activity names.
const maxStatusLength = 128

var statusRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return s.InteractionRespond(i, resp)
}

var updateGameStatus = func(s *discordgo.Session, text string) error {
	return s.UpdateGameStatus(0, text)
}

// StatusModule provides /status for the bot owner: changing the presence
// text and reading what the database holds.
type StatusModule struct {
	config *config.Config
	db     *database.DB
}

// New creates a new status module
func New(deps *types.Dependencies) *StatusModule {
	return &StatusModule{config: deps.Config, db: deps.DB}
}

// Register registers /status.
func (m *StatusModule) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	m.config = deps.Config

	cmds["status"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "status",
			Description: "Bot status (owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Update the bot's activity text",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "Status text to display (activity)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stats",
					Description: "Show stored time zones and pending reminders",
				},
			},
		},
		HandlerFunc: m.handleStatus,
	}
}

func (m *StatusModule) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	owner := m.config.GetOwnerID()
	if owner == "" || paginator.InteractionUserID(i.Interaction) != owner {
		m.reply(s, i, "❌ You do not have permission to use this command.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		m.reply(s, i, "❌ No subcommand provided.")
		return
	}

	switch options[0].Name {
	case "set":
		var text string
		for _, opt := range options[0].Options {
			if opt.Name == "text" {
				text = opt.StringValue()
			}
		}
		m.handleSet(s, i, text)
	case "stats":
		m.handleStats(s, i)
	default:
		m.reply(s, i, "❌ Unknown subcommand.")
	}
}

// handleSet updates the presence text.
func (m *StatusModule) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	if text == "" {
		m.reply(s, i, "❌ You must provide status text.")
		return
	}
	if len([]rune(text)) > maxStatusLength {
		m.reply(s, i, fmt.Sprintf("❌ Status text must be %d characters or fewer.", maxStatusLength))
		return
	}

	m.config.Logger.Infof("Updating status to: %s", text)

	if err := updateGameStatus(s, text); err != nil {
		m.reply(s, i, "❌ Failed to update status: "+err.Error())
		return
	}
	m.reply(s, i, "✅ Status updated successfully.")
}

func (m *StatusModule) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if m.db == nil {
		m.reply(s, i, "❌ The database is unavailable.")
		return
	}

	stats, err := m.db.GetStats()
	if err != nil {
		m.config.Logger.Errorf("Error reading database stats: %v", err)
		m.reply(s, i, "❌ Failed to read database stats.")
		return
	}

	embed := utils.NewEmbed()
	embed.Title = "📊 Bot Stats"
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Time zones", Value: fmt.Sprint(stats["timezones"]), Inline: true},
		{Name: "Pending reminders", Value: fmt.Sprint(stats["pending_reminders"]), Inline: true},
	}
	_ = statusRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func (m *StatusModule) reply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_ = statusRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral},
	})
}

// Service returns nil; this module has no background services
func (m *StatusModule) Service() types.ModuleService { return nil }
