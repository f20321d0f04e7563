package time

import (
	"context"
	"fmt"
	"strings"
	stdtime "time"

	"palbot/internal/commands/types"
	"palbot/internal/paginator"
	"palbot/internal/timeparse"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var (
	timeRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		return s.InteractionRespond(i, resp)
	}
	timeEdit = func(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
		return s.InteractionResponseEdit(i, edit)
	}
	now = stdtime.Now
)

// TimeModule implements the CommandModule interface for the time command
type TimeModule struct {
	splitter *timeparse.Splitter
}

// New creates a new time module
func New(deps *types.Dependencies) *TimeModule {
	return &TimeModule{splitter: deps.Splitter}
}

// Register adds the time command to the command map
func (m *TimeModule) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["time"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "time",
			Description: "Convert a date/time into Discord timestamps",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "datetime",
					Description: "Natural language date/time, e.g. \"tomorrow at 5pm\"",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "full",
					Description: "Show all timestamp format options",
					Required:    false,
				},
			},
		},
		HandlerFunc: m.handleTime,
	}
}

// handleTime handles the /time command
func (m *TimeModule) handleTime(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Acknowledge the interaction immediately
	_ = timeRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	var (
		dateString string
		fullOutput bool
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "datetime":
			dateString = strings.TrimSpace(opt.StringValue())
		case "full":
			fullOutput = opt.BoolValue()
		}
	}

	if dateString == "" {
		_, _ = timeEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewErrorEmbed("Missing Parameter", "Please provide a date/time to parse.")},
		})
		return
	}

	parsed, err := m.splitter.DatetimeForUser(context.Background(), paginator.InteractionUserID(i.Interaction), dateString, now())
	if err != nil {
		embed := utils.NewUserErrorEmbed("Parse Error", err)
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:  "📋 Examples",
				Value: "• `tomorrow at 5pm`\n• `in 3 hours`\n• `next friday 20:00`\n• `2030-01-02 15:04`",
			},
		}
		_, _ = timeEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{embed},
		})
		return
	}

	if !fullOutput {
		_, _ = timeEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Content: utils.StringPtr(fmt.Sprintf("\"`%s`\" is %s at %s\n",
				dateString,
				utils.DiscordTimestamp(parsed, "R"),
				utils.DiscordTimestamp(parsed, "F"))),
		})
		return
	}

	_, _ = timeEdit(s, i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{fullEmbed(dateString, parsed)},
	})
}

// fullEmbed lists every Discord timestamp style for t.
func fullEmbed(input string, t stdtime.Time) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Fields = append(embed.Fields, []*discordgo.MessageEmbedField{
		{
			Name:  "",
			Value: fmt.Sprintf("🕰️ %s is %s\n", utils.DiscordTimestamp(t, "F"), utils.DiscordTimestamp(t, "R")),
		},
		{
			Name:  "",
			Value: fmt.Sprintf("_Converted from `%s`_", input),
		},
	}...)

	var formatsList strings.Builder
	for _, format := range utils.TimestampFormats {
		markup := utils.DiscordTimestamp(t, format.Style)
		formatsList.WriteString(fmt.Sprintf("• **%s**: `%s` → %s\n", format.Name, markup, markup))
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "📋 Available Discord Timestamp Formats",
		Value: formatsList.String(),
	})
	return embed
}

// Service returns nil as this module has no services requiring initialization
func (m *TimeModule) Service() types.ModuleService {
	return nil
}
