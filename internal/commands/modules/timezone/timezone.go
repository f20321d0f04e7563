package timezone

import (
	"context"
	"fmt"
	"strings"
	"time"

	"palbot/internal/commands/types"
	"palbot/internal/database"
	"palbot/internal/paginator"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var tzRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return s.InteractionRespond(i, resp)
}

// Module lets users store the time zone their time arguments are read in.
type Module struct {
	db *database.DB
}

func New(deps *types.Dependencies) *Module {
	return &Module{db: deps.DB}
}

func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["timezone"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "timezone",
			Description: "Manage the time zone used to read your times",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set your time zone",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "zone",
							Description: "An IANA time zone name, e.g. Europe/Berlin or America/New_York",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show your time zone",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Forget your time zone and go back to UTC",
				},
			},
		},
		HandlerFunc: m.handleTimezone,
	}
}

func (m *Module) handleTimezone(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	var embed *discordgo.MessageEmbed
	if m.db == nil {
		embed = utils.NewErrorEmbed("Time zones unavailable", "Try again later.")
	} else {
		sub := options[0]
		var zone string
		if len(sub.Options) > 0 {
			zone = sub.Options[0].StringValue()
		}
		embed = m.run(context.Background(), sub.Name, paginator.InteractionUserID(i.Interaction), zone)
	}

	_ = tzRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func (m *Module) run(ctx context.Context, sub, userID, zone string) *discordgo.MessageEmbed {
	switch sub {
	case "set":
		zone = strings.TrimSpace(zone)
		loc, err := time.LoadLocation(zone)
		if err != nil || zone == "" || strings.EqualFold(zone, "local") {
			return utils.NewErrorEmbed("Unknown time zone", fmt.Sprintf("`%s` is not a time zone I know. Use a name like `Europe/Berlin`.", zone))
		}
		if err := m.db.SetUserTimezone(ctx, userID, loc.String()); err != nil {
			return utils.NewUserErrorEmbed("Could not save time zone", err)
		}
		return utils.NewOKEmbed("Time zone saved", describe(loc))
	case "show":
		zone, err := m.db.GetUserTimezone(ctx, userID)
		if err != nil {
			return utils.NewUserErrorEmbed("Could not load time zone", err)
		}
		if zone == "" {
			return utils.NewOKEmbed("No time zone set", "Your times are read as UTC. Use `/timezone set` to change that.")
		}
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return utils.NewErrorEmbed("Unknown time zone", fmt.Sprintf("`%s` is no longer a known time zone, please set it again.", zone))
		}
		return utils.NewOKEmbed("Your time zone", describe(loc))
	case "clear":
		removed, err := m.db.DeleteUserTimezone(ctx, userID)
		if err != nil {
			return utils.NewUserErrorEmbed("Could not clear time zone", err)
		}
		if !removed {
			return utils.NewOKEmbed("No time zone set", "Your times are already read as UTC.")
		}
		return utils.NewOKEmbed("Time zone cleared", "Your times are read as UTC again.")
	}
	return utils.NewErrorEmbed("Unknown subcommand", sub)
}

func describe(loc *time.Location) string {
	return fmt.Sprintf("`%s`, where it is currently %s.", loc.String(), time.Now().In(loc).Format("15:04 MST on Monday"))
}

func (m *Module) Service() types.ModuleService {
	return nil
}
