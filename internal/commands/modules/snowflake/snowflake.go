package snowflake

import (
	"fmt"

	"palbot/internal/commands/types"
	"palbot/internal/converters"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var snowflakeRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return s.InteractionRespond(i, resp)
}

// Module shows when a Discord ID was created.
type Module struct{}

func New(deps *types.Dependencies) *Module {
	return &Module{}
}

func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["snowflake"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "snowflake",
			Description: "Show when a Discord ID (user, message, channel...) was created",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "id",
					Description: "The Discord ID",
					Required:    true,
				},
			},
		},
		HandlerFunc: m.handleSnowflake,
	}
}

func (m *Module) handleSnowflake(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var raw string
	if opts := i.ApplicationCommandData().Options; len(opts) > 0 {
		raw = opts[0].StringValue()
	}

	_ = snowflakeRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{snowflakeEmbed(raw)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func snowflakeEmbed(raw string) *discordgo.MessageEmbed {
	id, err := converters.ParseSnowflake("id", raw)
	if err != nil {
		return utils.NewUserErrorEmbed("Not a Discord ID", err)
	}

	created := id.Time()
	embed := utils.NewOKEmbed(fmt.Sprintf("❄️ %s", id), "")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Created", Value: utils.RelativeAndFull(created)},
		{Name: "UTC", Value: created.UTC().Format("2006-01-02 15:04:05.000")},
	}
	return embed
}

func (m *Module) Service() types.ModuleService {
	return nil
}
