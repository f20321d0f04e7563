package when

import (
	"context"
	"fmt"
	"time"

	"palbot/internal/commands/types"
	"palbot/internal/paginator"
	"palbot/internal/timeparse"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var (
	whenRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		return s.InteractionRespond(i, resp)
	}
	now = time.Now
)

// Module previews how a "when + what" argument is read, the same way
// /remind reads it.
type Module struct {
	splitter *timeparse.Splitter
}

func New(deps *types.Dependencies) *Module {
	return &Module{splitter: deps.Splitter}
}

func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["when"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "when",
			Description: "Show how a time and message would be understood",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "e.g. \"in 2 hours take the bread out\"",
					Required:    true,
				},
			},
		},
		HandlerFunc: m.handleWhen,
	}
}

func (m *Module) handleWhen(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var text string
	if opts := i.ApplicationCommandData().Options; len(opts) > 0 {
		text = opts[0].StringValue()
	}

	ctx := context.Background()
	userID := paginator.InteractionUserID(i.Interaction)

	var embed *discordgo.MessageEmbed
	result, err := m.splitter.SplitForUser(ctx, userID, text, now())
	if err != nil {
		embed = utils.NewUserErrorEmbed("Could not read that", err)
	} else {
		embed = previewEmbed(result, m.zoneName(ctx, userID))
	}

	_ = whenRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func (m *Module) zoneName(ctx context.Context, userID string) string {
	loc, err := m.splitter.Timezone(ctx, userID)
	if err != nil {
		return time.UTC.String()
	}
	return loc.String()
}

func previewEmbed(result timeparse.SplitResult, zone string) *discordgo.MessageEmbed {
	embed := utils.NewEmbed()
	embed.Title = "🕰️ Here's how I read that"
	embed.Color = utils.Colors.Info()
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "When", Value: utils.RelativeAndFull(result.When)},
		{Name: "What", Value: result.What},
		{Name: "Time zone", Value: fmt.Sprintf("`%s` (change it with `/timezone set`)", zone)},
	}
	return embed
}

func (m *Module) Service() types.ModuleService {
	return nil
}
