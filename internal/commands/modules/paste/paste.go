package paste

import (
	"fmt"

	"palbot/internal/commands/types"
	"palbot/internal/converters"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

const mystbinBaseURL = "https://mystb.in/"

var pasteRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return s.InteractionRespond(i, resp)
}

// Module finds Mystbin paste IDs in text and links them.
type Module struct{}

func New(deps *types.Dependencies) *Module {
	return &Module{}
}

func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["paste"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "paste",
			Description: "Link a Mystbin paste from its ID or URL",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "paste",
					Description: "A paste ID like BrightOrangeCat or a mystb.in link",
					Required:    true,
				},
			},
		},
		HandlerFunc: m.handlePaste,
	}
}

func (m *Module) handlePaste(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var text string
	if opts := i.ApplicationCommandData().Options; len(opts) > 0 {
		text = opts[0].StringValue()
	}

	data := &discordgo.InteractionResponseData{}
	if id, err := converters.MystbinPasteID(text); err != nil {
		data.Embeds = []*discordgo.MessageEmbed{utils.NewUserErrorEmbed("No paste found", err)}
		data.Flags = discordgo.MessageFlagsEphemeral
	} else {
		data.Content = fmt.Sprintf("📋 %s%s", mystbinBaseURL, id)
	}

	_ = pasteRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (m *Module) Service() types.ModuleService {
	return nil
}
