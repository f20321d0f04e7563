package help

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"palbot/internal/commands/types"
	"palbot/internal/paginator"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

var helpRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return s.InteractionRespond(i, resp)
}

// HelpModule implements the CommandModule interface for the help command
type HelpModule struct {
	cmds  map[string]*types.Command
	pager types.Pager
}

// New creates a new help module
func New(deps *types.Dependencies) *HelpModule {
	return &HelpModule{pager: deps.Pager}
}

// Register adds the help command to the command map. The map is kept so the
// listing includes modules registered later.
func (m *HelpModule) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	m.cmds = cmds
	cmds["help"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "help",
			Description: "Show all available commands",
		},
		HandlerFunc: m.handleHelp,
	}
}

// handleHelp pages through every registered command
func (m *HelpModule) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	source := paginator.NewFieldPageSource(commandFields(m.cmds))
	source.Embed = &discordgo.MessageEmbed{
		Title:       "🤖 Pal Bot - Help",
		Description: "Available commands",
		Color:       utils.Colors.Info(),
	}
	source.ClearDescription = false

	if m.pager == nil {
		_ = helpRespond(s, i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{utils.NewErrorEmbed("Help unavailable", "Try again later.")},
				Flags:  discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	if _, err := m.pager.Start(context.Background(), s, i, source, paginator.StartOptions{Ephemeral: true}); err != nil {
		_ = helpRespond(s, i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{utils.NewUserErrorEmbed("Help unavailable", err)},
				Flags:  discordgo.MessageFlagsEphemeral,
			},
		})
	}
}

// commandFields lists non-development commands alphabetically, with their
// subcommands as bullet points.
func commandFields(cmds map[string]*types.Command) []paginator.Field {
	names := make([]string, 0, len(cmds))
	for name, c := range cmds {
		if c.Development {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]paginator.Field, 0, len(names))
	for _, name := range names {
		ac := cmds[name].ApplicationCommand

		var value strings.Builder
		value.WriteString(ac.Description)
		for _, opt := range ac.Options {
			if opt.Type != discordgo.ApplicationCommandOptionSubCommand {
				continue
			}
			fmt.Fprintf(&value, "\n• `/%s %s` - %s", name, opt.Name, opt.Description)
		}

		fields = append(fields, paginator.Field{Name: "/" + name, Value: value.String()})
	}
	return fields
}

// Service returns nil as this module has no services requiring initialization
func (m *HelpModule) Service() types.ModuleService {
	return nil
}
