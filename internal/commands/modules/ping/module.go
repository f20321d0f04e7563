package ping

import (
	"fmt"

	"palbot/internal/commands/types"

	"github.com/bwmarrin/discordgo"
)

var pingRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return s.InteractionRespond(i, resp)
}

// Module implements the CommandModule interface for the ping command
type Module struct{}

// New creates a new ping module
func New(deps *types.Dependencies) *Module {
	return &Module{}
}

// Register adds the ping command to the command map
func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["ping"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "ping",
			Description: "Check if the bot is responsive",
		},
		HandlerFunc: m.handlePing,
	}
}

// handlePing handles the ping slash command
func (m *Module) handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	content := "🏓 Pong! Bot is online and responsive."
	if latency := s.HeartbeatLatency(); latency > 0 {
		content += fmt.Sprintf(" Gateway latency: %dms", latency.Milliseconds())
	}

	_ = pingRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

// Service returns nil as this module has no services requiring initialization
func (m *Module) Service() types.ModuleService {
	return nil
}
