package ping

import (
	"testing"

	"palbot/internal/commands/types"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	var got *discordgo.InteractionResponse
	orig := pingRespond
	pingRespond = func(_ *discordgo.Session, _ *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		got = resp
		return nil
	}
	defer func() { pingRespond = orig }()

	cmds := map[string]*types.Command{}
	mod := New(&types.Dependencies{})
	mod.Register(cmds, &types.Dependencies{})
	require.Contains(t, cmds, "ping")

	cmds["ping"].HandlerFunc(&discordgo.Session{}, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}})

	require.NotNil(t, got)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, got.Type)
	assert.Contains(t, got.Data.Content, "Pong!")
	assert.Nil(t, mod.Service())
}
