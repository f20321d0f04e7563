package help

import (
	"context"
	"errors"
	"testing"

	"palbot/internal/commands/types"
	"palbot/internal/paginator"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePager struct {
	source paginator.PageSource
	opts   paginator.StartOptions
	err    error
}

func (f *fakePager) Start(_ context.Context, _ *discordgo.Session, _ *discordgo.InteractionCreate, source paginator.PageSource, so paginator.StartOptions) (*paginator.View, error) {
	f.source, f.opts = source, so
	return nil, f.err
}

func registered(t *testing.T, pager types.Pager) map[string]*types.Command {
	t.Helper()
	deps := &types.Dependencies{Pager: pager}
	cmds := map[string]*types.Command{}
	New(deps).Register(cmds, deps)
	cmds["remind"] = &types.Command{ApplicationCommand: &discordgo.ApplicationCommand{
		Name:        "remind",
		Description: "Reminders",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "me", Description: "Set one"},
			{Type: discordgo.ApplicationCommandOptionString, Name: "ignored", Description: "not a subcommand"},
		},
	}}
	cmds["secret"] = &types.Command{ApplicationCommand: &discordgo.ApplicationCommand{Name: "secret"}, Development: true}
	return cmds
}

func TestCommandFields(t *testing.T) {
	fields := commandFields(registered(t, nil))

	require.Len(t, fields, 2)
	assert.Equal(t, "/help", fields[0].Name)
	assert.Equal(t, "/remind", fields[1].Name)
	assert.Equal(t, "Reminders\n• `/remind me` - Set one", fields[1].Value)
}

func TestHelpStartsPaginator(t *testing.T) {
	pager := &fakePager{}
	cmds := registered(t, pager)

	cmds["help"].HandlerFunc(&discordgo.Session{}, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}})

	require.NotNil(t, pager.source)
	assert.True(t, pager.opts.Ephemeral)
	pages, known := pager.source.MaxPages()
	assert.True(t, known)
	assert.Equal(t, 1, pages)
}

func TestHelpReportsStartFailure(t *testing.T) {
	var got *discordgo.InteractionResponse
	orig := helpRespond
	helpRespond = func(_ *discordgo.Session, _ *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		got = resp
		return nil
	}
	defer func() { helpRespond = orig }()

	cmds := registered(t, &fakePager{err: errors.New("boom")})
	cmds["help"].HandlerFunc(&discordgo.Session{}, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}})

	require.NotNil(t, got)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, got.Data.Flags)
	assert.Equal(t, "An unknown error occurred, sorry", got.Data.Embeds[0].Description)
}
