package reddit

import (
	"context"
	"net/url"
	"testing"

	"palbot/internal/commands/types"
	"palbot/internal/converters"
	"palbot/internal/usererr"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	media *converters.RedditMedia
	err   error
	got   string
}

func (f *fakeResolver) Resolve(_ context.Context, raw string) (*converters.RedditMedia, error) {
	f.got = raw
	return f.media, f.err
}

func run(t *testing.T, res resolver, raw string) *discordgo.WebhookEdit {
	t.Helper()

	m := New(&types.Dependencies{})
	m.reddit = res
	m.Register(map[string]*types.Command{}, &types.Dependencies{})

	var edit *discordgo.WebhookEdit
	origRespond, origEdit := redditRespond, redditEdit
	redditRespond = func(_ *discordgo.Session, _ *discordgo.Interaction, _ *discordgo.InteractionResponse) error {
		return nil
	}
	redditEdit = func(_ *discordgo.Session, _ *discordgo.Interaction, e *discordgo.WebhookEdit) (*discordgo.Message, error) {
		edit = e
		return nil, nil
	}
	defer func() { redditRespond, redditEdit = origRespond, origEdit }()

	m.handleRedditVideo(&discordgo.Session{}, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: "reddit-video", Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "url", Type: discordgo.ApplicationCommandOptionString, Value: raw},
		}},
	}})

	require.NotNil(t, edit)
	return edit
}

func TestRedditVideo(t *testing.T) {
	u, err := url.Parse("https://v.redd.it/abc123/DASH_720.mp4")
	require.NoError(t, err)
	res := &fakeResolver{media: &converters.RedditMedia{URL: u, Filename: "abc123.mp4"}}

	edit := run(t, res, "https://www.reddit.com/r/videos/comments/xyz/title/")

	assert.Equal(t, "https://www.reddit.com/r/videos/comments/xyz/title/", res.got)
	require.NotNil(t, edit.Content)
	assert.Equal(t, "🎬 **abc123.mp4**\nhttps://v.redd.it/abc123/DASH_720.mp4\n", *edit.Content)
}

func TestRedditVideoError(t *testing.T) {
	edit := run(t, &fakeResolver{err: usererr.New(usererr.InvalidInput, "Not a reddit URL.")}, "https://example.com")

	require.NotNil(t, edit.Embeds)
	assert.Equal(t, "Not a reddit URL.", (*edit.Embeds)[0].Description)
}
