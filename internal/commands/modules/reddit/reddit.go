package reddit

import (
	"context"

	"palbot/internal/commands/types"
	"palbot/internal/converters"
	"palbot/internal/utils"

	"github.com/MakeNowJust/heredoc"
	"github.com/bwmarrin/discordgo"
)

var (
	redditRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		return s.InteractionRespond(i, resp)
	}
	redditEdit = func(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
		return s.InteractionResponseEdit(i, edit)
	}
)

// resolver is the part of converters.RedditResolver this module needs.
type resolver interface {
	Resolve(ctx context.Context, raw string) (*converters.RedditMedia, error)
}

// Module links the playable video behind a Reddit post.
type Module struct {
	reddit resolver
}

func New(deps *types.Dependencies) *Module {
	m := &Module{}
	if deps.Reddit != nil {
		m.reddit = deps.Reddit
	}
	return m
}

func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["reddit-video"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "reddit-video",
			Description: "Get a playable link to the video in a Reddit post",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "url",
					Description: "A reddit.com post or v.redd.it link",
					Required:    true,
				},
			},
		},
		HandlerFunc: m.handleRedditVideo,
	}
}

func (m *Module) handleRedditVideo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = redditRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	var raw string
	if opts := i.ApplicationCommandData().Options; len(opts) > 0 {
		raw = opts[0].StringValue()
	}

	if m.reddit == nil {
		_, _ = redditEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewErrorEmbed("Reddit unavailable", "Try again later.")},
		})
		return
	}

	media, err := m.reddit.Resolve(context.Background(), raw)
	if err != nil {
		_, _ = redditEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewUserErrorEmbed("Could not get that video", err)},
		})
		return
	}

	_, _ = redditEdit(s, i.Interaction, &discordgo.WebhookEdit{
		Content: utils.StringPtr(videoMessage(media)),
	})
}

func videoMessage(media *converters.RedditMedia) string {
	return heredoc.Docf(`
		🎬 **%s**
		%s
	`, media.Filename, media.URL.String())
}

// Service returns nil as this module has no services requiring initialization
func (m *Module) Service() types.ModuleService {
	return nil
}
