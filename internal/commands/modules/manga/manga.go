package manga

import (
	"context"
	"strings"

	"palbot/internal/commands/types"
	"palbot/internal/embeds"
	"palbot/internal/mangadex"
	"palbot/internal/paginator"
	"palbot/internal/usererr"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

// searchLimit caps how many titles a search pages through.
const searchLimit = 10

var (
	mangaRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		return s.InteractionRespond(i, resp)
	}
	mangaEdit = func(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
		return s.InteractionResponseEdit(i, edit)
	}
	// channelNSFW reports whether covers of adult titles may be shown in
	// the channel.
	channelNSFW = func(s *discordgo.Session, channelID string) bool {
		if s == nil || s.State == nil {
			return false
		}
		ch, err := s.State.Channel(channelID)
		if err != nil {
			if ch, err = s.Channel(channelID); err != nil {
				return false
			}
		}
		return ch.NSFW
	}
)

// mangaSource is the part of mangadex.Client this module needs.
type mangaSource interface {
	SearchManga(ctx context.Context, title string, limit int) ([]*mangadex.Manga, error)
	Manga(ctx context.Context, id string) (*mangadex.Manga, error)
	Chapter(ctx context.Context, id string) (*mangadex.Chapter, error)
}

// Module looks up titles and chapters on MangaDex.
type Module struct {
	mangadex mangaSource
	pager    types.Pager
}

func New(deps *types.Dependencies) *Module {
	m := &Module{pager: deps.Pager}
	if deps.MangaDex != nil {
		m.mangadex = deps.MangaDex
	}
	return m
}

func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	cmds["manga"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "manga",
			Description: "Look things up on MangaDex",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "search",
					Description: "Search titles by name",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "The title to search for", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "title",
					Description: "Show a title by its MangaDex ID",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "The manga ID", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "chapter",
					Description: "Show a chapter by its MangaDex ID",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "The chapter ID", Required: true},
					},
				},
			},
		},
		HandlerFunc: m.handleManga,
	}
}

func (m *Module) handleManga(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	sub := options[0]
	var arg string
	if len(sub.Options) > 0 {
		arg = strings.TrimSpace(sub.Options[0].StringValue())
	}

	_ = mangaRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	if err := m.run(context.Background(), s, i, sub.Name, arg); err != nil {
		_, _ = mangaEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewUserErrorEmbed("MangaDex", err)},
		})
	}
}

func (m *Module) run(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub, arg string) error {
	if m.mangadex == nil {
		return usererr.New(usererr.UpstreamUnavailable, "MangaDex lookups are not available right now.")
	}
	nsfw := channelNSFW(s, i.ChannelID)

	switch sub {
	case "search":
		if m.pager == nil {
			return usererr.New(usererr.UpstreamUnavailable, "MangaDex lookups are not available right now.")
		}
		results, err := m.mangadex.SearchManga(ctx, arg, searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return usererr.New(usererr.InvalidInput, "No titles found on MangaDex.")
		}
		pages := make([]*discordgo.MessageEmbed, 0, len(results))
		for _, r := range results {
			pages = append(pages, embeds.Manga(r, nsfw))
		}
		_, err = m.pager.Start(ctx, s, i, paginator.NewEmbedListSource(pages), paginator.StartOptions{Deferred: true, CheckEmbeds: true})
		return err
	case "title":
		manga, err := m.mangadex.Manga(ctx, arg)
		if err != nil {
			return err
		}
		return m.show(s, i, embeds.Manga(manga, nsfw))
	case "chapter":
		chapter, err := m.mangadex.Chapter(ctx, arg)
		if err != nil {
			return err
		}
		return m.show(s, i, embeds.Chapter(chapter, nsfw))
	}
	return usererr.New(usererr.InvalidInput, "Unknown subcommand.")
}

func (m *Module) show(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	_, err := mangaEdit(s, i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

func (m *Module) Service() types.ModuleService {
	return nil
}
