package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"palbot/internal/commands/types"
	"palbot/internal/embeds"
	"palbot/internal/games"
	"palbot/internal/paginator"
	"palbot/internal/utils"

	"github.com/Henry-Sarabia/igdb/v2"
	"github.com/bwmarrin/discordgo"
)

var (
	gameRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		return s.InteractionRespond(i, resp)
	}
	gameEdit = func(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
		return s.InteractionResponseEdit(i, edit)
	}
	gameSearch = games.ExactMatchWithSuggestions
)

// Module implements the CommandModule interface for the game command
type Module struct {
	igdbClient *igdb.Client
	pager      types.Pager

	// IGDB detail lookups are cached per game so paging back and forth
	// does not refetch them.
	mu     sync.Mutex
	embeds map[int]*discordgo.MessageEmbed
}

// New creates a new game module
func New(deps *types.Dependencies) *Module {
	return &Module{pager: deps.Pager, embeds: make(map[int]*discordgo.MessageEmbed)}
}

// Register adds the game command to the command map
func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	m.igdbClient = deps.IGDBClient

	cmds["game"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "game",
			Description: "Look up information about a video game",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "The name of the game to search for",
					Required:    true,
				},
			},
		},
		HandlerFunc: m.handleGame,
	}
}

// handleGame searches IGDB and pages through the results, best match first
func (m *Module) handleGame(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Acknowledge the interaction immediately
	_ = gameRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	var gameName string
	if commandOptions := i.ApplicationCommandData().Options; len(commandOptions) > 0 {
		gameName = strings.TrimSpace(commandOptions[0].StringValue())
	}
	if gameName == "" {
		_, _ = gameEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Content: utils.StringPtr("❌ Please provide a valid game name to search for."),
		})
		return
	}

	if m.igdbClient == nil || m.pager == nil {
		_, _ = gameEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewErrorEmbed("Game lookup unavailable", "IGDB is not configured for this bot.")},
		})
		return
	}

	result, err := gameSearch(m.igdbClient, gameName)
	if err != nil {
		_, _ = gameEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewErrorEmbed(fmt.Sprintf("Encountered an error while searching for game: `%s`", gameName), err.Error())},
		})
		return
	}

	found := result.Results()
	if len(found) == 0 {
		_, _ = gameEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewNoResultsEmbed(fmt.Sprintf("No games found matching: **%s**", gameName))},
		})
		return
	}

	source := paginator.NewListSource(found, func(g *igdb.Game) paginator.Render {
		return paginator.Embed(m.gameEmbed(g))
	})
	if _, err := m.pager.Start(context.Background(), s, i, source, paginator.StartOptions{Deferred: true, CheckEmbeds: true}); err != nil {
		_, _ = gameEdit(s, i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{utils.NewUserErrorEmbed("Could not show results", err)},
		})
	}
}

// gameEmbed builds (or reuses) the detail embed for one search hit.
func (m *Module) gameEmbed(g *igdb.Game) *discordgo.MessageEmbed {
	m.mu.Lock()
	cached, ok := m.embeds[g.ID]
	m.mu.Unlock()
	if ok {
		return cached
	}

	embed := m.newGameEmbed(m.newGameEmbedOptionsFromGame(g))

	m.mu.Lock()
	m.embeds[g.ID] = embed
	m.mu.Unlock()
	return embed
}

// gameEmbedOptions contains all the data needed to create a game embed
type gameEmbedOptions struct {
	Name             string
	URL              string
	Summary          string
	FirstReleaseDate int
	CoverURL         string
	Websites         map[string]string
	MultiplayerModes []igdb.MultiplayerMode
	Genres           []string
	IGDBClient       *igdb.Client
}

// newGameEmbed creates a Discord embed for a game using the provided options
func (m *Module) newGameEmbed(options gameEmbedOptions) *discordgo.MessageEmbed {
	// Create the embed
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎮 %s", options.Name),
		Color: utils.Colors.Fancy(),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Data from IGDB",
		},
	}

	embed.URL = options.URL
	embed.Description = embeds.Shorten(options.Summary, 1024)

	// Add release date if available
	if options.FirstReleaseDate != 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "📅 Release Date",
			Value:  m.formatReleaseDate(options.FirstReleaseDate),
			Inline: true,
		})
	}

	// Add websites if available
	if len(options.Websites) > 0 {
		websitesEmbedField := &discordgo.MessageEmbedField{
			Name:   "🛒 Sites",
			Value:  "",
			Inline: true,
		}
		siteNames := make([]string, 0, len(options.Websites))
		for siteName := range options.Websites {
			siteNames = append(siteNames, siteName)
		}
		sort.Strings(siteNames)
		for _, siteName := range siteNames {
			websitesEmbedField.Value += fmt.Sprintf("[%s](%s)\n", siteName, options.Websites[siteName])
		}

		if websitesEmbedField.Value != "" {
			embed.Fields = append(embed.Fields, websitesEmbedField)
		}
	}

	// Add multiplayer information if available
	if len(options.MultiplayerModes) > 0 {
		var onlineMax int
		var onlineCoopMax int

		for _, mode := range options.MultiplayerModes {
			if mode.Onlinemax > onlineMax {
				onlineMax = mode.Onlinemax
			}
			if mode.Onlinecoopmax > onlineCoopMax {
				onlineCoopMax = mode.Onlinecoopmax
			}
		}
		var multiplayerText string

		isMultiplayer := onlineMax > 0 || onlineCoopMax > 0
		if isMultiplayer {
			if onlineMax > 0 {
				multiplayerText = fmt.Sprintf("Max %d players", onlineMax)
			} else if onlineCoopMax > 0 {
				multiplayerText = fmt.Sprintf("Co-op up to %d players", onlineCoopMax)
			}
		}

		if multiplayerText != "" {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "🌐 Online Multiplayer",
				Value:  multiplayerText,
				Inline: true,
			})
		}
	}

	// Add the genres if available
	if len(options.Genres) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "🎮 Genres",
			Value:  strings.Join(options.Genres, ", "),
			Inline: true,
		})
	}

	// Add cover image if available
	if options.CoverURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{
			URL: options.CoverURL,
		}
	}

	return embed
}

func (m *Module) newGameEmbedOptionsFromGame(game *igdb.Game) gameEmbedOptions {
	options := gameEmbedOptions{
		Name:             game.Name,
		URL:              game.URL,
		Summary:          game.Summary,
		FirstReleaseDate: game.FirstReleaseDate,
		Websites:         make(map[string]string),
		IGDBClient:       m.igdbClient,
	}

	// Get detailed website information
	websites, err := m.igdbClient.Websites.List(game.Websites, igdb.SetFields("url", "category"))
	if err == nil {
		for _, website := range websites {
			switch website.Category {
			case igdb.WebsiteSteam:
				options.Websites["Steam"] = website.URL
				continue
			case igdb.WebsiteOfficial:
				options.Websites["Official"] = website.URL
				continue
			case 17: // GOG.com
				options.Websites["GOG"] = website.URL
				continue
			}
		}
	}

	// Get detailed multiplayer modes
	if len(game.MultiplayerModes) > 0 {
		modes, err := m.igdbClient.MultiplayerModes.List(game.MultiplayerModes, igdb.SetFields("*"))
		if err == nil && len(modes) > 0 {
			for _, mode := range modes {
				options.MultiplayerModes = append(options.MultiplayerModes, *mode)
			}
		}
	}

	// Get detailed genre information
	if len(game.Genres) > 0 {
		genres, err := options.IGDBClient.Genres.List(game.Genres, igdb.SetFields("name"))
		if err == nil && len(genres) > 0 {
			for _, genre := range genres {
				options.Genres = append(options.Genres, genre.Name)
			}
		}
	}

	// Get cover image if available
	if game.Cover != 0 {
		cover, err := options.IGDBClient.Covers.Get(game.Cover, igdb.SetFields("image_id"))
		if err == nil {
			// Generate cover image URL using IGDB's image service
			if imageURL, err := cover.SizedURL(igdb.SizeCoverSmall, 1); err == nil {
				options.CoverURL = imageURL
			}
		}
	}

	return options
}

// formatReleaseDate converts Unix timestamp to human readable date
func (m *Module) formatReleaseDate(timestamp int) string {
	if timestamp == 0 {
		return "TBA"
	}
	t := time.Unix(int64(timestamp), 0).UTC()
	return t.Format("January 2, 2006")
}

// Service returns nil as this module has no services requiring initialization
func (m *Module) Service() types.ModuleService {
	return nil
}
