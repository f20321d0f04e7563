package commands

import (
	"fmt"
	"net/http"
	stdtime "time"

	"palbot/internal/commands/modules/game"
	"palbot/internal/commands/modules/help"
	botlog "palbot/internal/commands/modules/log"
	"palbot/internal/commands/modules/manga"
	"palbot/internal/commands/modules/paste"
	"palbot/internal/commands/modules/ping"
	"palbot/internal/commands/modules/reddit"
	"palbot/internal/commands/modules/remind"
	"palbot/internal/commands/modules/snowflake"
	"palbot/internal/commands/modules/status"
	"palbot/internal/commands/modules/time"
	"palbot/internal/commands/modules/timezone"
	"palbot/internal/commands/modules/when"
	"palbot/internal/commands/types"
	internalConfig "palbot/internal/config"
	"palbot/internal/converters"
	"palbot/internal/database"
	"palbot/internal/mangadex"
	"palbot/internal/paginator"
	"palbot/internal/timeparse"

	"github.com/Henry-Sarabia/igdb/v2"
	"github.com/bwmarrin/discordgo"
)

// httpTimeout bounds every outbound call to Duckling, Reddit and MangaDex.
const httpTimeout = 15 * stdtime.Second

// mangaDexUserAgent identifies the bot to MangaDex.
const mangaDexUserAgent = "palbot (Discord bot)"

// ModuleHandler manages command modules and routes interactions.
//
// Component and modal interactions whose custom ID starts with the
// paginator prefix belong to the pagination manager; everything else is
// dropped with a warning since no module owns other components.
type ModuleHandler struct {
	commands map[string]*types.Command
	modules  map[string]types.CommandModule
	config   *internalConfig.Config
	db       *database.DB
	deps     *types.Dependencies
	pager    *paginator.Manager
}

// NewModuleHandler creates a new module-based command handler
func NewModuleHandler(cfg *internalConfig.Config) *ModuleHandler {
	deps, db := NewDependencies(cfg)

	h := &ModuleHandler{
		commands: make(map[string]*types.Command),
		modules:  make(map[string]types.CommandModule),
		config:   cfg,
		db:       db,
		deps:     deps,
	}
	h.pager, _ = deps.Pager.(*paginator.Manager)

	h.registerModules()

	return h
}

// NewDependencies wires the shared clients every module draws from. The
// database is returned separately so callers can close it; it is nil when
// it could not be opened.
func NewDependencies(cfg *internalConfig.Config) (*types.Dependencies, *database.DB) {
	httpClient := &http.Client{Timeout: httpTimeout}

	db, err := database.NewDB(cfg.GetDatabasePath())
	if err != nil {
		cfg.Logger.Warnf("Warning: Failed to initialize database: %v", err)
		db = nil
	}

	var igdbClient *igdb.Client
	if cfg.GetIGDBClientID() != "" && cfg.GetIGDBClientToken() != "" {
		igdbClient = igdb.NewClient(cfg.GetIGDBClientID(), cfg.GetIGDBClientToken(), nil)
	}

	parser := timeparse.NewParser(cfg.GetTimeParser(), cfg.GetDucklingURL(), httpClient)
	var splitter *timeparse.Splitter
	if db != nil {
		splitter = timeparse.NewSplitter(parser, db)
	} else {
		splitter = timeparse.NewSplitter(parser, nil)
	}

	deps := &types.Dependencies{
		Config:     cfg,
		DB:         db,
		IGDBClient: igdbClient,
		Session:    nil, // Set later
		HTTPClient: httpClient,
		Splitter:   splitter,
		Pager: paginator.NewManager(paginator.ManagerOptions{
			OwnerID:       cfg.GetOwnerID(),
			Timeout:       cfg.GetPaginationTimeout(),
			PromptTimeout: cfg.GetPagePromptTimeout(),
			Logger:        cfg.Logger,
		}),
		MangaDex: mangadex.New(cfg.GetMangaDexBaseURL(), mangaDexUserAgent, httpClient),
		Reddit:   converters.NewRedditResolver(httpClient, cfg.GetRedditUserAgent()),
	}
	return deps, db
}

// registerModules registers all command modules
func (h *ModuleHandler) registerModules() {
	// Define modules with their constructors and names
	modules := []struct {
		name   string
		module types.CommandModule
	}{
		{"ping", ping.New(h.deps)},
		{"help", help.New(h.deps)},
		{"time", time.New(h.deps)},
		{"when", when.New(h.deps)},
		{"remind", remind.New(h.deps)},
		{"timezone", timezone.New(h.deps)},
		{"snowflake", snowflake.New(h.deps)},
		{"reddit", reddit.New(h.deps)},
		{"paste", paste.New(h.deps)},
		{"game", game.New(h.deps)},
		{"manga", manga.New(h.deps)},
		{"status", status.New(h.deps)},
		{"log", botlog.New(h.deps)},
	}

	for _, m := range modules {
		m.module.Register(h.commands, h.deps)
		h.modules[m.name] = m.module
	}
}

// GetModule returns a module by name.
func (h *ModuleHandler) GetModule(name string) types.CommandModule {
	return h.modules[name]
}

// GetDB returns the database instance
func (h *ModuleHandler) GetDB() *database.DB {
	return h.db
}

// Commands returns the registered commands by name.
func (h *ModuleHandler) Commands() map[string]*types.Command {
	return h.commands
}

// RegisterCommands registers all slash commands with Discord
func (h *ModuleHandler) RegisterCommands(s *discordgo.Session) error {
	existingCommands, err := s.ApplicationCommands(s.State.User.ID, "")
	if err != nil {
		h.config.Logger.Warnf("Error fetching existing commands: %v", err)
		return err
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, ec := range existingCommands {
		existingByName[ec.Name] = ec
	}

	for _, c := range h.commands {
		if c.Development {
			// Unregister development commands if they exist
			if existing := existingByName[c.ApplicationCommand.Name]; existing != nil {
				if err := s.ApplicationCommandDelete(s.State.User.ID, "", existing.ID); err != nil {
					h.config.Logger.Warnf("Error deleting command %s: %v", c.ApplicationCommand.Name, err)
				} else {
					h.config.Logger.Infof("Unregistered command: %s", c.ApplicationCommand.Name)
				}
			}
			continue
		}

		if existing := existingByName[c.ApplicationCommand.Name]; existing != nil {
			cmd, err := s.ApplicationCommandEdit(s.State.User.ID, "", existing.ID, c.ApplicationCommand)
			if err != nil {
				return err
			}
			c.ApplicationCommand.ID = cmd.ID
			h.config.Logger.Infof("Updated command: %s", cmd.Name)
		} else {
			cmd, err := s.ApplicationCommandCreate(s.State.User.ID, "", c.ApplicationCommand)
			if err != nil {
				return err
			}
			c.ApplicationCommand.ID = cmd.ID
			h.config.Logger.Infof("Registered command: %s", cmd.Name)
		}
	}

	return nil
}

// HandleInteraction routes slash command interactions to appropriate handlers
func (h *ModuleHandler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	commandName := i.ApplicationCommandData().Name
	if cmd, exists := h.commands[commandName]; exists {
		cmd.HandlerFunc(s, i)
	}
}

// HandleComponentInteraction routes component interactions to the paginator
func (h *ModuleHandler) HandleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h.pager != nil && h.pager.HandleComponent(s, i) {
		return
	}
	h.config.Logger.Warnf("Unhandled component interaction: %s", i.MessageComponentData().CustomID)
}

// HandleModalSubmit routes modal submissions to the paginator
func (h *ModuleHandler) HandleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h.pager != nil && h.pager.HandleModalSubmit(s, i) {
		return
	}
	h.config.Logger.Warnf("Unhandled modal submit: %s", i.ModalSubmitData().CustomID)
}

// UnregisterCommands removes all registered commands
func (h *ModuleHandler) UnregisterCommands(s *discordgo.Session) {
	existingCommands, err := s.ApplicationCommands(s.State.User.ID, "")
	if err != nil {
		h.config.Logger.Warnf("Error fetching existing commands: %v", err)
		return
	}

	for _, existingCmd := range existingCommands {
		if _, exists := h.commands[existingCmd.Name]; exists {
			err := s.ApplicationCommandDelete(s.State.User.ID, "", existingCmd.ID)
			if err != nil {
				h.config.Logger.Warnf("Error deleting command %s: %v", existingCmd.Name, err)
			} else {
				h.config.Logger.Infof("Unregistered command: %s", existingCmd.Name)
			}
		}
	}
}

// InitializeModuleServices hydrates services with the Discord session.
// Called after the Discord session is established.
func (h *ModuleHandler) InitializeModuleServices(s *discordgo.Session) error {
	// Update dependencies with session
	h.deps.Session = s

	// Hydrate services for all modules with the Discord session
	for _, module := range h.modules {
		if service := module.Service(); service != nil {
			if err := service.HydrateServiceDiscordSession(s); err != nil {
				return fmt.Errorf("failed to hydrate service with Discord session: %w", err)
			}
		}
	}

	return nil
}

// RegisterModuleSchedulers registers recurring tasks from all modules with the scheduler.
// Called after services are initialized.
func (h *ModuleHandler) RegisterModuleSchedulers(scheduler interface {
	RegisterNewMinuteFunc(fn func() error)
	RegisterNewHourFunc(fn func() error)
}) {
	for _, module := range h.modules {
		if service := module.Service(); service != nil {
			for _, fn := range service.MinuteFuncs() {
				scheduler.RegisterNewMinuteFunc(fn)
			}
			for _, fn := range service.HourFuncs() {
				scheduler.RegisterNewHourFunc(fn)
			}
		}
	}
}

// Shutdown closes every open pagination menu and the database.
func (h *ModuleHandler) Shutdown() {
	if h.pager != nil {
		h.pager.Shutdown()
	}
	if h.db != nil {
		if err := h.db.Close(); err != nil {
			h.config.Logger.Warnf("Error closing database: %v", err)
		}
	}
}

// HandleAutocomplete answers autocomplete requests with no suggestions.
// No command declares autocompleted options.
func (h *ModuleHandler) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: []*discordgo.ApplicationCommandOptionChoice{}},
	})
	if err != nil {
		h.config.Logger.Warnf("Error answering autocomplete: %v", err)
	}
}
