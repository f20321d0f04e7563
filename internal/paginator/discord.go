package paginator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// CustomIDPrefix marks component and modal custom IDs owned by the paginator.
const CustomIDPrefix = "pages"

// DefaultPromptTimeout bounds how long the page-jump modal waits.
const DefaultPromptTimeout = 2 * time.Minute

const (
	pageInputCustomID = "page"
	expiredMessage    = "This pagination menu is no longer active."
)

// Discord REST calls, swapped out in tests.
var (
	interactionRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		return s.InteractionRespond(i, resp)
	}
	interactionEdit = func(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
		return s.InteractionResponseEdit(i, edit)
	}
	interactionDelete = func(s *discordgo.Session, i *discordgo.Interaction) error {
		return s.InteractionResponseDelete(i)
	}
	followupCreate = func(s *discordgo.Session, i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
		return s.FollowupMessageCreate(i, true, params)
	}
)

// ManagerOptions configure every session a Manager starts.
type ManagerOptions struct {
	OwnerID       string
	Timeout       time.Duration
	PromptTimeout time.Duration
	Logger        *log.Logger
}

// StartOptions configure a single session.
type StartOptions struct {
	Compact     bool
	CheckEmbeds bool
	// Deferred is set when the command interaction was already deferred, so
	// the first page edits the deferred response.
	Deferred  bool
	Ephemeral bool
	// Content is shown above the first page when it has no text itself.
	Content string
}

type managedSession struct {
	view    *View
	surface *discordSurface
}

type promptReply struct {
	in    *discordInteraction
	value string
}

// Manager runs paginated messages on Discord and routes their button and
// modal interactions back to the owning session.
type Manager struct {
	opts   ManagerOptions
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*managedSession
	prompts  map[string]chan promptReply
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PromptTimeout <= 0 {
		opts.PromptTimeout = DefaultPromptTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*managedSession),
		prompts:  make(map[string]chan promptReply),
	}
}

// Start posts the first page of source in reply to the command interaction i.
func (m *Manager) Start(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, source PageSource, so StartOptions) (*View, error) {
	id := uuid.NewString()
	surface := &discordSurface{
		session:   s,
		sessionID: id,
		origin:    i.Interaction,
		latest:    i.Interaction,
		deferred:  so.Deferred,
		ephemeral: so.Ephemeral,
	}
	view := NewView(source, Options{
		InvokerID:   InteractionUserID(i.Interaction),
		OwnerID:     m.opts.OwnerID,
		Compact:     so.Compact,
		CheckEmbeds: so.CheckEmbeds,
		Timeout:     m.opts.Timeout,
		Logger:      m.logger,
		OnFinish:    func() { m.remove(id) },
	})

	m.mu.Lock()
	m.sessions[id] = &managedSession{view: view, surface: surface}
	m.mu.Unlock()

	if err := view.Start(ctx, surface, so.Content); err != nil {
		m.remove(id)
		return nil, err
	}
	return view, nil
}

// ActiveSessions returns the number of sessions still accepting input.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown times out every running session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	views := make([]*View, 0, len(m.sessions))
	for _, ms := range m.sessions {
		views = append(views, ms.view)
	}
	m.mu.Unlock()

	for _, v := range views {
		v.Timeout()
	}
}

// HandleComponent handles a paginator button press. It returns false when
// the interaction belongs to someone else.
func (m *Manager) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	sessionID, action, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return false
	}

	ctx := context.Background()
	in := &discordInteraction{manager: m, session: s, interaction: i.Interaction, sessionID: sessionID}

	ms := m.lookup(sessionID)
	if ms == nil {
		if err := in.Notify(ctx, expiredMessage); err != nil {
			m.logger.Warnf("Pagination: failed to answer expired session %s: %v", sessionID, err)
		}
		return true
	}

	ms.surface.track(i.Interaction)
	if err := ms.view.Handle(ctx, in, Action(action)); err != nil {
		m.logger.Debugf("Pagination: session %s %s: %v", sessionID, action, err)
	}
	return true
}

// HandleModalSubmit delivers a page-jump answer to the session waiting for
// it. It returns false when the modal belongs to someone else.
func (m *Manager) HandleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	data := i.ModalSubmitData()
	sessionID, action, ok := parseCustomID(data.CustomID)
	if !ok || Action(action) != ActionJump {
		return false
	}

	in := &discordInteraction{manager: m, session: s, interaction: i.Interaction, sessionID: sessionID}

	m.mu.Lock()
	ch, waiting := m.prompts[data.CustomID]
	delete(m.prompts, data.CustomID)
	m.mu.Unlock()

	if !waiting {
		if err := in.Notify(context.Background(), tookTooLongMessage); err != nil {
			m.logger.Warnf("Pagination: failed to answer late page prompt: %v", err)
		}
		return true
	}

	ch <- promptReply{in: in, value: modalValue(data, pageInputCustomID)}
	return true
}

func (m *Manager) lookup(id string) *managedSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) addPrompt(customID string) chan promptReply {
	ch := make(chan promptReply, 1)
	m.mu.Lock()
	m.prompts[customID] = ch
	m.mu.Unlock()
	return ch
}

func (m *Manager) removePrompt(customID string) {
	m.mu.Lock()
	delete(m.prompts, customID)
	m.mu.Unlock()
}

// customID builds "pages::<session>::<action>[::<suffix>]".
func customID(sessionID string, action Action, suffix ...string) string {
	parts := append([]string{CustomIDPrefix, sessionID, string(action)}, suffix...)
	return strings.Join(parts, "::")
}

func parseCustomID(id string) (sessionID, action string, ok bool) {
	parts := strings.Split(id, "::")
	if len(parts) < 3 || parts[0] != CustomIDPrefix || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// InteractionUserID returns the ID of the user behind an interaction in a
// guild or a DM.
func InteractionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// modalValue finds a text input's value. Submitted rows arrive as values or
// pointers depending on how they were decoded.
func modalValue(data discordgo.ModalSubmitInteractionData, inputID string) string {
	for _, comp := range data.Components {
		var row *discordgo.ActionsRow
		switch v := comp.(type) {
		case discordgo.ActionsRow:
			row = &v
		case *discordgo.ActionsRow:
			row = v
		default:
			continue
		}
		for _, inner := range row.Components {
			switch ti := inner.(type) {
			case *discordgo.TextInput:
				if ti.CustomID == inputID {
					return strings.TrimSpace(ti.Value)
				}
			case discordgo.TextInput:
				if ti.CustomID == inputID {
					return strings.TrimSpace(ti.Value)
				}
			}
		}
	}
	return ""
}

func buttonStyle(s Style) discordgo.ButtonStyle {
	switch s {
	case StylePrimary:
		return discordgo.PrimaryButton
	case StyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

// components lays controls out as action rows of buttons.
func components(sessionID string, controls []Control) []discordgo.MessageComponent {
	var rows [][]discordgo.MessageComponent
	for _, c := range controls {
		for len(rows) <= c.Row {
			rows = append(rows, nil)
		}
		rows[c.Row] = append(rows[c.Row], &discordgo.Button{
			Label:    c.Label,
			Style:    buttonStyle(c.Style),
			Disabled: c.Disabled,
			CustomID: customID(sessionID, c.Action),
		})
	}

	out := []discordgo.MessageComponent{}
	for _, row := range rows {
		if len(row) > 0 {
			out = append(out, discordgo.ActionsRow{Components: row})
		}
	}
	return out
}

func webhookEdit(sessionID string, msg Message) *discordgo.WebhookEdit {
	content := msg.Content
	embeds := msg.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	comps := components(sessionID, msg.Controls)
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &comps,
	}
}

// discordSurface is the message a session lives in. Edits go through the
// most recent interaction token, which outlives the command's own.
type discordSurface struct {
	session   *discordgo.Session
	sessionID string
	deferred  bool
	ephemeral bool
	origin    *discordgo.Interaction

	mu     sync.Mutex
	latest *discordgo.Interaction
}

func (d *discordSurface) track(i *discordgo.Interaction) {
	d.mu.Lock()
	d.latest = i
	d.mu.Unlock()
}

func (d *discordSurface) current() *discordgo.Interaction {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

func (d *discordSurface) CanEmbed(_ context.Context) (bool, error) {
	if d.origin.GuildID == "" {
		return true, nil
	}
	return d.origin.AppPermissions&discordgo.PermissionEmbedLinks != 0, nil
}

func (d *discordSurface) Send(_ context.Context, msg Message) error {
	if d.deferred {
		_, err := interactionEdit(d.session, d.origin, webhookEdit(d.sessionID, msg))
		return err
	}

	data := &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: components(d.sessionID, msg.Controls),
	}
	if d.ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return interactionRespond(d.session, d.origin, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (d *discordSurface) Edit(_ context.Context, msg Message) error {
	_, err := interactionEdit(d.session, d.current(), webhookEdit(d.sessionID, msg))
	return err
}

func (d *discordSurface) StripControls(_ context.Context) error {
	none := []discordgo.MessageComponent{}
	_, err := interactionEdit(d.session, d.current(), &discordgo.WebhookEdit{Components: &none})
	return err
}

// discordInteraction is a button press or modal submission on a session.
type discordInteraction struct {
	manager     *Manager
	session     *discordgo.Session
	interaction *discordgo.Interaction
	sessionID   string
	responded   bool
}

func (d *discordInteraction) UserID() string {
	return InteractionUserID(d.interaction)
}

func (d *discordInteraction) Responded() bool {
	return d.responded
}

func (d *discordInteraction) respond(resp *discordgo.InteractionResponse) error {
	if err := interactionRespond(d.session, d.interaction, resp); err != nil {
		return err
	}
	d.responded = true
	return nil
}

func (d *discordInteraction) Update(_ context.Context, msg Message) error {
	embeds := msg.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	return d.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    msg.Content,
			Embeds:     embeds,
			Components: components(d.sessionID, msg.Controls),
		},
	})
}

func (d *discordInteraction) Notify(_ context.Context, text string) error {
	if !d.responded {
		return d.respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: text,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
	}
	_, err := followupCreate(d.session, d.interaction, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

func (d *discordInteraction) Acknowledge(_ context.Context) error {
	return d.respond(&discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
}

func (d *discordInteraction) Dismiss(ctx context.Context) error {
	if !d.responded {
		if err := d.Acknowledge(ctx); err != nil {
			return err
		}
	}
	return interactionDelete(d.session, d.interaction)
}

func (d *discordInteraction) Prompt(ctx context.Context, p Prompt) (Interaction, string, error) {
	modalID := customID(d.sessionID, ActionJump, uuid.NewString())
	ch := d.manager.addPrompt(modalID)
	defer d.manager.removePrompt(modalID)

	err := d.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: modalID,
			Title:    p.Title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    pageInputCustomID,
						Label:       p.Label,
						Style:       discordgo.TextInputShort,
						Placeholder: p.Placeholder,
						Required:    true,
						MinLength:   1,
						MaxLength:   p.MaxLength,
					},
				}},
			},
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("open page prompt: %w", err)
	}

	timer := time.NewTimer(d.manager.opts.PromptTimeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		return reply.in, reply.value, nil
	case <-timer.C:
		return nil, "", ErrPromptTimeout
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}
