package paginator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"palbot/internal/usererr"

	"github.com/charmbracelet/log"
)

// DefaultTimeout is how long a session waits for the next interaction.
const DefaultTimeout = 3 * time.Minute

const (
	notAuthorizedMessage = "This pagination menu cannot be controlled by you, sorry!"
	tookTooLongMessage   = "Took too long"
	alreadyWaitingMsg    = "Already waiting for your response..."
)

var (
	// ErrPageOutOfRange is returned by sources for indices they cannot serve.
	ErrPageOutOfRange = errors.New("page index out of range")
	// ErrNotActive is returned when a session is driven before Start or after
	// it finished.
	ErrNotActive = errors.New("pagination session is not active")
	// ErrPromptTimeout is returned by Interaction.Prompt when the user never
	// answered.
	ErrPromptTimeout = errors.New("prompt timed out")
	// ErrNoEmbedPermission is returned by Start when embeds cannot be posted.
	ErrNoEmbedPermission = usererr.New(usererr.Unauthorized, "Bot does not have embed links permission in this channel.")
)

// Menu is the read-only view of a session that page sources format against.
type Menu interface {
	CurrentPage() int
}

// PageSource lazily supplies pages by index.
type PageSource interface {
	// IsPaginating reports whether there is more than one page.
	IsPaginating() bool
	// MaxPages returns the page count, or false when it is unknown.
	MaxPages() (int, bool)
	// Page returns the payload for index or ErrPageOutOfRange.
	Page(index int) (any, error)
	FormatPage(m Menu, page any) (Render, error)
}

// Surface is the front end a session posts its message to.
type Surface interface {
	// CanEmbed reports whether embeds may be posted where the session lives.
	CanEmbed(ctx context.Context) (bool, error)
	Send(ctx context.Context, msg Message) error
	Edit(ctx context.Context, msg Message) error
	// StripControls leaves the message as it is but removes the controls.
	StripControls(ctx context.Context) error
}

// Prompt asks the user for a line of text.
type Prompt struct {
	Title       string
	Label       string
	Placeholder string
	MaxLength   int
}

// Interaction is one user action on a session's controls.
type Interaction interface {
	UserID() string
	// Responded reports whether the interaction was already answered.
	Responded() bool
	// Update answers by redrawing the session message.
	Update(ctx context.Context, msg Message) error
	// Notify sends a notice only the acting user can see.
	Notify(ctx context.Context, text string) error
	// Acknowledge answers without changing anything.
	Acknowledge(ctx context.Context) error
	// Dismiss answers by deleting the session message.
	Dismiss(ctx context.Context) error
	// Prompt answers with a text prompt and blocks until it is submitted.
	// The returned Interaction represents the submission.
	Prompt(ctx context.Context, p Prompt) (Interaction, string, error)
}

// State is the lifecycle stage of a View.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateStopped
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateStopped:
		return "stopped"
	case StateTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configure a View.
type Options struct {
	// InvokerID and OwnerID are the only users allowed to drive the session.
	InvokerID string
	OwnerID   string
	// Compact hides the page-number and jump controls.
	Compact bool
	// CheckEmbeds makes Start refuse to post without embed permission.
	CheckEmbeds bool
	Timeout     time.Duration
	Logger      *log.Logger
	// OnFinish runs once when the session stops or times out.
	OnFinish func()
}

// View is a paginated message driven by button presses.
type View struct {
	source PageSource
	opts   Options
	logger *log.Logger

	current atomic.Int64

	mu        sync.Mutex
	state     State
	surface   Surface
	controls  controlSet
	prompting bool
	timer     *time.Timer

	done       chan struct{}
	finishOnce sync.Once
}

// NewView creates a session over source. It shows nothing until Start.
func NewView(source PageSource, opts Options) *View {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &View{
		source:   source,
		opts:     opts,
		logger:   logger,
		controls: newControlSet(),
		done:     make(chan struct{}),
	}
}

// CurrentPage returns the zero based index of the page on screen.
func (v *View) CurrentPage() int {
	return int(v.current.Load())
}

// State returns the lifecycle stage.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Controls returns the controls as they are currently laid out.
func (v *View) Controls() []Control {
	return v.controls.layout(v.source, v.opts.Compact)
}

// Done is closed once the session stopped or timed out.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// Start renders page 0 and posts it through surface. content is used when the
// first page has no text of its own.
func (v *View) Start(ctx context.Context, surface Surface, content string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateUninitialized {
		return fmt.Errorf("start pagination: session is %s", v.state)
	}

	if v.opts.CheckEmbeds {
		ok, err := surface.CanEmbed(ctx)
		if err != nil {
			return fmt.Errorf("check embed permission: %w", err)
		}
		if !ok {
			return ErrNoEmbedPermission
		}
	}

	payload, err := v.source.Page(0)
	if err != nil {
		return fmt.Errorf("fetch first page: %w", err)
	}
	v.current.Store(0)

	render, err := v.source.FormatPage(v, payload)
	if err != nil {
		return fmt.Errorf("format first page: %w", err)
	}
	if render.Content == "" {
		render.Content = content
	}

	v.controls.update(0, v.source, v.opts.Compact)
	v.surface = surface

	if err := surface.Send(ctx, Message{Render: render, Controls: v.Controls()}); err != nil {
		v.state = StateStopped
		v.finish()
		return fmt.Errorf("send first page: %w", err)
	}

	v.state = StateActive
	v.timer = time.AfterFunc(v.opts.Timeout, v.Timeout)
	return nil
}

// Handle runs action on behalf of in. Only the invoker and the owner may
// drive a session; anyone else gets a private notice. Errors other than an
// out-of-range page become a generic notice and leave the session as it was.
func (v *View) Handle(ctx context.Context, in Interaction, action Action) error {
	if !v.authorized(in.UserID()) {
		if err := in.Notify(ctx, notAuthorizedMessage); err != nil {
			v.logger.Warnf("Pagination: failed to send authorization notice: %v", err)
		}
		return usererr.New(usererr.Unauthorized, notAuthorizedMessage)
	}

	v.resetTimer()

	var err error
	switch action {
	case ActionFirst:
		err = v.GoToFirst(ctx, in)
	case ActionPrevious:
		err = v.GoToPrevious(ctx, in)
	case ActionNext:
		err = v.GoToNext(ctx, in)
	case ActionLast:
		err = v.GoToLast(ctx, in)
	case ActionJump:
		err = v.JumpToPage(ctx, in)
	case ActionStop:
		err = v.Stop(ctx, in)
	case ActionCurrent:
		// Display only.
	default:
		err = fmt.Errorf("unknown pagination action %q", action)
	}

	if err != nil && !errors.Is(err, ErrNotActive) {
		v.logger.Errorf("Pagination: %s failed: %v", action, err)
		if nerr := in.Notify(ctx, usererr.GenericMessage); nerr != nil {
			v.logger.Warnf("Pagination: failed to send error notice: %v", nerr)
		}
	}

	if !in.Responded() {
		if aerr := in.Acknowledge(ctx); aerr != nil {
			v.logger.Warnf("Pagination: failed to acknowledge %s: %v", action, aerr)
		}
	}

	return err
}

func (v *View) authorized(userID string) bool {
	if userID == "" {
		return false
	}
	return userID == v.opts.InvokerID || userID == v.opts.OwnerID
}

// GoToFirst shows page 0.
func (v *View) GoToFirst(ctx context.Context, in Interaction) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateActive {
		return ErrNotActive
	}
	return v.showPage(ctx, in, 0)
}

// GoToPrevious shows the page before the current one. Nothing happens on
// the first page.
func (v *View) GoToPrevious(ctx context.Context, in Interaction) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateActive {
		return ErrNotActive
	}
	return v.showChecked(ctx, in, v.CurrentPage()-1)
}

// GoToNext shows the page after the current one. Nothing happens on the last
// page.
func (v *View) GoToNext(ctx context.Context, in Interaction) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateActive {
		return ErrNotActive
	}
	return v.showChecked(ctx, in, v.CurrentPage()+1)
}

// GoToLast shows the final page when the page count is known.
func (v *View) GoToLast(ctx context.Context, in Interaction) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateActive {
		return ErrNotActive
	}
	maxPages, known := v.source.MaxPages()
	if !known {
		return nil
	}
	return v.showPage(ctx, in, maxPages-1)
}

// JumpToPage asks for a one based page number and shows it. The session
// lock is not held while waiting for the answer.
func (v *View) JumpToPage(ctx context.Context, in Interaction) error {
	v.mu.Lock()
	if v.state != StateActive {
		v.mu.Unlock()
		return ErrNotActive
	}
	if v.prompting {
		v.mu.Unlock()
		return in.Notify(ctx, alreadyWaitingMsg)
	}
	v.prompting = true
	maxPages, known := v.source.MaxPages()
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.prompting = false
		v.mu.Unlock()
	}()

	prompt := pagePrompt(maxPages, known)
	submit, value, err := in.Prompt(ctx, prompt)
	if errors.Is(err, ErrPromptTimeout) {
		return in.Notify(ctx, tookTooLongMessage)
	}
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateActive {
		return submit.Notify(ctx, tookTooLongMessage)
	}

	if !isDigits(value) {
		return submit.Notify(ctx, fmt.Sprintf("Expected a number not %q", value))
	}

	// Numbers too large for an int are simply out of range.
	if n, convErr := strconv.Atoi(value); convErr == nil {
		if err := v.showChecked(ctx, submit, n-1); err != nil {
			return err
		}
	}

	if !submit.Responded() {
		return submit.Notify(ctx, prompt.expectation())
	}
	return nil
}

// Stop deletes the session message and ends the session.
func (v *View) Stop(ctx context.Context, in Interaction) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateActive {
		return ErrNotActive
	}
	v.state = StateStopped
	v.finish()
	return in.Dismiss(ctx)
}

// Timeout ends an active session and strips its controls. It runs when the
// idle timer fires.
func (v *View) Timeout() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateActive {
		return
	}
	v.state = StateTimedOut
	v.finish()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := v.surface.StripControls(ctx); err != nil {
		v.logger.Warnf("Pagination: failed to remove controls after timeout: %v", err)
	}
}

func (v *View) showChecked(ctx context.Context, in Interaction, page int) error {
	maxPages, known := v.source.MaxPages()
	if known && (page < 0 || page >= maxPages) {
		return nil
	}
	err := v.showPage(ctx, in, page)
	if errors.Is(err, ErrPageOutOfRange) {
		return nil
	}
	return err
}

func (v *View) showPage(ctx context.Context, in Interaction, page int) error {
	payload, err := v.source.Page(page)
	if err != nil {
		return err
	}
	v.current.Store(int64(page))

	render, err := v.source.FormatPage(v, payload)
	if err != nil {
		return err
	}
	v.controls.update(page, v.source, v.opts.Compact)
	if render.IsZero() {
		return nil
	}

	msg := Message{Render: render, Controls: v.Controls()}
	if in.Responded() {
		return v.surface.Edit(ctx, msg)
	}
	return in.Update(ctx, msg)
}

func (v *View) resetTimer() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil && v.state == StateActive {
		v.timer.Reset(v.opts.Timeout)
	}
}

// finish must be called with v.mu held.
func (v *View) finish() {
	v.finishOnce.Do(func() {
		if v.timer != nil {
			v.timer.Stop()
		}
		close(v.done)
		if v.opts.OnFinish != nil {
			v.opts.OnFinish()
		}
	})
}

func pagePrompt(maxPages int, known bool) Prompt {
	p := Prompt{
		Title:       "Go to page",
		Label:       "Page",
		Placeholder: "Enter a number",
	}
	if known {
		p.Placeholder = fmt.Sprintf("Enter a number between 1 and %d", maxPages)
		p.MaxLength = len(strconv.Itoa(maxPages))
	}
	return p
}

// expectation is the notice shown when the answer was not a usable page.
func (p Prompt) expectation() string {
	const verb = "Enter"
	if len(p.Placeholder) >= len(verb) && p.Placeholder[:len(verb)] == verb {
		return "Expected" + p.Placeholder[len(verb):]
	}
	return p.Placeholder
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
