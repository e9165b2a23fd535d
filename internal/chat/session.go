package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"talino-cli/internal/api"
	"talino-cli/internal/nav"
)

const (
	// StoppedMessage replaces a reply that was cancelled by the user.
	StoppedMessage = "Generation stopped."
	// UnreachableMessage is the fallback when the backend gave no payload.
	UnreachableMessage = "Error: Could not reach backend."

	titleLimit         = 120
	settleTimeout      = 30 * time.Second
	defaultSuggestions = 5
)

// DefaultPrompts are the starter chips shown before the first interaction.
var DefaultPrompts = []Suggestion{
	{Title: "Who is DOST?", Value: "Who is DOST?"},
	{Title: "What are the technologies of DOST?", Value: "What are the technologies of DOST?"},
	{Title: "Services of DOST", Value: "Services of DOST"},
}

// Backend is the slice of the HTTP contract the controller consumes.
// *api.Client satisfies it.
type Backend interface {
	Chat(ctx context.Context, input, sessionID string) (api.ChatReply, error)
	Recommendations(ctx context.Context, prompt string, n int) ([]json.RawMessage, error)
	ListConversations(ctx context.Context) ([]api.ConversationSummary, error)
	CreateConversation(ctx context.Context, title string) (api.Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]api.StoredMessage, error)
	AppendMessages(ctx context.Context, conversationID string, items []api.StoredMessage) error
}

// EventKind tells the UI which slice of state moved.
type EventKind int

const (
	EventLogChanged EventKind = iota
	EventStateChanged
	EventConversationsChanged
	EventRelatedChanged
	EventLocationChanged
	EventAuthPrompt
)

type Event struct {
	Kind EventKind
}

// Options tunes a Controller.
type Options struct {
	RevealRate      float64 // runes per second, DefaultRevealRate when zero
	SuggestionCount int
	Logger          *slog.Logger
}

// Controller owns the conversation session: the message log, the
// lifecycle of the in-flight turn, the conversation-id/memory-key pair,
// related questions, feedback marks and the location history. All state
// changes go through the reducer transitions in log.go; the UI observes
// through Events and Snapshot.
type Controller struct {
	backend    Backend
	logger     *slog.Logger
	history    *nav.History
	revealRate float64
	suggestN   int

	mu             sync.Mutex
	msgs           []Message
	turn           TurnState
	pending        int // placeholder handle for the in-flight turn
	conversationID string
	sessionKey     string
	user           *api.User
	conversations  []api.ConversationSummary
	related        []Suggestion
	relatedLoading bool
	feedback       map[int]Feedback
	hasInteracted  bool
	authPrompted   bool

	// generation invalidates async completions from superseded turns:
	// any goroutine holding a stale generation applies nothing.
	generation int
	cancel     context.CancelFunc
	reveal     *Reveal

	events chan Event
}

// Snapshot is a copy of the observable state, safe to render from.
type Snapshot struct {
	Messages       []Message
	Turn           TurnState
	Generating     bool
	ConversationID string
	SessionKey     string
	User           *api.User
	Conversations  []api.ConversationSummary
	Related        []Suggestion
	RelatedLoading bool
	Feedback       map[int]Feedback
	HasInteracted  bool
	Welcome        bool
	Location       string
}

func NewController(backend Backend, opts Options) *Controller {
	rate := opts.RevealRate
	if rate <= 0 {
		rate = DefaultRevealRate
	}
	n := opts.SuggestionCount
	if n <= 0 {
		n = defaultSuggestions
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		backend:    backend,
		logger:     logger,
		history:    nav.NewHistory(),
		revealRate: rate,
		suggestN:   n,
		turn:       TurnIdle,
		pending:    -1,
		feedback:   map[int]Feedback{},
		events:     make(chan Event, 64),
	}
}

// Events delivers change notifications. Delivery is best-effort: a full
// channel drops the notification, and the UI re-reads Snapshot anyway.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) emitLocked(kind EventKind) {
	select {
	case c.events <- Event{Kind: kind}:
	default:
	}
}

// Snapshot copies the observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	fb := make(map[int]Feedback, len(c.feedback))
	for k, v := range c.feedback {
		fb[k] = v
	}
	return Snapshot{
		Messages:       cloneLog(c.msgs),
		Turn:           c.turn,
		Generating:     c.turn.InFlight(),
		ConversationID: c.conversationID,
		SessionKey:     c.sessionKey,
		User:           c.user,
		Conversations:  append([]api.ConversationSummary(nil), c.conversations...),
		Related:        append([]Suggestion(nil), c.related...),
		RelatedLoading: c.relatedLoading,
		Feedback:       fb,
		HasInteracted:  c.hasInteracted,
		Welcome:        UserMessageCount(c.msgs) == 0,
		Location:       c.history.Current(),
	}
}

// Submit starts a new turn. Empty prompts and prompts arriving while a
// turn is in flight are ignored.
func (c *Controller) Submit(prompt string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return
	}

	c.mu.Lock()
	if c.turn.InFlight() {
		c.mu.Unlock()
		return
	}
	c.hasInteracted = true
	if c.user == nil && c.conversationID == "" && !c.authPrompted {
		// Guests keep chatting; the prompt is a hint that saving needs
		// an account, shown once.
		c.authPrompted = true
		c.emitLocked(EventAuthPrompt)
	}
	var idx int
	c.msgs, idx = AppendTurn(c.msgs, prompt)
	c.pending = idx
	c.turn = TurnAwaitingReply
	// A related fetch still in flight for the previous turn is superseded
	// by the generation bump below and will skip its own cleanup.
	c.related = nil
	c.relatedLoading = false
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.emitLocked(EventLogChanged)
	c.emitLocked(EventStateChanged)
	c.emitLocked(EventRelatedChanged)
	c.mu.Unlock()

	go c.runTurn(ctx, gen, prompt, idx)
}

func (c *Controller) runTurn(ctx context.Context, gen int, prompt string, idx int) {
	convID, err := c.ensureConversation(ctx, gen, prompt)
	if err != nil {
		c.failTurn(gen, idx, err)
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	sessionKey := convID
	if sessionKey == "" {
		sessionKey = c.sessionKey
	}
	c.mu.Unlock()

	reply, err := c.backend.Chat(ctx, prompt, sessionKey)
	if err != nil {
		c.failTurn(gen, idx, err)
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	if reply.SessionID != "" {
		c.sessionKey = reply.SessionID
	}
	c.turn = TurnRevealing
	c.msgs = ClearForReveal(c.msgs, idx)
	if c.reveal != nil {
		c.reveal.Stop()
	}
	rev := NewReveal(c.revealRate)
	c.reveal = rev
	c.emitLocked(EventStateChanged)
	c.mu.Unlock()

	rev.Start(reply.Output,
		func(chunk string) { c.applyChunk(gen, idx, chunk) },
		func() { c.settleTurn(gen, idx, prompt, convID, reply.Output) },
	)
}

// ensureConversation creates the backing conversation lazily, for
// authenticated users only. Guest turns stay ephemeral.
func (c *Controller) ensureConversation(ctx context.Context, gen int, titleSeed string) (string, error) {
	c.mu.Lock()
	if c.conversationID != "" {
		id := c.conversationID
		c.mu.Unlock()
		return id, nil
	}
	if c.user == nil {
		c.mu.Unlock()
		return "", nil
	}
	c.mu.Unlock()

	title := strings.TrimSpace(titleSeed)
	if title == "" {
		title = "New chat"
	}
	if r := []rune(title); len(r) > titleLimit {
		title = string(r[:titleLimit])
	}
	conv, err := c.backend.CreateConversation(ctx, title)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return "", context.Canceled
	}
	c.conversationID = conv.ID
	// Align the inference memory key with the stored conversation so
	// reopening it later resumes the same context.
	c.sessionKey = conv.ID
	c.emitLocked(EventStateChanged)
	c.mu.Unlock()

	c.refreshConversations(ctx)
	return conv.ID, nil
}

func (c *Controller) applyChunk(gen, idx int, chunk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.turn != TurnRevealing {
		return
	}
	c.msgs = AppendReveal(c.msgs, idx, chunk)
	c.emitLocked(EventLogChanged)
}

// settleTurn runs after the reveal finished: finalize the entry, persist
// the turn, reorder the sidebar, then fetch related questions for the
// prompt captured at submit time.
func (c *Controller) settleTurn(gen, idx int, prompt, convID, finalText string) {
	c.mu.Lock()
	if gen != c.generation || c.turn != TurnRevealing {
		c.mu.Unlock()
		return
	}
	c.msgs = FinalizeTurn(c.msgs, idx, finalText)
	c.turn = TurnSettled
	c.pending = -1
	c.cancel = nil
	c.reveal = nil
	c.emitLocked(EventLogChanged)
	c.emitLocked(EventStateChanged)
	c.mu.Unlock()

	// Post-settlement work is detached from the turn's cancellation;
	// stopping a settled turn must not lose its persistence.
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	if convID != "" {
		err := c.backend.AppendMessages(ctx, convID, []api.StoredMessage{
			{Role: string(RoleUser), Content: prompt},
			{Role: string(RoleAssistant), Content: finalText},
		})
		if err != nil {
			// Best-effort: the turn stays visible, no retry.
			c.logger.Error("persist turn failed", "conversation", convID, "error", err)
		}
		c.refreshConversations(ctx)
	}

	c.fetchRelated(ctx, gen, prompt)
}

func (c *Controller) fetchRelated(ctx context.Context, gen int, prompt string) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.related = nil
	c.relatedLoading = true
	c.emitLocked(EventRelatedChanged)
	c.mu.Unlock()

	raw, err := c.backend.Recommendations(ctx, prompt, c.suggestN)
	var related []Suggestion
	if err != nil {
		c.logger.Error("recommendations failed", "error", err)
	} else {
		related = NormalizeSuggestions(raw)
	}

	c.mu.Lock()
	if gen == c.generation {
		c.related = related
		c.relatedLoading = false
		c.emitLocked(EventRelatedChanged)
	}
	c.mu.Unlock()
}

func (c *Controller) failTurn(gen, idx int, err error) {
	text := UnreachableMessage
	var apiErr *api.Error
	switch {
	case errors.Is(err, context.Canceled):
		text = StoppedMessage
	case errors.As(err, &apiErr) && apiErr.Message != "":
		text = apiErr.Message
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.msgs = FailTurn(c.msgs, idx, text)
	c.turn = TurnAborted
	c.pending = -1
	c.cancel = nil
	c.emitLocked(EventLogChanged)
	c.emitLocked(EventStateChanged)
}

// Stop cancels the in-flight turn. While the reply is still pending the
// placeholder becomes the neutral stopped message; during a reveal the
// partial content is kept. Stopping with nothing in flight is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.turn.InFlight() {
		return
	}
	awaiting := c.turn == TurnAwaitingReply
	idx := c.pending
	c.cancelInFlightLocked()
	if awaiting && idx >= 0 {
		c.msgs = FailTurn(c.msgs, idx, StoppedMessage)
	} else {
		c.msgs = StopLatestPending(c.msgs)
	}
	c.turn = TurnAborted
	c.pending = -1
	c.emitLocked(EventLogChanged)
	c.emitLocked(EventStateChanged)
}

// cancelInFlightLocked aborts the outstanding request and reveal and
// invalidates their completions. Callers decide what happens to the log.
func (c *Controller) cancelInFlightLocked() {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.reveal != nil {
		c.reveal.Stop()
		c.reveal = nil
	}
}

// OpenConversation switches to a stored conversation. Any in-flight turn
// is cancelled silently; the transcript being left is not altered.
func (c *Controller) OpenConversation(id string) {
	c.openConversation(id, true)
}

func (c *Controller) openConversation(id string, push bool) {
	c.mu.Lock()
	c.cancelInFlightLocked()
	gen := c.generation
	c.conversationID = id
	c.sessionKey = id
	c.turn = TurnIdle
	c.pending = -1
	c.related = nil
	c.relatedLoading = false
	c.feedback = map[int]Feedback{}
	if push {
		c.history.Push(nav.ConversationPath(id))
		c.emitLocked(EventLocationChanged)
	}
	c.emitLocked(EventStateChanged)
	c.emitLocked(EventRelatedChanged)
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
		defer cancel()

		items, err := c.backend.Messages(ctx, id)
		var loaded []Message
		if err != nil {
			c.logger.Error("load conversation failed", "conversation", id, "error", err)
		} else {
			loaded = NormalizeHistory(fromStored(items))
		}

		c.mu.Lock()
		if gen == c.generation {
			c.msgs = Load(c.msgs, loaded)
			c.emitLocked(EventLogChanged)
		}
		c.mu.Unlock()
	}()
}

func fromStored(items []api.StoredMessage) []Message {
	out := make([]Message, 0, len(items))
	for _, it := range items {
		out = append(out, Message{Role: Role(it.Role), Content: it.Content})
	}
	return out
}

// ResetChat returns the view to the welcome state: log, conversation id,
// memory key, related questions, feedback and the interaction flag all
// clear, and the location returns to the root.
func (c *Controller) ResetChat() {
	c.resetChat(true)
}

func (c *Controller) resetChat(push bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelInFlightLocked()
	c.msgs = Reset(c.msgs)
	c.turn = TurnIdle
	c.pending = -1
	c.conversationID = ""
	c.sessionKey = ""
	c.related = nil
	c.relatedLoading = false
	c.feedback = map[int]Feedback{}
	c.hasInteracted = false
	if push {
		c.history.Push(nav.Root)
		c.emitLocked(EventLocationChanged)
	}
	c.emitLocked(EventLogChanged)
	c.emitLocked(EventStateChanged)
	c.emitLocked(EventRelatedChanged)
}

// SetUser records an account-state change. Logging out clears the whole
// session; logging in refreshes the sidebar.
func (c *Controller) SetUser(user *api.User) {
	c.mu.Lock()
	c.user = user
	if user == nil {
		c.conversations = nil
		c.emitLocked(EventConversationsChanged)
		c.mu.Unlock()
		c.resetChat(true)
		return
	}
	c.authPrompted = false
	c.emitLocked(EventStateChanged)
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
		defer cancel()
		c.refreshConversations(ctx)
	}()
}

// refreshConversations reloads the sidebar list. Failure keeps the stale
// list; guests keep an empty one.
func (c *Controller) refreshConversations(ctx context.Context) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	items, err := c.backend.ListConversations(ctx)
	if err != nil {
		c.logger.Error("list conversations failed", "error", err)
		return
	}
	c.mu.Lock()
	c.conversations = items
	c.emitLocked(EventConversationsChanged)
	c.mu.Unlock()
}

// SetFeedback records an up/down judgment for a transcript position.
// Feedback is client-local and never persisted.
func (c *Controller) SetFeedback(index int, value Feedback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.msgs) {
		return
	}
	c.feedback[index] = value
	c.emitLocked(EventStateChanged)
}

// Resolve applies deep-link semantics to a location: a conversation path
// different from the loaded conversation opens it, and the root path
// resets a loaded conversation back to welcome. Resolution never pushes,
// so back/forward walks stay consistent.
func (c *Controller) Resolve(path string) {
	id, ok := nav.ConversationID(path)
	c.mu.Lock()
	current := c.conversationID
	c.mu.Unlock()
	switch {
	case ok && id != current:
		c.openConversation(id, false)
	case !ok && current != "":
		c.resetChat(false)
	}
}

// ResolveStartup handles a deep link given at startup: it records the
// location and loads the conversation it names.
func (c *Controller) ResolveStartup(path string) {
	if _, ok := nav.ConversationID(path); !ok {
		return
	}
	c.history.Push(path)
	c.mu.Lock()
	c.emitLocked(EventLocationChanged)
	c.mu.Unlock()
	c.Resolve(path)
}

// NavigateBack mirrors the browser's back button.
func (c *Controller) NavigateBack() {
	if path, ok := c.history.Back(); ok {
		c.mu.Lock()
		c.emitLocked(EventLocationChanged)
		c.mu.Unlock()
		c.Resolve(path)
	}
}

// NavigateForward mirrors the browser's forward button.
func (c *Controller) NavigateForward() {
	if path, ok := c.history.Forward(); ok {
		c.mu.Lock()
		c.emitLocked(EventLocationChanged)
		c.mu.Unlock()
		c.Resolve(path)
	}
}

// Close tears the controller down, cancelling anything in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelInFlightLocked()
	c.turn = TurnIdle
	c.pending = -1
}
