package chat

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn-fragment of the visible transcript. Assistant
// messages start empty and grow while a reveal is running.
type Message struct {
	Role    Role
	Content string

	// Loading is true while the reply is being fetched or revealed.
	Loading bool
	// Complete is true once the final text is committed and follow-up
	// actions (feedback, related questions) may be shown beneath it.
	Complete bool
}

// TurnState tracks the lifecycle of the current turn.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnAwaitingReply
	TurnRevealing
	TurnSettled
	TurnAborted
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnAwaitingReply:
		return "awaiting-reply"
	case TurnRevealing:
		return "revealing"
	case TurnSettled:
		return "settled"
	case TurnAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// InFlight reports whether a turn is currently being worked on.
func (s TurnState) InFlight() bool {
	return s == TurnAwaitingReply || s == TurnRevealing
}

// Feedback is a binary judgment attached to a transcript position.
type Feedback int

const (
	FeedbackUp Feedback = iota + 1
	FeedbackDown
)
