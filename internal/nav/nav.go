// Package nav keeps an in-process location history that mirrors a
// browser's path bar: the active conversation shows up as a UUID path
// segment, the root path is the welcome state, and back/forward walk the
// visited locations.
package nav

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Root is the welcome-state location.
const Root = "/"

const conversationPrefix = "/c/"

// ConversationPath returns the location for a conversation id.
func ConversationPath(id string) string {
	return conversationPrefix + id
}

// ConversationID extracts a conversation identifier from a location.
// Only a UUID-shaped segment counts; anything else denotes the welcome
// state.
func ConversationID(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, conversationPrefix)
	if !ok {
		return "", false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// History is a stack of visited locations with a cursor.
type History struct {
	mu      sync.Mutex
	entries []string
	cursor  int
}

func NewHistory() *History {
	return &History{entries: []string{Root}}
}

// Current returns the location under the cursor.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Push records a new location, discarding any forward entries. Pushing
// the current location again is a no-op.
func (h *History) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[h.cursor] == path {
		return
	}
	h.entries = append(h.entries[:h.cursor+1], path)
	h.cursor = len(h.entries) - 1
}

// Back moves the cursor one entry back. It reports false at the oldest
// entry.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return "", false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Forward moves the cursor one entry forward. It reports false at the
// newest entry.
func (h *History) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == len(h.entries)-1 {
		return "", false
	}
	h.cursor++
	return h.entries[h.cursor], true
}
