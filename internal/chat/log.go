package chat

// The message log is only ever changed through the named transitions in
// this file. Every transition copies its input, so callers can hold on to
// old snapshots, and every index-taking transition treats an out-of-range
// index as a no-op: a conversation switch may invalidate an index that a
// pending reveal tick still carries.

func cloneLog(log []Message) []Message {
	out := make([]Message, len(log))
	copy(out, log)
	return out
}

// Reset empties the log.
func Reset(_ []Message) []Message {
	return nil
}

// Load replaces the log wholesale.
func Load(_ []Message, items []Message) []Message {
	return cloneLog(items)
}

// AppendTurn appends the user's prompt followed by an empty assistant
// placeholder. It returns the new log and the placeholder's index; the
// index is the turn's handle and must never be recomputed from log length
// afterwards.
func AppendTurn(log []Message, prompt string) ([]Message, int) {
	out := cloneLog(log)
	out = append(out,
		Message{Role: RoleUser, Content: prompt},
		Message{Role: RoleAssistant, Loading: true},
	)
	return out, len(out) - 1
}

// ClearForReveal empties the content at index, keeping its flags.
func ClearForReveal(log []Message, index int) []Message {
	if index < 0 || index >= len(log) {
		return log
	}
	out := cloneLog(log)
	out[index].Content = ""
	return out
}

// AppendReveal concatenates chunk onto the content at index.
func AppendReveal(log []Message, index int, chunk string) []Message {
	if index < 0 || index >= len(log) {
		return log
	}
	out := cloneLog(log)
	out[index].Content += chunk
	return out
}

// FinalizeTurn commits the final text at index and marks it complete.
func FinalizeTurn(log []Message, index int, finalText string) []Message {
	if index < 0 || index >= len(log) {
		return log
	}
	out := cloneLog(log)
	out[index].Content = finalText
	out[index].Loading = false
	out[index].Complete = true
	return out
}

// FailTurn writes an error text into the entry at index and marks it
// complete. Failures render inline as the assistant's message.
func FailTurn(log []Message, index int, errorText string) []Message {
	return FinalizeTurn(log, index, errorText)
}

// StopLatestPending scans from the end for the last assistant message
// that is not complete and settles it with whatever partial content it
// has. No-op if none is pending.
func StopLatestPending(log []Message) []Message {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Role == RoleAssistant && !log[i].Complete {
			out := cloneLog(log)
			out[i].Loading = false
			out[i].Complete = true
			return out
		}
	}
	return log
}

// UserMessageCount reports how many user-role entries the log holds. The
// view is in its welcome state exactly when this is zero; there is no
// separate flag to drift out of sync.
func UserMessageCount(log []Message) int {
	n := 0
	for _, m := range log {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}
