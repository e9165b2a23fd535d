package chat

// NormalizeHistory prepares a raw message list loaded from the history
// store for display and for feeding back as inference context:
//
//   - entries with a role other than user/assistant are dropped
//   - a leading run of assistant entries is dropped (old rows seeded a
//     welcome message with no preceding user turn)
//   - consecutive same-role entries merge into one, joined by a blank
//     line, so the result alternates strictly
//
// The pass is a projection: applying it twice equals applying it once.
func NormalizeHistory(items []Message) []Message {
	var out []Message
	for _, m := range items {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		if len(out) == 0 && m.Role == RoleAssistant {
			continue
		}
		entry := Message{Role: m.Role, Content: m.Content, Complete: true}
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, entry)
	}
	return out
}
