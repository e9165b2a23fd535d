package chat

import "encoding/json"

// Suggestion is the one shape suggestion data takes past the boundary.
// The backend sometimes returns plain strings and sometimes structured
// records; the controller never branches on which.
type Suggestion struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Value    string `json:"value"`
	Icon     string `json:"icon"`
}

// NormalizeSuggestions converts raw suggestion payload entries into
// Suggestion records. Strings become title-and-value; structured entries
// keep their fields, defaulting Value to Title. Entries that decode to
// neither, or to nothing usable, are dropped.
func NormalizeSuggestions(raw []json.RawMessage) []Suggestion {
	var out []Suggestion
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if s == "" {
				continue
			}
			out = append(out, Suggestion{Title: s, Value: s})
			continue
		}
		var rec Suggestion
		if err := json.Unmarshal(r, &rec); err != nil {
			continue
		}
		if rec.Value == "" {
			rec.Value = rec.Title
		}
		if rec.Value == "" {
			continue
		}
		if rec.Title == "" {
			rec.Title = rec.Value
		}
		out = append(out, rec)
	}
	return out
}

// FromStrings wraps plain question strings as Suggestion records.
func FromStrings(questions []string) []Suggestion {
	var out []Suggestion
	for _, q := range questions {
		if q == "" {
			continue
		}
		out = append(out, Suggestion{Title: q, Value: q})
	}
	return out
}
