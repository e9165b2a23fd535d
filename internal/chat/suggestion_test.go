package chat

import (
	"encoding/json"
	"reflect"
	"testing"
)

func rawList(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		out = append(out, json.RawMessage(it))
	}
	return out
}

func TestNormalizeSuggestionsStrings(t *testing.T) {
	got := NormalizeSuggestions(rawList(`"What is DOST?"`, `""`, `"Services"`))
	want := []Suggestion{
		{Title: "What is DOST?", Value: "What is DOST?"},
		{Title: "Services", Value: "Services"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeSuggestionsRecords(t *testing.T) {
	got := NormalizeSuggestions(rawList(
		`{"title":"Scholarships","subtitle":"Apply now","value":"How do I apply for a DOST scholarship?","icon":"🎓"}`,
		`{"title":"Weather"}`,
		`{"value":"standalone value"}`,
	))
	want := []Suggestion{
		{Title: "Scholarships", Subtitle: "Apply now", Value: "How do I apply for a DOST scholarship?", Icon: "🎓"},
		{Title: "Weather", Value: "Weather"},
		{Title: "standalone value", Value: "standalone value"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeSuggestionsDropsJunk(t *testing.T) {
	got := NormalizeSuggestions(rawList(`42`, `null`, `{}`, `[1,2]`, `"keep"`))
	want := []Suggestion{{Title: "keep", Value: "keep"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFromStrings(t *testing.T) {
	got := FromStrings([]string{"a", "", "b"})
	want := []Suggestion{
		{Title: "a", Value: "a"},
		{Title: "b", Value: "b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
