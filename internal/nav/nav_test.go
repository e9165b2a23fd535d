package nav

import "testing"

func TestConversationID(t *testing.T) {
	cases := []struct {
		path string
		id   string
		ok   bool
	}{
		{"/c/3f2c1f7e-8d4a-4b6c-9e21-1a2b3c4d5e6f", "3f2c1f7e-8d4a-4b6c-9e21-1a2b3c4d5e6f", true},
		{"/c/3F2C1F7E-8D4A-4B6C-9E21-1A2B3C4D5E6F", "3f2c1f7e-8d4a-4b6c-9e21-1a2b3c4d5e6f", true},
		{"/", "", false},
		{"/c/", "", false},
		{"/c/not-a-uuid", "", false},
		{"/conversations/3f2c1f7e-8d4a-4b6c-9e21-1a2b3c4d5e6f", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		id, ok := ConversationID(tc.path)
		if ok != tc.ok || id != tc.id {
			t.Errorf("ConversationID(%q) = (%q, %v), want (%q, %v)", tc.path, id, ok, tc.id, tc.ok)
		}
	}
}

func TestConversationPathRoundTrip(t *testing.T) {
	const id = "3f2c1f7e-8d4a-4b6c-9e21-1a2b3c4d5e6f"
	got, ok := ConversationID(ConversationPath(id))
	if !ok || got != id {
		t.Fatalf("round trip failed: (%q, %v)", got, ok)
	}
}

func TestHistoryStartsAtRoot(t *testing.T) {
	h := NewHistory()
	if h.Current() != Root {
		t.Fatalf("fresh history at %q", h.Current())
	}
	if _, ok := h.Back(); ok {
		t.Fatal("back from the oldest entry must fail")
	}
	if _, ok := h.Forward(); ok {
		t.Fatal("forward from the newest entry must fail")
	}
}

func TestHistoryBackForward(t *testing.T) {
	h := NewHistory()
	h.Push("/c/a")
	h.Push("/c/b")

	if path, ok := h.Back(); !ok || path != "/c/a" {
		t.Fatalf("back = (%q, %v)", path, ok)
	}
	if path, ok := h.Back(); !ok || path != Root {
		t.Fatalf("back = (%q, %v)", path, ok)
	}
	if path, ok := h.Forward(); !ok || path != "/c/a" {
		t.Fatalf("forward = (%q, %v)", path, ok)
	}
	if path, ok := h.Forward(); !ok || path != "/c/b" {
		t.Fatalf("forward = (%q, %v)", path, ok)
	}
	if _, ok := h.Forward(); ok {
		t.Fatal("forward past the newest entry must fail")
	}
}

func TestHistoryPushDropsForwardEntries(t *testing.T) {
	h := NewHistory()
	h.Push("/c/a")
	h.Push("/c/b")
	h.Back()
	h.Push("/c/c")

	if h.Current() != "/c/c" {
		t.Fatalf("current %q", h.Current())
	}
	if _, ok := h.Forward(); ok {
		t.Fatal("forward entries must be discarded on push")
	}
	if path, ok := h.Back(); !ok || path != "/c/a" {
		t.Fatalf("back = (%q, %v)", path, ok)
	}
}

func TestHistoryPushCurrentIsNoOp(t *testing.T) {
	h := NewHistory()
	h.Push("/c/a")
	h.Push("/c/a")
	if path, ok := h.Back(); !ok || path != Root {
		t.Fatalf("duplicate push grew the stack: (%q, %v)", path, ok)
	}
}
