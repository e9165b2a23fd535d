package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestChatRoundTrip(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in struct {
			Input     string `json:"input"`
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Error(err)
		}
		if in.Input != "Who is DOST?" || in.SessionID != "mem-1" {
			t.Errorf("unexpected payload %+v", in)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"output":     "an answer",
			"session_id": "mem-2",
		})
	}))

	reply, err := c.Chat(context.Background(), "Who is DOST?", "mem-1")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Output != "an answer" || reply.SessionID != "mem-2" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestChatOmitsEmptySessionID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Error(err)
		}
		if _, present := raw["session_id"]; present {
			t.Error("empty session_id must be omitted")
		}
		json.NewEncoder(w).Encode(map[string]string{"output": "ok"})
	}))
	if _, err := c.Chat(context.Background(), "q", ""); err != nil {
		t.Fatal(err)
	}
}

func TestErrorPayloadBecomesTypedError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit exceeded."})
	}))

	_, err := c.Chat(context.Background(), "q", "")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusTooManyRequests || apiErr.Message != "Rate limit exceeded." {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestErrorFallsBackToMessageField(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad input"})
	}))

	err := c.Logout(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "bad input" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestErrorWithoutPayloadKeepsStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := c.Logout(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Message != "" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if apiErr.Error() == "" {
		t.Fatal("error string must describe the status")
	}
}

func TestMeAnonymousSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Fatalf("anonymous session must yield a nil user, got %+v", user)
	}
}

func TestMeAuthenticated(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "user@example.com"})
	}))

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if user == nil || user.ID != "u1" || user.Email != "user@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestRecommendationsReturnsRawEntries(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Prompt       string `json:"prompt"`
			NSuggestions int    `json:"n_suggestions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Error(err)
		}
		if in.Prompt != "q" || in.NSuggestions != 5 {
			t.Errorf("unexpected payload %+v", in)
		}
		w.Write([]byte(`{"recommended_questions":["plain",{"title":"rec","value":"v"}]}`))
	}))

	raw, err := c.Recommendations(context.Background(), "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 raw entries, got %d", len(raw))
	}
	var s string
	if err := json.Unmarshal(raw[0], &s); err != nil || s != "plain" {
		t.Fatalf("first entry %s", raw[0])
	}
}

func TestConversationEndpoints(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/app/conversations":
			json.NewEncoder(w).Encode(map[string]string{"id": "c1", "title": "t"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/app/conversations":
			w.Write([]byte(`{"items":[{"id":"c1","title":"t"}]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/app/conversations/c1/messages":
			w.Write([]byte(`{"items":[{"role":"user","content":"q"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/app/conversations/c1/messages":
			var in struct {
				Items []StoredMessage `json:"items"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Items) != 2 {
				t.Errorf("unexpected batch: %v %+v", err, in)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	ctx := context.Background()

	conv, err := c.CreateConversation(ctx, "t")
	if err != nil || conv.ID != "c1" {
		t.Fatalf("create: %+v %v", conv, err)
	}
	list, err := c.ListConversations(ctx)
	if err != nil || len(list) != 1 || list[0].ID != "c1" {
		t.Fatalf("list: %+v %v", list, err)
	}
	msgs, err := c.Messages(ctx, "c1")
	want := []StoredMessage{{Role: "user", Content: "q"}}
	if err != nil || !reflect.DeepEqual(msgs, want) {
		t.Fatalf("messages: %+v %v", msgs, err)
	}
	err = c.AppendMessages(ctx, "c1", []StoredMessage{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestSessionCookieSaveLoad(t *testing.T) {
	var sawCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "secret", Path: "/"})
		json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "e"})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("sid"); err == nil {
			sawCookie = ck.Value
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "e"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	first, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Login(context.Background(), "e", "p"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "session.json")
	if err := first.SaveSession(path); err != nil {
		t.Fatal(err)
	}

	second, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.LoadSession(path); err != nil {
		t.Fatal(err)
	}
	if _, err := second.Me(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sawCookie != "secret" {
		t.Fatalf("restored client sent cookie %q", sawCookie)
	}
}

func TestLoadSessionMissingFileIsNotAnError(t *testing.T) {
	c, err := NewClient("http://localhost:1")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.LoadSession(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatal(err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatal("empty base url must be rejected")
	}
}
