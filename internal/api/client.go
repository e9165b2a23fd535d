// Package api implements the HTTP contract the TALINO backend exposes:
// identity, chat inference, recommendations and conversation history.
// All requests are JSON over the configured base URL and carry the
// session cookie the identity endpoints set.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// Error is a backend-supplied failure payload.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type Conversation struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type StoredMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatReply struct {
	Output    string `json:"output"`
	SessionID string `json:"session_id"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a client against baseURL. The cookie jar holds the
// identity session for the lifetime of the process; credentials are
// never written to disk.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("server base url is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Jar:     jar,
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &payload)
		msg := payload.Error
		if msg == "" {
			msg = payload.Message
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Me probes the current identity. A nil user with nil error means the
// session is anonymous.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user *User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	if user != nil && user.ID == "" && user.Email == "" {
		return nil, nil
	}
	return user, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	var user User
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var user User
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Chat sends a prompt. sessionID may be empty; the reply's session id
// may differ from the one sent and must be adopted by the caller.
func (c *Client) Chat(ctx context.Context, input, sessionID string) (ChatReply, error) {
	in := struct {
		Input     string `json:"input"`
		SessionID string `json:"session_id,omitempty"`
	}{Input: input, SessionID: sessionID}
	var out ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chat", in, &out); err != nil {
		return ChatReply{}, err
	}
	return out, nil
}

// Recommendations returns the raw related-question entries. The payload
// shape varies (plain strings or structured records), so decoding into a
// single record shape happens at the chat boundary, not here.
func (c *Client) Recommendations(ctx context.Context, prompt string, n int) ([]json.RawMessage, error) {
	in := struct {
		Prompt       string `json:"prompt"`
		NSuggestions int    `json:"n_suggestions"`
	}{Prompt: prompt, NSuggestions: n}
	var out struct {
		RecommendedQuestions []json.RawMessage `json:"recommended_questions"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/recommendations", in, &out); err != nil {
		return nil, err
	}
	return out.RecommendedQuestions, nil
}

func (c *Client) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	var out struct {
		Items []ConversationSummary `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/app/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) CreateConversation(ctx context.Context, title string) (Conversation, error) {
	in := map[string]string{"title": title}
	var out Conversation
	if err := c.do(ctx, http.MethodPost, "/api/app/conversations", in, &out); err != nil {
		return Conversation{}, err
	}
	return out, nil
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]StoredMessage, error) {
	var out struct {
		Items []StoredMessage `json:"items"`
	}
	path := "/api/app/conversations/" + conversationID + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// AppendMessages persists one turn's messages as a single batch.
func (c *Client) AppendMessages(ctx context.Context, conversationID string, items []StoredMessage) error {
	in := struct {
		Items []StoredMessage `json:"items"`
	}{Items: items}
	path := "/api/app/conversations/" + conversationID + "/messages"
	return c.do(ctx, http.MethodPost, path, in, nil)
}
