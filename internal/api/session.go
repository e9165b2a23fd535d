package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// The identity collaborator authenticates with an HTTP session cookie.
// So the TUI, `talino login` and `talino conversations` share one
// session across processes, the cookie (never the credentials) is
// cached in the config directory.

type sessionCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadSession restores previously saved cookies for the client's base
// URL. A missing file is not an error.
func (c *Client) LoadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var saved []sessionCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return err
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, s := range saved {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value, Path: "/"})
	}
	c.HTTP.Jar.SetCookies(u, cookies)
	return nil
}

// SaveSession writes the current cookies for the client's base URL.
func (c *Client) SaveSession(path string) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}
	cookies := c.HTTP.Jar.Cookies(u)
	saved := make([]sessionCookie, 0, len(cookies))
	for _, ck := range cookies {
		saved = append(saved, sessionCookie{Name: ck.Name, Value: ck.Value})
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
