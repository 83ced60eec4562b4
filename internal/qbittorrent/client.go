// Package qbittorrent is a minimal Web API client used to drop torrents
// whose payload has been organized into the library.
package qbittorrent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to a qBittorrent Web API endpoint. Authentication is
// cookie-based; Login must succeed before other calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL (for example
// "http://localhost:8081").
func New(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("qbittorrent: empty host")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("qbittorrent: cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

// Login authenticates against the Web API and stores the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	body, err := c.postForm(ctx, "/api/v2/auth/login", form)
	if err != nil {
		return err
	}
	// The endpoint answers 200 with "Fails." on bad credentials.
	if strings.TrimSpace(body) != "Ok." {
		return fmt.Errorf("qbittorrent: login rejected: %s", strings.TrimSpace(body))
	}
	return nil
}

// DeleteTorrents removes the torrents with the given info hashes. Payload
// files on disk are kept; the library owns them now.
func (c *Client) DeleteTorrents(ctx context.Context, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	form := url.Values{
		"hashes":      {strings.Join(hashes, "|")},
		"deleteFiles": {"false"},
	}
	_, err := c.postForm(ctx, "/api/v2/torrents/delete", form)
	return err
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("qbittorrent: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("qbittorrent: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("qbittorrent: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("qbittorrent: %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}
