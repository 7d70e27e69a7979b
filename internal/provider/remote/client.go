package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher is the subset of the daemon API the provider needs. *Client
// implements it.
type Fetcher interface {
	FetchSession(ctx context.Context) (SessionResponse, error)
	FetchNowPlaying(ctx context.Context) (NowPlayingResponse, error)
}

var _ Fetcher = (*Client)(nil)

// Client talks to a now-playing daemon over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAddr      = "127.0.0.1:7488"
	defaultUserAgent = "nowplaying/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for the daemon at addr (host:port or URL).
func NewClient(addr string) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized daemon address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchSession retrieves the identity of the current media session.
func (c *Client) FetchSession(ctx context.Context) (SessionResponse, error) {
	if c == nil {
		return SessionResponse{}, fmt.Errorf("client is nil")
	}
	var payload SessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/session", &payload); err != nil {
		return SessionResponse{}, err
	}
	return payload, nil
}

// FetchNowPlaying retrieves the metadata of the current media session.
func (c *Client) FetchNowPlaying(ctx context.Context) (NowPlayingResponse, error) {
	if c == nil {
		return NowPlayingResponse{}, fmt.Errorf("client is nil")
	}
	var payload NowPlayingResponse
	if err := c.do(ctx, http.MethodGet, "/api/nowplaying", &payload); err != nil {
		return NowPlayingResponse{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = defaultAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse remote_addr %q: %w", addr, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
