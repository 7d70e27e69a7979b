package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAddr {
		t.Fatalf("host = %q, want %q", u.Host, defaultAddr)
	}

	u, err = parseBaseURL("https://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchesEndpoints(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/session":
			_ = json.NewEncoder(w).Encode(SessionResponse{Active: true, SessionID: "mpv", Sequence: 4})
		case "/api/nowplaying":
			_ = json.NewEncoder(w).Encode(NowPlayingResponse{
				SessionID:    "mpv",
				Sequence:     4,
				Title:        "Song A",
				Artist:       "Artist X",
				Genres:       []string{"Rock"},
				TrackNumber:  3,
				PlaybackType: "music",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.BaseURL() != server.URL {
		t.Fatalf("BaseURL = %q, want %q", c.BaseURL(), server.URL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	session, err := c.FetchSession(ctx)
	if err != nil {
		t.Fatalf("FetchSession returned error: %v", err)
	}
	if !session.Active || session.SessionID != "mpv" || session.Sequence != 4 {
		t.Fatalf("FetchSession payload = %#v", session)
	}

	np, err := c.FetchNowPlaying(ctx)
	if err != nil {
		t.Fatalf("FetchNowPlaying returned error: %v", err)
	}
	props := np.Properties()
	if props.Title != "Song A" || props.Artist != "Artist X" || props.TrackNumber != 3 {
		t.Fatalf("properties = %#v", props)
	}
	if props.PlaybackType == nil || props.PlaybackType.String() != "Music" {
		t.Fatalf("playback type = %v, want Music", props.PlaybackType)
	}

	if gotUserAgent != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUserAgent, defaultUserAgent)
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept = %q, want application/json", gotAccept)
	}
}

func TestClient_ErrorsOnStatusAndDecode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/session":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/api/nowplaying":
			_, _ = w.Write([]byte("{not json"))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, err := c.FetchSession(context.Background()); err == nil || !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("FetchSession error = %v, want status 503", err)
	}
	if _, err := c.FetchNowPlaying(context.Background()); err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchNowPlaying error = %v, want decode error", err)
	}

	var nilClient *Client
	if _, err := nilClient.FetchSession(context.Background()); err == nil {
		t.Fatalf("expected error from nil client")
	}
}
