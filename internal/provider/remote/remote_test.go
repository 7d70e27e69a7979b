package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/nowplaying/internal/nowplaying"
	"github.com/five82/nowplaying/internal/provider"
)

const (
	interval   = 5 * time.Millisecond
	eventually = 2 * time.Second
)

// daemon is a scriptable /api/session + /api/nowplaying server.
type daemon struct {
	mu   sync.Mutex
	np   *NowPlayingResponse
	down bool
}

func (d *daemon) set(np *NowPlayingResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.np = np
}

func (d *daemon) setDown(down bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.down = down
}

func (d *daemon) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.down {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	switch r.URL.Path {
	case "/api/session":
		resp := SessionResponse{}
		if d.np != nil {
			resp = SessionResponse{Active: true, SessionID: d.np.SessionID, Sequence: d.np.Sequence}
		}
		_ = json.NewEncoder(w).Encode(resp)
	case "/api/nowplaying":
		if d.np == nil {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(d.np)
	default:
		http.NotFound(w, r)
	}
}

func startDaemon(t *testing.T) (*daemon, string) {
	t.Helper()
	d := &daemon{}
	server := httptest.NewServer(d)
	t.Cleanup(server.Close)
	return d, server.URL
}

func startManager(t *testing.T, addr string) *Manager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	src, err := Dial(addr, interval)
	require.NoError(t, err)
	require.NoError(t, src.Init(ctx))
	mgr, err := provider.Get(ctx, src.RequestManager(), time.Millisecond)
	require.NoError(t, err)
	m := mgr.(*Manager)
	t.Cleanup(func() {
		cancel()
		<-m.Stopped()
	})
	return m
}

func TestManager_SessionLifecycle(t *testing.T) {
	d, addr := startDaemon(t)
	mgr := startManager(t, addr)

	_, err := mgr.CurrentSession()
	require.ErrorIs(t, err, provider.ErrNoSession)

	var sessionEvents atomic.Int32
	_, err = mgr.OnCurrentSessionChanged(func() { sessionEvents.Add(1) })
	require.NoError(t, err)

	d.set(&NowPlayingResponse{SessionID: "a", Sequence: 1, Title: "Song A", Artist: "Artist X"})
	require.Eventually(t, func() bool { return sessionEvents.Load() == 1 }, eventually, interval)

	session, err := mgr.CurrentSession()
	require.NoError(t, err)
	assert.Equal(t, "a", session.(*Session).ID())

	var propEvents atomic.Int32
	_, err = session.OnPropertiesChanged(func() { propEvents.Add(1) })
	require.NoError(t, err)

	d.set(&NowPlayingResponse{SessionID: "a", Sequence: 2, Title: "Song B", Artist: "Artist X"})
	require.Eventually(t, func() bool { return propEvents.Load() == 1 }, eventually, interval)
	assert.Equal(t, int32(1), sessionEvents.Load())

	props, err := provider.Get(context.Background(), session.TryGetProperties(), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "Song B", props.Title)

	d.set(&NowPlayingResponse{SessionID: "b", Sequence: 1, Title: "Song C", Artist: "Artist Y"})
	require.Eventually(t, func() bool { return sessionEvents.Load() == 2 }, eventually, interval)

	d.set(nil)
	require.Eventually(t, func() bool { return sessionEvents.Load() == 3 }, eventually, interval)
	_, err = mgr.CurrentSession()
	assert.ErrorIs(t, err, provider.ErrNoSession)
}

func TestManager_UnreachableDaemonIsNotAChange(t *testing.T) {
	d, addr := startDaemon(t)
	d.set(&NowPlayingResponse{SessionID: "a", Sequence: 1, Title: "Song A", Artist: "Artist X"})
	mgr := startManager(t, addr)

	var events atomic.Int32
	_, err := mgr.OnCurrentSessionChanged(func() { events.Add(1) })
	require.NoError(t, err)

	d.setDown(true)
	time.Sleep(10 * interval)
	assert.Equal(t, int32(0), events.Load())
	_, err = mgr.CurrentSession()
	assert.NoError(t, err, "session is kept while the daemon is unreachable")

	d.setDown(false)
	d.set(&NowPlayingResponse{SessionID: "b", Sequence: 1, Title: "Song B", Artist: "Artist X"})
	require.Eventually(t, func() bool { return events.Load() == 1 }, eventually, interval)
}

func TestSession_FetchErrorIsReported(t *testing.T) {
	d, addr := startDaemon(t)
	d.set(&NowPlayingResponse{SessionID: "a", Sequence: 1, Title: "Song A", Artist: "Artist X"})
	mgr := startManager(t, addr)

	session, err := mgr.CurrentSession()
	require.NoError(t, err)

	d.setDown(true)
	_, err = provider.Get(context.Background(), session.TryGetProperties(), time.Millisecond)
	assert.ErrorIs(t, err, provider.ErrOpFailed)
}

func TestSource_EndToEndWithService(t *testing.T) {
	d, addr := startDaemon(t)
	src, err := Dial(addr, interval)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc := nowplaying.New(ctx, src, nowplaying.Options{PollInterval: time.Millisecond})

	// The baseline fetch finds no session; the wait ends on the daemon's
	// first report.
	done := make(chan error, 1)
	go func() { done <- svc.WaitForMedia(context.Background()) }()

	d.set(&NowPlayingResponse{SessionID: "a", Sequence: 1, Title: "Song A", Artist: "Artist X", AlbumTrackCount: 12})

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(eventually):
		t.Fatal("WaitForMedia did not return")
	}
	assert.Equal(t, "Song A", svc.Title())
	assert.Equal(t, "Artist X", svc.Artist())
	assert.Equal(t, "12", svc.AlbumTrackCount())
}

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second},
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}
