package filesource

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/nowplaying"
	"github.com/five82/nowplaying/internal/provider"
)

const eventually = 3 * time.Second

func writeDoc(t *testing.T, path, body string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(body), 0o600))
	require.NoError(t, os.Rename(tmp, path))
}

func startManager(t *testing.T, path string) provider.Manager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	src := New(path)
	require.NoError(t, src.Init(ctx))
	mgr, err := provider.Get(ctx, src.RequestManager(), time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		<-mgr.(*Manager).Stopped()
	})
	return mgr
}

func TestDecode(t *testing.T) {
	doc, err := Decode("np.json", []byte(`{"session_id":"mpv","title":"Song A","artist":"Artist X","genres":["Rock"],"track_number":2,"playback_type":"video"}`))
	require.NoError(t, err)
	assert.Equal(t, "mpv", doc.SessionID)
	props := doc.Properties()
	assert.Equal(t, "Song A", props.Title)
	assert.Equal(t, []string{"Rock"}, props.Genres)
	require.NotNil(t, props.PlaybackType)
	assert.Equal(t, media.PlaybackVideo, *props.PlaybackType)

	doc, err = Decode("np.toml", []byte("title = \"Song B\"\nartist = \"Artist Y\"\nalbum_track_count = 10\n"))
	require.NoError(t, err)
	assert.Equal(t, "Song B", doc.Title)
	assert.Equal(t, 10, doc.AlbumTrackCount)
	assert.Nil(t, doc.Properties().PlaybackType)

	doc, err = Decode("np.json", []byte("  \n"))
	require.NoError(t, err)
	assert.Nil(t, doc.Properties().Snapshot())

	_, err = Decode("np.json", []byte(`{"title":`))
	assert.ErrorContains(t, err, "parse np.json")
	_, err = Decode("np.toml", []byte(`title = [`))
	assert.ErrorContains(t, err, "parse np.toml")
}

func TestSource_InitRequiresPath(t *testing.T) {
	assert.Error(t, New("").Init(context.Background()))
}

func TestManager_NoFileMeansNoSession(t *testing.T) {
	mgr := startManager(t, filepath.Join(t.TempDir(), "current.json"))
	_, err := mgr.CurrentSession()
	assert.ErrorIs(t, err, provider.ErrNoSession)
}

func TestManager_FileEventsFireHooks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "current.json")
	mgr := startManager(t, path)

	var sessionEvents atomic.Int32
	_, err := mgr.OnCurrentSessionChanged(func() { sessionEvents.Add(1) })
	require.NoError(t, err)

	writeDoc(t, path, `{"session_id":"a","title":"Song A","artist":"Artist X"}`)
	require.Eventually(t, func() bool { return sessionEvents.Load() >= 1 }, eventually, 5*time.Millisecond)

	session, err := mgr.CurrentSession()
	require.NoError(t, err)
	assert.Equal(t, "a", session.(*Session).ID())

	var propEvents atomic.Int32
	_, err = session.OnPropertiesChanged(func() { propEvents.Add(1) })
	require.NoError(t, err)

	before := sessionEvents.Load()
	writeDoc(t, path, `{"session_id":"a","title":"Song B","artist":"Artist X"}`)
	require.Eventually(t, func() bool { return propEvents.Load() >= 1 }, eventually, 5*time.Millisecond)
	assert.Equal(t, before, sessionEvents.Load(), "same session id must not count as a new session")

	props, err := provider.Get(context.Background(), session.TryGetProperties(), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "Song B", props.Title)

	writeDoc(t, path, `{"session_id":"b","title":"Song C","artist":"Artist Y"}`)
	require.Eventually(t, func() bool {
		s, err := mgr.CurrentSession()
		return err == nil && s.(*Session).ID() == "b"
	}, eventually, 5*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, err := mgr.CurrentSession()
		return err != nil
	}, eventually, 5*time.Millisecond)
}

func TestSource_EndToEndWithService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "current.json")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := nowplaying.New(ctx, New(path), nowplaying.Options{PollInterval: time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- svc.WaitForMedia(context.Background()) }()

	// Keep rewriting until the watcher has subscribed and picked it up.
	deadline := time.After(eventually)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	writeDoc(t, path, `{"title":"Song A","artist":"Artist X","genres":["Rock","Pop"]}`)
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.Equal(t, "Song A", svc.Title())
			assert.Equal(t, "Artist X", svc.Artist())
			assert.Equal(t, "Rock, Pop", svc.Genres())
			return
		case <-tick.C:
			writeDoc(t, path, `{"title":"Song A","artist":"Artist X","genres":["Rock","Pop"]}`)
		case <-deadline:
			t.Fatal("WaitForMedia did not observe the file")
		}
	}
}
