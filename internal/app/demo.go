package app

import (
	"context"
	"log"
	"time"

	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/provider"
	"github.com/five82/nowplaying/internal/provider/memory"
)

const (
	defaultDemoInterval = 4 * time.Second
	// demoTracksPerSession is how many tracks play before the demo switches
	// to a new session, exercising the session-changed path.
	demoTracksPerSession = 3
)

var demoTracks = []provider.Properties{
	{Title: "Song A", Artist: "Artist X", AlbumTitle: "First Light", AlbumArtist: "Artist X", Genres: []string{"Rock"}, TrackNumber: 1, AlbumTrackCount: 10, PlaybackType: media.Ptr(media.PlaybackMusic)},
	{Title: "Song B", Artist: "Artist X", AlbumTitle: "First Light", AlbumArtist: "Artist X", Genres: []string{"Rock"}, TrackNumber: 2, AlbumTrackCount: 10, PlaybackType: media.Ptr(media.PlaybackMusic)},
	{Title: "Interlude", Artist: "Artist X", AlbumTitle: "First Light", AlbumArtist: "Artist X", TrackNumber: 3, AlbumTrackCount: 10, PlaybackType: media.Ptr(media.PlaybackMusic)},
	{Title: "Episode 12", Artist: "The Show", Subtitle: "The one with the cliffhanger", PlaybackType: media.Ptr(media.PlaybackVideo)},
	{Title: "Episode 13", Artist: "The Show", Subtitle: "Aftermath", PlaybackType: media.Ptr(media.PlaybackVideo)},
	{Title: "Holiday 2026", Artist: "Slideshow", PlaybackType: media.Ptr(media.PlaybackImage)},
	{Title: "Night Drive", Artist: "Synth Collective", AlbumTitle: "Neon", Genres: []string{"Synthwave", "Electronic"}, TrackNumber: 7, PlaybackType: media.Ptr(media.PlaybackMusic)},
}

// StartDemo launches a background goroutine that plays demoTracks on p at a
// fixed cadence. It returns immediately.
func StartDemo(ctx context.Context, p *memory.Provider, interval time.Duration) {
	if interval <= 0 {
		interval = defaultDemoInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			playDemoTrack(p, i)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// playDemoTrack plays track i, opening a new session every
// demoTracksPerSession tracks.
func playDemoTrack(p *memory.Provider, i int) {
	track := demoTracks[i%len(demoTracks)]
	if cur := p.Current(); cur != nil && i%demoTracksPerSession != 0 {
		cur.Update(track)
	} else {
		p.SetSession(&track)
	}
	log.Printf("[INFO] demo: playing %q by %q", track.Title, track.Artist)
}
