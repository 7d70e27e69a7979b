package remote

import (
	"strings"

	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/provider"
)

// SessionResponse mirrors the payload returned by /api/session.
type SessionResponse struct {
	Active    bool   `json:"active"`
	SessionID string `json:"sessionId"`
	Sequence  uint64 `json:"sequence"`
}

// NowPlayingResponse mirrors /api/nowplaying.
type NowPlayingResponse struct {
	SessionID       string   `json:"sessionId"`
	Sequence        uint64   `json:"sequence"`
	Title           string   `json:"title"`
	Artist          string   `json:"artist"`
	AlbumTitle      string   `json:"albumTitle"`
	AlbumArtist     string   `json:"albumArtist"`
	Subtitle        string   `json:"subtitle"`
	Genres          []string `json:"genres"`
	TrackNumber     int      `json:"trackNumber"`
	AlbumTrackCount int      `json:"albumTrackCount"`
	PlaybackType    string   `json:"playbackType"`
}

// Properties converts the payload into provider properties.
func (r NowPlayingResponse) Properties() provider.Properties {
	p := provider.Properties{
		Title:           r.Title,
		Artist:          r.Artist,
		AlbumTitle:      r.AlbumTitle,
		AlbumArtist:     r.AlbumArtist,
		Subtitle:        r.Subtitle,
		Genres:          r.Genres,
		TrackNumber:     r.TrackNumber,
		AlbumTrackCount: r.AlbumTrackCount,
	}
	if strings.TrimSpace(r.PlaybackType) != "" {
		p.PlaybackType = media.Ptr(media.ParsePlaybackType(r.PlaybackType))
	}
	return p
}
