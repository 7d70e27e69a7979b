package provider

import (
	"context"
	"errors"

	"github.com/five82/nowplaying/internal/media"
)

// ErrNoSession is returned by Manager.CurrentSession when nothing is playing.
var ErrNoSession = errors.New("no current media session")

// Token identifies a registered callback so it can be removed again.
type Token uint64

// Properties is the metadata a session reports for its current item.
// Empty strings and zero numbers mean the source did not report the value.
type Properties struct {
	Title           string
	Artist          string
	AlbumTitle      string
	AlbumArtist     string
	Subtitle        string
	Genres          []string
	TrackNumber     int
	AlbumTrackCount int
	PlaybackType    *media.PlaybackType
}

// Snapshot converts p into a normalized media snapshot. It returns nil when
// title and artist are both blank.
func (p Properties) Snapshot() *media.Snapshot {
	s := &media.Snapshot{
		Title:           media.Ptr(p.Title),
		Artist:          media.Ptr(p.Artist),
		AlbumTitle:      optional(p.AlbumTitle),
		AlbumArtist:     optional(p.AlbumArtist),
		Subtitle:        optional(p.Subtitle),
		TrackNumber:     count(p.TrackNumber),
		AlbumTrackCount: count(p.AlbumTrackCount),
		PlaybackType:    p.PlaybackType,
	}
	for _, g := range p.Genres {
		s.Genres = append(s.Genres, g)
	}
	return media.Normalize(s)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func count(n int) *uint32 {
	if n <= 0 {
		return nil
	}
	return media.Ptr(uint32(n))
}

// Provider is the entry point into an external media-session source.
type Provider interface {
	// Init prepares the calling goroutine's environment for the source.
	Init(ctx context.Context) error
	// RequestManager starts acquiring the session manager.
	RequestManager() AsyncOp[Manager]
}

// Manager tracks which session is current.
//
// Callbacks may be invoked from any goroutine, concurrently with everything
// else, for as long as they stay registered.
type Manager interface {
	CurrentSession() (Session, error)
	OnCurrentSessionChanged(fn func()) (Token, error)
	RemoveCurrentSessionChanged(Token)
}

// Session is one media session, e.g. a player instance.
type Session interface {
	TryGetProperties() AsyncOp[Properties]
	OnPropertiesChanged(fn func()) (Token, error)
	RemovePropertiesChanged(Token)
}
