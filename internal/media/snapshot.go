package media

import (
	"slices"
	"strings"
)

// PlaybackType is the kind of media a session reports.
type PlaybackType int

const (
	PlaybackUnknown PlaybackType = iota
	PlaybackMusic
	PlaybackVideo
	PlaybackImage
)

func (p PlaybackType) String() string {
	switch p {
	case PlaybackMusic:
		return "Music"
	case PlaybackVideo:
		return "Video"
	case PlaybackImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// ParsePlaybackType maps a case-insensitive name to a PlaybackType. Anything
// unrecognised is PlaybackUnknown.
func ParsePlaybackType(name string) PlaybackType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "music":
		return PlaybackMusic
	case "video":
		return PlaybackVideo
	case "image":
		return PlaybackImage
	default:
		return PlaybackUnknown
	}
}

// Snapshot is one observed state of the media source. A nil field means the
// source did not report it.
type Snapshot struct {
	Title           *string
	Artist          *string
	AlbumTitle      *string
	AlbumArtist     *string
	Genres          []string
	Subtitle        *string
	TrackNumber     *uint32
	AlbumTrackCount *uint32
	PlaybackType    *PlaybackType
	Thumbnail       *string
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// IsEmpty reports whether every field is absent.
func (s Snapshot) IsEmpty() bool {
	return s.Title == nil &&
		s.Artist == nil &&
		s.AlbumTitle == nil &&
		s.AlbumArtist == nil &&
		s.Genres == nil &&
		s.Subtitle == nil &&
		s.TrackNumber == nil &&
		s.AlbumTrackCount == nil &&
		s.PlaybackType == nil &&
		s.Thumbnail == nil
}

// Clone returns a deep copy so callers never share pointers with the store.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Title:           clonePtr(s.Title),
		Artist:          clonePtr(s.Artist),
		AlbumTitle:      clonePtr(s.AlbumTitle),
		AlbumArtist:     clonePtr(s.AlbumArtist),
		Genres:          cloneGenres(s.Genres),
		Subtitle:        clonePtr(s.Subtitle),
		TrackNumber:     clonePtr(s.TrackNumber),
		AlbumTrackCount: clonePtr(s.AlbumTrackCount),
		PlaybackType:    clonePtr(s.PlaybackType),
		Thumbnail:       clonePtr(s.Thumbnail),
	}
}

// Normalize returns nil when s carries no usable media, i.e. title and artist
// are both missing or blank. Empty genre lists collapse to nil.
func Normalize(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	if isBlank(s.Title) && isBlank(s.Artist) {
		return nil
	}
	out := s.Clone()
	if len(out.Genres) == 0 {
		out.Genres = nil
	}
	return &out
}

func isBlank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneGenres(g []string) []string {
	if g == nil {
		return nil
	}
	return slices.Clone(g)
}
