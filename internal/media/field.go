package media

import (
	"strconv"
	"strings"
)

// GenreSeparator joins genre lists for display.
const GenreSeparator = ", "

// Field selects one metadata value of a Snapshot.
type Field int

const (
	FieldTitle Field = iota
	FieldArtist
	FieldAlbumTitle
	FieldAlbumArtist
	FieldGenres
	FieldSubtitle
	FieldTrackNumber
	FieldAlbumTrackCount
	FieldPlaybackType
	FieldThumbnail
)

var fieldNames = [...]string{
	FieldTitle:           "title",
	FieldArtist:          "artist",
	FieldAlbumTitle:      "albumtitle",
	FieldAlbumArtist:     "albumartist",
	FieldGenres:          "genres",
	FieldSubtitle:        "subtitle",
	FieldTrackNumber:     "tracknumber",
	FieldAlbumTrackCount: "albumtrackcount",
	FieldPlaybackType:    "playbacktype",
	FieldThumbnail:       "thumbnail",
}

// Fields lists every selector in display order.
func Fields() []Field {
	out := make([]Field, len(fieldNames))
	for i := range fieldNames {
		out[i] = Field(i)
	}
	return out
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// ParseField resolves a field name. Underscores and case are ignored so
// "album_title" and "AlbumTitle" both match.
func ParseField(name string) (Field, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	for i, n := range fieldNames {
		if n == key {
			return Field(i), true
		}
	}
	return 0, false
}

// Value renders the selected field for display. Unset and blank values are
// the empty string, text is trimmed, genres are joined with GenreSeparator.
func (s Snapshot) Value(f Field) string {
	switch f {
	case FieldTitle:
		return text(s.Title)
	case FieldArtist:
		return text(s.Artist)
	case FieldAlbumTitle:
		return text(s.AlbumTitle)
	case FieldAlbumArtist:
		return text(s.AlbumArtist)
	case FieldGenres:
		return strings.Join(s.Genres, GenreSeparator)
	case FieldSubtitle:
		return text(s.Subtitle)
	case FieldTrackNumber:
		return number(s.TrackNumber)
	case FieldAlbumTrackCount:
		return number(s.AlbumTrackCount)
	case FieldPlaybackType:
		if s.PlaybackType == nil {
			return ""
		}
		return s.PlaybackType.String()
	case FieldThumbnail:
		return text(s.Thumbnail)
	default:
		return ""
	}
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func number(p *uint32) string {
	if p == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*p), 10)
}
