package filesource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/provider"
)

// Document is the on-disk now-playing record. Players or bridge scripts
// rewrite it whenever the track changes; JSON and TOML are accepted.
type Document struct {
	SessionID       string   `json:"session_id" toml:"session_id"`
	Title           string   `json:"title" toml:"title"`
	Artist          string   `json:"artist" toml:"artist"`
	AlbumTitle      string   `json:"album_title" toml:"album_title"`
	AlbumArtist     string   `json:"album_artist" toml:"album_artist"`
	Subtitle        string   `json:"subtitle" toml:"subtitle"`
	Genres          []string `json:"genres" toml:"genres"`
	TrackNumber     int      `json:"track_number" toml:"track_number"`
	AlbumTrackCount int      `json:"album_track_count" toml:"album_track_count"`
	PlaybackType    string   `json:"playback_type" toml:"playback_type"`
}

// Properties converts the document into provider properties.
func (d Document) Properties() provider.Properties {
	p := provider.Properties{
		Title:           d.Title,
		Artist:          d.Artist,
		AlbumTitle:      d.AlbumTitle,
		AlbumArtist:     d.AlbumArtist,
		Subtitle:        d.Subtitle,
		Genres:          d.Genres,
		TrackNumber:     d.TrackNumber,
		AlbumTrackCount: d.AlbumTrackCount,
	}
	if strings.TrimSpace(d.PlaybackType) != "" {
		p.PlaybackType = media.Ptr(media.ParsePlaybackType(d.PlaybackType))
	}
	return p
}

// Decode parses data according to the extension of path. Anything that is
// not .toml is read as JSON. Whitespace-only input is an empty document.
func Decode(path string, data []byte) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	}
	return doc, nil
}
