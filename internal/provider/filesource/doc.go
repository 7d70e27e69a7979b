// Package filesource reads now-playing metadata from a file that a player
// or bridge script keeps up to date, and turns fsnotify events on it into
// provider callbacks.
//
// The directory containing the file is watched rather than the file itself,
// so atomic replace-by-rename works. The file existing means a session is
// current; a change of its session_id field is reported as a new session,
// any other change as changed properties. Callbacks run on the fsnotify
// event goroutine.
//
// Example file (JSON; a .toml extension switches to TOML):
//
//	{
//	  "session_id": "mpv",
//	  "title": "Song A",
//	  "artist": "Artist X",
//	  "album_title": "Album",
//	  "genres": ["Rock", "Indie"],
//	  "track_number": 3,
//	  "playback_type": "Music"
//	}
package filesource
