package media

import "slices"

// Detect merges incoming into current and reports whether anything observable
// changed.
//
// A non-nil incoming replaces every field that differs, absent fields
// included. A nil incoming means nothing is playing: it clears current unless
// current is already empty, in which case nothing changed.
func Detect(current Snapshot, incoming *Snapshot) (Snapshot, bool) {
	if incoming == nil {
		if current.IsEmpty() {
			return current, false
		}
		return Snapshot{}, true
	}

	merged := current
	changed := false
	mergePtr(&merged.Title, incoming.Title, &changed)
	mergePtr(&merged.Artist, incoming.Artist, &changed)
	mergePtr(&merged.AlbumTitle, incoming.AlbumTitle, &changed)
	mergePtr(&merged.AlbumArtist, incoming.AlbumArtist, &changed)
	if !genresEqual(merged.Genres, incoming.Genres) {
		merged.Genres = cloneGenres(incoming.Genres)
		changed = true
	}
	mergePtr(&merged.Subtitle, incoming.Subtitle, &changed)
	mergePtr(&merged.TrackNumber, incoming.TrackNumber, &changed)
	mergePtr(&merged.AlbumTrackCount, incoming.AlbumTrackCount, &changed)
	mergePtr(&merged.PlaybackType, incoming.PlaybackType, &changed)
	mergePtr(&merged.Thumbnail, incoming.Thumbnail, &changed)
	return merged, changed
}

func mergePtr[T comparable](dst **T, src *T, changed *bool) {
	if ptrEqual(*dst, src) {
		return
	}
	*dst = clonePtr(src)
	*changed = true
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func genresEqual(a, b []string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return slices.Equal(a, b)
}
