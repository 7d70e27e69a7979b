// Package media defines the metadata snapshot shared by every layer of
// nowplaying and the change-detection policy applied to it.
//
// A Snapshot is a value: providers build one per observation, the state
// store merges it with Detect and hands out clones. Nothing in this package
// locks or blocks.
//
// # Absent media
//
// A snapshot whose title and artist are both blank is not media. Normalize
// turns it into nil before it reaches the store, so a player that briefly
// reports empty metadata while switching tracks never wakes a waiter.
//
// # Change detection
//
// Detect compares field by field. An incoming snapshot replaces the stored
// one wholesale (a field missing from it is cleared); a nil incoming clears
// everything once and is then a no-op until real media shows up again.
package media
