// Package provider defines the boundary between nowplaying and an external
// media-session source.
//
// A source exposes a session manager, acquired asynchronously, that knows the
// current session; each session reports its properties asynchronously and
// both raise change callbacks from goroutines nowplaying does not own.
//
// Asynchronous results follow a poll-only contract: an AsyncOp exposes a
// Status that is checked repeatedly until it leaves StatusStarted. Await
// hides the polling behind a Future so callers block on a channel instead of
// writing their own sleep loops:
//
//	mgr, err := provider.Get(ctx, src.RequestManager(), provider.DefaultPollInterval)
//
// Concrete sources live in the subpackages filesource, remote and memory.
package provider
