// Package watcher runs the single background listener that turns a media
// source's change callbacks into state.Store updates.
//
// # Lifecycle
//
//	Uninitialized ──Start──> Starting ──Init──> Requesting ──manager──> Subscribed ──> Idle
//	                                  │                    │
//	                                  └──── error ─────────┴──> Failed (goroutine exits)
//
// Start is guarded by a sync.Once; calling it again is a no-op. In the Idle
// phase the goroutine just blocks on its context to keep the subscription
// alive; all real work happens inside the callbacks, on whatever goroutine
// the provider delivers them from. When the context ends the hooks are
// removed and the phase becomes Stopped.
//
// # Callbacks
//
// Two hooks are registered: "current session changed" on the manager and
// "properties changed" on the current session. When the current session
// changes the properties hook is moved to the new session. Each callback
// checks Store.Listening first and drops the event when nobody is waiting,
// so a muted consumer does not cause version churn.
//
// Right after subscribing, if someone is already listening, one fetch
// establishes a baseline so a waiter that started after the media began
// still sees it.
//
// # Failure handling
//
// If Init, the manager request, or the first session lookup fails, the
// goroutine logs the error and exits; there is no retry. Fetch failures
// during callbacks are recorded on the store and treated as nothing playing.
package watcher
