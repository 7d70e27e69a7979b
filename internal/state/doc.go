// Package state provides the versioned, thread-safe media store at the centre
// of nowplaying.
//
// # Overview
//
// The Store is where provider callbacks meet blocked consumers. Callbacks
// push snapshots in with Apply; consumers block in Await until something they
// have not seen yet arrives, or until Halt releases them; accessors read the
// merged fields with Field.
//
// # Architecture
//
//	Producer (watcher callbacks):      Consumer (waiters, accessors):
//	┌──────────────────────┐           ┌──────────────────────┐
//	│ provider callback    │           │ t := store.Arm()     │
//	│      ↓               │           │ store.Await(ctx, t)  │
//	│ fetch snapshot       │           │      ↓ (cond wait)   │
//	│      ↓               │           │                      │
//	│ store.Apply(snap) ───┼──────────→│ wakes on version     │
//	│  version++           │ Broadcast │ bump or Halt         │
//	│  Broadcast           │           │      ↓               │
//	│                      │           │ store.Field(f)       │
//	└──────────────────────┘           └──────────────────────┘
//
// Producers run on whatever goroutine the provider delivers events on, so
// the Store assumes contention from arbitrary callers.
//
// # Concurrency Model
//
// Two independent pieces of synchronization:
//
//   - mu (with a sync.Cond): guards the fields, the version counter, the
//     cancelled flag and the fetch bookkeeping. Every mutation that can end
//     a wait broadcasts while still holding mu.
//   - listening (atomic.Bool): whether any consumer wants updates. Field
//     checks it first and returns "" without locking when nobody listens.
//
// A waiter records its starting version under mu (Arm) before anything that
// could produce an update is started, and re-checks the version under mu
// after every wake-up. A mutation that happens after Arm therefore can never
// be missed, and spurious wake-ups just loop.
//
// # Versioning
//
// The version starts at 0 and is bumped once per observable change as
// decided by media.Detect. Duplicate snapshots and repeated "nothing
// playing" signals leave it alone. It wraps on overflow, which is harmless:
// waiters only compare it for inequality.
//
// # Cancellation
//
// Halt sets listening=false and cancelled=true and wakes everyone. Every
// outstanding wait returns nil, exactly as for a real change; callers that
// need to tell the two apart compare Version before and after. Arm clears a
// stale cancelled flag so the next wait blocks normally. A context passed to
// Await also ends the wait; a helper registered with context.AfterFunc
// broadcasts on the cond so the waiter notices.
//
// # Testing Considerations
//
// The Store is safe to construct with zero value:
//
//	store := &state.Store{} // ready to use
//
// Each test can own an isolated Store; there is no package-level state.
package state
