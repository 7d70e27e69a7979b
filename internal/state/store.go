package state

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/nowplaying/internal/media"
)

// Snapshot is a point-in-time copy of the store for display and diagnostics.
type Snapshot struct {
	Media               media.Snapshot
	Version             uint64
	Listening           bool
	LastChanged         time.Time
	LastError           error
	ConsecutiveFailures int // fetch failures since the last successful fetch
}

// IsOffline reports whether the source has failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Ticket records the version a waiter started from.
type Ticket struct {
	version uint64
}

// Version returns the version the ticket was armed at.
func (t Ticket) Version() uint64 {
	return t.version
}

// Store holds the latest merged metadata and coordinates waiters.
//
// Field values, version and the cancelled flag are guarded by mu. listening is
// atomic so accessors can bail out without touching the lock. The zero value
// is ready to use.
type Store struct {
	mu        sync.Mutex
	condOnce  sync.Once
	cond      *sync.Cond
	fields    media.Snapshot
	version   uint64
	cancelled bool
	changedAt time.Time
	lastErr   error
	failures  int

	listening atomic.Bool
}

func (s *Store) cv() *sync.Cond {
	s.condOnce.Do(func() { s.cond = sync.NewCond(&s.mu) })
	return s.cond
}

// Listening reports whether any consumer currently wants updates.
func (s *Store) Listening() bool {
	return s.listening.Load()
}

// Apply merges incoming into the stored fields. On an observable change the
// version is bumped, cancellation is cleared and every waiter is woken.
// Incoming is normalized first, so blank metadata counts as nothing playing.
func (s *Store) Apply(incoming *media.Snapshot) (uint64, bool) {
	incoming = media.Normalize(incoming)

	s.mu.Lock()
	defer s.mu.Unlock()

	merged, changed := media.Detect(s.fields, incoming)
	if !changed {
		return s.version, false
	}
	s.fields = merged
	s.version++
	s.cancelled = false
	s.changedAt = time.Now()
	s.cv().Broadcast()
	return s.version, true
}

// RecordFetch tracks the outcome of a provider fetch. A nil err resets the
// failure counter.
func (s *Store) RecordFetch(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		s.failures++
		return
	}
	s.lastErr = nil
	s.failures = 0
}

// Arm marks the store as listening and records the current version for a
// subsequent Await. Cancellation left over from an earlier Halt is cleared.
func (s *Store) Arm() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listening.Store(true)
	s.cancelled = false
	return Ticket{version: s.version}
}

// Await blocks until the version moves past t or Halt is called. It returns
// nil in both cases. A done ctx ends the wait with ctx.Err().
func (s *Store) Await(ctx context.Context, t Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cond := s.cv()
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			s.mu.Lock()
			cond.Broadcast()
			s.mu.Unlock()
		})
		defer stop()
	}

	for s.version == t.version && !s.cancelled {
		if err := ctx.Err(); err != nil {
			return err
		}
		cond.Wait()
	}
	return nil
}

// Wait is Arm followed by Await.
func (s *Store) Wait(ctx context.Context) error {
	return s.Await(ctx, s.Arm())
}

// Halt stops listening and releases every waiter. Stored fields are kept.
func (s *Store) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listening.Store(false)
	s.cancelled = true
	s.cv().Broadcast()
}

// Field returns the display value of f, or "" when nobody is listening.
func (s *Store) Field(f media.Field) string {
	if !s.listening.Load() {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Value(f)
}

// Version returns the current version counter.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Media:               s.fields.Clone(),
		Version:             s.version,
		Listening:           s.listening.Load(),
		LastChanged:         s.changedAt,
		ConsecutiveFailures: s.failures,
	}
	if s.lastErr != nil {
		snap.LastError = fmt.Errorf("%w", s.lastErr)
	}
	return snap
}
