package nowplaying

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/metrics"
	"github.com/five82/nowplaying/internal/provider"
	"github.com/five82/nowplaying/internal/state"
	"github.com/five82/nowplaying/internal/watcher"
)

// ErrWaitTimeout is returned by WaitForMedia when Options.WaitTimeout elapses
// before anything changes.
var ErrWaitTimeout = errors.New("wait for media timed out")

// Wait outcomes, as reported to metrics.
const (
	OutcomeChanged  = "changed"
	OutcomeHalted   = "halted"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
)

// Options configure a Service. Zero values keep the unbounded behaviour.
type Options struct {
	// WaitTimeout bounds each WaitForMedia call. Zero waits indefinitely.
	WaitTimeout time.Duration
	// PollInterval is the backoff between status checks of source operations.
	PollInterval time.Duration
	// FetchTimeout bounds each property fetch. Zero waits indefinitely.
	FetchTimeout time.Duration
}

// Service is the blocking front end over one media source: it owns the
// shared store and the watcher feeding it.
type Service struct {
	root    context.Context
	opts    Options
	store   *state.Store
	watcher *watcher.Watcher
	waiting atomic.Int32
}

// New builds a Service for src. Nothing runs until the first WaitForMedia;
// the watcher then lives until root is done.
func New(root context.Context, src provider.Provider, opts Options) *Service {
	store := &state.Store{}
	return &Service{
		root:  root,
		opts:  opts,
		store: store,
		watcher: watcher.New(src, store, watcher.Options{
			PollInterval: opts.PollInterval,
			FetchTimeout: opts.FetchTimeout,
		}),
	}
}

// WaitForMedia blocks until the media metadata changes or Halt is called,
// and returns nil in both cases. The first call starts the watcher.
//
// It returns ErrWaitTimeout when Options.WaitTimeout elapses and ctx.Err()
// when ctx ends first.
func (s *Service) WaitForMedia(ctx context.Context) error {
	metrics.IncWaitStarted()

	ticket := s.store.Arm()
	s.waiting.Add(1)
	defer s.waiting.Add(-1)
	s.watcher.Start(s.root)

	waitCtx := ctx
	if s.opts.WaitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.opts.WaitTimeout)
		defer cancel()
	}

	err := s.store.Await(waitCtx, ticket)
	switch {
	case err == nil && s.store.Version() != ticket.Version():
		metrics.IncWaitFinished(OutcomeChanged)
	case err == nil:
		metrics.IncWaitFinished(OutcomeHalted)
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		metrics.IncWaitFinished(OutcomeTimeout)
		return ErrWaitTimeout
	default:
		metrics.IncWaitFinished(OutcomeCanceled)
	}
	return err
}

// Halt releases every pending WaitForMedia and stops listening. The watcher
// keeps running and stored values are kept, but accessors return "" until
// the next wait.
func (s *Service) Halt() {
	metrics.IncHalt()
	s.store.Halt()
}

// Waiters returns the number of callers currently inside WaitForMedia.
func (s *Service) Waiters() int {
	return int(s.waiting.Load())
}

// Listening reports whether a wait has armed the service since the last
// Halt.
func (s *Service) Listening() bool {
	return s.store.Listening()
}

// Field returns the display value of f, or "" when not listening.
func (s *Service) Field(f media.Field) string {
	return s.store.Field(f)
}

func (s *Service) Title() string           { return s.Field(media.FieldTitle) }
func (s *Service) Artist() string          { return s.Field(media.FieldArtist) }
func (s *Service) AlbumTitle() string      { return s.Field(media.FieldAlbumTitle) }
func (s *Service) AlbumArtist() string     { return s.Field(media.FieldAlbumArtist) }
func (s *Service) Genres() string          { return s.Field(media.FieldGenres) }
func (s *Service) Subtitle() string        { return s.Field(media.FieldSubtitle) }
func (s *Service) TrackNumber() string     { return s.Field(media.FieldTrackNumber) }
func (s *Service) AlbumTrackCount() string { return s.Field(media.FieldAlbumTrackCount) }
func (s *Service) PlaybackType() string    { return s.Field(media.FieldPlaybackType) }
func (s *Service) Thumbnail() string       { return s.Field(media.FieldThumbnail) }

// Snapshot returns a copy of the store for display.
func (s *Service) Snapshot() state.Snapshot {
	return s.store.Snapshot()
}

// WatcherPhase reports where the background watcher is in its lifecycle.
func (s *Service) WatcherPhase() watcher.Phase {
	return s.watcher.Phase()
}
