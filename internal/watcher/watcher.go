package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/metrics"
	"github.com/five82/nowplaying/internal/provider"
	"github.com/five82/nowplaying/internal/state"
)

// Phase is the lifecycle position of a Watcher.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseStarting
	PhaseRequesting
	PhaseSubscribed
	PhaseIdle
	PhaseFailed
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseStarting:
		return "starting"
	case PhaseRequesting:
		return "requesting"
	case PhaseSubscribed:
		return "subscribed"
	case PhaseIdle:
		return "idle"
	case PhaseFailed:
		return "failed"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

const (
	eventSessionChanged    = "session_changed"
	eventPropertiesChanged = "properties_changed"
)

// Options tune the watcher. Zero values use defaults.
type Options struct {
	// PollInterval is the backoff between AsyncOp status checks.
	PollInterval time.Duration
	// FetchTimeout bounds one property fetch; zero waits indefinitely.
	FetchTimeout time.Duration
}

// Watcher bridges a provider's change callbacks into a state.Store. It runs
// one background goroutine, started at most once.
type Watcher struct {
	src   provider.Provider
	store *state.Store
	opts  Options

	once sync.Once
	done chan struct{}

	mu           sync.Mutex
	phase        Phase
	ctx          context.Context
	mgr          provider.Manager
	session      provider.Session
	sessionToken provider.Token
	propsToken   provider.Token
	// bumped on every session-changed event; a bind computed under an
	// older generation is dropped
	generation uint64
}

// New returns an unstarted Watcher feeding store from src.
func New(src provider.Provider, store *state.Store, opts Options) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = provider.DefaultPollInterval
	}
	return &Watcher{
		src:   src,
		store: store,
		opts:  opts,
		done:  make(chan struct{}),
	}
}

// Start launches the background goroutine on the first call and is a no-op
// afterwards. The goroutine lives until ctx is done or initialisation fails.
func (w *Watcher) Start(ctx context.Context) {
	w.once.Do(func() {
		w.setPhase(PhaseStarting)
		go w.run(ctx)
	})
}

// Phase returns the current lifecycle phase.
func (w *Watcher) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Done is closed when the background goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) setPhase(p Phase) {
	w.mu.Lock()
	w.phase = p
	w.mu.Unlock()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	if err := w.src.Init(ctx); err != nil {
		log.Printf("[ERROR] watcher: init source: %v", err)
		w.setPhase(PhaseFailed)
		return
	}

	w.setPhase(PhaseRequesting)
	mgr, err := provider.Get(ctx, w.src.RequestManager(), w.opts.PollInterval)
	if err != nil {
		log.Printf("[ERROR] watcher: request session manager: %v", err)
		w.setPhase(PhaseFailed)
		return
	}

	if err := w.subscribe(ctx, mgr); err != nil {
		log.Printf("[ERROR] watcher: subscribe: %v", err)
		w.unsubscribe()
		w.setPhase(PhaseFailed)
		return
	}
	w.setPhase(PhaseSubscribed)
	log.Printf("[INFO] watcher: subscribed to media source")

	if w.store.Listening() {
		w.refresh(ctx)
	}

	w.setPhase(PhaseIdle)
	<-ctx.Done()
	w.unsubscribe()
	w.setPhase(PhaseStopped)
}

func (w *Watcher) subscribe(ctx context.Context, mgr provider.Manager) error {
	w.mu.Lock()
	w.ctx = ctx
	w.mgr = mgr
	w.mu.Unlock()

	token, err := mgr.OnCurrentSessionChanged(w.guard(eventSessionChanged, w.onSessionChanged))
	if err != nil {
		return fmt.Errorf("register session hook: %w", err)
	}
	w.mu.Lock()
	w.sessionToken = token
	gen := w.generation
	w.mu.Unlock()

	session, err := mgr.CurrentSession()
	switch {
	case errors.Is(err, provider.ErrNoSession):
		return nil
	case err != nil:
		return fmt.Errorf("current session: %w", err)
	}
	return w.bindSession(session, gen)
}

// bindSession moves the properties hook onto session unless a newer
// session-changed event has been seen since gen was read.
func (w *Watcher) bindSession(session provider.Session, gen uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation || w.session == session {
		return nil
	}
	if w.session != nil {
		w.session.RemovePropertiesChanged(w.propsToken)
		w.session, w.propsToken = nil, 0
	}
	if session == nil {
		return nil
	}
	token, err := session.OnPropertiesChanged(w.guard(eventPropertiesChanged, w.onPropertiesChanged))
	if err != nil {
		return fmt.Errorf("register properties hook: %w", err)
	}
	w.session, w.propsToken = session, token
	return nil
}

func (w *Watcher) unsubscribe() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session != nil {
		w.session.RemovePropertiesChanged(w.propsToken)
		w.session = nil
	}
	if w.mgr != nil && w.sessionToken != 0 {
		w.mgr.RemoveCurrentSessionChanged(w.sessionToken)
		w.sessionToken = 0
	}
}

// guard wraps a callback so a panic inside it is logged instead of killing
// the provider's delivery goroutine.
func (w *Watcher) guard(kind string, fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERROR] watcher: %s callback panicked: %v", kind, r)
			}
		}()
		metrics.IncProviderEvent(kind)
		fn()
	}
}

func (w *Watcher) onSessionChanged() {
	w.mu.Lock()
	mgr := w.mgr
	w.generation++
	gen := w.generation
	w.mu.Unlock()

	session, err := mgr.CurrentSession()
	if err != nil {
		session = nil
	}
	if err := w.bindSession(session, gen); err != nil {
		log.Printf("[WARN] watcher: %v", err)
	}

	if !w.store.Listening() {
		metrics.IncProviderEventIgnored(eventSessionChanged)
		return
	}
	w.refresh(w.rootContext())
}

func (w *Watcher) onPropertiesChanged() {
	if !w.store.Listening() {
		metrics.IncProviderEventIgnored(eventPropertiesChanged)
		return
	}
	w.refresh(w.rootContext())
}

func (w *Watcher) rootContext() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return context.Background()
	}
	return w.ctx
}

// refresh fetches the current snapshot and pushes it into the store. A failed
// fetch counts as nothing playing.
func (w *Watcher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	snap, err := w.fetch(ctx)
	w.store.RecordFetch(err)
	if err != nil {
		metrics.IncFetchFailure()
		log.Printf("[WARN] watcher: fetch snapshot: %v", err)
	}
	if version, changed := w.store.Apply(snap); changed {
		metrics.SetVersion(version)
		log.Printf("[INFO] watcher: media changed (version %d): %s", version, describe(snap))
	}
}

func (w *Watcher) fetch(ctx context.Context) (*media.Snapshot, error) {
	w.mu.Lock()
	mgr := w.mgr
	w.mu.Unlock()
	if mgr == nil {
		return nil, nil
	}

	session, err := mgr.CurrentSession()
	if errors.Is(err, provider.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current session: %w", err)
	}

	if w.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	props, err := provider.Get(ctx, session.TryGetProperties(), w.opts.PollInterval)
	metrics.ObserveFetchDuration(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetch properties: %w", err)
	}
	return props.Snapshot(), nil
}

func describe(s *media.Snapshot) string {
	if s == nil {
		return "nothing playing"
	}
	return fmt.Sprintf("%q by %q", s.Value(media.FieldTitle), s.Value(media.FieldArtist))
}
