package remote

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/five82/nowplaying/internal/provider"
)

// DefaultInterval is how often the daemon is asked for its session when no
// interval is configured.
const DefaultInterval = time.Second

// maxBackoff caps the poll interval while the daemon is unreachable.
const maxBackoff = 30 * time.Second

// Source polls a now-playing daemon and reports changes as provider
// callbacks.
type Source struct {
	api      Fetcher
	interval time.Duration

	mu  sync.Mutex
	ctx context.Context
	mgr *Manager
}

var _ provider.Provider = (*Source)(nil)

// New returns a Source backed by api, polling every interval.
func New(api Fetcher, interval time.Duration) *Source {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Source{api: api, interval: interval, ctx: context.Background()}
}

// Dial builds a Client for addr and wraps it in a Source.
func Dial(addr string, interval time.Duration) (*Source, error) {
	client, err := NewClient(addr)
	if err != nil {
		return nil, err
	}
	return New(client, interval), nil
}

// Init records ctx as the lifetime of the poll loop.
func (s *Source) Init(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	return nil
}

// RequestManager asks the daemon for its current session and starts the
// poll loop. An unreachable daemon is not an error: the manager starts with
// no session and picks one up once the daemon answers.
func (s *Source) RequestManager() provider.AsyncOp[provider.Manager] {
	return provider.Go(func() (provider.Manager, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.mgr != nil {
			return s.mgr, nil
		}
		s.mgr = newManager(s.ctx, s.api, s.interval)
		return s.mgr, nil
	})
}

// Manager tracks the daemon's current session.
type Manager struct {
	ctx      context.Context
	api      Fetcher
	interval time.Duration

	mu       sync.Mutex
	current  *Session
	sequence uint64
	failures int

	sessionHooks provider.Hooks
	stopped      chan struct{}
}

var _ provider.Manager = (*Manager)(nil)

func newManager(ctx context.Context, api Fetcher, interval time.Duration) *Manager {
	m := &Manager{ctx: ctx, api: api, interval: interval, stopped: make(chan struct{})}
	if resp, err := m.api.FetchSession(ctx); err == nil {
		if resp.Active {
			m.current = m.newSession(resp.SessionID)
			m.sequence = resp.Sequence
		}
	} else {
		log.Printf("[WARN] remote: session unavailable: %v", err)
		m.failures = 1
	}
	go m.loop()
	return m
}

// CurrentSession returns the daemon's active session, or ErrNoSession.
func (m *Manager) CurrentSession() (provider.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, provider.ErrNoSession
	}
	return m.current, nil
}

// OnCurrentSessionChanged registers fn.
func (m *Manager) OnCurrentSessionChanged(fn func()) (provider.Token, error) {
	return m.sessionHooks.Add(fn), nil
}

// RemoveCurrentSessionChanged unregisters a callback.
func (m *Manager) RemoveCurrentSessionChanged(t provider.Token) {
	m.sessionHooks.Remove(t)
}

// Stopped is closed once the poll loop has exited.
func (m *Manager) Stopped() <-chan struct{} {
	return m.stopped
}

func (m *Manager) loop() {
	defer close(m.stopped)

	timer := time.NewTimer(m.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-timer.C:
			m.poll()
			timer.Reset(m.nextDelay())
		}
	}
}

func (m *Manager) nextDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return calculateBackoff(m.failures, m.interval)
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// poll compares the daemon's session against the last one seen. A new
// session id, or the session appearing or going away, fires the session
// hooks; a new sequence on the same session fires its property hooks.
func (m *Manager) poll() {
	resp, err := m.api.FetchSession(m.ctx)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		m.mu.Lock()
		m.failures++
		first := m.failures == 1
		m.mu.Unlock()
		if first {
			log.Printf("[WARN] remote: session unavailable: %v", err)
		}
		return
	}

	m.mu.Lock()
	if m.failures > 0 {
		log.Printf("[INFO] remote: daemon reachable again")
		m.failures = 0
	}
	cur := m.current
	switch {
	case !resp.Active && cur == nil:
		m.mu.Unlock()
		return
	case resp.Active && cur != nil && cur.id == resp.SessionID:
		changed := resp.Sequence != m.sequence
		m.sequence = resp.Sequence
		m.mu.Unlock()
		if changed {
			cur.hooks.Fire()
		}
		return
	case resp.Active:
		m.current = m.newSession(resp.SessionID)
		m.sequence = resp.Sequence
	default:
		m.current = nil
		m.sequence = 0
	}
	m.mu.Unlock()

	m.sessionHooks.Fire()
}

func (m *Manager) newSession(id string) *Session {
	return &Session{ctx: m.ctx, api: m.api, id: id}
}

// Session is one daemon-side media session.
type Session struct {
	ctx   context.Context
	api   Fetcher
	id    string
	hooks provider.Hooks
}

var _ provider.Session = (*Session)(nil)

// ID returns the daemon's identifier for the session.
func (s *Session) ID() string { return s.id }

// TryGetProperties fetches /api/nowplaying on a new goroutine.
func (s *Session) TryGetProperties() provider.AsyncOp[provider.Properties] {
	return provider.Go(func() (provider.Properties, error) {
		resp, err := s.api.FetchNowPlaying(s.ctx)
		if err != nil {
			return provider.Properties{}, err
		}
		return resp.Properties(), nil
	})
}

// OnPropertiesChanged registers fn.
func (s *Session) OnPropertiesChanged(fn func()) (provider.Token, error) {
	return s.hooks.Add(fn), nil
}

// RemovePropertiesChanged unregisters a callback.
func (s *Session) RemovePropertiesChanged(t provider.Token) {
	s.hooks.Remove(t)
}
