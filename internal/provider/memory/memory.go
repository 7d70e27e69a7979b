// Package memory is an in-process media source driven by method calls. It
// backs the demo command and the tests of the layers above the provider
// boundary.
package memory

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/five82/nowplaying/internal/provider"
)

// Provider is a programmable source. Callbacks fire synchronously on the
// goroutine that calls SetSession or Update.
type Provider struct {
	// Polls is how many Status calls an operation answers with
	// StatusStarted before it completes.
	Polls int
	// InitErr and ManagerErr make Init and RequestManager fail.
	InitErr    error
	ManagerErr error

	mu       sync.Mutex
	current  *Session
	sessions provider.Hooks

	inits    atomic.Int32
	requests atomic.Int32
}

var (
	_ provider.Provider = (*Provider)(nil)
	_ provider.Manager  = (*Provider)(nil)
	_ provider.Session  = (*Session)(nil)
)

// New returns a Provider with no current session.
func New() *Provider {
	return &Provider{}
}

// Init counts initialisations.
func (p *Provider) Init(context.Context) error {
	p.inits.Add(1)
	return p.InitErr
}

// Inits returns how often Init was called.
func (p *Provider) Inits() int { return int(p.inits.Load()) }

// Requests returns how often RequestManager was called.
func (p *Provider) Requests() int { return int(p.requests.Load()) }

// RequestManager resolves to p itself after Polls polls.
func (p *Provider) RequestManager() provider.AsyncOp[provider.Manager] {
	p.requests.Add(1)
	return &delayedOp[provider.Manager]{remaining: int32(p.Polls), val: p, err: p.ManagerErr}
}

// CurrentSession returns the session set by SetSession.
func (p *Provider) CurrentSession() (provider.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, provider.ErrNoSession
	}
	return p.current, nil
}

// OnCurrentSessionChanged registers fn.
func (p *Provider) OnCurrentSessionChanged(fn func()) (provider.Token, error) {
	return p.sessions.Add(fn), nil
}

// RemoveCurrentSessionChanged unregisters a callback.
func (p *Provider) RemoveCurrentSessionChanged(t provider.Token) {
	p.sessions.Remove(t)
}

// SessionHooks returns the number of session-changed callbacks.
func (p *Provider) SessionHooks() int { return p.sessions.Len() }

// SetSession replaces the current session and fires the session-changed
// callbacks. A nil props removes the session.
func (p *Provider) SetSession(props *provider.Properties) *Session {
	var s *Session
	if props != nil {
		s = &Session{owner: p, props: cloneProps(*props)}
	}
	p.mu.Lock()
	p.current = s
	p.mu.Unlock()

	p.sessions.Fire()
	return s
}

// Current returns the current session, or nil.
func (p *Provider) Current() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Session is one scripted media session.
type Session struct {
	owner *Provider

	mu       sync.Mutex
	props    provider.Properties
	fetchErr error
	hooks    provider.Hooks
	fetches  atomic.Int32
}

// TryGetProperties resolves to the session's properties after the owner's
// configured number of polls.
func (s *Session) TryGetProperties() provider.AsyncOp[provider.Properties] {
	s.fetches.Add(1)
	s.mu.Lock()
	props, err := cloneProps(s.props), s.fetchErr
	s.mu.Unlock()
	return &delayedOp[provider.Properties]{remaining: int32(s.owner.Polls), val: props, err: err}
}

// Fetches returns how often properties were requested.
func (s *Session) Fetches() int { return int(s.fetches.Load()) }

// OnPropertiesChanged registers fn.
func (s *Session) OnPropertiesChanged(fn func()) (provider.Token, error) {
	return s.hooks.Add(fn), nil
}

// RemovePropertiesChanged unregisters a callback.
func (s *Session) RemovePropertiesChanged(t provider.Token) {
	s.hooks.Remove(t)
}

// Hooks returns the number of properties-changed callbacks.
func (s *Session) Hooks() int { return s.hooks.Len() }

// Update replaces the properties and fires the properties-changed callbacks.
func (s *Session) Update(props provider.Properties) {
	s.mu.Lock()
	s.props = cloneProps(props)
	s.mu.Unlock()
	s.hooks.Fire()
}

// FailFetches makes every later fetch finish with err. A nil err restores
// normal fetches.
func (s *Session) FailFetches(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr = err
}

func cloneProps(p provider.Properties) provider.Properties {
	p.Genres = slices.Clone(p.Genres)
	return p
}

type delayedOp[T any] struct {
	remaining int32
	polls     atomic.Int32
	val       T
	err       error
}

func (o *delayedOp[T]) Status() provider.Status {
	if o.polls.Add(1) <= o.remaining {
		return provider.StatusStarted
	}
	if o.err != nil {
		return provider.StatusError
	}
	return provider.StatusCompleted
}

func (o *delayedOp[T]) Results() (T, error) {
	return o.val, o.err
}
