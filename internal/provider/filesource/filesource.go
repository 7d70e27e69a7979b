package filesource

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/five82/nowplaying/internal/provider"
)

// Source watches a now-playing file. The file existing means a session is
// current; its session_id distinguishes one session from the next.
type Source struct {
	path string

	mu      sync.Mutex
	ctx     context.Context
	mgr     *Manager
	started bool
}

var _ provider.Provider = (*Source)(nil)

// New returns a Source for the file at path.
func New(path string) *Source {
	return &Source{path: path, ctx: context.Background()}
}

// Path returns the watched file.
func (s *Source) Path() string { return s.path }

// Init records ctx as the lifetime of the file watch.
func (s *Source) Init(ctx context.Context) error {
	if s.path == "" {
		return errors.New("filesource: path is empty")
	}
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	return nil
}

// RequestManager starts watching the file's directory. The manager is
// available once the watch is in place.
func (s *Source) RequestManager() provider.AsyncOp[provider.Manager] {
	return provider.Go(func() (provider.Manager, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.started {
			return s.mgr, nil
		}
		mgr, err := newManager(s.ctx, s.path)
		if err != nil {
			return nil, err
		}
		s.mgr, s.started = mgr, true
		return mgr, nil
	})
}

// Manager tracks the session described by the watched file.
type Manager struct {
	path string
	fsw  *fsnotify.Watcher

	mu      sync.Mutex
	current *Session

	sessionHooks provider.Hooks
	stopped      chan struct{}
}

var _ provider.Manager = (*Manager)(nil)

func newManager(ctx context.Context, path string) (*Manager, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory: players usually replace the file by rename.
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	m := &Manager{path: abs, fsw: fsw, stopped: make(chan struct{})}
	if id, ok := m.identity(); ok {
		m.current = m.newSession(id)
	}
	go m.loop(ctx)
	return m, nil
}

// CurrentSession returns the session for the file, or ErrNoSession when the
// file does not exist.
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

// Stopped is closed once the event loop has exited.
func (m *Manager) Stopped() <-chan struct{} {
	return m.stopped
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.stopped)
	defer m.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != m.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			m.handleChange()
		case err, ok := <-m.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] filesource: %v", err)
		}
	}
}

// handleChange decides whether the file change is a new session or new
// properties on the current one, and fires the matching hooks.
func (m *Manager) handleChange() {
	id, exists := m.identity()

	m.mu.Lock()
	cur := m.current
	switch {
	case !exists && cur == nil:
		m.mu.Unlock()
		return
	case exists && cur != nil && cur.id == id:
		m.mu.Unlock()
		cur.hooks.Fire()
		return
	case exists:
		m.current = m.newSession(id)
	default:
		m.current = nil
	}
	m.mu.Unlock()

	m.sessionHooks.Fire()
}

// identity reads the session id from the file. ok is false when the file is
// missing. A file that cannot be parsed keeps the current identity, since it
// is most likely mid-write.
func (m *Manager) identity() (id string, ok bool) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return "", false
	}
	doc, err := Decode(m.path, data)
	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.current != nil {
			return m.current.id, true
		}
		return "", true
	}
	return doc.SessionID, true
}

func (m *Manager) newSession(id string) *Session {
	return &Session{path: m.path, id: id}
}

// Session is the media session described by the file.
type Session struct {
	path  string
	id    string
	hooks provider.Hooks
}

var _ provider.Session = (*Session)(nil)

// ID returns the session_id the session was created with.
func (s *Session) ID() string { return s.id }

// TryGetProperties reads and decodes the file on a new goroutine.
func (s *Session) TryGetProperties() provider.AsyncOp[provider.Properties] {
	return provider.Go(func() (provider.Properties, error) {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return provider.Properties{}, fmt.Errorf("read now-playing file: %w", err)
		}
		doc, err := Decode(s.path, data)
		if err != nil {
			return provider.Properties{}, err
		}
		return doc.Properties(), nil
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
