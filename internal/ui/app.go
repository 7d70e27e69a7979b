package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/nowplaying"
	"github.com/five82/nowplaying/internal/prefs"
	"github.com/five82/nowplaying/internal/state"
)

// Source is the part of the now-playing service the viewer drives.
// *nowplaying.Service implements it.
type Source interface {
	WaitForMedia(ctx context.Context) error
	Halt()
	Snapshot() state.Snapshot
}

var _ Source = (*nowplaying.Service)(nil)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Source    Source
	ThemeName string
	ShowAlbum bool
	// Hidden fields are left off the card.
	Hidden    []media.Field
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	src       Source
	prefsPath string
	keys      keyMap

	// UI state
	theme     Theme
	showAlbum bool
	hidden    []media.Field
	showHelp  bool
	spinner   spinner.Model
	help      help.Model
	width     int
	height    int
	ready     bool
	quitting  bool

	// Wait state
	waiting bool
	paused  bool
	lastErr error

	// Data state
	snapshot    state.Snapshot
	updates     int
	lastUpdated time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:       ctx,
		src:       opts.Source,
		prefsPath: prefsPath,
		keys:      DefaultKeyMap(),
		showAlbum: opts.ShowAlbum,
		hidden:    opts.Hidden,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		// Init issues the first wait.
		waiting:   opts.Source != nil,
	}
	m.applyTheme(GetTheme(themeName))
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.src == nil {
		return m.spinner.Tick
	}
	return tea.Batch(m.spinner.Tick, waitCmd(m.ctx, m.src))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case mediaMsg:
		return m.handleMedia(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.src != nil {
			m.src.Halt()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		return m.togglePause()

	case key.Matches(msg, m.keys.ToggleAlbum):
		m.showAlbum = !m.showAlbum
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.applyTheme(GetTheme(NextTheme(m.theme.Name)))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}

	return m, nil
}

// togglePause halts the pending wait, or re-arms one when resuming.
func (m Model) togglePause() (tea.Model, tea.Cmd) {
	if m.src == nil {
		return m, nil
	}
	if !m.paused {
		m.paused = true
		m.src.Halt()
		return m, nil
	}
	m.paused = false
	if m.waiting {
		// The halted wait has not reported back yet; it re-arms on arrival.
		return m, nil
	}
	return m, m.arm()
}

// handleMedia records the outcome of a wait and starts the next one.
func (m Model) handleMedia(msg mediaMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	if msg.snapshot.Version != m.snapshot.Version {
		m.updates++
		m.lastUpdated = time.Now()
	}
	m.snapshot = msg.snapshot

	switch {
	case msg.err == nil:
		m.lastErr = nil
	case errors.Is(msg.err, nowplaying.ErrWaitTimeout):
		m.lastErr = msg.err
	default:
		// The root context is gone; nothing more will arrive.
		m.quitting = true
		return m, tea.Quit
	}

	if m.paused || m.quitting {
		return m, nil
	}
	return m, m.arm()
}

func (m *Model) arm() tea.Cmd {
	m.waiting = true
	return waitCmd(m.ctx, m.src)
}

func (m *Model) applyTheme(t Theme) {
	m.theme = t
	styles := t.Styles()
	m.spinner.Style = styles.AccentText
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.FaintText
	m.help.Styles.ShortSeparator = styles.FaintText
	m.help.Styles.FullKey = styles.AccentText
	m.help.Styles.FullDesc = styles.Text
	m.help.Styles.FullSeparator = styles.FaintText
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, ShowAlbum: m.showAlbum}.WithHidden(m.hidden)
	_ = prefs.Save(m.prefsPath, p)
}

// Messages

type mediaMsg struct {
	snapshot state.Snapshot
	err      error
}

// Commands

func waitCmd(ctx context.Context, src Source) tea.Cmd {
	return func() tea.Msg {
		err := src.WaitForMedia(ctx)
		return mediaMsg{snapshot: src.Snapshot(), err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Source == nil {
		return errors.New("ui requires a now-playing source")
	}
	opts.Context = ctx
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
