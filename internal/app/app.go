package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/nowplaying/internal/config"
	"github.com/five82/nowplaying/internal/metrics"
	"github.com/five82/nowplaying/internal/nowplaying"
	"github.com/five82/nowplaying/internal/prefs"
	"github.com/five82/nowplaying/internal/provider"
	"github.com/five82/nowplaying/internal/provider/filesource"
	"github.com/five82/nowplaying/internal/provider/memory"
	"github.com/five82/nowplaying/internal/provider/remote"
	"github.com/five82/nowplaying/internal/ui"
)

// Options configure the application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/nowplaying/prefs.toml
	Provider    string // overrides the configured provider
	MetricsAddr string // overrides the configured metrics address
	// Quiet discards log output when no log file is configured, so the TUI
	// is not drawn over.
	Quiet bool
}

// Runtime is a fully wired service and everything it owns.
type Runtime struct {
	Config  config.Config
	Service *nowplaying.Service
	// Demo is the in-process source when the memory provider is selected.
	Demo *memory.Provider

	closers []io.Closer
}

// Close releases the log file.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Build loads configuration and wires the provider, metrics and service.
// The service's watcher lives until ctx is done.
func Build(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p := strings.TrimSpace(opts.Provider); p != "" {
		cfg.Provider = p
	}
	if addr := strings.TrimSpace(opts.MetricsAddr); addr != "" {
		cfg.MetricsAddr = addr
	}

	rt := &Runtime{Config: cfg}

	logFile, err := setupLogging(cfg.LogFile, opts.Quiet)
	if err != nil {
		return nil, err
	}
	if logFile != nil {
		rt.closers = append(rt.closers, logFile)
	}

	src, demo, err := newSource(cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Demo = demo

	metrics.Register()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Printf("[ERROR] metrics: %v", err)
			}
		}()
	}

	rt.Service = nowplaying.New(ctx, src, nowplaying.Options{
		WaitTimeout:  cfg.WaitTimeout,
		PollInterval: cfg.PollInterval,
		FetchTimeout: cfg.FetchTimeout,
	})
	log.Printf("[INFO] app: using %s provider", cfg.Provider)
	return rt, nil
}

// Run boots the now-playing viewer until the context is cancelled or the
// user quits.
func Run(ctx context.Context, opts Options) error {
	opts.Quiet = true
	rt, err := Build(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.Demo != nil {
		StartDemo(ctx, rt.Demo, defaultDemoInterval)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	return ui.Run(ctx, ui.Options{
		Source:    rt.Service,
		ThemeName: userPrefs.Theme,
		ShowAlbum: userPrefs.ShowAlbum,
		Hidden:    userPrefs.HiddenFields(),
		PrefsPath: opts.PrefsPath,
	})
}

func newSource(cfg config.Config) (provider.Provider, *memory.Provider, error) {
	switch cfg.Provider {
	case config.ProviderFile:
		return filesource.New(cfg.SourcePath), nil, nil
	case config.ProviderRemote:
		src, err := remote.Dial(cfg.RemoteAddr, cfg.RemoteInterval)
		if err != nil {
			return nil, nil, fmt.Errorf("init remote provider: %w", err)
		}
		return src, nil, nil
	case config.ProviderMemory:
		p := memory.New()
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// setupLogging points the standard logger at path, appending. With no path
// the logger keeps stderr unless quiet.
func setupLogging(path string, quiet bool) (io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		if quiet {
			log.SetOutput(io.Discard)
		}
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}
