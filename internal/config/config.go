package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Provider names accepted in the provider key.
const (
	ProviderFile   = "file"
	ProviderRemote = "remote"
	ProviderMemory = "memory"
)

// Config captures the service settings.
type Config struct {
	Provider       string
	SourcePath     string
	RemoteAddr     string
	PollInterval   time.Duration
	RemoteInterval time.Duration
	WaitTimeout    time.Duration
	FetchTimeout   time.Duration
	MetricsAddr    string
	LogFile        string
}

const (
	defaultConfigPath     = "~/.config/nowplaying/config.toml"
	defaultSourcePath     = "~/.local/share/nowplaying/current.json"
	defaultLogFile        = "~/.local/share/nowplaying/nowplaying.log"
	defaultRemoteAddr     = "127.0.0.1:7488"
	defaultPollInterval   = 20 * time.Millisecond
	defaultRemoteInterval = time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Provider:       ProviderFile,
		SourcePath:     mustExpand(defaultSourcePath),
		RemoteAddr:     defaultRemoteAddr,
		PollInterval:   defaultPollInterval,
		RemoteInterval: defaultRemoteInterval,
		LogFile:        mustExpand(defaultLogFile),
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Provider       string `toml:"provider"`
		SourcePath     string `toml:"source_path"`
		RemoteAddr     string `toml:"remote_addr"`
		PollInterval   string `toml:"poll_interval"`
		RemoteInterval string `toml:"remote_interval"`
		WaitTimeout    string `toml:"wait_timeout"`
		FetchTimeout   string `toml:"fetch_timeout"`
		MetricsAddr    string `toml:"metrics_addr"`
		LogFile        string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if p := strings.ToLower(strings.TrimSpace(raw.Provider)); p != "" {
		switch p {
		case ProviderFile, ProviderRemote, ProviderMemory:
			cfg.Provider = p
		default:
			return Config{}, fmt.Errorf("parse config: unknown provider %q", raw.Provider)
		}
	}
	if v := strings.TrimSpace(raw.SourcePath); v != "" {
		cfg.SourcePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.RemoteAddr); v != "" {
		cfg.RemoteAddr = v
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"remote_interval", raw.RemoteInterval, &cfg.RemoteInterval},
		{"wait_timeout", raw.WaitTimeout, &cfg.WaitTimeout},
		{"fetch_timeout", raw.FetchTimeout, &cfg.FetchTimeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.raw, d.dst); err != nil {
			return Config{}, err
		}
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.RemoteInterval == 0 {
		cfg.RemoteInterval = defaultRemoteInterval
	}

	return cfg, nil
}

// parseDuration leaves dst untouched for blank input.
func parseDuration(key, raw string, dst *time.Duration) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d < 0 {
		return fmt.Errorf("parse config: %s must not be negative", key)
	}
	*dst = d
	return nil
}

// Path returns the config file Load would read for path.
func Path(path string) string {
	resolved, err := resolvePath(path)
	if err != nil {
		return path
	}
	return resolved
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath trims path, expands a leading ~ to the home directory and
// returns the absolute form.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
