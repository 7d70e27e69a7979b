package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Provider != ProviderFile {
		t.Fatalf("Provider = %q, want %q", cfg.Provider, ProviderFile)
	}
	if cfg.RemoteAddr != defaultRemoteAddr {
		t.Fatalf("RemoteAddr = %q, want %q", cfg.RemoteAddr, defaultRemoteAddr)
	}
	if cfg.PollInterval != 20*time.Millisecond || cfg.RemoteInterval != time.Second {
		t.Fatalf("intervals = %v/%v, want 20ms/1s", cfg.PollInterval, cfg.RemoteInterval)
	}
	if cfg.WaitTimeout != 0 || cfg.FetchTimeout != 0 {
		t.Fatalf("timeouts = %v/%v, want unbounded", cfg.WaitTimeout, cfg.FetchTimeout)
	}

	wantSource, err := ExpandPath(defaultSourcePath)
	if err != nil {
		t.Fatalf("ExpandPath(defaultSourcePath) returned error: %v", err)
	}
	if cfg.SourcePath != wantSource {
		t.Fatalf("SourcePath = %q, want %q", cfg.SourcePath, wantSource)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
provider = " Remote "
source_path = "  ~/np/current.toml  "
remote_addr = "  10.0.0.5:9999  "
poll_interval = "5ms"
remote_interval = "250ms"
wait_timeout = "30s"
fetch_timeout = " 2s "
metrics_addr = " 127.0.0.1:9108 "
log_file = "~/np.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Provider != ProviderRemote {
		t.Fatalf("Provider = %q, want %q", cfg.Provider, ProviderRemote)
	}
	if cfg.RemoteAddr != "10.0.0.5:9999" {
		t.Fatalf("RemoteAddr = %q, want %q", cfg.RemoteAddr, "10.0.0.5:9999")
	}
	if cfg.SourcePath != filepath.Join(home, "np/current.toml") {
		t.Fatalf("SourcePath = %q, want it under HOME", cfg.SourcePath)
	}
	if cfg.LogFile != filepath.Join(home, "np.log") {
		t.Fatalf("LogFile = %q, want it under HOME", cfg.LogFile)
	}
	if cfg.MetricsAddr != "127.0.0.1:9108" {
		t.Fatalf("MetricsAddr = %q", cfg.MetricsAddr)
	}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"poll_interval", cfg.PollInterval, 5 * time.Millisecond},
		{"remote_interval", cfg.RemoteInterval, 250 * time.Millisecond},
		{"wait_timeout", cfg.WaitTimeout, 30 * time.Second},
		{"fetch_timeout", cfg.FetchTimeout, 2 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
provider = "   "
remote_addr = ""
poll_interval = "0s"
remote_interval = " "
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("Load = %#v, want %#v", cfg, want)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"toml", `provider = [`, "parse config"},
		{"provider", `provider = "dbus"`, "unknown provider"},
		{"duration", `wait_timeout = "soon"`, "wait_timeout"},
		{"negative", `fetch_timeout = "-1s"`, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestPath_DefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := Path("")
	if got != filepath.Join(home, ".config/nowplaying/config.toml") {
		t.Fatalf("Path(\"\") = %q", got)
	}
}
