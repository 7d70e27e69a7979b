// Package config loads the nowplaying service configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/nowplaying/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	provider        = "file"      # file | remote | memory
//	source_path     = "~/.local/share/nowplaying/current.json"
//	remote_addr     = "127.0.0.1:7488"
//	poll_interval   = "20ms"
//	remote_interval = "1s"
//	wait_timeout    = "0s"        # 0 waits indefinitely
//	fetch_timeout   = "0s"
//	metrics_addr    = ""          # e.g. "127.0.0.1:9108"
//	log_file        = "~/.local/share/nowplaying/nowplaying.log"
//
// Durations use time.ParseDuration syntax. A zero poll_interval or
// remote_interval falls back to its default; zero timeouts mean unbounded.
// Negative durations, malformed TOML and unknown providers are errors.
//
// # Path Expansion
//
//   - Absolute paths: Used as-is
//   - Tilde paths: Expanded to home directory ("~/.config/nowplaying")
//   - Relative paths: Converted to absolute based on current directory
package config
