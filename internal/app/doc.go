// Package app provides the orchestration layer for nowplaying.
//
// # Overview
//
// This package wires together configuration, logging, the media source,
// metrics and the now-playing service. It is the composition root: Build
// returns a Runtime the CLI commands drive directly, and Run adds the
// Bubble Tea viewer on top.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Build()    │
//	└──────┬───────┘
//	       ├─────> config.Load()      Read config.toml
//	       ├─────> setupLogging()     Point the standard logger at log_file
//	       ├─────> newSource()        file | remote | memory provider
//	       ├─────> metrics.Serve()    Optional /metrics endpoint
//	       └─────> nowplaying.New()   Service (watcher starts on first wait)
//
//	┌──────────────┐
//	│   Run()      │ Build, then:
//	└──────┬───────┘
//	       ├─────> StartDemo()        Only for the memory provider
//	       └─────> ui.Run()           Viewer (blocks)
//
// # Demo Mode
//
// With the memory provider StartDemo plays a fixed list of tracks on a
// ticker, switching to a new session every few tracks, so the whole
// pipeline can be watched without a player.
//
// # Error Handling
//
// Fatal errors (returned from Build/Run):
//   - Invalid configuration or unknown provider
//   - Log file that cannot be opened
//
// Recoverable errors (logged, the service keeps running):
//   - Metrics listener failures
//   - Source failures after startup (see the watcher package)
package app
