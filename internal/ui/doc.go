// Package ui provides the terminal "now playing" viewer.
//
// # Architecture Overview
//
// The viewer is a Bubble Tea program. It never polls: Init issues a
// waitCmd that blocks in Source.WaitForMedia on its own goroutine, and the
// resulting mediaMsg carries a fresh state.Snapshot back into Update, which
// renders it and immediately arms the next wait. Every update therefore
// corresponds to exactly one released wait.
//
// # Package Structure
//
//   - app.go: Model, Update loop, wait command and Run
//   - view.go: header, metadata card and status line
//   - help.go: help overlay built from the key map
//   - keys.go: key bindings (bubbles/key), also used by bubbles/help
//   - theme.go: Lipgloss themes
//
// # Keys
//
//   - p / space: pause (halts the pending wait) or resume listening
//   - a: toggle album details
//   - T: cycle theme
//   - h / ?: help
//   - q / ctrl+c: halt and quit
//
// Theme and album visibility are persisted through the prefs package.
package ui
