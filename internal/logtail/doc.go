// Package logtail reads and colorizes the service log file.
//
// # Reading Log Files
//
// Read returns the last maxLines of a file using a ring buffer, so memory
// stays O(maxLines) regardless of file size. A maxLines of zero or less
// returns the whole file. Missing files yield nil, nil.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//	if err != nil {
//		log.Printf("failed to read log: %v", err)
//	}
//
// # Colorization
//
// The service logs through the standard logger with a level prefix and an
// optional component:
//
//	2026/10/19 15:04:05 [INFO] watcher: media changed (version 3)
//
// ColorizeLine highlights those parts with Lipgloss styles. Anything it
// cannot parse is returned unchanged. When output is not a terminal
// Lipgloss renders plain text, so piping `nowplaying logs` stays clean.
package logtail
