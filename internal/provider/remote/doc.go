// Package remote provides a media source backed by a companion daemon's
// HTTP API.
//
// # Overview
//
// Some players only expose their state to a helper process (a browser
// extension bridge, an mpv script, a phone app). The helper runs a small
// HTTP server and this package turns its answers into provider callbacks.
//
// # API Endpoints
//
//   - GET /api/session: {"active": true, "sessionId": "mpv", "sequence": 7}
//   - GET /api/nowplaying: the metadata of the active session
//
// The daemon bumps sequence whenever the metadata changes. Statuses of 400
// and above are errors.
//
// # Subscription
//
// The daemon has no push channel, so the Manager polls /api/session on a
// ticker (remote_interval, one second by default). A new sessionId, or the
// session starting or ending, fires the session-changed hooks; a new
// sequence on the same session fires its property hooks. An unreachable
// daemon is logged once and otherwise treated as "nothing changed"; while
// it stays unreachable the poll interval doubles per failure, capped at 30s.
package remote
