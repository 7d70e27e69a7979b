// Package plugin maps the host-facing entry points (wait_for_media, halt,
// version and one accessor per metadata field) onto a nowplaying.Service.
//
// Every entry point returns a Result; errors never cross the host boundary.
// wait_for_media answers CodeContinue once something changed or halt was
// called, and CodeReturn with E_TIMEOUT or E_CANCELED when a configured
// timeout or the caller's context ended the wait instead.
package plugin
