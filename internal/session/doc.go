// Package session composes a PTY, the ANSI parser, the cell grid, and
// the local-echo buffer into a single per-tab unit of state, and tracks
// the shell's command lifecycle (idle/running/finished) from OSC 133
// markers.
//
// A Session is not goroutine-safe and is not meant to be: it lives
// entirely on the event-loop thread, matching the single-threaded
// scheduling model the rest of the core follows.
package session
