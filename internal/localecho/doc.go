// Package localecho implements the per-session local-echo buffer: bytes
// sent to the PTY that have not yet been confirmed echoed back by the
// shell, displayed immediately so keystrokes never appear to be dropped
// under load, then reconciled away once the shell's own echo arrives.
package localecho
