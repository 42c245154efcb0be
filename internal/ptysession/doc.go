// Package ptysession manages a single child shell process attached to a
// pseudo-terminal: spawn, non-blocking write, non-blocking read, resize,
// and close.
//
// PTY I/O itself is delegated to github.com/creack/pty, which already
// handles the platform split (POSIX ptmx vs Windows ConPTY) that a
// hand-rolled ioctl implementation would otherwise have to reimplement
// per-OS.
package ptysession
