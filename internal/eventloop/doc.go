// Package eventloop drives the core with bounded latency: a single
// cooperative loop multiplexes keyboard input, per-session PTY
// readiness, and a fixed-interval render tick, dispatching through the
// keybinding resolver and the hook executor.
//
// Loop.Run replaces the teacher's own busy-wait loop (app.go's eventLoop
// polled input via a default: branch that explicitly skipped polling to
// avoid blocking, leaving input handling to "a real implementation").
// Here the input channel produced by a caller-owned poller is one arm of
// a genuine multiplexed select alongside the render ticker and a
// shutdown channel — there is no busy branch.
package eventloop
