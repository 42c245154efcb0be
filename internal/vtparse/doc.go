// Package vtparse implements the incremental ANSI/VT escape-sequence
// parser: a byte-at-a-time state machine (Ground, Escape, CSI-Entry,
// CSI-Param, CSI-Intermediate, OSC-String) that produces a pull-based
// event stream rather than mutating a screen directly.
//
// Callers append bytes with Feed and retrieve produced events with
// DrainEvents. The parser never allocates on a pure-ASCII printable run:
// text accumulates in a reused buffer and is flushed to a Span event only
// on a style change or line break.
package vtparse
