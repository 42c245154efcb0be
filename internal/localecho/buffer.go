package localecho

import "github.com/rivo/uniseg"

// Mode selects how aggressively local echo displays unconfirmed input.
type Mode int

const (
	// Heuristic is the default: type locally, reconcile against shell
	// echo as it arrives.
	Heuristic Mode = iota
	// AlwaysLocal never waits for shell confirmation.
	AlwaysLocal
	// AlwaysRemote disables local echo entirely; the renderer only ever
	// shows what the shell itself echoed.
	AlwaysRemote
)

// Buffer holds the not-yet-confirmed keystroke bytes for one session.
type Buffer struct {
	mode Mode
	buf  []byte
}

// New creates an empty Buffer in the given mode.
func New(mode Mode) *Buffer {
	return &Buffer{mode: mode}
}

// Mode returns the buffer's echo mode.
func (b *Buffer) Mode() Mode { return b.mode }

// SetMode changes the echo mode.
func (b *Buffer) SetMode(mode Mode) { b.mode = mode }

// Append adds bytes produced by a keystroke. Call alongside writing the
// same bytes to the PTY.
func (b *Buffer) Append(p []byte) {
	if b.mode == AlwaysRemote {
		return
	}
	b.buf = append(b.buf, p...)
}

// Backspace removes the last UTF-8 code point from the buffer,
// grapheme-cluster aware so multi-byte runes are removed as a unit. A
// no-op on an empty buffer.
func (b *Buffer) Backspace() {
	if len(b.buf) == 0 {
		return
	}
	s := string(b.buf)
	var lastStart int
	state := -1
	rest := s
	pos := 0
	for len(rest) > 0 {
		cluster, remainder, _, newState := uniseg.FirstGraphemeClusterInString(rest, state)
		state = newState
		lastStart = pos
		pos += len(cluster)
		rest = remainder
	}
	b.buf = []byte(s[:lastStart])
}

// Clear empties the buffer, e.g. on history navigation or an explicit
// clear command.
func (b *Buffer) Clear() {
	b.buf = b.buf[:0]
}

// IsEmpty reports whether the buffer currently holds any unconfirmed bytes.
func (b *Buffer) IsEmpty() bool { return len(b.buf) == 0 }

// Bytes returns the buffer's current unconfirmed content.
func (b *Buffer) Bytes() []byte { return b.buf }

// String decodes the buffer's current content as UTF-8.
func (b *Buffer) String() string { return string(b.buf) }

// ReconcileTail inspects the newly-appended tail of the active line
// (decoded text the shell just echoed) and clears the buffer if that tail
// ends with the buffer's own content — meaning the shell has echoed it.
// Returns true if the buffer was cleared.
func (b *Buffer) ReconcileTail(tail string) bool {
	if len(b.buf) == 0 {
		return false
	}
	if hasSuffixBytes(tail, string(b.buf)) {
		b.Clear()
		return true
	}
	return false
}

func hasSuffixBytes(s, suffix string) bool {
	if len(suffix) == 0 {
		return true
	}
	if len(s) < len(suffix) {
		return false
	}
	return s[len(s)-len(suffix):] == suffix
}

// ForceClear unconditionally empties the buffer — used when a LineBreak
// or CommandStart event passes through, per the reconciliation protocol.
func (b *Buffer) ForceClear() {
	b.Clear()
}

// RenderSuffix returns the text that should be appended as a synthetic
// span to the active line for display, given the active line's current
// text. It returns "" (nothing to append) if the buffer is empty, or if
// the active line already ends with the buffer's content (the shell was
// faster than the render tick).
func (b *Buffer) RenderSuffix(activeLineText string) string {
	if len(b.buf) == 0 {
		return ""
	}
	content := string(b.buf)
	if hasSuffixBytes(activeLineText, content) {
		return ""
	}
	return content
}
