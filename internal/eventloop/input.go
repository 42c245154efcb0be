package eventloop

import "github.com/dshills/ptyterm/internal/keymap"

// InputEvent is one keyboard/mouse event handed to the loop by a
// platform-specific poller. Exactly one of Key or Rune should be set;
// Rune carries a plain printable character with no named key or
// modifier, matching the keybinding resolver's catch-all default.
type InputEvent struct {
	Key  keymap.Key
	Rune rune

	// WindowClose reports a platform-level close request (e.g. the
	// terminal emulator's window was closed) — one of the three
	// shutdown triggers alongside an empty-line Ctrl+C/Ctrl+D.
	WindowClose bool
}

// isRune reports whether this event carries a bare printable character
// rather than a named/modified key combo.
func (e InputEvent) isRune() bool { return e.Key == (keymap.Key{}) && e.Rune != 0 }
