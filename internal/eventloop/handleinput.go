package eventloop

import (
	"context"
	"strings"

	"github.com/dshills/ptyterm/internal/hook"
	"github.com/dshills/ptyterm/internal/keymap"
	"github.com/dshills/ptyterm/internal/session"
)

// handleInput resolves one InputEvent and applies its effect, returning
// true if the loop should shut down. Resolution order follows spec
// §4.8's three-tier precedence with scripts sitting above it: a
// custom_keybinding[K] Lua handler (the "custom" tier's actual source,
// since keymap.Registry's own custom tier is a static binding list with
// nothing to populate it from in this core) gets first refusal on every
// keystroke; only a combo it declines falls through to the
// configured/built-in keymap.Registry resolution.
func (l *Loop) handleInput(ctx context.Context, ev InputEvent) bool {
	if ev.WindowClose {
		return true
	}
	l.hooks.Dispatch(ctx, hook.OnKeyPress, l.keyPressFields(ev))
	if l.isShutdownCombo(ev) {
		return true
	}

	combo := keyCombo(ev)
	if combo != "" && l.hooks.ResolveKeybinding(ctx, combo, l.keybindingFields()) {
		return false
	}

	return l.dispatchAction(ctx, l.resolveAction(ev))
}

// keyCombo renders ev into the combo string custom_keybindings and
// keymap.Key.String use as their lookup key.
func keyCombo(ev InputEvent) string {
	if ev.isRune() {
		return string(ev.Rune)
	}
	return ev.Key.String()
}

// isShutdownCombo recognizes the two empty-line shutdown triggers from
// spec §4.7: Ctrl+C or Ctrl+D with nothing pending in the local-echo
// buffer. With unconfirmed input present, the same combos fall through
// to resolveAction's Ctrl+letter control-code fallback instead, so they
// reach the shell as an interrupt/EOF rather than closing the core.
func (l *Loop) isShutdownCombo(ev InputEvent) bool {
	if ev.isRune() || ev.Key.Mods != keymap.ModCtrl {
		return false
	}
	if ev.Key.Name != "c" && ev.Key.Name != "d" {
		return false
	}
	s := l.activeSession()
	return s == nil || s.InputEmpty()
}

// resolveAction applies the configured/built-in tiers: a bare rune goes
// through the printable catch-all, the backspace key is special-cased
// since it also needs a local-echo update, the registry handles every
// named-key binding, and an unbound Ctrl+letter combo falls back to its
// standard control code (Ctrl+A..Ctrl+Z -> 0x01..0x1a) so interrupt/EOF
// keystrokes still reach the shell when resolveAction is actually
// reached (an empty-line Ctrl+C/Ctrl+D never gets this far).
func (l *Loop) resolveAction(ev InputEvent) keymap.Action {
	if ev.isRune() {
		return keymap.ResolvePrintable(ev.Rune)
	}
	if ev.Key.Name == "Backspace" && ev.Key.Mods == keymap.ModNone {
		return keymap.Backspace
	}
	if action, ok := l.registry.Resolve(ev.Key); ok {
		return action
	}
	if ev.Key.Mods == keymap.ModCtrl {
		if b, ok := controlByte(ev.Key.Name); ok {
			return keymap.SendToPty([]byte{b})
		}
	}
	return keymap.Noop
}

func controlByte(name string) (byte, bool) {
	if len(name) != 1 {
		return 0, false
	}
	c := name[0]
	if c < 'a' || c > 'z' {
		return 0, false
	}
	return c - 'a' + 1, true
}

// dispatchAction applies action's effect against the active session or
// the loop's own tab list, returning true if it should shut down the
// loop (ActionQuit).
func (l *Loop) dispatchAction(ctx context.Context, action keymap.Action) bool {
	switch action.Kind {
	case keymap.ActionSendToPty:
		l.sendToActive(action.Bytes)
	case keymap.ActionNewTab:
		l.newTab(ctx)
	case keymap.ActionCloseTab:
		if len(l.sessions) > 0 {
			l.removeSession(l.active)
		}
	case keymap.ActionNextTab:
		l.cycleTab(1)
	case keymap.ActionPrevTab:
		l.cycleTab(-1)
	case keymap.ActionClear:
		if s := l.activeSession(); s != nil {
			s.Grid().ClearAll()
		}
	case keymap.ActionExecuteScript:
		l.hooks.ResolveKeybinding(ctx, action.ScriptID, l.keybindingFields())
	case keymap.ActionQuit:
		return true
	case keymap.ActionSplitH, keymap.ActionSplitV, keymap.ActionCopy, keymap.ActionPaste, keymap.ActionSearch, keymap.ActionNoop:
		// Layout, clipboard, and search are renderer/host concerns the
		// core only names a slot for (spec §1's out-of-scope collaborators).
	}
	return false
}

// sendToActive forwards bytes to the active session, routing the
// single-byte DEL backspace payload through Session.Backspace so the
// local-echo buffer stays in sync with what was actually sent.
func (l *Loop) sendToActive(b []byte) {
	s := l.activeSession()
	if s == nil {
		return
	}
	if len(b) == 1 && b[0] == 0x7f {
		_, _ = s.Backspace()
		return
	}
	_, _ = s.WriteInput(b)
}

func (l *Loop) newTab(ctx context.Context) {
	if l.spawn == nil {
		return
	}
	s, err := l.spawn()
	if err != nil {
		l.log.Error(ctx, "failed to spawn new session", "error", err)
		return
	}
	l.sessions = append(l.sessions, s)
	l.active = len(l.sessions) - 1
}

func (l *Loop) cycleTab(delta int) {
	n := len(l.sessions)
	if n == 0 {
		return
	}
	l.active = ((l.active+delta)%n + n) % n
}

func (l *Loop) activeSession() *session.Session {
	if l.active < 0 || l.active >= len(l.sessions) {
		return nil
	}
	return l.sessions[l.active]
}

// keyPressFields builds the context table spec §4.6 gives on_key_press:
// the pressed key, its modifiers, and whatever the active session's
// local-echo buffer currently holds.
func (l *Loop) keyPressFields(ev InputEvent) map[string]any {
	var mods []string
	if !ev.isRune() {
		if ev.Key.Mods&keymap.ModCtrl != 0 {
			mods = append(mods, "ctrl")
		}
		if ev.Key.Mods&keymap.ModShift != 0 {
			mods = append(mods, "shift")
		}
		if ev.Key.Mods&keymap.ModAlt != 0 {
			mods = append(mods, "alt")
		}
	}
	currentInput := ""
	if s := l.activeSession(); s != nil {
		currentInput = s.CurrentInput()
	}
	return map[string]any{
		"key":           keyCombo(ev),
		"modifiers":     strings.Join(mods, "+"),
		"current_input": currentInput,
	}
}

// keybindingFields builds the context table spec §4.6 gives every
// custom_keybinding[K] handler: the active session's working directory
// and its most recently finished command.
func (l *Loop) keybindingFields() map[string]any {
	s := l.activeSession()
	if s == nil {
		return map[string]any{"cwd": "", "last_command": ""}
	}
	lastCommand := ""
	if entry, ok := s.LastCommand(); ok {
		lastCommand = entry.Command
	}
	return map[string]any{"cwd": s.CWD(), "last_command": lastCommand}
}
