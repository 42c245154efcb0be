package keymap

import (
	"fmt"
	"strings"
)

// Modifier is a bitset of Ctrl/Shift/Alt.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModCtrl  Modifier = 1 << 0
	ModShift Modifier = 1 << 1
	ModAlt   Modifier = 1 << 2
)

// Key identifies a single key event: a normalized key name plus
// modifiers. Letter keys are stored lowercase; named keys use their
// canonical spelling (Tab, Enter, Esc, Space, Up, Down, Left, Right,
// F1..F12).
type Key struct {
	Name string
	Mods Modifier
}

var namedKeys = map[string]string{
	"tab": "Tab", "enter": "Enter", "esc": "Esc", "escape": "Esc",
	"space": "Space", "up": "Up", "down": "Down", "left": "Left", "right": "Right",
}

func init() {
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("f%d", i)
		namedKeys[name] = fmt.Sprintf("F%d", i)
	}
}

// ParseCombo tokenizes a key-combo string like "Ctrl+Shift+V" into a Key.
// Modifiers are case-insensitive and separated from the key name by '+'.
// Letter keys are case-insensitive; named keys must match the recognized
// set. Returns a descriptive error on an invalid combo — callers
// surface this as a configuration load failure.
func ParseCombo(combo string) (Key, error) {
	parts := strings.Split(combo, "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Key{}, fmt.Errorf("keymap: empty key combo %q", combo)
	}

	var mods Modifier
	keyPart := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			mods |= ModCtrl
		case "shift":
			mods |= ModShift
		case "alt":
			mods |= ModAlt
		default:
			return Key{}, fmt.Errorf("keymap: unknown modifier %q in combo %q", p, combo)
		}
	}

	name, err := normalizeKeyName(keyPart)
	if err != nil {
		return Key{}, fmt.Errorf("keymap: invalid combo %q: %w", combo, err)
	}
	return Key{Name: name, Mods: mods}, nil
}

func normalizeKeyName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty key name")
	}
	lower := strings.ToLower(trimmed)
	if canonical, ok := namedKeys[lower]; ok {
		return canonical, nil
	}
	// Single printable character: normalized lowercase.
	if len([]rune(trimmed)) == 1 {
		return lower, nil
	}
	return "", fmt.Errorf("unrecognized key name %q", raw)
}

// String renders the Key back into combo-string form, canonical order
// Ctrl+Shift+Alt+Name.
func (k Key) String() string {
	var b strings.Builder
	if k.Mods&ModCtrl != 0 {
		b.WriteString("Ctrl+")
	}
	if k.Mods&ModShift != 0 {
		b.WriteString("Shift+")
	}
	if k.Mods&ModAlt != 0 {
		b.WriteString("Alt+")
	}
	b.WriteString(k.Name)
	return b.String()
}
