package keymap

import "fmt"

// Binding maps a Key to an Action within one of the three precedence
// tiers.
type Binding struct {
	Key    Key
	Action Action
}

type tier int

const (
	tierCustom tier = iota // user scripts: custom_keybindings
	tierConfigured         // named actions from config keybindings
	tierBuiltin            // built-in defaults
)

// ConflictWarning records two bindings in the same tier that normalize
// to the identical key combo — per spec §9's Open Question, this is
// surfaced as a non-fatal warning rather than a load failure.
type ConflictWarning struct {
	Key   Key
	First Action
	Second Action
}

func (c ConflictWarning) String() string {
	return fmt.Sprintf("keymap: %s resolves to multiple actions within the same tier", c.Key)
}

// Registry resolves (key, modifiers) to an Action across the three
// precedence tiers: custom > configured > built-in. The first matching
// tier wins.
type Registry struct {
	tiers [3]map[Key]Action
}

// NewRegistry builds a Registry from custom, configured, and built-in
// binding lists (in that precedence order), returning any same-tier
// conflicts detected along the way. Conflicts do not prevent
// construction — the first binding registered for a combo wins within
// its tier, matching "first match wins" at the combo-resolution level
// too.
func NewRegistry(custom, configured, builtin []Binding) (*Registry, []ConflictWarning) {
	r := &Registry{}
	var warnings []ConflictWarning
	lists := [3][]Binding{custom, configured, builtin}
	for i, list := range lists {
		r.tiers[i] = make(map[Key]Action, len(list))
		for _, b := range list {
			if existing, ok := r.tiers[i][b.Key]; ok {
				warnings = append(warnings, ConflictWarning{Key: b.Key, First: existing, Second: b.Action})
				continue
			}
			r.tiers[i][b.Key] = b.Action
		}
	}
	return r, warnings
}

// Resolve returns the Action bound to key, trying custom, then
// configured, then built-in tiers in order. If no tier has a binding,
// ok is false.
func (r *Registry) Resolve(key Key) (Action, bool) {
	for _, t := range r.tiers {
		if a, ok := t[key]; ok {
			return a, true
		}
	}
	return Action{}, false
}

// DefaultBuiltins returns the built-in default bindings: printable
// characters are handled by the caller (they are not enumerable as a
// finite Key set), so this covers only the named-key defaults.
func DefaultBuiltins() []Binding {
	return []Binding{
		{Key: Key{Name: "Enter"}, Action: SendToPty([]byte("\r"))},
		{Key: Key{Name: "Tab"}, Action: SendToPty([]byte("\t"))},
		{Key: Key{Name: "Esc"}, Action: SendToPty([]byte{0x1b})},
		{Key: Key{Name: "Up"}, Action: SendToPty([]byte("\x1b[A"))},
		{Key: Key{Name: "Down"}, Action: SendToPty([]byte("\x1b[B"))},
		{Key: Key{Name: "Right"}, Action: SendToPty([]byte("\x1b[C"))},
		{Key: Key{Name: "Left"}, Action: SendToPty([]byte("\x1b[D"))},
	}
}

// ResolvePrintable handles the catch-all default for a plain printable
// character with no binding in any tier: it becomes SendToPty of its
// UTF-8 encoding. Backspace is handled by the caller since it also
// requires a local-echo buffer update.
func ResolvePrintable(r rune) Action {
	return SendToPty([]byte(string(r)))
}

// Backspace is the built-in default for the backspace key: DEL (0x7f).
// Callers are responsible for also updating the local-echo buffer.
var Backspace = SendToPty([]byte{0x7f})
