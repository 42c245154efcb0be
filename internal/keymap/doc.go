// Package keymap resolves a (key, modifiers) pair into an Action,
// applying three-tier precedence: custom keybindings (user scripts) over
// named actions configured by the user over built-in defaults.
package keymap
