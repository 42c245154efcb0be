package config

import (
	"fmt"

	"github.com/dshills/ptyterm/internal/ansicolor"
	"github.com/dshills/ptyterm/internal/coreerr"
	"github.com/dshills/ptyterm/internal/keymap"
)

// Validate checks c for internal consistency, returning a *coreerr.Error
// with KindConfig on the first problem found. A valid Config is safe to
// hand to ThemeConfig.BuildPalette, keymap.NewRegistry, and
// hook.Executor.Load without further checking.
func (c Config) Validate() error {
	if err := c.Terminal.validate(); err != nil {
		return coreerr.New(coreerr.KindConfig, "config.terminal", err)
	}
	if err := c.Theme.validate(); err != nil {
		return coreerr.New(coreerr.KindConfig, "config.theme", err)
	}
	// Keybindings maps action name -> combo, so the combos are the values.
	for _, combo := range c.Keybindings {
		if _, err := keymap.ParseCombo(combo); err != nil {
			return coreerr.New(coreerr.KindConfig, "config.keybindings", err)
		}
	}
	if err := validateCombos(c.Hooks.CustomKeybindings); err != nil {
		return coreerr.New(coreerr.KindConfig, "config.hooks.custom_keybindings", err)
	}
	return nil
}

func (t TerminalConfig) validate() error {
	if t.MaxHistory < 0 {
		return fmt.Errorf("max_history must be non-negative, got %d", t.MaxHistory)
	}
	if t.ScrollbackLines < 1 {
		return fmt.Errorf("scrollback_lines must be at least 1, got %d", t.ScrollbackLines)
	}
	switch t.CursorStyle {
	case "", "block", "underline", "bar":
	default:
		return fmt.Errorf("cursor_style must be one of block/underline/bar, got %q", t.CursorStyle)
	}
	return nil
}

func (th ThemeConfig) validate() error {
	for label, hex := range map[string]string{"foreground": th.Foreground, "background": th.Background, "cursor": th.Cursor} {
		if hex == "" {
			continue
		}
		if _, err := ansicolor.FromHex(hex); err != nil {
			return fmt.Errorf("theme.%s: %w", label, err)
		}
	}
	for name, hex := range th.Named {
		if _, err := ansicolor.FromHex(hex); err != nil {
			return fmt.Errorf("theme.named[%s]: %w", name, err)
		}
	}
	for index, hex := range th.Indexed {
		if index < 0 || index > 255 {
			return fmt.Errorf("theme.indexed: index %d out of range 0-255", index)
		}
		if _, err := ansicolor.FromHex(hex); err != nil {
			return fmt.Errorf("theme.indexed[%d]: %w", index, err)
		}
	}
	return nil
}

func validateCombos(m map[string]string) error {
	for combo := range m {
		if _, err := keymap.ParseCombo(combo); err != nil {
			return err
		}
	}
	return nil
}
