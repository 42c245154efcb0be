// Package tomlload loads a config.Config from a TOML file. It lives
// outside internal/config so the core's config package stays free of
// any file-format dependency — spec §6 treats on-disk configuration as
// an external-interface concern, not something the core owns.
package tomlload

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/ptyterm/internal/config"
)

// document mirrors config.Config's shape with TOML struct tags; it
// exists separately so config.Config itself never imports an encoding
// package.
type document struct {
	Shell struct {
		DefaultShell string   `toml:"default_shell"`
		WorkingDir   string   `toml:"working_dir"`
		Env          []string `toml:"env"`
	} `toml:"shell"`

	Terminal struct {
		MaxHistory      int     `toml:"max_history"`
		ScrollbackLines int     `toml:"scrollback_lines"`
		CursorStyle     string  `toml:"cursor_style"`
		FontSize        float64 `toml:"font_size"`
	} `toml:"terminal"`

	Theme struct {
		Foreground string            `toml:"foreground"`
		Background string            `toml:"background"`
		Cursor     string            `toml:"cursor"`
		Named      map[string]string `toml:"named"`
		Indexed    map[int]string    `toml:"indexed"`
	} `toml:"theme"`

	Keybindings map[string]string `toml:"keybindings"`

	Hooks struct {
		ScriptPaths       []string          `toml:"scripts"`
		InlineScripts     []string          `toml:"inline"`
		OutputFilters     []string          `toml:"output_filters"`
		CustomKeybindings map[string]string `toml:"custom_keybindings"`
	} `toml:"hooks"`
}

// Load reads and parses the TOML file at path, overlaying its values
// onto config.Default() (an absent TOML table or key simply leaves the
// default in place), and validates the result before returning it.
func Load(path string) (config.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("tomlload: reading %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse is Load's logic over an already-read byte slice, split out so
// tests exercise it without touching the filesystem.
func Parse(raw []byte) (config.Config, error) {
	var doc document
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return config.Config{}, fmt.Errorf("tomlload: parsing: %w", err)
	}

	c := config.Default()
	c.Shell.DefaultShell = doc.Shell.DefaultShell
	c.Shell.WorkingDir = doc.Shell.WorkingDir
	c.Shell.Env = doc.Shell.Env

	if doc.Terminal.MaxHistory != 0 {
		c.Terminal.MaxHistory = doc.Terminal.MaxHistory
	}
	if doc.Terminal.ScrollbackLines != 0 {
		c.Terminal.ScrollbackLines = doc.Terminal.ScrollbackLines
	}
	if doc.Terminal.CursorStyle != "" {
		c.Terminal.CursorStyle = doc.Terminal.CursorStyle
	}
	c.Terminal.FontSize = doc.Terminal.FontSize

	c.Theme = config.ThemeConfig{
		Foreground: doc.Theme.Foreground,
		Background: doc.Theme.Background,
		Cursor:     doc.Theme.Cursor,
		Named:      doc.Theme.Named,
		Indexed:    doc.Theme.Indexed,
	}

	c.Keybindings = doc.Keybindings

	c.Hooks = config.HooksConfig{
		ScriptPaths:       doc.Hooks.ScriptPaths,
		InlineScripts:     doc.Hooks.InlineScripts,
		OutputFilters:     doc.Hooks.OutputFilters,
		CustomKeybindings: doc.Hooks.CustomKeybindings,
	}

	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}
