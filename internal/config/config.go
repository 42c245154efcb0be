// Package config defines the frozen configuration surface (spec §3):
// shell, terminal, theme, keybinding, and hook settings loaded once at
// startup and shared read-only for the life of the process. Nothing in
// the core ever re-reads or mutates a Config after Validate succeeds.
package config

// ShellConfig controls the child process the core spawns.
type ShellConfig struct {
	DefaultShell string   // executable to spawn; empty means auto-detect by OS
	WorkingDir   string   // starting directory; empty means the user's home
	Env          []string // extra "KEY=VALUE" entries appended to the spawned environment
}

// TerminalConfig controls grid/history sizing and renderer hints.
type TerminalConfig struct {
	MaxHistory      int    // command-history ring capacity
	ScrollbackLines int    // grid line cap
	CursorStyle     string // "block", "underline", or "bar" — advisory, passed to the renderer
	FontSize        float64
}

// ThemeConfig seeds an ansicolor.Palette. Colors are "#RRGGBB"/"#RGB"
// literals; Named covers the 16 standard indices by name
// (black/red/green/yellow/blue/magenta/cyan/white and their "bright_"
// counterparts), Indexed covers any of the 240 remaining ANSI indices a
// theme wants to override individually.
type ThemeConfig struct {
	Foreground string
	Background string
	Cursor     string
	Named      map[string]string
	Indexed    map[int]string
}

// HooksConfig names the scripting entry points (spec §4.6): files and
// inline bodies loaded in order into one Lua source, plus inline
// output-filter and custom-keybinding function bodies assembled into
// their respective tables. See Assemble.
type HooksConfig struct {
	ScriptPaths       []string          // lifecycle hook files, concatenated in declaration order
	InlineScripts     []string          // inline Lua bodies, appended after ScriptPaths
	OutputFilters     []string          // inline function bodies, assembled into output_filters in order
	CustomKeybindings map[string]string // key combo -> inline function body
}

// Config is the complete, frozen configuration surface.
type Config struct {
	Shell       ShellConfig
	Terminal    TerminalConfig
	Theme       ThemeConfig
	Keybindings map[string]string // named action -> key combo string, overrides the built-in table
	Hooks       HooksConfig
}

// Default returns the built-in configuration used when no config file is
// present or a value is left unset by the loader.
func Default() Config {
	return Config{
		Terminal: TerminalConfig{
			MaxHistory:      1000,
			ScrollbackLines: 10000,
			CursorStyle:     "block",
		},
	}
}

var namedIndexOrder = []string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"bright_black", "bright_red", "bright_green", "bright_yellow",
	"bright_blue", "bright_magenta", "bright_cyan", "bright_white",
}
