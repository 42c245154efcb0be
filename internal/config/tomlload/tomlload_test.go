package tomlload

import (
	"strings"
	"testing"
)

func TestParseOverlaysOntoDefaults(t *testing.T) {
	raw := []byte(`
[terminal]
scrollback_lines = 5000
cursor_style = "bar"

[theme]
foreground = "#eeeeee"

[keybindings]
new_tab = "Ctrl+T"

[hooks]
inline = ["on_bell = function(ctx) end"]
`)
	c, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Terminal.ScrollbackLines != 5000 {
		t.Errorf("ScrollbackLines = %d, want 5000", c.Terminal.ScrollbackLines)
	}
	if c.Terminal.CursorStyle != "bar" {
		t.Errorf("CursorStyle = %q, want %q", c.Terminal.CursorStyle, "bar")
	}
	if c.Terminal.MaxHistory != 1000 {
		t.Errorf("MaxHistory = %d, want default 1000 (unset in TOML)", c.Terminal.MaxHistory)
	}
	if c.Theme.Foreground != "#eeeeee" {
		t.Errorf("Theme.Foreground = %q, want %q", c.Theme.Foreground, "#eeeeee")
	}
	if c.Keybindings["new_tab"] != "Ctrl+T" {
		t.Errorf("Keybindings[new_tab] = %q, want %q", c.Keybindings["new_tab"], "Ctrl+T")
	}
	if len(c.Hooks.InlineScripts) != 1 {
		t.Fatalf("InlineScripts = %v, want 1 entry", c.Hooks.InlineScripts)
	}
}

func TestParseRejectsInvalidTOML(t *testing.T) {
	_, err := Parse([]byte(`this is not = = toml`))
	if err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestParsePropagatesValidationFailure(t *testing.T) {
	raw := []byte(`
[terminal]
cursor_style = "wavy"
`)
	_, err := Parse(raw)
	if err == nil || !strings.Contains(err.Error(), "cursor_style") {
		t.Fatalf("expected a cursor_style validation error, got %v", err)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/ptyterm.toml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
