package config

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dshills/ptyterm/internal/ansicolor"
	"github.com/dshills/ptyterm/internal/coreerr"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsBadCursorStyle(t *testing.T) {
	c := Default()
	c.Terminal.CursorStyle = "wavy"
	err := c.Validate()
	if !coreerr.Is(err, coreerr.KindConfig) {
		t.Fatalf("expected a KindConfig error, got %v", err)
	}
}

func TestValidateRejectsBadThemeHex(t *testing.T) {
	c := Default()
	c.Theme.Foreground = "not-a-color"
	if err := c.Validate(); !coreerr.Is(err, coreerr.KindConfig) {
		t.Fatalf("expected a KindConfig error, got %v", err)
	}
}

func TestValidateRejectsBadKeybindingCombo(t *testing.T) {
	c := Default()
	c.Keybindings = map[string]string{"new_tab": "Ctrl++Weird"}
	if err := c.Validate(); !coreerr.Is(err, coreerr.KindConfig) {
		t.Fatalf("expected a KindConfig error, got %v", err)
	}
}

func TestValidateRejectsNegativeScrollback(t *testing.T) {
	c := Default()
	c.Terminal.ScrollbackLines = -1
	if err := c.Validate(); !coreerr.Is(err, coreerr.KindConfig) {
		t.Fatalf("expected a KindConfig error, got %v", err)
	}
}

func TestBuildPaletteAppliesOverrides(t *testing.T) {
	c := Default()
	c.Theme.Foreground = "#ff0000"
	c.Theme.Named = map[string]string{"red": "#123456"}
	c.Theme.Indexed = map[int]string{200: "#abcdef"}

	p, err := c.Theme.BuildPalette()
	if err != nil {
		t.Fatalf("BuildPalette: %v", err)
	}
	want, _ := ansicolor.FromHex("#ff0000")
	if got := p.DefaultForeground(); !got.Equal(want) {
		t.Errorf("DefaultForeground = %v, want %v", got, want)
	}
	wantRed, _ := ansicolor.FromHex("#123456")
	if got := p.Resolve(ansicolor.Named(1)); !got.Equal(wantRed) {
		t.Errorf("Named(1) (red) = %v, want %v", got, wantRed)
	}
	wantIndexed, _ := ansicolor.FromHex("#abcdef")
	if got := p.Resolve(ansicolor.Indexed(200)); !got.Equal(wantIndexed) {
		t.Errorf("Indexed(200) = %v, want %v", got, wantIndexed)
	}
}

func TestAssembleOrdersScriptsThenInline(t *testing.T) {
	h := HooksConfig{
		ScriptPaths:   []string{"init.lua"},
		InlineScripts: []string{"y = 2"},
	}
	read := func(path string) ([]byte, error) {
		if path != "init.lua" {
			return nil, fmt.Errorf("unexpected path %q", path)
		}
		return []byte("x = 1"), nil
	}
	got, err := h.Assemble(read)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	wantPrefix := "x = 1\ny = 2\n"
	if got != wantPrefix {
		t.Fatalf("Assemble() = %q, want %q", got, wantPrefix)
	}
}

func TestAssemblePropagatesReadError(t *testing.T) {
	h := HooksConfig{ScriptPaths: []string{"missing.lua"}}
	wantErr := errors.New("no such file")
	_, err := h.Assemble(func(string) ([]byte, error) { return nil, wantErr })
	if err == nil || !errors.Is(err, wantErr) {
		t.Fatalf("Assemble error = %v, want wrapping %v", err, wantErr)
	}
}

func TestAssembleBuildsCustomKeybindingsTable(t *testing.T) {
	h := HooksConfig{CustomKeybindings: map[string]string{"Ctrl+Shift+P": "  return 1"}}
	got, err := h.Assemble(func(string) ([]byte, error) { return nil, nil })
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(got, `custom_keybindings["Ctrl+Shift+P"]`) {
		t.Fatalf("Assemble() = %q, want a custom_keybindings[...] assignment", got)
	}
}
