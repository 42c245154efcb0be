package config

import (
	"fmt"
	"strings"
)

// FileReader reads a script file's contents; callers pass os.ReadFile in
// production and a fake in tests, keeping this package free of direct
// filesystem access.
type FileReader func(path string) ([]byte, error)

// Assemble builds the single Lua source hook.Executor.Load expects from
// this HooksConfig: script files in declaration order, then inline
// bodies, then the output_filters and custom_keybindings tables built
// from their respective config entries. A config with none of these
// fields set assembles to an empty source, which Load treats as a no-op
// script (every hook point simply goes unhandled).
func (h HooksConfig) Assemble(read FileReader) (string, error) {
	var b strings.Builder

	for _, path := range h.ScriptPaths {
		contents, err := read(path)
		if err != nil {
			return "", fmt.Errorf("config: hooks: reading %s: %w", path, err)
		}
		b.Write(contents)
		b.WriteByte('\n')
	}
	for _, inline := range h.InlineScripts {
		b.WriteString(inline)
		b.WriteByte('\n')
	}

	if len(h.OutputFilters) > 0 {
		b.WriteString("output_filters = {\n")
		for _, body := range h.OutputFilters {
			fmt.Fprintf(&b, "  function(text)\n%s\n  end,\n", body)
		}
		b.WriteString("}\n")
	}

	if len(h.CustomKeybindings) > 0 {
		b.WriteString("custom_keybindings = custom_keybindings or {}\n")
		for combo, body := range h.CustomKeybindings {
			fmt.Fprintf(&b, "custom_keybindings[%q] = function(ctx)\n%s\nend\n", combo, body)
		}
	}

	return b.String(), nil
}
