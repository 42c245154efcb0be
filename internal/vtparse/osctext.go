package vtparse

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// oscSanitizer strips C0/C1 control runes out of OSC title/icon text
// before it is surfaced as a TitleChange/IconChange event — a shell
// echoing a title string containing stray control bytes must not be able
// to inject control characters into whatever the renderer does with it.
var oscSanitizer = runes.Remove(runes.In(unicode.C))

func sanitizeOSCText(s string) string {
	out, _, err := transform.String(oscSanitizer, s)
	if err != nil {
		return s
	}
	return out
}
