package ansicolor

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a concrete 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// FromRGB constructs a Color directly from channel values.
func FromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// FromHex parses a "#RRGGBB" or "#RGB" literal. Returns an error if the
// string is not a valid hex color literal.
func FromHex(s string) (Color, error) {
	c, err := colorful.Hex(normalizeHex(s))
	if err != nil {
		return Color{}, fmt.Errorf("ansicolor: invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// normalizeHex expands a shorthand "#RGB" literal to "#RRGGBB"; go-colorful
// only accepts the six-digit form.
func normalizeHex(s string) string {
	if len(s) == 4 && s[0] == '#' {
		return fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
	}
	return s
}

// toColorful converts to go-colorful's color.Color for perceptual math.
func (c Color) toColorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Brightness returns the perceptual luminance of the color in [0,1],
// using go-colorful's CIE-Lab lightness channel rather than a naive
// (R+G+B)/3 average.
func (c Color) Brightness() float64 {
	l, _, _ := c.toColorful().Lab()
	if l < 0 {
		return 0
	}
	if l > 1 {
		return 1
	}
	return l
}

// Blend returns the rounded channelwise linear interpolation between c and
// other at factor t, clamped to [0,1]. Required round-trip properties:
// c.Blend(c, t) == c for all t; c.Blend(other, 0) == c; c.Blend(other, 1)
// == other; each channel is monotone in t.
func (c Color) Blend(other Color, t float64) Color {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return other
	}
	return Color{
		R: lerpByte(c.R, other.R, t),
		G: lerpByte(c.G, other.G, t),
		B: lerpByte(c.B, other.B, t),
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}

// ToHex renders the color as "#RRGGBB".
func (c Color) ToHex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Equal reports channelwise equality.
func (c Color) Equal(other Color) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}
