package ansicolor

// Descriptor is an ANSI color reference as it appears in an SGR sequence
// or a theme table. The zero value is DescriptorDefault.
type Descriptor struct {
	kind  descriptorKind
	index uint8 // valid when kind == descriptorNamed or descriptorIndexed
	r, g, b uint8 // valid when kind == descriptorRGB
}

type descriptorKind uint8

const (
	descriptorDefault descriptorKind = iota
	descriptorNamed
	descriptorIndexed
	descriptorRGB
)

// Default is the "use the theme's default foreground/background" descriptor.
var Default = Descriptor{kind: descriptorDefault}

// Named constructs a descriptor for one of the 16 named colors (0..15).
// Values outside that range are clamped into range, since the type must
// remain a total function over its constructors.
func Named(n int) Descriptor {
	return Descriptor{kind: descriptorNamed, index: clampIndex(n, 0, 15)}
}

// Indexed constructs a descriptor for one of the 256 palette slots.
func Indexed(n int) Descriptor {
	return Descriptor{kind: descriptorIndexed, index: clampIndex(n, 0, 255)}
}

// RGB constructs a direct 24-bit descriptor, bypassing the palette.
func RGB(r, g, b uint8) Descriptor {
	return Descriptor{kind: descriptorRGB, r: r, g: g, b: b}
}

func clampIndex(n, lo, hi int) uint8 {
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return uint8(n)
}

// Palette maps the 256 ANSI indices and the theme default fg/bg to
// concrete colors. Every index 0..255 resolves; the zero-value Palette is
// empty and falls back to NewDefaultPalette's cube/grayscale generation
// for indices 16..255 even if slots 0..15 were never explicitly set.
type Palette struct {
	named      [16]Color
	overrides  map[uint8]Color // sparse theme overrides for indices 16..255
	foreground Color
	background Color
}

// NewDefaultPalette returns the standard dark-scheme 16-color palette
// (the same RGB triples as the corpus's ANSIColors table) plus default
// foreground/background.
func NewDefaultPalette() *Palette {
	p := &Palette{
		named: [16]Color{
			{0, 0, 0},       // black
			{205, 0, 0},     // red
			{0, 205, 0},     // green
			{205, 205, 0},   // yellow
			{0, 0, 238},     // blue
			{205, 0, 205},   // magenta
			{0, 205, 205},   // cyan
			{229, 229, 229}, // white
			{127, 127, 127}, // bright black
			{255, 0, 0},     // bright red
			{0, 255, 0},     // bright green
			{255, 255, 0},   // bright yellow
			{92, 92, 255},   // bright blue
			{255, 0, 255},   // bright magenta
			{0, 255, 255},   // bright cyan
			{255, 255, 255}, // bright white
		},
		foreground: Color{R: 229, G: 229, B: 229},
		background: Color{R: 0, G: 0, B: 0},
	}
	return p
}

// SetNamed overrides one of the 16 named theme colors (e.g. from a theme
// configuration).
func (p *Palette) SetNamed(index int, c Color) {
	if index < 0 || index > 15 {
		return
	}
	p.named[index] = c
}

// SetIndexed overrides one of the 240 non-named palette slots (16..255),
// which are otherwise generated procedurally by the 6x6x6 color cube and
// grayscale ramp. Out-of-range indices, including the 16 named slots
// (use SetNamed for those), are ignored.
func (p *Palette) SetIndexed(index int, c Color) {
	if index < 16 || index > 255 {
		return
	}
	if p.overrides == nil {
		p.overrides = make(map[uint8]Color)
	}
	p.overrides[uint8(index)] = c
}

// SetDefaultForeground overrides the theme's default foreground color.
func (p *Palette) SetDefaultForeground(c Color) { p.foreground = c }

// SetDefaultBackground overrides the theme's default background color.
func (p *Palette) SetDefaultBackground(c Color) { p.background = c }

// DefaultForeground returns the theme's default foreground color.
func (p *Palette) DefaultForeground() Color { return p.foreground }

// DefaultBackground returns the theme's default background color.
func (p *Palette) DefaultBackground() Color { return p.background }

// Resolve is the palette's total function from a Descriptor to a concrete
// Color: Default uses the theme default; Named/Indexed look up the
// 256-entry table (0..15 named, 16..231 the 6x6x6 cube, 232..255 the
// grayscale ramp); RGB descriptors pass through unchanged.
func (p *Palette) Resolve(d Descriptor) Color {
	switch d.kind {
	case descriptorRGB:
		return Color{R: d.r, G: d.g, B: d.b}
	case descriptorNamed:
		return p.named[d.index]
	case descriptorIndexed:
		return p.resolveIndexed(int(d.index))
	default:
		return p.foreground
	}
}

// ResolveBackground is like Resolve but returns the theme background for
// the Default descriptor instead of the theme foreground — SGR background
// codes (e.g. 49, "default background") need this distinction even though
// both share one Descriptor type.
func (p *Palette) ResolveBackground(d Descriptor) Color {
	if d.kind == descriptorDefault {
		return p.background
	}
	return p.Resolve(d)
}

func (p *Palette) resolveIndexed(index int) Color {
	if index < 0 {
		index = 0
	}
	if index > 255 {
		index = 255
	}
	if index < 16 {
		return p.named[index]
	}
	if c, ok := p.overrides[uint8(index)]; ok {
		return c
	}
	if index < 232 {
		cube := index - 16
		r := uint8((cube / 36) * 51)
		g := uint8(((cube / 6) % 6) * 51)
		b := uint8((cube % 6) * 51)
		return Color{R: r, G: g, B: b}
	}
	gray := uint8((index-232)*10 + 8)
	return Color{R: gray, G: gray, B: gray}
}
