package ansicolor

// Attr is a bitset of text-style flags, mirroring the corpus's
// CellAttributes bitflag approach.
type Attr uint16

const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrike
)

// Has reports whether attr is set.
func (a Attr) Has(attr Attr) bool { return a&attr != 0 }

// Style is a set of attribute flags plus an optional foreground and
// background descriptor. A nil/zero-value Foreground or Background means
// "use the palette default" for that channel.
type Style struct {
	Attrs      Attr
	Foreground Descriptor
	Background Descriptor
}

// Reset is the style with no attributes and default fg/bg — applying SGR
// code 0 produces this value.
var Reset = Style{}

// WithAttr returns a copy of s with attr added.
func (s Style) WithAttr(attr Attr) Style {
	s.Attrs |= attr
	return s
}

// WithoutAttr returns a copy of s with attr cleared.
func (s Style) WithoutAttr(attr Attr) Style {
	s.Attrs &^= attr
	return s
}

// WithForeground returns a copy of s with the foreground descriptor set.
func (s Style) WithForeground(d Descriptor) Style {
	s.Foreground = d
	return s
}

// WithBackground returns a copy of s with the background descriptor set.
func (s Style) WithBackground(d Descriptor) Style {
	s.Background = d
	return s
}

// Equal reports whether two styles are identical in every field — used by
// the grid to decide whether a new span is needed or the active span can
// be extended in place.
func (s Style) Equal(other Style) bool {
	return s.Attrs == other.Attrs && s.Foreground == other.Foreground && s.Background == other.Background
}
