package grid

import (
	"github.com/dshills/ptyterm/internal/ansicolor"
	"github.com/rivo/uniseg"
)

// Span is a contiguous run of text sharing a single style.
type Span struct {
	Text  string
	Style ansicolor.Style
}

// Line is an ordered sequence of spans representing one visible row.
// Lines are immutable after Grid.CommitLine freezes them into scrollback;
// only the active (last) line is mutated in place.
type Line struct {
	Spans []Span
}

// Text concatenates every span's text, ignoring style.
func (l Line) Text() string {
	if len(l.Spans) == 1 {
		return l.Spans[0].Text
	}
	var out string
	for _, s := range l.Spans {
		out += s.Text
	}
	return out
}

// Grid is the concatenation of committed scrollback lines plus the
// active line. Invariants: total lines never exceeds scrollbackLimit+1;
// excess lines are evicted from the front; visible text is always a
// suffix of the grid.
type Grid struct {
	scrollbackLimit int
	lines           []Line // committed scrollback, oldest first
	active          Line
	evictionCount   uint64
}

// New creates a Grid bounded to scrollbackLimit committed lines (in
// addition to the always-present active line). A limit below 1 is
// clamped to 1.
func New(scrollbackLimit int) *Grid {
	if scrollbackLimit < 1 {
		scrollbackLimit = 1
	}
	return &Grid{scrollbackLimit: scrollbackLimit}
}

// AppendToActive merges span into the active line: if its style equals
// the active line's last span style, text is concatenated in place;
// otherwise a new span is pushed. Empty-text spans are ignored — spans
// are defined as non-empty.
func (g *Grid) AppendToActive(span Span) {
	if span.Text == "" {
		return
	}
	n := len(g.active.Spans)
	if n > 0 && g.active.Spans[n-1].Style.Equal(span.Style) {
		g.active.Spans[n-1].Text += span.Text
		return
	}
	g.active.Spans = append(g.active.Spans, span)
}

// BackspaceActive removes the last UTF-8 code point from the active
// line's trailing span, using grapheme-cluster-safe truncation so
// multi-byte runes and combining sequences are removed as a unit. Empty
// spans left behind are dropped. A no-op on an empty active line.
func (g *Grid) BackspaceActive() {
	n := len(g.active.Spans)
	for n > 0 {
		last := &g.active.Spans[n-1]
		if last.Text == "" {
			g.active.Spans = g.active.Spans[:n-1]
			n--
			continue
		}
		last.Text = removeLastGrapheme(last.Text)
		if last.Text == "" {
			g.active.Spans = g.active.Spans[:n-1]
		}
		return
	}
}

func removeLastGrapheme(s string) string {
	if s == "" {
		return s
	}
	var lastStart int
	state := -1
	rest := s
	pos := 0
	for len(rest) > 0 {
		cluster, remainder, _, newState := uniseg.FirstGraphemeClusterInString(rest, state)
		state = newState
		lastStart = pos
		pos += len(cluster)
		rest = remainder
	}
	return s[:lastStart]
}

// CommitLine freezes the active line into scrollback and starts a fresh
// empty active line. If the total committed-line count exceeds the
// scrollback bound, the oldest lines are dropped and EvictionCount is
// bumped by the number dropped.
func (g *Grid) CommitLine() {
	g.lines = append(g.lines, g.active)
	g.active = Line{}
	if over := len(g.lines) - g.scrollbackLimit; over > 0 {
		g.lines = append([]Line(nil), g.lines[over:]...)
		g.evictionCount += uint64(over)
	}
}

// ClearAll empties the grid (scrollback and active line). EvictionCount
// is left undisturbed, so a clear is visible through TotalLines but not
// through EvictionCount.
func (g *Grid) ClearAll() {
	g.lines = nil
	g.active = Line{}
}

// EvictionCount returns the monotonically increasing count of lines
// dropped from the front of scrollback, used by a cache to detect
// invalidation cheaply (compare against a stored watermark).
func (g *Grid) EvictionCount() uint64 { return g.evictionCount }

// TotalLines returns the number of committed lines plus the active line.
func (g *Grid) TotalLines() int { return len(g.lines) + 1 }

// ActiveLine returns the current mutable active line (read-only view;
// the caller must not retain a reference across further mutation since
// Span slices may be reallocated).
func (g *Grid) ActiveLine() Line { return g.active }

// RenderView returns the trailing viewportRows lines (including the
// active line), or fewer if the grid is shorter. The returned slice is a
// fresh copy of line headers — the renderer reads only.
func (g *Grid) RenderView(viewportRows int) []Line {
	if viewportRows < 1 {
		viewportRows = 1
	}
	all := make([]Line, 0, len(g.lines)+1)
	all = append(all, g.lines...)
	all = append(all, g.active)

	if len(all) <= viewportRows {
		return all
	}
	return all[len(all)-viewportRows:]
}
