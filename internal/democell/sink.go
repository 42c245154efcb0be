package democell

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ptyterm/internal/ansicolor"
	"github.com/dshills/ptyterm/internal/eventloop"
	"github.com/dshills/ptyterm/internal/grid"
)

// Sink implements eventloop.RenderSink over a tcell.Screen. Only the
// active session is drawn — the demo has no tab bar — starting at the
// bottom of the viewport so the most recent output stays anchored to the
// bottom row as the teacher's own terminal panel does.
type Sink struct {
	screen  tcell.Screen
	palette *ansicolor.Palette
}

// New creates and initializes a tcell screen, enabling mouse and
// bracketed-paste support, matching the teacher's own
// renderer/backend.Terminal.Init.
func New(palette *ansicolor.Palette) (*Sink, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.EnablePaste()
	return &Sink{screen: screen, palette: palette}, nil
}

// Close tears down the screen, restoring the terminal to its prior mode.
func (s *Sink) Close() { s.screen.Fini() }

// Render draws the active session's visible lines bottom-anchored in
// the viewport, followed by the pending local-echo suffix appended to
// the last line, then moves the hardware cursor there.
func (s *Sink) Render(frame eventloop.Frame) {
	s.screen.Clear()

	var active *eventloop.SessionFrame
	for i := range frame.Sessions {
		if frame.Sessions[i].SessionID == frame.Active {
			active = &frame.Sessions[i]
			break
		}
	}
	if active == nil && len(frame.Sessions) > 0 {
		active = &frame.Sessions[0]
	}
	if active == nil {
		s.screen.Show()
		return
	}

	_, height := s.screen.Size()
	lines := active.Lines
	startRow := height - len(lines)
	if startRow < 0 {
		lines = lines[-startRow:]
		startRow = 0
	}

	row := startRow
	col := 0
	for _, line := range lines {
		col = s.drawLine(row, line)
		row++
	}
	if active.RenderSuffix != "" && row > startRow {
		col = s.drawSpan(row-1, col, active.RenderSuffix, ansicolor.Style{})
	}

	s.screen.ShowCursor(col, row-1)
	s.screen.Show()
}

// Flush shows the current screen contents, used by the loop's teardown
// sequence to guarantee the last frame (e.g. a shutdown message) reaches
// the terminal before the process exits.
func (s *Sink) Flush() { s.screen.Show() }

func (s *Sink) drawLine(row int, line grid.Line) int {
	col := 0
	for _, span := range line.Spans {
		col = s.drawSpan(row, col, span.Text, span.Style)
	}
	return col
}

func (s *Sink) drawSpan(row, col int, text string, style ansicolor.Style) int {
	tstyle := s.convertStyle(style)
	for _, r := range text {
		s.screen.SetContent(col, row, r, nil, tstyle)
		col++
	}
	return col
}

// convertStyle maps an ansicolor.Style through this Sink's palette into
// a tcell.Style, mirroring the teacher's own convertStyle but resolving
// descriptors through ansicolor.Palette instead of reading raw RGB
// fields off a renderer-owned Color type.
func (s *Sink) convertStyle(style ansicolor.Style) tcell.Style {
	tstyle := tcell.StyleDefault

	fg := s.palette.Resolve(style.Foreground)
	bg := s.palette.ResolveBackground(style.Background)
	tstyle = tstyle.Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B)))
	tstyle = tstyle.Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))

	if style.Attrs.Has(ansicolor.AttrBold) {
		tstyle = tstyle.Bold(true)
	}
	if style.Attrs.Has(ansicolor.AttrDim) {
		tstyle = tstyle.Dim(true)
	}
	if style.Attrs.Has(ansicolor.AttrItalic) {
		tstyle = tstyle.Italic(true)
	}
	if style.Attrs.Has(ansicolor.AttrUnderline) {
		tstyle = tstyle.Underline(true)
	}
	if style.Attrs.Has(ansicolor.AttrBlink) {
		tstyle = tstyle.Blink(true)
	}
	if style.Attrs.Has(ansicolor.AttrReverse) {
		tstyle = tstyle.Reverse(true)
	}
	if style.Attrs.Has(ansicolor.AttrStrike) {
		tstyle = tstyle.StrikeThrough(true)
	}
	if style.Attrs.Has(ansicolor.AttrHidden) {
		// tcell has no invisible attribute: draw the text in its own
		// background color instead.
		tstyle = tstyle.Foreground(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
	}
	return tstyle
}

// Size reports the current terminal dimensions in (cols, rows), used by
// the caller to size newly spawned sessions.
func (s *Sink) Size() (cols, rows int) { return s.screen.Size() }
