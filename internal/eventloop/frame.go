package eventloop

import (
	"github.com/dshills/ptyterm/internal/grid"
	"github.com/dshills/ptyterm/internal/hook"
)

// SessionFrame is one session's contribution to a rendered Frame.
type SessionFrame struct {
	SessionID string
	Lines     []grid.Line
	// RenderSuffix is the local-echo text to append to the active
	// line's display, already computed against the shell's own echo.
	RenderSuffix string
}

// Frame is handed to the RenderSink once per elapsed render tick in
// which at least one session is dirty, carrying every session's visible
// lines plus any widgets the loaded script's custom_widgets producers
// returned this tick.
type Frame struct {
	Sessions []SessionFrame
	Widgets  []hook.Widget
	Active   string // SessionID of the focused session, for cursor placement
}

// RenderSink is the core's outbound rendering contract (spec §6): the
// core never blocks on it, and it may be a text-UI or GPU
// implementation — Loop does not care which.
type RenderSink interface {
	Render(Frame)
}
