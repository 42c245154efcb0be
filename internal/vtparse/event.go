package vtparse

import "github.com/dshills/ptyterm/internal/ansicolor"

// EventKind discriminates the Event union.
type EventKind int

const (
	EventSpan EventKind = iota
	EventLineBreak
	EventBell
	EventTitleChange
	EventIconChange
	EventCommandPromptBegin
	EventCommandInputBegin
	EventCommandStart
	EventCommandEnd
	EventClear
)

// Event is a single unit of parser output. Only the fields relevant to
// Kind are populated.
type Event struct {
	Kind EventKind

	// EventSpan
	Text  string
	Style ansicolor.Style

	// EventTitleChange / EventIconChange
	Title string

	// EventCommandEnd
	HasExitCode bool
	ExitCode    int
}
