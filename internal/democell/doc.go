// Package democell is an illustrative tcell-based renderer and input
// poller: the concrete terminal UI spec §1 names as an out-of-scope
// external collaborator ("the core never imports a rendering
// library directly"). It exists so cmd/ptyterm has something to draw
// with; a production host is free to replace it with a GPU renderer or
// a different TUI library entirely without touching internal/eventloop.
package democell
