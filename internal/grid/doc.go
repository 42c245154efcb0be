// Package grid owns the styled-line sequence backing a terminal session:
// committed scrollback lines plus one mutable active line, bounded by a
// configured scrollback limit.
//
// The grid is not safe for concurrent use — like the corpus's Screen, it
// is expected to live inside a single-threaded Session. Callers obtain
// read-only views via RenderView.
package grid
