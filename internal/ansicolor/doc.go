// Package ansicolor implements the 24-bit color model and the 256-entry
// ANSI palette used to resolve indexed color descriptors to concrete RGB.
//
// A Color is always a concrete (R, G, B) triple; a Palette maps the 256
// ANSI indices plus the "default" descriptor to a Color. Resolution is a
// total function — every descriptor resolves to a Color, by construction.
package ansicolor
