package hook

import (
	lua "github.com/yuin/gopher-lua"
)

// newState builds a fresh Lua state carrying only the library surface a
// hook script needs: base language constructs, string/table/math
// helpers. Deliberately excluded are io, os, debug, and package — none
// of the hook context tables in spec §4.6 expose a filesystem, network,
// or process primitive, so none of those libraries are given a way in.
// This is a narrower sandbox than a general-purpose plugin host: there
// is no capability grant to widen, because nothing here can be widened
// to.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	return L
}
