package hook

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// toLuaTable converts a flat Go map into a Lua table. It only needs to
// handle the value shapes that actually appear in a hook context table:
// strings, ints, int64s, bools, and float64s.
func toLuaTable(L *lua.LState, ctx map[string]any) *lua.LTable {
	t := L.NewTable()
	for k, v := range ctx {
		t.RawSetString(k, toLuaValue(v))
	}
	return t
}

func toLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	default:
		return lua.LString(fmt.Sprintf("%v", val))
	}
}

// toGoValue converts a Lua return value back to a Go value for the
// narrow set of types a filter or widget producer may return.
func toGoValue(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LNilType:
		return nil
	default:
		return nil
	}
}

// tableField reads a named field out of a Lua table return value,
// defaulting to the zero value of T if absent or the wrong type.
func tableField[T any](t *lua.LTable, field string) T {
	var zero T
	v := toGoValue(t.RawGetString(field))
	if v == nil {
		return zero
	}
	cast, ok := v.(T)
	if !ok {
		return zero
	}
	return cast
}
