package hook

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/ptyterm/internal/corelog"
)

// Point identifies a named lifecycle hook.
type Point string

const (
	OnStartup      Point = "on_startup"
	OnShutdown     Point = "on_shutdown"
	OnKeyPress     Point = "on_key_press"
	OnCommandStart Point = "on_command_start"
	OnCommandEnd   Point = "on_command_end"
	OnOutput       Point = "on_output"
	OnBell         Point = "on_bell"
	OnTitleChange  Point = "on_title_change"
)

// softBudget is the per-invocation time budget named in spec §4.6.
// Exceeding it only produces a warning log line; it is measured after
// the fact since a synchronous Lua call cannot be preempted mid-flight.
const softBudget = 10 * time.Millisecond

// Widget is the descriptor a custom_widgets[i] producer returns.
type Widget struct {
	X, Y          int
	Width, Height int
	Content       string
	Style         string
}

// Executor owns a single Lua state and runs the hook points, output
// filters, custom keybindings, and widget producers a loaded script
// defines as globals. It is not goroutine-safe: callers (the event
// loop) are expected to call it only from the single thread that also
// owns the Session and Grid it observes.
type Executor struct {
	l          *lua.LState
	log        *corelog.Logger
	inDispatch bool // re-entrancy guard: suppresses nested hook dispatch
}

// NewExecutor creates an Executor with an empty sandboxed Lua state.
// Call Load to install a script's globals before dispatching hooks.
func NewExecutor() *Executor {
	return &Executor{l: newState(), log: corelog.New("hook")}
}

// Load compiles and runs script source, populating whatever globals
// (hook functions, output_filters, custom_keybindings, custom_widgets)
// it defines. A load error is returned to the caller uninterpreted —
// unlike a runtime dispatch error, a script that fails to load at all
// is a configuration problem, not a transient one.
func (e *Executor) Load(source string) error {
	if err := e.l.DoString(source); err != nil {
		return fmt.Errorf("hook: load script: %w", err)
	}
	return nil
}

// Close releases the underlying Lua state.
func (e *Executor) Close() {
	e.l.Close()
}

// Dispatch invokes the global function named by point, if the loaded
// script defines one, passing fields as its sole table argument. A
// script error is caught and logged, never propagated as a session
// fault. If called while already inside a dispatch (a script's side
// effects triggered a nested hook), the nested call is suppressed and
// Dispatch returns immediately — the re-entrancy guard spec §4.6 calls
// for.
func (e *Executor) Dispatch(ctx context.Context, point Point, fields map[string]any) {
	if e.inDispatch {
		e.log.Warn(ctx, "suppressed re-entrant hook dispatch", "point", string(point))
		return
	}
	fn, ok := e.l.GetGlobal(string(point)).(*lua.LFunction)
	if !ok {
		return
	}
	e.inDispatch = true
	defer func() { e.inDispatch = false }()

	start := time.Now()
	defer e.warnIfSlow(ctx, string(point), start)
	defer e.recoverScriptPanic(ctx, string(point))

	e.l.Push(fn)
	e.l.Push(toLuaTable(e.l, fields))
	if err := e.l.PCall(1, 0, nil); err != nil {
		e.log.Error(ctx, "hook script error", "point", string(point), "error", err)
	}
}

// RunFilters runs output_filters in declared order, each filter's
// return value becoming the next filter's input. A filter that errors,
// panics, or returns a non-string is skipped: its input passes through
// unchanged, matching spec §4.6's fail-open contract.
func (e *Executor) RunFilters(ctx context.Context, text string) string {
	filters, ok := e.l.GetGlobal("output_filters").(*lua.LTable)
	if !ok {
		return text
	}
	for i := 1; i <= filters.Len(); i++ {
		fn, ok := filters.RawGetInt(i).(*lua.LFunction)
		if !ok {
			continue
		}
		if out, ok := e.callFilter(ctx, i, fn, text); ok {
			text = out
		}
	}
	return text
}

func (e *Executor) callFilter(ctx context.Context, index int, fn *lua.LFunction, in string) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(ctx, "output filter panicked, passing input through", "index", index, "panic", r)
			ok = false
		}
	}()
	start := time.Now()
	stackTop := e.l.GetTop()
	e.l.Push(fn)
	e.l.Push(lua.LString(in))
	if err := e.l.PCall(1, 1, nil); err != nil {
		e.log.Error(ctx, "output filter error, passing input through", "index", index, "error", err)
		return "", false
	}
	e.warnIfSlow(ctx, fmt.Sprintf("output_filters[%d]", index), start)
	ret := e.l.Get(stackTop + 1)
	e.l.SetTop(stackTop)
	s, isStr := ret.(lua.LString)
	if !isStr {
		return "", false
	}
	return string(s), true
}

// ResolveKeybinding calls custom_keybindings[combo] if defined. The
// bool return reports whether a handler existed and ran; a script
// error inside the handler is caught and logged, and reported as
// handled (true) since the keystroke was consumed by the attempt.
func (e *Executor) ResolveKeybinding(ctx context.Context, combo string, fields map[string]any) bool {
	table, ok := e.l.GetGlobal("custom_keybindings").(*lua.LTable)
	if !ok {
		return false
	}
	fn, ok := table.RawGetString(combo).(*lua.LFunction)
	if !ok {
		return false
	}
	start := time.Now()
	defer e.warnIfSlow(ctx, "custom_keybinding["+combo+"]", start)
	defer e.recoverScriptPanic(ctx, "custom_keybinding["+combo+"]")

	e.l.Push(fn)
	e.l.Push(toLuaTable(e.l, fields))
	if err := e.l.PCall(1, 0, nil); err != nil {
		e.log.Error(ctx, "custom keybinding error", "combo", combo, "error", err)
	}
	return true
}

// CollectWidgets calls every entry in custom_widgets in order and
// gathers their descriptors. A producer that errors or returns a
// malformed table is skipped silently for that tick — a bad widget
// must never block the others or the render tick itself.
func (e *Executor) CollectWidgets(ctx context.Context) []Widget {
	producers, ok := e.l.GetGlobal("custom_widgets").(*lua.LTable)
	if !ok {
		return nil
	}
	var widgets []Widget
	for i := 1; i <= producers.Len(); i++ {
		fn, ok := producers.RawGetInt(i).(*lua.LFunction)
		if !ok {
			continue
		}
		if w, ok := e.callWidget(ctx, i, fn); ok {
			widgets = append(widgets, w)
		}
	}
	return widgets
}

func (e *Executor) callWidget(ctx context.Context, index int, fn *lua.LFunction) (w Widget, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(ctx, "widget producer panicked", "index", index, "panic", r)
			ok = false
		}
	}()
	start := time.Now()
	stackTop := e.l.GetTop()
	e.l.Push(fn)
	if err := e.l.PCall(0, 1, nil); err != nil {
		e.log.Error(ctx, "widget producer error", "index", index, "error", err)
		return Widget{}, false
	}
	e.warnIfSlow(ctx, fmt.Sprintf("custom_widgets[%d]", index), start)
	ret := e.l.Get(stackTop + 1)
	e.l.SetTop(stackTop)
	t, isTable := ret.(*lua.LTable)
	if !isTable {
		return Widget{}, false
	}
	return Widget{
		X:       tableField[int](t, "x"),
		Y:       tableField[int](t, "y"),
		Width:   tableField[int](t, "width"),
		Height:  tableField[int](t, "height"),
		Content: tableField[string](t, "content"),
		Style:   tableField[string](t, "style"),
	}, true
}

func (e *Executor) warnIfSlow(ctx context.Context, label string, start time.Time) {
	if elapsed := time.Since(start); elapsed > softBudget {
		e.log.Warn(ctx, "hook exceeded soft time budget", "hook", label, "elapsed", elapsed, "budget", softBudget)
	}
}

func (e *Executor) recoverScriptPanic(ctx context.Context, label string) {
	if r := recover(); r != nil {
		e.log.Error(ctx, "hook script panicked", "hook", label, "panic", r)
	}
}
