// Package hook runs user-provided Lua scripts at defined lifecycle
// points, transforms parser output through filter chains, and resolves
// custom key actions and status-line widgets.
//
// Scripts run on the event-loop thread and never in parallel with the
// parser or the grid: Executor makes no attempt at goroutine-safety
// beyond what gopher-lua's single LState already requires, because the
// surrounding core is itself single-threaded by construction. What it
// does guard against is re-entrancy — a script whose side effects would
// recursively trigger another hook dispatch has that nested dispatch
// suppressed for the duration of the outer call.
package hook
