// Package corelog is a thin wrapper over log/slog giving every core
// component a consistent "Component" field, used for exactly the events
// the core is asked to "log and skip" or "log a warning" for: script
// errors, parser overflow recovery, retry exhaustion, clipboard failures.
package corelog

import (
	"context"
	"log/slog"
	"os"
)

// Logger is a slog.Logger bound to a fixed component name.
type Logger struct {
	base *slog.Logger
	comp string
}

var defaultBase = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// SetDefault overrides the base slog.Logger used by New. Intended to be
// called once from cmd/ptyterm before any component logs.
func SetDefault(l *slog.Logger) {
	defaultBase = l
}

// New returns a Logger tagged with the given component name.
func New(component string) *Logger {
	return &Logger{base: defaultBase, comp: component}
}

func (l *Logger) with(args []any) []any {
	return append([]any{"component", l.comp}, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.base.WarnContext(ctx, msg, l.with(args)...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.base.ErrorContext(ctx, msg, l.with(args)...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.base.InfoContext(ctx, msg, l.with(args)...)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.base.DebugContext(ctx, msg, l.with(args)...)
}
