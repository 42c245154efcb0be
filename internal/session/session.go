package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/ptyterm/internal/corelog"
	"github.com/dshills/ptyterm/internal/grid"
	"github.com/dshills/ptyterm/internal/hook"
	"github.com/dshills/ptyterm/internal/localecho"
	"github.com/dshills/ptyterm/internal/ptysession"
	"github.com/dshills/ptyterm/internal/vtparse"
)

// maxFilterRefeed bounds how many nested parser flushes one EventSpan
// may trigger via output filtering, per spec §4.6's "re-fed to the
// ANSI parser iff the filter output contains escape bytes" rule. The
// filter chain only ever runs once per batch (applyReparsedEvent skips
// straight to the grid), so this is a defensive cap rather than a
// load-bearing loop guard.
const maxFilterRefeed = 1

// outputExcerptRunes bounds the text_excerpt field of the on_output
// hook context so a large flush doesn't build an oversized Lua string.
const outputExcerptRunes = 200

// Options configures a new Session.
type Options struct {
	Shell      string
	Args       []string
	WorkDir    string
	Env        []string
	Rows, Cols uint16

	ScrollbackLines int // default 10000
	MaxHistory      int // default 1000
	EchoMode        localecho.Mode

	// Hooks dispatches lifecycle/output hooks as parser events occur. Nil
	// is valid — a session with no hooks wired simply never calls it.
	Hooks *hook.Executor
}

// Session is one PTY-backed tab: the shell process, its parsed screen
// state, its local-echo buffer, and its command-lifecycle tracking.
type Session struct {
	ID string

	pty    *ptysession.Session
	parser *vtparse.Parser
	grid   *grid.Grid
	echo   *localecho.Buffer
	hooks  *hook.Executor

	state   CommandState
	history *historyRing
	cwd     string

	dirty       bool
	filterDepth int
	log         *corelog.Logger
}

// New spawns a shell and assembles a Session around it.
func New(opts Options) (*Session, error) {
	scrollback := opts.ScrollbackLines
	if scrollback <= 0 {
		scrollback = 10000
	}
	maxHistory := opts.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 1000
	}

	pty, err := ptysession.Spawn(ptysession.Options{
		Shell:   opts.Shell,
		Args:    opts.Args,
		WorkDir: opts.WorkDir,
		Env:     opts.Env,
		Rows:    opts.Rows,
		Cols:    opts.Cols,
	})
	if err != nil {
		return nil, fmt.Errorf("session: spawn: %w", err)
	}

	return &Session{
		ID:      uuid.New().String(),
		pty:     pty,
		parser:  vtparse.New(),
		grid:    grid.New(scrollback),
		echo:    localecho.New(opts.EchoMode),
		hooks:   opts.Hooks,
		history: newHistoryRing(maxHistory),
		cwd:     opts.WorkDir,
		log:     corelog.New("session"),
	}, nil
}

// WriteInput sends keystroke bytes to the shell and mirrors them into
// the local-echo buffer, per spec §4.5's protocol: the same bytes are
// appended to the buffer and written to the PTY in the same step.
func (s *Session) WriteInput(b []byte) (int, error) {
	s.echo.Append(b)
	return s.pty.WriteInput(b)
}

// Backspace removes one grapheme cluster from the local-echo buffer and
// sends the shell's backspace byte (DEL).
func (s *Session) Backspace() (int, error) {
	s.echo.Backspace()
	return s.pty.WriteInput([]byte{0x7f})
}

// Resize propagates a geometry change to the PTY.
func (s *Session) Resize(rows, cols uint16) error {
	return s.pty.Resize(rows, cols)
}

// Close releases the session's PTY.
func (s *Session) Close() error {
	return s.pty.Close()
}

// PumpOutput drains available PTY output, feeding it through the
// parser and into the grid, up to capBytes total for this call — the
// per-tick cap the event loop enforces per spec §4.7. It returns
// ptysession.ErrWouldBlock once no more data is immediately available
// (not an error condition, just "done for this tick"), or io.EOF if the
// child has exited, which the caller must treat as the session dying.
func (s *Session) PumpOutput(ctx context.Context, capBytes int) error {
	buf := make([]byte, 4096)
	read := 0
	for read < capBytes {
		n, err := s.pty.TryReadOutput(buf)
		if n > 0 {
			s.feed(ctx, buf[:n])
			read += n
		}
		if err != nil {
			// TryReadOutput never returns n>0 together with an error, and
			// reports a clean child exit as (0, io.EOF) itself.
			return err
		}
	}
	return nil
}

// feed runs raw PTY bytes through the parser and applies the resulting
// events to the grid, the local-echo reconciler, and the
// command-lifecycle state machine.
func (s *Session) feed(ctx context.Context, raw []byte) {
	s.parser.Feed(raw)
	for _, ev := range s.parser.DrainEvents() {
		s.applyEvent(ctx, ev)
	}
}

func (s *Session) applyEvent(ctx context.Context, ev vtparse.Event) {
	s.dirty = true
	switch ev.Kind {
	case vtparse.EventSpan:
		s.applySpan(ctx, ev)
	case vtparse.EventLineBreak:
		s.grid.CommitLine()
		s.echo.ForceClear()
	case vtparse.EventClear:
		s.grid.ClearAll()
	case vtparse.EventCommandPromptBegin:
		s.state = CommandState{Phase: CommandIdle}
	case vtparse.EventCommandInputBegin:
		s.echo.ForceClear()
		s.state = CommandState{Phase: CommandIdle}
	case vtparse.EventCommandStart:
		s.state = CommandState{
			Phase:       CommandRunning,
			CommandText: s.grid.ActiveLine().Text(),
			StartedAt:   s.now(),
		}
		if s.hooks != nil {
			s.hooks.Dispatch(ctx, hook.OnCommandStart, map[string]any{
				"command": s.state.CommandText,
				"cwd":     s.cwd,
			})
		}
	case vtparse.EventCommandEnd:
		s.finishCommand(ctx, ev)
	case vtparse.EventBell:
		if s.hooks != nil {
			s.hooks.Dispatch(ctx, hook.OnBell, map[string]any{})
		}
	case vtparse.EventTitleChange, vtparse.EventIconChange:
		// IconChange is equivalent to TitleChange for hook purposes (the
		// parser only distinguishes them because the OSC codes differ).
		if s.hooks != nil {
			s.hooks.Dispatch(ctx, hook.OnTitleChange, map[string]any{"title": ev.Title})
		}
	}
}

// applySpan runs on_output/output_filters over one Span's text (spec
// §4.6's "each on_output batch" is the parser's own flush granularity,
// one Span per flush) before it reaches the grid. A filter chain that
// injects escape bytes is re-fed to the parser so the injected SGR/OSC
// codes take effect, rather than appearing as literal text.
func (s *Session) applySpan(ctx context.Context, ev vtparse.Event) {
	if s.hooks != nil {
		s.hooks.Dispatch(ctx, hook.OnOutput, map[string]any{
			"bytes_len":    len(ev.Text),
			"text_excerpt": excerpt(ev.Text, outputExcerptRunes),
		})
	}

	text := ev.Text
	if s.hooks != nil {
		text = s.hooks.RunFilters(ctx, text)
	}

	if strings.ContainsRune(text, 0x1b) && s.filterDepth < maxFilterRefeed {
		s.filterDepth++
		s.parser.Feed([]byte(text))
		for _, reparsed := range s.parser.DrainEvents() {
			s.applyReparsedEvent(ctx, reparsed)
		}
		s.filterDepth--
		return
	}

	s.grid.AppendToActive(grid.Span{Text: text, Style: ev.Style})
	s.echo.ReconcileTail(s.grid.ActiveLine().Text())
}

// applyReparsedEvent applies one event produced by re-feeding filtered
// output back into the parser. Its Span text is the filter chain's
// final output for this batch, so it is appended directly rather than
// routed through applySpan again — the filters already ran once for
// this on_output batch, and re-running them on their own output would
// let a filter that always re-injects escape bytes recurse forever.
func (s *Session) applyReparsedEvent(ctx context.Context, ev vtparse.Event) {
	if ev.Kind == vtparse.EventSpan {
		s.grid.AppendToActive(grid.Span{Text: ev.Text, Style: ev.Style})
		s.echo.ReconcileTail(s.grid.ActiveLine().Text())
		return
	}
	s.applyEvent(ctx, ev)
}

// excerpt truncates s to at most n runes, leaving multi-byte code
// points intact.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *Session) finishCommand(ctx context.Context, ev vtparse.Event) {
	duration := time.Duration(0)
	if !s.state.StartedAt.IsZero() {
		duration = s.now().Sub(s.state.StartedAt)
	}
	exitCode := 0
	if ev.HasExitCode {
		exitCode = ev.ExitCode
	}
	s.history.push(HistoryEntry{
		Command:   s.state.CommandText,
		ExitCode:  exitCode,
		StartedAt: s.state.StartedAt,
		Duration:  duration,
	})
	s.state = CommandState{
		Phase:       CommandFinished,
		CommandText: s.state.CommandText,
		ExitCode:    exitCode,
		HasExitCode: ev.HasExitCode,
	}
	if !ev.HasExitCode {
		s.log.Warn(ctx, "command ended without an exit code", "command", s.state.CommandText)
	}
	if s.hooks != nil {
		s.hooks.Dispatch(ctx, hook.OnCommandEnd, map[string]any{
			"command":     s.state.CommandText,
			"exit_code":   exitCode,
			"duration_ms": duration.Milliseconds(),
		})
	}
}

// now is a seam so tests can observe command durations deterministically
// by controlling elapsed wall-clock time between feed calls; production
// code always uses time.Now.
func (s *Session) now() time.Time { return time.Now() }

// State returns the current command-lifecycle state.
func (s *Session) State() CommandState { return s.state }

// History returns completed commands, oldest first.
func (s *Session) History() []HistoryEntry { return s.history.all() }

// LastCommand returns the most recently completed command, if any.
func (s *Session) LastCommand() (HistoryEntry, bool) { return s.history.last() }

// CWD returns the session's best-known working directory: the shell's
// launch directory, since the core's parser does not implement OSC 7
// (directory-change reporting is outside spec scope).
func (s *Session) CWD() string { return s.cwd }

// Grid exposes the underlying cell grid for rendering.
func (s *Session) Grid() *grid.Grid { return s.grid }

// Dirty reports whether any state has changed since the last ClearDirty.
func (s *Session) Dirty() bool { return s.dirty }

// InputEmpty reports whether the local-echo buffer holds no unconfirmed
// keystrokes — used by the loop to recognize an empty-line Ctrl+C/Ctrl+D
// as a shutdown trigger rather than an interrupt/EOF sent to the shell.
func (s *Session) InputEmpty() bool { return s.echo.IsEmpty() }

// CurrentInput returns the unconfirmed keystrokes held in the
// local-echo buffer, used as the on_key_press hook's current_input
// field.
func (s *Session) CurrentInput() string { return s.echo.String() }

// ClearDirty resets the dirty flag after a frame has been assembled.
func (s *Session) ClearDirty() { s.dirty = false }

// RenderSuffix returns the local-echo text that should be appended to
// the active line for display, or "" if there's nothing pending or the
// shell has already echoed it.
func (s *Session) RenderSuffix() string {
	return s.echo.RenderSuffix(s.grid.ActiveLine().Text())
}

// Snapshot serializes the externally-persisted slice of session state —
// working directory and command history — as opaque JSON. The core
// does not own the file format (spec §6); this is an accessor a save/
// restore collaborator composes into its own document.
func (s *Session) Snapshot() (string, error) {
	doc := "{}"
	var err error
	if doc, err = sjson.Set(doc, "working_dir", s.cwd); err != nil {
		return "", fmt.Errorf("session: snapshot: %w", err)
	}
	for i, e := range s.history.all() {
		prefix := fmt.Sprintf("command_history.%d.", i)
		if doc, err = sjson.Set(doc, prefix+"command", e.Command); err != nil {
			return "", fmt.Errorf("session: snapshot: %w", err)
		}
		if doc, err = sjson.Set(doc, prefix+"exit_code", e.ExitCode); err != nil {
			return "", fmt.Errorf("session: snapshot: %w", err)
		}
		if doc, err = sjson.Set(doc, prefix+"started_at", e.StartedAt.Format(time.RFC3339Nano)); err != nil {
			return "", fmt.Errorf("session: snapshot: %w", err)
		}
		if doc, err = sjson.Set(doc, prefix+"duration_ms", e.Duration.Milliseconds()); err != nil {
			return "", fmt.Errorf("session: snapshot: %w", err)
		}
	}
	return doc, nil
}

// Restore replaces the working directory and command history from a
// document previously produced by Snapshot. Every entry is restored;
// missing or malformed fields within an entry become zero values rather
// than aborting the whole restore — a partially restored history is
// preferable to refusing to start the session.
func (s *Session) Restore(doc string) error {
	if !gjson.Valid(doc) {
		return fmt.Errorf("session: restore: invalid JSON document")
	}
	parsed := gjson.Parse(doc)
	s.cwd = parsed.Get("working_dir").String()

	s.history = newHistoryRing(s.history.capacity)
	for _, entry := range parsed.Get("command_history").Array() {
		startedAt, _ := time.Parse(time.RFC3339Nano, entry.Get("started_at").String())
		s.history.push(HistoryEntry{
			Command:   entry.Get("command").String(),
			ExitCode:  int(entry.Get("exit_code").Int()),
			StartedAt: startedAt,
			Duration:  time.Duration(entry.Get("duration_ms").Int()) * time.Millisecond,
		})
	}
	return nil
}
