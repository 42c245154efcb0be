package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dshills/ptyterm/internal/corelog"
	"github.com/dshills/ptyterm/internal/hook"
	"github.com/dshills/ptyterm/internal/keymap"
	"github.com/dshills/ptyterm/internal/ptysession"
	"github.com/dshills/ptyterm/internal/session"
)

const (
	// maxInputPerIteration bounds how many buffered input events a
	// single wakeup drains before yielding back to the outer select, so
	// a burst of keystrokes can never starve PTY draining or rendering.
	maxInputPerIteration = 32
	// ptyCapPerTick is the per-session, per-tick byte budget for
	// draining PTY output; the remainder waits in the kernel pipe for
	// the next tick.
	ptyCapPerTick = 64 * 1024
	// ioInterval is how often the loop polls session PTYs. It is much
	// finer-grained than the render tick since ptysession's own reads
	// already carry a 1ms non-blocking deadline — this ticker exists to
	// drive the polling cadence, not to simulate blocking I/O readiness.
	ioInterval = 2 * time.Millisecond
	// defaultFrameInterval is the render tick's default period (60 Hz).
	defaultFrameInterval = time.Second / 60
	// childExitWait bounds how long Close waits for a child to exit
	// during shutdown before the session's own Close forces it.
	childExitWait = 200 * time.Millisecond
)

// SessionFactory creates a new session on demand, used to implement the
// NewTab action. The caller owns shell/geometry defaults.
type SessionFactory func() (*session.Session, error)

// Options configures a new Loop.
type Options struct {
	Sessions      []*session.Session
	Spawn         SessionFactory
	Registry      *keymap.Registry
	Hooks         *hook.Executor
	Sink          RenderSink
	Input         <-chan InputEvent
	FrameInterval time.Duration
}

// Loop is the single-threaded cooperative scheduler: it owns every
// session, the keybinding resolver, the hook executor, and the render
// sink, and drives all three from one goroutine. Nothing in Loop is
// safe to call from any other goroutine.
type Loop struct {
	sessions []*session.Session
	active   int

	spawn    SessionFactory
	registry *keymap.Registry
	hooks    *hook.Executor
	sink     RenderSink
	input    <-chan InputEvent

	frameInterval time.Duration
	log           *corelog.Logger

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// New builds a Loop from opts. At least one session should usually be
// present in opts.Sessions, though Loop tolerates starting with none.
func New(opts Options) *Loop {
	frameInterval := opts.FrameInterval
	if frameInterval <= 0 {
		frameInterval = defaultFrameInterval
	}
	return &Loop{
		sessions:      append([]*session.Session(nil), opts.Sessions...),
		spawn:         opts.Spawn,
		registry:      opts.Registry,
		hooks:         opts.Hooks,
		sink:          opts.Sink,
		input:         opts.Input,
		frameInterval: frameInterval,
		log:           corelog.New("eventloop"),
		shutdownCh:    make(chan struct{}),
	}
}

// RequestShutdown signals Run to exit after completing the current
// iteration's work. Safe to call once; later calls are no-ops.
func (l *Loop) RequestShutdown() {
	l.shutdownOnce.Do(func() { close(l.shutdownCh) })
}

// Run drives the loop until ctx is cancelled, RequestShutdown is
// called, or the input channel is closed. It never busy-waits: every
// iteration blocks on a multiplexed select among the input channel, the
// I/O polling ticker, and a shutdown signal; the render tick is checked
// against elapsed wall-clock time on every iteration rather than being
// a fourth select arm, so a frame is never more than one ioInterval
// late relative to its nominal due time.
func (l *Loop) Run(ctx context.Context) error {
	l.hooks.Dispatch(ctx, hook.OnStartup, map[string]any{})

	ioTicker := time.NewTicker(ioInterval)
	defer ioTicker.Stop()

	lastRender := time.Now()

	for {
		select {
		case <-ctx.Done():
			l.teardown(context.Background())
			return ctx.Err()

		case <-l.shutdownCh:
			l.teardown(context.Background())
			return nil

		case ev, ok := <-l.input:
			if !ok {
				l.teardown(context.Background())
				return nil
			}
			if l.handleInput(ctx, ev) {
				l.teardown(context.Background())
				return nil
			}
			l.drainRemainingInput(ctx, maxInputPerIteration-1)

		case <-ioTicker.C:
			l.pumpSessions(ctx)
		}

		if time.Since(lastRender) >= l.frameInterval {
			lastRender = time.Now()
			l.maybeRender(ctx)
		}
	}
}

// drainRemainingInput opportunistically consumes up to budget more
// already-buffered input events without blocking, so one iteration can
// process a burst of keystrokes without starving the loop. The final
// default case makes this a bounded drain, not a spin: it returns the
// instant the channel has nothing ready.
func (l *Loop) drainRemainingInput(ctx context.Context, budget int) {
	for i := 0; i < budget; i++ {
		select {
		case ev, ok := <-l.input:
			if !ok {
				l.RequestShutdown()
				return
			}
			if l.handleInput(ctx, ev) {
				l.RequestShutdown()
				return
			}
		default:
			return
		}
	}
}

// pumpSessions drains available PTY output for every session, up to
// ptyCapPerTick bytes each. A session whose child has exited is closed
// and removed.
func (l *Loop) pumpSessions(ctx context.Context) {
	var dead []int
	for i, s := range l.sessions {
		err := s.PumpOutput(ctx, ptyCapPerTick)
		if err == nil {
			continue
		}
		if errors.Is(err, ptysession.ErrWouldBlock) {
			continue
		}
		l.log.Info(ctx, "session ended", "session", s.ID, "error", err)
		dead = append(dead, i)
	}
	for i := len(dead) - 1; i >= 0; i-- {
		l.removeSession(dead[i])
	}
}

func (l *Loop) removeSession(i int) {
	s := l.sessions[i]
	_ = s.Close()
	l.sessions = append(l.sessions[:i], l.sessions[i+1:]...)
	if l.active >= len(l.sessions) && l.active > 0 {
		l.active--
	}
}

// maybeRender assembles a frame only if at least one session is dirty,
// matching the "allowed to skip frames when no session is dirty"
// pacing rule; it clears every dirty flag it reads regardless of
// whether a render was triggered by that particular session, since all
// dirty sessions are captured together in the one frame produced.
func (l *Loop) maybeRender(ctx context.Context) {
	anyDirty := false
	for _, s := range l.sessions {
		if s.Dirty() {
			anyDirty = true
			break
		}
	}
	if !anyDirty {
		return
	}

	frame := Frame{Widgets: l.hooks.CollectWidgets(ctx)}
	for _, s := range l.sessions {
		frame.Sessions = append(frame.Sessions, SessionFrame{
			SessionID:    s.ID,
			Lines:        s.Grid().RenderView(defaultViewportRows),
			RenderSuffix: s.RenderSuffix(),
		})
		s.ClearDirty()
	}
	if l.active < len(l.sessions) {
		frame.Active = l.sessions[l.active].ID
	}
	l.sink.Render(frame)
}

// defaultViewportRows is a fallback when the caller hasn't wired
// geometry-aware rendering; real renderers call Grid().RenderView
// directly with their own viewport height instead of relying on a
// Frame assembled with this default.
const defaultViewportRows = 24

// teardown runs the shutdown sequence: dispatch on_shutdown, close
// every session with a bounded wait for child exit, and flush the
// renderer if it supports flushing.
func (l *Loop) teardown(ctx context.Context) {
	l.hooks.Dispatch(ctx, hook.OnShutdown, map[string]any{
		"session_count": len(l.sessions),
	})
	done := make(chan struct{})
	go func() {
		for _, s := range l.sessions {
			_ = s.Close()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(childExitWait):
	}
	if f, ok := l.sink.(flusher); ok {
		f.Flush()
	}
}

type flusher interface{ Flush() }
