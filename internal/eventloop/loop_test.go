package eventloop

import (
	"context"
	"testing"

	"github.com/dshills/ptyterm/internal/hook"
	"github.com/dshills/ptyterm/internal/keymap"
	"github.com/dshills/ptyterm/internal/session"
)

// fakeSink records the frames handed to it and whether Flush was
// called, so tests can assert on render/teardown behavior without a
// real terminal backend.
type fakeSink struct {
	frames  []Frame
	flushed bool
}

func (f *fakeSink) Render(fr Frame) { f.frames = append(f.frames, fr) }
func (f *fakeSink) Flush()          { f.flushed = true }

func spawnTestSession(t *testing.T) *session.Session {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping eventloop test requiring a pty in short mode")
	}
	s, err := session.New(session.Options{Shell: "/bin/sh", Rows: 24, Cols: 80})
	if err != nil {
		t.Skipf("skipping: failed to spawn a pty (may be unavailable in this sandbox): %v", err)
	}
	return s
}

func newTestLoop(t *testing.T, sessions []*session.Session, hooks *hook.Executor) *Loop {
	t.Helper()
	registry, _ := keymap.NewRegistry(nil, nil, keymap.DefaultBuiltins())
	if hooks == nil {
		hooks = hook.NewExecutor()
		t.Cleanup(hooks.Close)
	}
	input := make(chan InputEvent)
	return New(Options{
		Sessions: sessions,
		Registry: registry,
		Hooks:    hooks,
		Sink:     &fakeSink{},
		Input:    input,
	})
}

func TestHandleInputRuneWritesToActiveSession(t *testing.T) {
	s := spawnTestSession(t)
	defer s.Close()
	l := newTestLoop(t, []*session.Session{s}, nil)

	if s.InputEmpty() != true {
		t.Fatalf("expected a fresh session to have an empty input buffer")
	}
	if shutdown := l.handleInput(context.Background(), InputEvent{Rune: 'a'}); shutdown {
		t.Fatal("handleInput returned shutdown=true for a plain rune")
	}
	if s.InputEmpty() {
		t.Fatal("expected the local-echo buffer to carry the written rune")
	}
}

func TestHandleInputCtrlCShutsDownOnEmptyLine(t *testing.T) {
	s := spawnTestSession(t)
	defer s.Close()
	l := newTestLoop(t, []*session.Session{s}, nil)

	ev := InputEvent{Key: keymap.Key{Name: "c", Mods: keymap.ModCtrl}}
	if shutdown := l.handleInput(context.Background(), ev); !shutdown {
		t.Fatal("expected Ctrl+C on an empty line to request shutdown")
	}
}

func TestHandleInputCtrlCSendsControlByteWithPendingInput(t *testing.T) {
	s := spawnTestSession(t)
	defer s.Close()
	l := newTestLoop(t, []*session.Session{s}, nil)

	l.handleInput(context.Background(), InputEvent{Rune: 'x'})
	ev := InputEvent{Key: keymap.Key{Name: "c", Mods: keymap.ModCtrl}}
	if shutdown := l.handleInput(context.Background(), ev); shutdown {
		t.Fatal("expected Ctrl+C with pending input to not shut down the loop")
	}
}

func TestHandleInputWindowCloseShutsDown(t *testing.T) {
	l := newTestLoop(t, nil, nil)
	if shutdown := l.handleInput(context.Background(), InputEvent{WindowClose: true}); !shutdown {
		t.Fatal("expected WindowClose to request shutdown")
	}
}

func TestHandleInputCustomKeybindingPreemptsRegistry(t *testing.T) {
	e := hook.NewExecutor()
	t.Cleanup(e.Close)
	if err := e.Load(`
		handled = "no"
		custom_keybindings = {
			["Ctrl+Shift+p"] = function(ctx) handled = "yes" end
		}
		output_filters = { function(ctx, text) return handled end }
	`); err != nil {
		t.Fatalf("Load: %v", err)
	}
	l := newTestLoop(t, nil, e)

	ev := InputEvent{Key: keymap.Key{Name: "p", Mods: keymap.ModCtrl | keymap.ModShift}}
	if shutdown := l.handleInput(context.Background(), ev); shutdown {
		t.Fatal("expected custom keybinding to not shut down the loop")
	}
	if got := e.RunFilters(context.Background(), ""); got != "yes" {
		t.Fatalf("custom_keybindings handler did not run: output_filters reported %q", got)
	}
}

func TestHandleInputNewTabAddsSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping eventloop test requiring a pty in short mode")
	}
	first, err := session.New(session.Options{Shell: "/bin/sh", Rows: 24, Cols: 80})
	if err != nil {
		t.Skipf("skipping: failed to spawn a pty (may be unavailable in this sandbox): %v", err)
	}
	defer first.Close()

	spawnCount := 0
	registry, _ := keymap.NewRegistry(nil, nil, []keymap.Binding{
		{Key: keymap.Key{Name: "t", Mods: keymap.ModCtrl}, Action: keymap.Action{Kind: keymap.ActionNewTab}},
	})
	hooks := hook.NewExecutor()
	t.Cleanup(hooks.Close)
	l := New(Options{
		Sessions: []*session.Session{first},
		Registry: registry,
		Hooks:    hooks,
		Sink:     &fakeSink{},
		Input:    make(chan InputEvent),
		Spawn: func() (*session.Session, error) {
			spawnCount++
			return session.New(session.Options{Shell: "/bin/sh", Rows: 24, Cols: 80})
		},
	})
	defer func() {
		for _, s := range l.sessions {
			s.Close()
		}
	}()

	ev := InputEvent{Key: keymap.Key{Name: "t", Mods: keymap.ModCtrl}}
	if shutdown := l.handleInput(context.Background(), ev); shutdown {
		t.Fatal("ActionNewTab should not shut down the loop")
	}
	if spawnCount != 1 {
		t.Fatalf("spawnCount = %d, want 1", spawnCount)
	}
	if len(l.sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(l.sessions))
	}
	if l.active != 1 {
		t.Fatalf("active = %d, want 1 (the newly spawned tab)", l.active)
	}
}

func TestMaybeRenderSkipsWhenNotDirty(t *testing.T) {
	s := spawnTestSession(t)
	defer s.Close()
	sink := &fakeSink{}
	hooks := hook.NewExecutor()
	t.Cleanup(hooks.Close)
	registry, _ := keymap.NewRegistry(nil, nil, keymap.DefaultBuiltins())
	l := New(Options{Sessions: []*session.Session{s}, Registry: registry, Hooks: hooks, Sink: sink, Input: make(chan InputEvent)})

	s.ClearDirty()
	l.maybeRender(context.Background())
	if len(sink.frames) != 0 {
		t.Fatalf("expected no frame to be rendered for a clean session, got %d", len(sink.frames))
	}
}

func TestTeardownFlushesSink(t *testing.T) {
	s := spawnTestSession(t)
	sink := &fakeSink{}
	hooks := hook.NewExecutor()
	t.Cleanup(hooks.Close)
	registry, _ := keymap.NewRegistry(nil, nil, keymap.DefaultBuiltins())
	l := New(Options{Sessions: []*session.Session{s}, Registry: registry, Hooks: hooks, Sink: sink, Input: make(chan InputEvent)})

	l.teardown(context.Background())
	if !sink.flushed {
		t.Fatal("expected teardown to flush the render sink")
	}
}
