package vtparse

import (
	"testing"

	"github.com/dshills/ptyterm/internal/ansicolor"
)

func feedAll(p *Parser, s string) []Event {
	p.Feed([]byte(s))
	return p.DrainEvents()
}

// E1. Color text.
func TestColorText(t *testing.T) {
	events := feedAll(New(), "\x1b[31mhello\x1b[0m world\n")

	var spans []Event
	for _, e := range events {
		if e.Kind == EventSpan {
			spans = append(spans, e)
		}
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "hello" || spans[0].Style.Foreground != ansicolor.Named(1) {
		t.Errorf("span0 = %+v, want text=hello fg=Named(1)", spans[0])
	}
	if spans[1].Text != " world" || !spans[1].Style.Equal(ansicolor.Reset) {
		t.Errorf("span1 = %+v, want text=' world' reset style", spans[1])
	}
}

// E2. 24-bit color.
func TestTrueColor(t *testing.T) {
	events := feedAll(New(), "\x1b[38;2;17;34;51mX\x1b[0m")
	if len(events) == 0 || events[0].Kind != EventSpan {
		t.Fatalf("expected a span event, got %+v", events)
	}
	want := ansicolor.RGB(17, 34, 51)
	if events[0].Text != "X" || events[0].Style.Foreground != want {
		t.Errorf("got %+v, want text=X fg=%v", events[0], want)
	}
}

// E3. Title change.
func TestTitleChange(t *testing.T) {
	events := feedAll(New(), "\x1b]0;My Title\x07rest\n")
	if len(events) != 3 {
		t.Fatalf("expected 3 events (TitleChange, Span, LineBreak), got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventTitleChange || events[0].Title != "My Title" {
		t.Errorf("event0 = %+v, want TitleChange(My Title)", events[0])
	}
	if events[1].Kind != EventSpan || events[1].Text != "rest" {
		t.Errorf("event1 = %+v, want Span(rest)", events[1])
	}
}

// E4. Command lifecycle.
func TestCommandLifecycle(t *testing.T) {
	p := New()
	p.Feed([]byte("\x1b]133;C\x07build\n"))
	first := p.DrainEvents()

	wantKinds := []EventKind{EventCommandStart, EventSpan, EventLineBreak}
	if len(first) != len(wantKinds) {
		t.Fatalf("got %d events, want %d: %+v", len(first), len(wantKinds), first)
	}
	for i, k := range wantKinds {
		if first[i].Kind != k {
			t.Errorf("event %d kind = %v, want %v", i, first[i].Kind, k)
		}
	}
	if first[1].Text != "build" {
		t.Errorf("span text = %q, want build", first[1].Text)
	}

	p.Feed([]byte("\x1b]133;D;0\x07"))
	second := p.DrainEvents()
	if len(second) != 1 || second[0].Kind != EventCommandEnd {
		t.Fatalf("got %+v, want single CommandEnd", second)
	}
	if !second[0].HasExitCode || second[0].ExitCode != 0 {
		t.Errorf("CommandEnd exit = %+v, want exit=0", second[0])
	}
}

// E5. Scrollback eviction is tested in package grid; here we just check
// LineBreak emission count for "a\nb\nc\n".
func TestLineBreakCount(t *testing.T) {
	events := feedAll(New(), "a\nb\nc\n")
	count := 0
	for _, e := range events {
		if e.Kind == EventLineBreak {
			count++
		}
	}
	if count != 3 {
		t.Errorf("got %d LineBreaks, want 3", count)
	}
}

func TestIncrementalEqualsBatch(t *testing.T) {
	const input = "\x1b[1;31mhello\x1b[0m\nworld\x1b]0;title\x07\x1b[38;5;200mZ\x1b[0m"

	batch := New()
	batchEvents := feedAll(batch, input)

	incremental := New()
	var incEvents []Event
	for i := 0; i < len(input); i++ {
		incremental.Feed([]byte{input[i]})
		incEvents = append(incEvents, incremental.DrainEvents()...)
	}

	if len(batchEvents) != len(incEvents) {
		t.Fatalf("batch produced %d events, incremental produced %d", len(batchEvents), len(incEvents))
	}
	for i := range batchEvents {
		if batchEvents[i] != incEvents[i] {
			t.Errorf("event %d differs: batch=%+v incremental=%+v", i, batchEvents[i], incEvents[i])
		}
	}
}

func TestZeroBytesProducesZeroEvents(t *testing.T) {
	p := New()
	p.Feed(nil)
	if events := p.DrainEvents(); events != nil {
		t.Errorf("expected nil events, got %+v", events)
	}
}

func TestPartialCSIProducesNoEvents(t *testing.T) {
	p := New()
	p.Feed([]byte("\x1b[31"))
	if events := p.DrainEvents(); events != nil {
		t.Errorf("expected no events from a partial CSI sequence, got %+v", events)
	}
	p.Feed([]byte("mhello\n"))
	events := p.DrainEvents()
	if len(events) != 2 || events[0].Text != "hello" {
		t.Errorf("expected continuation to complete the sequence, got %+v", events)
	}
}

func TestBellEvent(t *testing.T) {
	events := feedAll(New(), "\x07")
	if len(events) != 1 || events[0].Kind != EventBell {
		t.Fatalf("expected a single Bell event, got %+v", events)
	}
}

func TestSGRResetThenStyleThenReset(t *testing.T) {
	// A trailing "\x1b[0m" forces the final plain-text run to flush too —
	// per §4.3, a span only flushes on a style change or line break.
	events := feedAll(New(), "\x1b[0m\x1b[1;4;31mstyled\x1b[0mplain\x1b[0m")
	var spans []Event
	for _, e := range events {
		if e.Kind == EventSpan {
			spans = append(spans, e)
		}
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %+v", spans)
	}
	mid := spans[0]
	if !mid.Style.Attrs.Has(ansicolor.AttrBold) || !mid.Style.Attrs.Has(ansicolor.AttrUnderline) {
		t.Errorf("middle span missing expected attrs: %+v", mid.Style)
	}
	if mid.Style.Foreground != ansicolor.Named(1) {
		t.Errorf("middle span fg = %+v, want Named(1)", mid.Style.Foreground)
	}
	if !spans[1].Style.Equal(ansicolor.Reset) {
		t.Errorf("trailing span should be reset style, got %+v", spans[1].Style)
	}
}

func TestBackspaceRemovesCodePointFromPending(t *testing.T) {
	events := feedAll(New(), "ab\x08c\n")
	if len(events) != 2 || events[0].Text != "ac" {
		t.Fatalf("got %+v, want span 'ac' then LineBreak", events)
	}
}

// DEC private-mode sequences (cursor visibility, bracketed paste,
// app-cursor-keys) all lead their parameter with '?'. They must be
// consumed and dropped whole, not abort mid-sequence and leak the
// trailing digits/final byte into the grid as text.
func TestPrivateModeSequenceConsumedWhole(t *testing.T) {
	events := feedAll(New(), "\x1b[?25hhello\n")
	if len(events) != 2 || events[0].Kind != EventSpan || events[0].Text != "hello" {
		t.Fatalf("got %+v, want a single Span(hello) then LineBreak", events)
	}
}

func TestBracketedPasteModeSequenceConsumedWhole(t *testing.T) {
	events := feedAll(New(), "\x1b[?2004h\x1b[?2004lok\n")
	if len(events) != 2 || events[0].Kind != EventSpan || events[0].Text != "ok" {
		t.Fatalf("got %+v, want a single Span(ok) then LineBreak", events)
	}
}
