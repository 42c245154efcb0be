package vtparse

import "testing"

func TestParseOverflowForceCommits(t *testing.T) {
	p := New()
	// A pathological shell emitting a huge run with no line break: the
	// parser must force-commit rather than grow its buffer unboundedly.
	huge := make([]byte, maxPendingBytes+10)
	for i := range huge {
		huge[i] = 'x'
	}
	p.Feed(huge)
	events := p.DrainEvents()

	var sawSpan, sawBreak bool
	for _, e := range events {
		if e.Kind == EventSpan {
			sawSpan = true
		}
		if e.Kind == EventLineBreak {
			sawBreak = true
		}
	}
	if !sawSpan || !sawBreak {
		t.Fatalf("expected a forced Span+LineBreak on overflow, got %+v", events)
	}
	if len(p.pending) != 0 {
		t.Fatalf("pending buffer should be drained after forced commit, got %d bytes", len(p.pending))
	}
}

func TestOSCTextSanitization(t *testing.T) {
	// A title string smuggling a C0 control byte must have it stripped.
	events := feedAll(New(), "\x1b]0;bad\x01title\x07")
	if len(events) != 1 || events[0].Kind != EventTitleChange {
		t.Fatalf("got %+v", events)
	}
	if events[0].Title != "badtitle" {
		t.Errorf("Title = %q, want %q", events[0].Title, "badtitle")
	}
}
