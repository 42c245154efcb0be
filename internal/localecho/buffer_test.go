package localecho

import "testing"

func TestAppendAndBytes(t *testing.T) {
	b := New(Heuristic)
	b.Append([]byte("hi"))
	if b.String() != "hi" {
		t.Fatalf("got %q, want %q", b.String(), "hi")
	}
}

func TestBackspaceOnEmptyIsNoop(t *testing.T) {
	b := New(Heuristic)
	b.Backspace() // must not panic
	if !b.IsEmpty() {
		t.Fatal("expected buffer to remain empty")
	}
}

func TestBackspaceRemovesOneCodePoint(t *testing.T) {
	b := New(Heuristic)
	b.Append([]byte("héllo"))
	b.Backspace()
	if got := b.String(); got != "héll" {
		t.Fatalf("got %q, want %q", got, "héll")
	}
}

func TestClear(t *testing.T) {
	b := New(Heuristic)
	b.Append([]byte("abc"))
	b.Clear()
	if !b.IsEmpty() {
		t.Fatal("expected empty after Clear")
	}
}

// E6. Local echo reconciliation.
func TestReconciliationE6(t *testing.T) {
	b := New(Heuristic)
	b.Append([]byte("hi"))

	// Render tick 1: nothing echoed yet, local echo should show "hi".
	if got := b.RenderSuffix(""); got != "hi" {
		t.Fatalf("tick1 RenderSuffix = %q, want %q", got, "hi")
	}

	// Shell now emits "hi": reconcile against the new active-line tail.
	cleared := b.ReconcileTail("hi")
	if !cleared {
		t.Fatal("expected ReconcileTail to clear the buffer once the shell echoed")
	}

	// Render tick 2: buffer is empty, nothing more to append — no "hihi".
	if got := b.RenderSuffix("hi"); got != "" {
		t.Fatalf("tick2 RenderSuffix = %q, want empty (no double display)", got)
	}
}

func TestRenderSuffixSkipsIfAlreadyPresent(t *testing.T) {
	b := New(Heuristic)
	b.Append([]byte("go"))
	// Shell was faster than the render tick and already printed "go".
	if got := b.RenderSuffix("go"); got != "" {
		t.Fatalf("expected no synthetic span when active line already ends with buffer content, got %q", got)
	}
}

func TestForceClearOnLineBreak(t *testing.T) {
	b := New(Heuristic)
	b.Append([]byte("partial"))
	b.ForceClear()
	if !b.IsEmpty() {
		t.Fatal("expected ForceClear to empty the buffer unconditionally")
	}
}

func TestAlwaysRemoteModeIgnoresAppend(t *testing.T) {
	b := New(AlwaysRemote)
	b.Append([]byte("typed"))
	if !b.IsEmpty() {
		t.Fatal("AlwaysRemote mode should never accumulate local echo bytes")
	}
}

func TestReconcileTailNoMatchLeavesBufferIntact(t *testing.T) {
	b := New(Heuristic)
	b.Append([]byte("xy"))
	if b.ReconcileTail("something-else") {
		t.Fatal("ReconcileTail should not clear when the tail does not end with the buffer content")
	}
	if b.IsEmpty() {
		t.Fatal("buffer should remain populated")
	}
}
