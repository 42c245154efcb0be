package keymap

import "testing"

func TestResolutionOrderCustomWins(t *testing.T) {
	k := Key{Name: "v", Mods: ModCtrl}
	custom := []Binding{{Key: k, Action: ExecuteScript("custom")}}
	configured := []Binding{{Key: k, Action: Action{Kind: ActionPaste}}}
	builtin := []Binding{{Key: k, Action: Action{Kind: ActionCopy}}}

	reg, warnings := NewRegistry(custom, configured, builtin)
	if len(warnings) != 0 {
		t.Fatalf("unexpected conflict warnings: %+v", warnings)
	}

	got, ok := reg.Resolve(k)
	if !ok || got.Kind != ActionExecuteScript {
		t.Fatalf("got %+v, want custom ExecuteScript action to win", got)
	}
}

func TestResolutionFallsThroughTiers(t *testing.T) {
	k := Key{Name: "x", Mods: ModCtrl}
	builtin := []Binding{{Key: k, Action: Action{Kind: ActionQuit}}}

	reg, _ := NewRegistry(nil, nil, builtin)
	got, ok := reg.Resolve(k)
	if !ok || got.Kind != ActionQuit {
		t.Fatalf("got %+v, want built-in Quit action", got)
	}
}

func TestResolveUnboundKey(t *testing.T) {
	reg, _ := NewRegistry(nil, nil, nil)
	if _, ok := reg.Resolve(Key{Name: "q", Mods: ModCtrl}); ok {
		t.Fatal("expected no match for an unbound key")
	}
}

func TestConflictDetectionSameTier(t *testing.T) {
	k := Key{Name: "v", Mods: ModCtrl | ModShift}
	configured := []Binding{
		{Key: k, Action: Action{Kind: ActionPaste}},
		{Key: k, Action: Action{Kind: ActionSplitV}},
	}
	_, warnings := NewRegistry(nil, configured, nil)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 conflict warning, got %d: %+v", len(warnings), warnings)
	}
	if warnings[0].Key != k {
		t.Errorf("warning key = %+v, want %+v", warnings[0].Key, k)
	}
}

func TestDefaultBuiltinsEnterSendsCR(t *testing.T) {
	for _, b := range DefaultBuiltins() {
		if b.Key.Name == "Enter" {
			if string(b.Action.Bytes) != "\r" {
				t.Errorf("Enter binding sends %q, want %q", b.Action.Bytes, "\r")
			}
			return
		}
	}
	t.Fatal("Enter not found in DefaultBuiltins")
}

func TestResolvePrintable(t *testing.T) {
	a := ResolvePrintable('z')
	if a.Kind != ActionSendToPty || string(a.Bytes) != "z" {
		t.Fatalf("got %+v", a)
	}
}
