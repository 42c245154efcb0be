package democell

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ptyterm/internal/eventloop"
	"github.com/dshills/ptyterm/internal/keymap"
)

// PollEvents runs tcell's blocking event loop on the calling goroutine,
// translating key and resize events into eventloop.InputEvent values on
// out until ctx is cancelled or the screen reports a quit-worthy error.
// Callers run this in its own goroutine feeding the channel the Loop was
// built with; it never touches Loop directly, keeping every cross-
// goroutine interaction confined to this one channel send.
func (s *Sink) PollEvents(ctx context.Context, out chan<- eventloop.InputEvent) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			close(out)
			return
		case ev, ok := <-events:
			if !ok {
				close(out)
				return
			}
			if input, ok := translate(ev); ok {
				select {
				case out <- input:
				case <-ctx.Done():
					close(out)
					return
				}
			}
		}
	}
}

// translate converts one tcell.Event into an eventloop.InputEvent. Mouse
// events and anything else the demo doesn't act on are reported as
// not-ok so the caller simply drops them.
func translate(ev tcell.Event) (eventloop.InputEvent, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return translateKey(e), true
	case *tcell.EventResize:
		// Resize is delivered to sessions by the caller via Sink.Size,
		// polled on the next render tick; nothing to hand the loop here.
		return eventloop.InputEvent{}, false
	default:
		return eventloop.InputEvent{}, false
	}
}

func translateKey(e *tcell.EventKey) eventloop.InputEvent {
	if e.Key() == tcell.KeyRune {
		return eventloop.InputEvent{Rune: e.Rune()}
	}
	if name, ok := namedKey(e.Key()); ok {
		return eventloop.InputEvent{Key: keymap.Key{Name: name, Mods: translateMods(e.Modifiers())}}
	}
	if letter, ok := ctrlLetter(e.Key()); ok {
		return eventloop.InputEvent{Key: keymap.Key{Name: letter, Mods: keymap.ModCtrl}}
	}
	return eventloop.InputEvent{}
}

func namedKey(k tcell.Key) (string, bool) {
	switch k {
	case tcell.KeyTab:
		return "Tab", true
	case tcell.KeyEnter:
		return "Enter", true
	case tcell.KeyEscape:
		return "Esc", true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "Backspace", true
	case tcell.KeyUp:
		return "Up", true
	case tcell.KeyDown:
		return "Down", true
	case tcell.KeyLeft:
		return "Left", true
	case tcell.KeyRight:
		return "Right", true
	case tcell.KeyF1:
		return "F1", true
	case tcell.KeyF2:
		return "F2", true
	case tcell.KeyF3:
		return "F3", true
	case tcell.KeyF4:
		return "F4", true
	case tcell.KeyF5:
		return "F5", true
	case tcell.KeyF6:
		return "F6", true
	case tcell.KeyF7:
		return "F7", true
	case tcell.KeyF8:
		return "F8", true
	case tcell.KeyF9:
		return "F9", true
	case tcell.KeyF10:
		return "F10", true
	case tcell.KeyF11:
		return "F11", true
	case tcell.KeyF12:
		return "F12", true
	default:
		return "", false
	}
}

// ctrlLetter recognizes tcell's KeyCtrlA..KeyCtrlZ constants, which
// terminals deliver as the literal control byte (1..26) rather than a
// modifier bit on KeyRune.
func ctrlLetter(k tcell.Key) (string, bool) {
	if k < tcell.KeyCtrlA || k > tcell.KeyCtrlZ {
		return "", false
	}
	return string(rune('a' + int(k-tcell.KeyCtrlA))), true
}

func translateMods(m tcell.ModMask) keymap.Modifier {
	var mods keymap.Modifier
	if m&tcell.ModCtrl != 0 {
		mods |= keymap.ModCtrl
	}
	if m&tcell.ModShift != 0 {
		mods |= keymap.ModShift
	}
	if m&tcell.ModAlt != 0 {
		mods |= keymap.ModAlt
	}
	return mods
}
