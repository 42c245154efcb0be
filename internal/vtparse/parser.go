package vtparse

import (
	"context"
	"strconv"
	"strings"

	"github.com/dshills/ptyterm/internal/ansicolor"
	"github.com/dshills/ptyterm/internal/corelog"
)

// maxPendingBytes is the pathological-shell guard from the scheduling
// model: if the active span buffer grows beyond this with no LineBreak,
// the parser force-commits and logs a warning instead of growing
// unboundedly.
const maxPendingBytes = 1 << 20 // 1 MiB

type state int

const (
	stateGround state = iota
	stateEscape
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateOSC
	stateOSCMaybeST
)

// Parser is an incremental ANSI/VT state machine. Zero value is not
// usable; construct with New.
type Parser struct {
	st    state
	style ansicolor.Style

	params   []int
	collectP bool // currently accumulating a param digit run
	inter    []byte
	osc      []byte

	pending []byte // accumulated printable-run text not yet flushed to a Span
	events  []Event

	utf8Want int // remaining continuation bytes expected
	utf8Buf  []byte

	log *corelog.Logger
}

// New constructs a Parser in Ground state with the default (Reset)
// style.
func New() *Parser {
	return &Parser{
		style:   ansicolor.Reset,
		params:  make([]int, 0, 16),
		pending: make([]byte, 0, 256),
		log:     corelog.New("vtparse"),
	}
}

// Feed appends bytes to the parser's input and processes them
// immediately, producing events retrievable via DrainEvents. Feed never
// blocks and never rejects input; an unterminated sequence at the end of
// bytes leaves the parser mid-state, fully capturing what remains to be
// emitted when more bytes arrive.
func (p *Parser) Feed(data []byte) {
	for _, b := range data {
		p.step(b)
	}
	if len(p.pending) > maxPendingBytes {
		p.log.Warn(context.Background(), "parser buffer exceeded bound without a line break, force-committing",
			"bytes", len(p.pending))
		p.flushSpan()
		p.events = append(p.events, Event{Kind: EventLineBreak})
	}
}

// DrainEvents returns and clears all events produced since the last
// DrainEvents call (or since construction). The returned slice must not
// be retained past the next Feed/DrainEvents call.
func (p *Parser) DrainEvents() []Event {
	if len(p.events) == 0 {
		return nil
	}
	out := p.events
	p.events = nil
	return out
}

func (p *Parser) emit(ev Event) {
	p.events = append(p.events, ev)
}

// flushSpan converts any accumulated printable text into a Span event.
func (p *Parser) flushSpan() {
	if len(p.pending) == 0 {
		return
	}
	p.emit(Event{Kind: EventSpan, Text: string(p.pending), Style: p.style})
	p.pending = p.pending[:0]
}

func (p *Parser) step(b byte) {
	switch p.st {
	case stateGround:
		p.stepGround(b)
	case stateEscape:
		p.stepEscape(b)
	case stateCSIEntry, stateCSIParam:
		p.stepCSI(b)
	case stateCSIIntermediate:
		p.stepCSIIntermediate(b)
	case stateOSC:
		p.stepOSC(b)
	case stateOSCMaybeST:
		p.stepOSCMaybeST(b)
	}
}

func (p *Parser) stepGround(b byte) {
	if p.utf8Want > 0 {
		p.continueUTF8(b)
		return
	}
	switch {
	case b == 0x1B: // ESC
		p.st = stateEscape
	case b == 0x07: // BEL
		p.flushSpan()
		p.emit(Event{Kind: EventBell})
	case b == 0x08: // BS
		// Drops the last code point of the not-yet-flushed run; text
		// already emitted as a Span is left as it is.
		removeLastCodePointFromPending(p)
	case b == '\n':
		p.flushSpan()
		p.emit(Event{Kind: EventLineBreak})
	case b == '\r':
		p.flushSpan()
		// \r only ends the current span. No event is emitted, so text
		// after it is appended to the same active line rather than
		// written over it from the line start.
	case b < 0x20:
		// other C0 controls are silently dropped in ground state
	case b < 0x80:
		p.pending = append(p.pending, b)
	default:
		p.startUTF8(b)
	}
}

func (p *Parser) startUTF8(first byte) {
	var want int
	switch {
	case first&0xE0 == 0xC0:
		want = 1
	case first&0xF0 == 0xE0:
		want = 2
	case first&0xF8 == 0xF0:
		want = 3
	default:
		// invalid lead byte; emit replacement and stay in ground
		p.pending = append(p.pending, []byte("�")...)
		return
	}
	p.utf8Want = want
	p.utf8Buf = append(p.utf8Buf[:0], first)
}

func (p *Parser) continueUTF8(b byte) {
	if b&0xC0 != 0x80 {
		// malformed continuation: emit replacement, reprocess b as ground
		p.pending = append(p.pending, []byte("�")...)
		p.utf8Want = 0
		p.utf8Buf = p.utf8Buf[:0]
		p.stepGround(b)
		return
	}
	p.utf8Buf = append(p.utf8Buf, b)
	p.utf8Want--
	if p.utf8Want == 0 {
		p.pending = append(p.pending, p.utf8Buf...)
		p.utf8Buf = p.utf8Buf[:0]
	}
}

func removeLastCodePointFromPending(p *Parser) {
	n := len(p.pending)
	if n == 0 {
		return
	}
	i := n - 1
	for i > 0 && p.pending[i]&0xC0 == 0x80 {
		i--
	}
	p.pending = p.pending[:i]
}

func (p *Parser) stepEscape(b byte) {
	switch b {
	case '[':
		p.params = p.params[:0]
		p.inter = p.inter[:0]
		p.collectP = false
		p.st = stateCSIEntry
	case ']':
		p.osc = p.osc[:0]
		p.st = stateOSC
	default:
		// unhandled escape sequence: consumed and silently dropped
		p.st = stateGround
	}
}

func (p *Parser) stepCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if !p.collectP {
			p.params = append(p.params, 0)
			p.collectP = true
		}
		last := len(p.params) - 1
		p.params[last] = p.params[last]*10 + int(b-'0')
		p.st = stateCSIParam
	case b == ';' || b == ':':
		// ':' is ITU-T's sub-parameter separator (e.g. the colon form of
		// extended color "38:2:r:g:b"). This parser doesn't distinguish
		// sub-parameters from parameters, so it splits on ':' exactly like
		// ';' — applyExtendedColor reads params positionally either way.
		// An empty parameter before the separator counts as 0; the digit
		// after it opens the next slot.
		if !p.collectP {
			p.params = append(p.params, 0)
		}
		p.collectP = false
		p.st = stateCSIParam
	case b >= 0x3C && b <= 0x3F:
		// DEC private-mode markers ('<', '=', '>', '?'): still parameter
		// bytes per ECMA-48, just not digits. A leading '?' is how DEC
		// private modes (cursor visibility, bracketed paste,
		// app-cursor-keys, ...) are spelled; without this case the marker
		// falls to the abort path below and the mode's own digits/final
		// byte leak into ground as text.
		p.inter = append(p.inter, b)
		p.collectP = false
		p.st = stateCSIParam
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
		p.st = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7E:
		p.handleCSIFinal(b)
		p.st = stateGround
	default:
		// invalid CSI byte: abort sequence
		p.st = stateGround
	}
}

func (p *Parser) stepCSIIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
	case b >= 0x40 && b <= 0x7E:
		p.handleCSIFinal(b)
		p.st = stateGround
	default:
		p.st = stateGround
	}
}

// stepOSC accumulates an OSC body. Either BEL or the two-byte ST
// sequence (ESC \) terminates it, per original_source's acceptance of
// both forms.
func (p *Parser) stepOSC(b byte) {
	switch b {
	case 0x07: // BEL terminator
		p.handleOSC()
		p.st = stateGround
	case 0x1B: // possible ST (ESC \) terminator
		p.st = stateOSCMaybeST
	default:
		p.osc = append(p.osc, b)
	}
}

func (p *Parser) stepOSCMaybeST(b byte) {
	if b == '\\' {
		p.handleOSC()
		p.st = stateGround
		return
	}
	// not a valid ST: the ESC seen was spurious inside the OSC string;
	// keep it as data, resume accumulating, and process b as OSC data too.
	p.osc = append(p.osc, 0x1B)
	p.st = stateOSC
	p.stepOSC(b)
}

func (p *Parser) handleCSIFinal(final byte) {
	switch final {
	case 'm':
		p.handleSGR()
	case 'J':
		if p.param(0, 0) == 2 {
			p.flushSpan()
			p.emit(Event{Kind: EventClear})
		}
		// other erase-in-display variants (0,1,3): unhandled, silently dropped
	default:
		// unhandled CSI final byte: consumed and silently dropped
	}
}

func (p *Parser) param(index, def int) int {
	if index < len(p.params) && p.params[index] > 0 {
		return p.params[index]
	}
	return def
}

func (p *Parser) handleSGR() {
	if len(p.params) == 0 {
		p.flushSpan()
		p.style = ansicolor.Reset
		return
	}
	p.flushSpan()
	i := 0
	for i < len(p.params) {
		code := p.params[i]
		switch code {
		case 0:
			p.style = ansicolor.Reset
		case 1:
			p.style = p.style.WithAttr(ansicolor.AttrBold)
		case 2:
			p.style = p.style.WithAttr(ansicolor.AttrDim)
		case 3:
			p.style = p.style.WithAttr(ansicolor.AttrItalic)
		case 4:
			p.style = p.style.WithAttr(ansicolor.AttrUnderline)
		case 5:
			p.style = p.style.WithAttr(ansicolor.AttrBlink)
		case 7:
			p.style = p.style.WithAttr(ansicolor.AttrReverse)
		case 8:
			p.style = p.style.WithAttr(ansicolor.AttrHidden)
		case 9:
			p.style = p.style.WithAttr(ansicolor.AttrStrike)
		case 22:
			p.style = p.style.WithoutAttr(ansicolor.AttrBold).WithoutAttr(ansicolor.AttrDim)
		case 23:
			p.style = p.style.WithoutAttr(ansicolor.AttrItalic)
		case 24:
			p.style = p.style.WithoutAttr(ansicolor.AttrUnderline)
		case 25:
			p.style = p.style.WithoutAttr(ansicolor.AttrBlink)
		case 27:
			p.style = p.style.WithoutAttr(ansicolor.AttrReverse)
		case 28:
			p.style = p.style.WithoutAttr(ansicolor.AttrHidden)
		case 29:
			p.style = p.style.WithoutAttr(ansicolor.AttrStrike)
		case 30, 31, 32, 33, 34, 35, 36, 37:
			p.style = p.style.WithForeground(ansicolor.Named(code - 30))
		case 38:
			i = p.applyExtendedColor(i, true)
		case 39:
			p.style = p.style.WithForeground(ansicolor.Default)
		case 40, 41, 42, 43, 44, 45, 46, 47:
			p.style = p.style.WithBackground(ansicolor.Named(code - 40))
		case 48:
			i = p.applyExtendedColor(i, false)
		case 49:
			p.style = p.style.WithBackground(ansicolor.Default)
		case 90, 91, 92, 93, 94, 95, 96, 97:
			p.style = p.style.WithForeground(ansicolor.Named(code - 90 + 8))
		case 100, 101, 102, 103, 104, 105, 106, 107:
			p.style = p.style.WithBackground(ansicolor.Named(code - 100 + 8))
		}
		i++
	}
}

func (p *Parser) applyExtendedColor(i int, foreground bool) int {
	if i+1 >= len(p.params) {
		return i
	}
	switch p.params[i+1] {
	case 5:
		if i+2 < len(p.params) {
			idx := clamp(p.params[i+2], 0, 255)
			if foreground {
				p.style = p.style.WithForeground(ansicolor.Indexed(idx))
			} else {
				p.style = p.style.WithBackground(ansicolor.Indexed(idx))
			}
			return i + 2
		}
	case 2:
		if i+4 < len(p.params) {
			r := byte(clamp(p.params[i+2], 0, 255))
			g := byte(clamp(p.params[i+3], 0, 255))
			b := byte(clamp(p.params[i+4], 0, 255))
			if foreground {
				p.style = p.style.WithForeground(ansicolor.RGB(r, g, b))
			} else {
				p.style = p.style.WithBackground(ansicolor.RGB(r, g, b))
			}
			return i + 4
		}
	}
	return i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// handleOSC dispatches a complete OSC body (the bytes between "ESC ]" and
// its terminator). cmd 0/2 emit TitleChange; cmd 1 emits IconChange; cmd
// 133 emits the command-lifecycle markers; anything else is silently
// dropped.
func (p *Parser) handleOSC() {
	p.flushSpan()
	data := string(p.osc)
	parts := strings.SplitN(data, ";", 2)
	if len(parts) == 0 {
		return
	}
	cmd, err := strconv.Atoi(parts[0])
	if err != nil {
		return
	}
	rest := ""
	if len(parts) > 1 {
		rest = parts[1]
	}

	switch cmd {
	case 0, 2:
		p.emit(Event{Kind: EventTitleChange, Title: sanitizeOSCText(rest)})
	case 1:
		p.emit(Event{Kind: EventIconChange, Title: sanitizeOSCText(rest)})
	case 133:
		p.handleCommandLifecycle(rest)
	}
}

func (p *Parser) handleCommandLifecycle(rest string) {
	sub := rest
	var arg string
	if idx := strings.IndexByte(rest, ';'); idx >= 0 {
		sub = rest[:idx]
		arg = rest[idx+1:]
	}
	switch sub {
	case "A":
		p.emit(Event{Kind: EventCommandPromptBegin})
	case "B":
		p.emit(Event{Kind: EventCommandInputBegin})
	case "C":
		p.emit(Event{Kind: EventCommandStart})
	case "D":
		ev := Event{Kind: EventCommandEnd}
		if arg != "" {
			if code, err := strconv.Atoi(arg); err == nil {
				ev.HasExitCode = true
				ev.ExitCode = code
			}
		}
		p.emit(ev)
	}
}
