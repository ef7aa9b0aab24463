package term

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parser interprets the byte stream a process writes to its PTY and
// applies it to a Screen. It is a resumable state machine: Parse may be
// called with arbitrary chunk boundaries, including mid-sequence and
// mid-rune.
type Parser struct {
	screen *Screen

	state   parserState
	params  []int
	private bool
	osc     []byte

	pending []byte // partial UTF-8 sequence across chunks

	onTitle func(string)
}

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateOSC
)

// NewParser creates a parser writing into screen.
func NewParser(screen *Screen) *Parser {
	return &Parser{
		screen: screen,
		params: make([]int, 0, 8),
		osc:    make([]byte, 0, 64),
	}
}

// SetTitleFunc registers a callback for OSC 0/2 title changes.
func (p *Parser) SetTitleFunc(fn func(string)) { p.onTitle = fn }

// Parse applies data to the screen.
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		switch p.state {
		case stateGround:
			p.ground(b)
		case stateEscape:
			p.escape(b)
		case stateCSI:
			p.csi(b)
		case stateOSC:
			p.oscByte(b)
		}
	}
}

// ParseString applies s to the screen.
func (p *Parser) ParseString(s string) { p.Parse([]byte(s)) }

func (p *Parser) ground(b byte) {
	if len(p.pending) > 0 || b >= 0x80 {
		p.utf8Byte(b)
		return
	}
	switch {
	case b == 0x1b:
		p.state = stateEscape
		p.params = p.params[:0]
		p.private = false
	case b == '\b':
		p.screen.MoveCursorBy(-1, 0)
	case b == '\t':
		x, _ := p.screen.Cursor()
		next := (x/8 + 1) * 8
		if next >= p.screen.Width() {
			next = p.screen.Width() - 1
		}
		_, y := p.screen.Cursor()
		p.screen.MoveCursor(next, y)
	case b == '\n' || b == '\v' || b == '\f':
		p.screen.LineFeed()
	case b == '\r':
		p.screen.CarriageReturn()
	case b >= 0x20 && b < 0x7f:
		p.screen.WriteRune(rune(b))
	default:
		// remaining C0 controls are ignored
	}
}

// utf8Byte accumulates multi-byte sequences, emitting the rune (or a
// replacement) as soon as the sequence completes or goes wrong.
func (p *Parser) utf8Byte(b byte) {
	if len(p.pending) > 0 && (b < 0x80 || b >= 0xc0) {
		// sequence broken mid-way
		p.screen.WriteRune(utf8.RuneError)
		p.pending = p.pending[:0]
		p.ground(b)
		return
	}
	p.pending = append(p.pending, b)
	if r, size := utf8.DecodeRune(p.pending); r != utf8.RuneError || size == len(p.pending) && size > 1 {
		p.screen.WriteRune(r)
		p.pending = p.pending[:0]
		return
	}
	if !utf8.RuneStart(p.pending[0]) || len(p.pending) >= utf8.UTFMax {
		p.screen.WriteRune(utf8.RuneError)
		p.pending = p.pending[:0]
	}
}

func (p *Parser) escape(b byte) {
	switch b {
	case '[':
		p.state = stateCSI
	case ']':
		p.state = stateOSC
		p.osc = p.osc[:0]
	case '7':
		p.screen.SaveCursor()
		p.state = stateGround
	case '8':
		p.screen.RestoreCursor()
		p.state = stateGround
	case 'D':
		p.screen.LineFeed()
		p.state = stateGround
	case 'E':
		p.screen.CarriageReturn()
		p.screen.LineFeed()
		p.state = stateGround
	case 'M':
		p.screen.ReverseLineFeed()
		p.state = stateGround
	case 'c':
		p.screen.Reset()
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *Parser) csi(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		p.params[len(p.params)-1] = p.params[len(p.params)-1]*10 + int(b-'0')
	case b == ';':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		p.params = append(p.params, 0)
	case b == '?':
		p.private = true
	case b >= 0x20 && b <= 0x3f:
		// intermediates and remaining prefixes are skipped
	case b >= 0x40 && b <= 0x7e:
		p.dispatchCSI(b)
		p.state = stateGround
	case b == 0x1b:
		// A new introducer abandons the half-built sequence.
		p.state = stateEscape
		p.params = p.params[:0]
		p.private = false
	default:
		p.state = stateGround
	}
}

func (p *Parser) dispatchCSI(final byte) {
	s := p.screen
	switch final {
	case 'A':
		s.MoveCursorBy(0, -p.param(0, 1))
	case 'B':
		s.MoveCursorBy(0, p.param(0, 1))
	case 'C':
		s.MoveCursorBy(p.param(0, 1), 0)
	case 'D':
		s.MoveCursorBy(-p.param(0, 1), 0)
	case 'E':
		s.CarriageReturn()
		for i := 0; i < p.param(0, 1); i++ {
			s.LineFeed()
		}
	case 'F':
		s.CarriageReturn()
		for i := 0; i < p.param(0, 1); i++ {
			s.ReverseLineFeed()
		}
	case 'G':
		_, y := s.Cursor()
		s.MoveCursor(p.param(0, 1)-1, y)
	case 'H', 'f':
		s.MoveCursor(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'J':
		s.ClearScreen(p.param(0, 0))
	case 'K':
		s.ClearLine(p.param(0, 0))
	case 'L':
		s.InsertLines(p.param(0, 1))
	case 'M':
		s.DeleteLines(p.param(0, 1))
	case 'P':
		s.DeleteChars(p.param(0, 1))
	case 'S':
		s.scrollUp(p.param(0, 1))
	case 'T':
		s.scrollDown(p.param(0, 1))
	case 'X':
		s.EraseChars(p.param(0, 1))
	case '@':
		s.InsertChars(p.param(0, 1))
	case 'd':
		x, _ := s.Cursor()
		s.MoveCursor(x, p.param(0, 1)-1)
	case 'h', 'l':
		if p.private {
			p.privateMode(final == 'h')
		}
	case 'm':
		p.sgr()
	case 'r':
		s.SetScrollRegion(p.param(0, 1)-1, p.param(1, s.Height())-1)
	case 's':
		s.SaveCursor()
	case 'u':
		s.RestoreCursor()
	default:
		// unhandled finals are ignored
	}
}

func (p *Parser) privateMode(set bool) {
	for _, mode := range p.params {
		switch mode {
		case 7:
			p.screen.SetAutoWrap(set)
		case 25:
			// cursor visibility; panes do not draw a process cursor
		}
	}
}

// sgr applies SGR parameters to the screen pen.
func (p *Parser) sgr() {
	if len(p.params) == 0 {
		p.screen.ResetPen()
		return
	}
	s := p.screen
	for i := 0; i < len(p.params); i++ {
		switch n := p.params[i]; {
		case n == 0:
			s.ResetPen()
		case n == 1:
			s.AddAttr(AttrBold)
		case n == 2:
			s.AddAttr(AttrDim)
		case n == 3:
			s.AddAttr(AttrItalic)
		case n == 4:
			s.AddAttr(AttrUnderline)
		case n == 5:
			s.AddAttr(AttrBlink)
		case n == 7:
			s.AddAttr(AttrReverse)
		case n == 9:
			s.AddAttr(AttrStrike)
		case n == 22:
			s.ClearAttr(AttrBold | AttrDim)
		case n == 23:
			s.ClearAttr(AttrItalic)
		case n == 24:
			s.ClearAttr(AttrUnderline)
		case n == 25:
			s.ClearAttr(AttrBlink)
		case n == 27:
			s.ClearAttr(AttrReverse)
		case n == 29:
			s.ClearAttr(AttrStrike)
		case n >= 30 && n <= 37:
			s.SetForeground(IndexedColor(n - 30))
		case n == 38:
			i = p.extendedColor(i, s.SetForeground)
		case n == 39:
			s.SetForeground(DefaultColor)
		case n >= 40 && n <= 47:
			s.SetBackground(IndexedColor(n - 40))
		case n == 48:
			i = p.extendedColor(i, s.SetBackground)
		case n == 49:
			s.SetBackground(DefaultColor)
		case n >= 90 && n <= 97:
			s.SetForeground(IndexedColor(n - 90 + 8))
		case n >= 100 && n <= 107:
			s.SetBackground(IndexedColor(n - 100 + 8))
		}
	}
}

// extendedColor handles 38;5;n / 38;2;r;g;b (and the 48 equivalents),
// returning the index of the last parameter consumed.
func (p *Parser) extendedColor(i int, set func(Color)) int {
	if i+1 >= len(p.params) {
		return i
	}
	switch p.params[i+1] {
	case 5:
		if i+2 < len(p.params) {
			set(IndexedColor(p.params[i+2]))
			return i + 2
		}
	case 2:
		if i+4 < len(p.params) {
			set(RGBColor(clamp8(p.params[i+2]), clamp8(p.params[i+3]), clamp8(p.params[i+4])))
			return i + 4
		}
	}
	return i
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (p *Parser) oscByte(b byte) {
	switch b {
	case 0x07:
		p.oscDone()
		p.state = stateGround
	case 0x1b: // ESC \ terminator; the '\' falls through escape()
		p.oscDone()
		p.state = stateEscape
	default:
		if len(p.osc) < 4096 {
			p.osc = append(p.osc, b)
		}
	}
}

func (p *Parser) oscDone() {
	data := string(p.osc)
	cmd, value, found := strings.Cut(data, ";")
	if !found {
		return
	}
	if n, err := strconv.Atoi(cmd); err == nil && (n == 0 || n == 2) {
		if p.onTitle != nil {
			p.onTitle(value)
		}
	}
}

func (p *Parser) param(index, def int) int {
	if index < len(p.params) && p.params[index] > 0 {
		return p.params[index]
	}
	return def
}
