package spec

import (
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBracket
	tokRBracket
	tokColon  // ':'  vertical separator
	tokDotDot // '..' horizontal separator
	tokOption // '-f', '--focus', ...
	tokWord   // bareword
	tokNumber // integer or float literal
	tokString // quoted string, Text holds the decoded value
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokColon:
		return "':'"
	case tokDotDot:
		return "'..'"
	case tokOption:
		return "option"
	case tokWord:
		return "word"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	default:
		return "token"
	}
}

type token struct {
	Kind tokenKind
	Text string
	Pos  Pos
}

// lexer splits spec text into tokens, tracking line/column positions.
// It works on bytes; multi-byte UTF-8 sequences only ever appear inside
// barewords and quoted strings, where they pass through untouched.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) pos() Pos {
	return Pos{Line: l.line, Col: l.col, Offset: l.off}
}

func (l *lexer) eof() bool {
	return l.off >= len(l.src)
}

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.off]
}

func (l *lexer) peekAt(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *lexer) advance() byte {
	b := l.src[l.off]
	l.off++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

// next returns the next token, skipping whitespace and comments.
func (l *lexer) next() (token, error) {
	if err := l.skipSpace(); err != nil {
		return token{}, err
	}

	start := l.pos()
	if l.eof() {
		return token{Kind: tokEOF, Pos: start}, nil
	}

	switch b := l.peek(); {
	case b == '[':
		l.advance()
		return token{Kind: tokLBracket, Text: "[", Pos: start}, nil
	case b == ']':
		l.advance()
		return token{Kind: tokRBracket, Text: "]", Pos: start}, nil
	case b == ':':
		l.advance()
		return token{Kind: tokColon, Text: ":", Pos: start}, nil
	case b == '.':
		l.advance()
		if l.peek() != '.' {
			return token{}, errorAt(start, "unexpected '.' (the horizontal separator is '..')")
		}
		l.advance()
		return token{Kind: tokDotDot, Text: "..", Pos: start}, nil
	case b == '-':
		return l.lexDash(start)
	case b == '"' || b == '\'':
		return l.lexQuoted(start)
	case b >= '0' && b <= '9':
		return l.lexNumber(start)
	case isWordByte(b):
		return l.lexWord(start)
	default:
		return token{}, errorAt(start, "unexpected character %q", rune(b))
	}
}

func (l *lexer) skipSpace() error {
	for !l.eof() {
		switch b := l.peek(); {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '/' && l.peekAt(1) == '/':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
		case b == '/' && l.peekAt(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.eof() {
					return errorAt(start, "unterminated block comment")
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

// lexDash handles everything introduced by '-': short and long options,
// and negative numeric literals.
func (l *lexer) lexDash(start Pos) (token, error) {
	if b := l.peekAt(1); b >= '0' && b <= '9' {
		l.advance() // consume '-'
		tok, err := l.lexNumber(start)
		if err != nil {
			return token{}, err
		}
		tok.Text = "-" + tok.Text
		return tok, nil
	}

	l.advance()
	long := false
	if l.peek() == '-' {
		long = true
		l.advance()
	}
	nameStart := l.off
	for !l.eof() && isOptionByte(l.peek()) {
		l.advance()
	}
	name := l.src[nameStart:l.off]
	if name == "" {
		return token{}, errorAt(start, "dangling '-'")
	}
	if !long && len(name) > 1 {
		return token{}, errorAt(start, "short options take a single letter, got -%s", name)
	}
	return token{Kind: tokOption, Text: name, Pos: start}, nil
}

// lexNumber segments an integer or float literal. Base prefixes 0b, 0o
// and 0x are recognized; a '.' continues the literal only when followed
// by a digit, so "2..3" still lexes as word, '..', word. Validation is
// left to strconv at parse time.
func (l *lexer) lexNumber(start Pos) (token, error) {
	from := l.off
	digits := func(valid func(byte) bool) {
		for !l.eof() && (valid(l.peek()) || l.peek() == '_') {
			l.advance()
		}
	}

	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		digits(isHexDigit)
		return token{Kind: tokNumber, Text: l.src[from:l.off], Pos: start}, nil
	}
	if l.peek() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B') {
		l.advance()
		l.advance()
		digits(func(b byte) bool { return b == '0' || b == '1' })
		return token{Kind: tokNumber, Text: l.src[from:l.off], Pos: start}, nil
	}
	if l.peek() == '0' && (l.peekAt(1) == 'o' || l.peekAt(1) == 'O') {
		l.advance()
		l.advance()
		digits(func(b byte) bool { return b >= '0' && b <= '7' })
		return token{Kind: tokNumber, Text: l.src[from:l.off], Pos: start}, nil
	}

	digits(isDigit)
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		digits(isDigit)
	}
	if b := l.peek(); b == 'e' || b == 'E' {
		if n := l.peekAt(1); isDigit(n) || ((n == '+' || n == '-') && isDigit(l.peekAt(2))) {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			digits(isDigit)
		}
	}
	return token{Kind: tokNumber, Text: l.src[from:l.off], Pos: start}, nil
}

func (l *lexer) lexWord(start Pos) (token, error) {
	from := l.off
	for !l.eof() && isWordByte(l.peek()) {
		l.advance()
	}
	return token{Kind: tokWord, Text: l.src[from:l.off], Pos: start}, nil
}

// lexQuoted decodes a quoted string. Double quotes support the full
// escape set; single quotes support only \' and keep every other
// backslash literal.
func (l *lexer) lexQuoted(start Pos) (token, error) {
	quote := l.advance()
	var sb strings.Builder
	for {
		if l.eof() {
			return token{}, errorAt(start, "unterminated string")
		}
		b := l.advance()
		if b == quote {
			return token{Kind: tokString, Text: sb.String(), Pos: start}, nil
		}
		if b != '\\' {
			sb.WriteByte(b)
			continue
		}
		if quote == '\'' {
			if l.peek() == '\'' {
				l.advance()
				sb.WriteByte('\'')
			} else {
				sb.WriteByte('\\')
			}
			continue
		}
		if l.eof() {
			return token{}, errorAt(start, "unterminated string")
		}
		escPos := l.pos()
		switch e := l.advance(); e {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'b':
			sb.WriteByte('\b')
		case 'v':
			sb.WriteByte('\v')
		case 'f':
			sb.WriteByte('\f')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'n':
			sb.WriteByte('\n')
		case 'e':
			sb.WriteByte(0x1b)
		case 'x':
			v, err := l.hexDigits(escPos, 2)
			if err != nil {
				return token{}, err
			}
			sb.WriteByte(byte(v))
		case 'u':
			v, err := l.hexDigits(escPos, 4)
			if err != nil {
				return token{}, err
			}
			sb.WriteRune(rune(v))
		default:
			return token{}, errorAt(escPos, "invalid escape \\%c", e)
		}
	}
}

func (l *lexer) hexDigits(pos Pos, n int) (int, error) {
	v := 0
	for i := 0; i < n; i++ {
		if l.eof() || !isHexDigit(l.peek()) {
			return 0, errorAt(pos, "expected %d hex digits", n)
		}
		v = v*16 + hexValue(l.advance())
	}
	return v, nil
}

// isWordByte reports whether b may appear in a bareword: anything but
// whitespace, brackets, separators, '-' and control characters.
func isWordByte(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '[', ']', ':', '.', '-':
		return false
	}
	return b >= 0x20 && b != 0x7f || b >= 0x80
}

func isOptionByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '-'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

func hexValue(b byte) int {
	switch {
	case isDigit(b):
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}
