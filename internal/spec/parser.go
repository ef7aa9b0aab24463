package spec

import (
	"strconv"
	"strings"
)

// Parse parses spec text into a layout tree. The tree is immutable by
// convention: nothing in this package mutates a returned node.
//
// Parsing is deterministic recursive descent with one token of
// lookahead; a directive starting with '[' is a split, anything else
// is a command.
func Parse(src string) (Node, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.bump(); err != nil {
		return nil, err
	}
	root, err := p.parseDirective()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != tokEOF {
		return nil, errorAt(p.cur.Pos, "unexpected %s after layout", p.cur.Kind)
	}
	return root, nil
}

type parser struct {
	lex *lexer
	cur token
}

// bump advances to the next token.
func (p *parser) bump() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parseDirective() (Node, error) {
	if p.cur.Kind == tokLBracket {
		return p.parseSplit()
	}
	return p.parseCommand()
}

func (p *parser) parseSplit() (Node, error) {
	open := p.cur.Pos
	if err := p.bump(); err != nil {
		return nil, err
	}

	first, err := p.parseDirective()
	if err != nil {
		return nil, err
	}

	var orient Orientation
	switch p.cur.Kind {
	case tokColon:
		orient = Vertical
	case tokDotDot:
		orient = Horizontal
	case tokRBracket:
		return nil, errorAt(p.cur.Pos, "a split needs at least two panes")
	case tokEOF:
		return nil, errorAt(open, "unterminated '['")
	default:
		return nil, errorAt(p.cur.Pos, "expected ':' or '..' between panes, got %s", p.cur.Kind)
	}
	sep := p.cur.Kind

	children := []Node{first}
	for p.cur.Kind == sep {
		if err := p.bump(); err != nil {
			return nil, err
		}
		child, err := p.parseDirective()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	switch p.cur.Kind {
	case tokRBracket:
		if err := p.bump(); err != nil {
			return nil, err
		}
		return &Split{Orient: orient, Children: children}, nil
	case tokColon, tokDotDot:
		return nil, errorAt(p.cur.Pos, "mixed ':' and '..' in one split")
	case tokEOF:
		return nil, errorAt(open, "unterminated '['")
	default:
		return nil, errorAt(p.cur.Pos, "expected %s or ']', got %s", sep, p.cur.Kind)
	}
}

func (p *parser) parseCommand() (Node, error) {
	cmd := &Command{}

	for p.cur.Kind == tokOption {
		opt := p.cur
		if err := p.bump(); err != nil {
			return nil, err
		}
		switch opt.Text {
		case "f", "focus":
			cmd.Focus = true
		case "r", "restart":
			cmd.Restart = true
		case "d", "delay":
			if p.cur.Kind != tokNumber {
				return nil, errorAt(p.cur.Pos, "--delay needs a number, got %s", p.cur.Kind)
			}
			n, err := parseNumber(p.cur)
			if err != nil {
				return nil, err
			}
			cmd.Delay = &n
			if err := p.bump(); err != nil {
				return nil, err
			}
		case "t", "title":
			if !isStringToken(p.cur.Kind) {
				return nil, errorAt(p.cur.Pos, "--title needs a string, got %s", p.cur.Kind)
			}
			title := p.cur.Text
			cmd.Title = &title
			if err := p.bump(); err != nil {
				return nil, err
			}
		default:
			return nil, errorAt(opt.Pos, "unknown option -%s", opt.Text)
		}
	}

	if !isStringToken(p.cur.Kind) {
		return nil, errorAt(p.cur.Pos, "expected a command, got %s", p.cur.Kind)
	}
	cmd.Command = p.cur.Text
	if err := p.bump(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// isStringToken reports whether a token can serve as a string value.
// Barewords and raw numeric text are both acceptable command names.
func isStringToken(k tokenKind) bool {
	return k == tokWord || k == tokString || k == tokNumber
}

// parseNumber evaluates a numeric literal token to an int. Integer
// literals may carry 0b/0o/0x prefixes; floats keep their integer part.
func parseNumber(tok token) (int, error) {
	text := tok.Text
	if isFloatText(text) {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, errorAt(tok.Pos, "invalid number %q", text)
		}
		return int(f), nil
	}
	n, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return 0, errorAt(tok.Pos, "invalid number %q", text)
	}
	return int(n), nil
}

func isFloatText(text string) bool {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") ||
		strings.HasPrefix(text, "-0x") || strings.HasPrefix(text, "-0X") {
		return false
	}
	return strings.ContainsAny(text, ".eE")
}
