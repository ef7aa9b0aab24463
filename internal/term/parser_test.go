package term

import (
	"strings"
	"testing"
)

func feed(t *testing.T, w, h int, input string) *Screen {
	t.Helper()
	s := NewScreen(w, h, 0)
	NewParser(s).ParseString(input)
	return s
}

func TestParserPlainText(t *testing.T) {
	s := feed(t, 10, 2, "hello\r\nworld")
	lines := strings.Split(s.Text(), "\n")
	if lines[0] != "hello     " || lines[1] != "world     " {
		t.Errorf("screen:\n%q", s.Text())
	}
}

func TestParserCursorMovement(t *testing.T) {
	s := feed(t, 10, 5, "\x1b[3;4Hx")
	if s.Cell(3, 2).Rune != 'x' {
		t.Errorf("CUP put rune at wrong cell:\n%q", s.Text())
	}

	s = feed(t, 10, 5, "abc\x1b[2D_")
	if got := strings.Split(s.Text(), "\n")[0]; !strings.HasPrefix(got, "a_c") {
		t.Errorf("CUB: line = %q, want a_c...", got)
	}
}

func TestParserEraseLine(t *testing.T) {
	s := feed(t, 6, 1, "abcdef\x1b[1;3H\x1b[K")
	if got := s.Text(); got != "ab    " {
		t.Errorf("EL: %q, want %q", got, "ab    ")
	}
}

func TestParserEraseDisplay(t *testing.T) {
	s := feed(t, 4, 2, "aaaa\r\nbbbb\x1b[H\x1b[2J")
	if got := s.Text(); strings.TrimSpace(got) != "" {
		t.Errorf("ED2 left content: %q", got)
	}
}

func TestParserSGRColors(t *testing.T) {
	s := feed(t, 4, 1, "\x1b[31;1mE\x1b[0mn")
	c := s.Cell(0, 0)
	if c.FG.Index != 1 || c.FG.Default {
		t.Errorf("fg = %+v, want red (index 1)", c.FG)
	}
	if c.Attr&AttrBold == 0 {
		t.Error("bold missing")
	}
	n := s.Cell(1, 0)
	if !n.FG.Default || n.Attr != 0 {
		t.Errorf("reset did not take: %+v", n)
	}
}

func TestParserSGR256AndRGB(t *testing.T) {
	s := feed(t, 2, 1, "\x1b[38;5;208ma\x1b[48;2;10;20;30mb")
	if got := s.Cell(0, 0).FG; got.Index != 208 {
		t.Errorf("256-color fg = %+v, want index 208", got)
	}
	if got := s.Cell(1, 0).BG; got.Index != -1 || got.R != 10 || got.G != 20 || got.B != 30 {
		t.Errorf("rgb bg = %+v, want 10/20/30", got)
	}
}

func TestParserScrollRegion(t *testing.T) {
	// DECSTBM rows 1-2, fill three lines: top of the region scrolls away.
	s := feed(t, 3, 3, "\x1b[1;2r1\r\n2\r\n3")
	lines := strings.Split(s.Text(), "\n")
	if lines[0] != "2  " || lines[1] != "3  " {
		t.Errorf("region scroll wrong:\n%q", s.Text())
	}
}

func TestParserOSCTitle(t *testing.T) {
	var got string
	s := NewScreen(5, 1, 0)
	p := NewParser(s)
	p.SetTitleFunc(func(title string) { got = title })

	p.ParseString("\x1b]0;my title\x07after")
	if got != "my title" {
		t.Errorf("BEL-terminated title = %q", got)
	}
	if s.Cell(0, 0).Rune != 'a' {
		t.Errorf("text after OSC lost: %q", s.Text())
	}

	p.ParseString("\x1b]2;second\x1b\\")
	if got != "second" {
		t.Errorf("ST-terminated title = %q", got)
	}
}

func TestParserUTF8AcrossChunks(t *testing.T) {
	s := NewScreen(4, 1, 0)
	p := NewParser(s)
	raw := []byte("héj")
	p.Parse(raw[:2]) // splits the two-byte é
	p.Parse(raw[2:])
	if s.Cell(1, 0).Rune != 'é' {
		t.Errorf("got %q, want é", s.Cell(1, 0).Rune)
	}
	if s.Cell(2, 0).Rune != 'j' {
		t.Errorf("got %q, want j", s.Cell(2, 0).Rune)
	}
}

func TestParserInvalidUTF8(t *testing.T) {
	s := NewScreen(4, 1, 0)
	p := NewParser(s)
	p.Parse([]byte{0x80, 'x'})
	if s.Cell(0, 0).Rune != '�' {
		t.Errorf("lone continuation byte → %q, want U+FFFD", s.Cell(0, 0).Rune)
	}
	if s.Cell(1, 0).Rune != 'x' {
		t.Errorf("following byte lost: %q", s.Text())
	}
}

func TestParserCSIAcrossChunks(t *testing.T) {
	s := NewScreen(6, 2, 0)
	p := NewParser(s)
	p.ParseString("\x1b[2")
	p.ParseString(";3Hx")
	if s.Cell(2, 1).Rune != 'x' {
		t.Errorf("split CSI misparsed:\n%q", s.Text())
	}
}

func TestParserEscapeRestartsMidCSI(t *testing.T) {
	// An ESC inside an unfinished CSI abandons it and starts over.
	s := feed(t, 6, 3, "\x1b[2\x1b[2;3Hx")
	if s.Cell(2, 1).Rune != 'x' {
		t.Errorf("restarted sequence misparsed:\n%q", s.Text())
	}
}

func TestParserIgnoresUnknown(t *testing.T) {
	s := feed(t, 5, 1, "\x1b[?2004h\x1b[>1cok")
	if got := strings.TrimRight(s.Text(), " "); got != "ok" {
		t.Errorf("unknown sequences leaked: %q", got)
	}
}
