package spec

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) Node {
	t.Helper()
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return root
}

func parseErr(t *testing.T, src string) *ParseError {
	t.Helper()
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("Parse(%q) succeeded, want error", src)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse(%q) error %v is not a *ParseError", src, err)
	}
	return pe
}

func TestParseSingleCommand(t *testing.T) {
	root := mustParse(t, "vim")
	cmd, ok := root.(*Command)
	if !ok {
		t.Fatalf("expected *Command, got %T", root)
	}
	if cmd.Command != "vim" {
		t.Errorf("command = %q, want %q", cmd.Command, "vim")
	}
	if cmd.Focus || cmd.Restart || cmd.Delay != nil || cmd.Title != nil {
		t.Errorf("unexpected options set: %+v", cmd)
	}
}

func TestParseCommandOptions(t *testing.T) {
	root := mustParse(t, `-r -d 500 "cmd"`)
	cmd := root.(*Command)
	if cmd.Command != "cmd" {
		t.Errorf("command = %q, want %q", cmd.Command, "cmd")
	}
	if !cmd.Restart {
		t.Error("restart not set")
	}
	if cmd.Delay == nil || *cmd.Delay != 500 {
		t.Errorf("delay = %v, want 500", cmd.Delay)
	}
}

func TestParseLongOptions(t *testing.T) {
	root := mustParse(t, `--focus --restart --delay 3 --title "build loop" make`)
	cmd := root.(*Command)
	if !cmd.Focus || !cmd.Restart {
		t.Errorf("focus/restart not set: %+v", cmd)
	}
	if cmd.Delay == nil || *cmd.Delay != 3 {
		t.Errorf("delay = %v, want 3", cmd.Delay)
	}
	if cmd.Title == nil || *cmd.Title != "build loop" {
		t.Errorf("title = %v, want %q", cmd.Title, "build loop")
	}
	if cmd.Label() != "build loop" {
		t.Errorf("Label() = %q, want %q", cmd.Label(), "build loop")
	}
}

func TestParseVerticalSplit(t *testing.T) {
	root := mustParse(t, "[ a : b : c ]")
	split, ok := root.(*Split)
	if !ok {
		t.Fatalf("expected *Split, got %T", root)
	}
	if split.Orient != Vertical {
		t.Errorf("orientation = %v, want vertical", split.Orient)
	}
	if len(split.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(split.Children))
	}
}

func TestParseHorizontalSplit(t *testing.T) {
	root := mustParse(t, "[ a .. b ]")
	split := root.(*Split)
	if split.Orient != Horizontal {
		t.Errorf("orientation = %v, want horizontal", split.Orient)
	}
	if len(split.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(split.Children))
	}
}

func TestParseNestedSplit(t *testing.T) {
	root := mustParse(t, `[ vim .. [ make : htop : -t logs "tail -f x.log" ] ]`)
	outer := root.(*Split)
	if outer.Orient != Horizontal {
		t.Fatalf("outer orientation = %v, want horizontal", outer.Orient)
	}
	inner, ok := outer.Children[1].(*Split)
	if !ok {
		t.Fatalf("expected nested *Split, got %T", outer.Children[1])
	}
	if inner.Orient != Vertical || len(inner.Children) != 3 {
		t.Fatalf("inner split wrong shape: %+v", inner)
	}

	leaves := Leaves(root)
	want := []string{"vim", "make", "htop", "tail -f x.log"}
	if len(leaves) != len(want) {
		t.Fatalf("leaves = %d, want %d", len(leaves), len(want))
	}
	for i, w := range want {
		if leaves[i].Command != w {
			t.Errorf("leaf %d = %q, want %q", i, leaves[i].Command, w)
		}
	}
}

func TestParseMixedSeparators(t *testing.T) {
	pe := parseErr(t, "[ a : b .. c ]")
	if !strings.Contains(pe.Msg, "mixed") {
		t.Errorf("error %q does not mention mixed separators", pe.Msg)
	}
}

func TestParseUnterminatedBracket(t *testing.T) {
	pe := parseErr(t, "[ a")
	if pe.Pos.Line != 1 || pe.Pos.Col != 1 {
		t.Errorf("error position = %v, want line 1 col 1 (the '[')", pe.Pos)
	}
}

func TestParseErrorPositions(t *testing.T) {
	pe := parseErr(t, "[ a :\n  b ..")
	if pe.Pos.Line != 2 {
		t.Errorf("error line = %d, want 2", pe.Pos.Line)
	}
}

func TestParseSingleChildSplit(t *testing.T) {
	parseErr(t, "[ a ]")
}

func TestParseMissingCommand(t *testing.T) {
	pe := parseErr(t, "-r -d 500")
	if !strings.Contains(pe.Msg, "command") {
		t.Errorf("error %q does not mention missing command", pe.Msg)
	}
}

func TestParseUnknownOption(t *testing.T) {
	pe := parseErr(t, "-s 10 vim")
	if !strings.Contains(pe.Msg, "unknown option") {
		t.Errorf("error %q does not mention unknown option", pe.Msg)
	}
}

func TestParseTrailingInput(t *testing.T) {
	parseErr(t, "[ a : b ] extra")
}

func TestParseNumberBases(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{`-d 500 x`, 500},
		{`-d 0x1f x`, 31},
		{`-d 0o17 x`, 15},
		{`-d 0b101 x`, 5},
		{`-d 2.75 x`, 2},
		{`-d 1e3 x`, 1000},
		{`-d -5 x`, -5},
	}
	for _, tt := range tests {
		root := mustParse(t, tt.src)
		cmd := root.(*Command)
		if cmd.Delay == nil || *cmd.Delay != tt.want {
			t.Errorf("Parse(%q) delay = %v, want %d", tt.src, cmd.Delay, tt.want)
		}
	}
}

func TestParseQuotedStrings(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"a b c"`, "a b c"},
		{`"tab\there"`, "tab\there"},
		{`"nl\nesc\e"`, "nl\nesc\x1b"},
		{`"hex\x41"`, "hexA"},
		{`"unié"`, "unié"},
		{`"quote\"inside"`, `quote"inside`},
		{`'single \' quote'`, "single ' quote"},
		{`'backslash \n stays'`, `backslash \n stays`},
	}
	for _, tt := range tests {
		root := mustParse(t, tt.src)
		cmd := root.(*Command)
		if cmd.Command != tt.want {
			t.Errorf("Parse(%s) command = %q, want %q", tt.src, cmd.Command, tt.want)
		}
	}
}

func TestParseInvalidEscape(t *testing.T) {
	parseErr(t, `"bad\q"`)
	parseErr(t, `"short\x4"`)
	parseErr(t, `"open`)
}

func TestParseComments(t *testing.T) {
	src := `
	// top pane
	[ vim /* the editor */ :
	  htop ] // done
	`
	root := mustParse(t, src)
	if len(Leaves(root)) != 2 {
		t.Fatalf("leaves = %d, want 2", len(Leaves(root)))
	}
	parseErr(t, "/* never closed")
}

func TestValidateFocus(t *testing.T) {
	ok := mustParse(t, "[ -f a : b ]")
	if err := Validate(ok); err != nil {
		t.Errorf("single focus rejected: %v", err)
	}

	dup := mustParse(t, "[ -f a : -f b ]")
	if err := Validate(dup); !errors.Is(err, ErrMultipleFocus) {
		t.Errorf("duplicate focus error = %v, want ErrMultipleFocus", err)
	}
}

func TestFocusIndex(t *testing.T) {
	root := mustParse(t, "[ a : -f b : c ]")
	leaves := Leaves(root)
	if got := FocusIndex(leaves); got != 1 {
		t.Errorf("FocusIndex = %d, want 1", got)
	}

	none := Leaves(mustParse(t, "[ a : b ]"))
	if got := FocusIndex(none); got != 0 {
		t.Errorf("FocusIndex with no flag = %d, want 0", got)
	}
}

func TestBarewordBoundaries(t *testing.T) {
	// '.' and '-' end barewords, so adjacent separators still lex.
	root := mustParse(t, "[2..3]")
	split := root.(*Split)
	if split.Orient != Horizontal || len(split.Children) != 2 {
		t.Fatalf("wrong shape: %+v", split)
	}
	if split.Children[0].(*Command).Command != "2" {
		t.Errorf("first leaf = %q, want %q", split.Children[0].(*Command).Command, "2")
	}
}
