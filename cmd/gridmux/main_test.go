package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestQuoteArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vim", "vim"},
		{"tail -f log", `"tail -f log"`},
		{`say "hi"`, `"say \"hi\""`},
		{"don't", `"don't"`},
	}
	for _, tt := range tests {
		if got := quoteArg(tt.in); got != tt.want {
			t.Errorf("quoteArg(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinArgs(t *testing.T) {
	got := joinArgs([]string{"[", "vim", "..", "tail -f x", "]"})
	want := `[ vim .. "tail -f x" ]`
	if got != want {
		t.Errorf("joinArgs = %q, want %q", got, want)
	}
}

func TestSpecTextPositionalWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.mux")
	if err := os.WriteFile(path, []byte("from-file"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := specText(path, []string{"from-args"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "from-args" {
		t.Errorf("specText = %q, want positional args to win", got)
	}
}

func TestSpecTextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.mux")
	if err := os.WriteFile(path, []byte("[ a : b ]"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := specText(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "[ a : b ]" {
		t.Errorf("specText = %q", got)
	}
}

func TestSpecTextMissingFile(t *testing.T) {
	if _, err := specText(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Error("missing layout file did not error")
	}
}
