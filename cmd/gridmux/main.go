// Package main is the entry point for the gridmux terminal multiplexer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dshills/gridmux/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, file := parseFlags()

	text, err := specText(file, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	opts.Spec = text

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var activator string
	var file string
	var showVersion bool
	var showHelp bool

	flag.BoolVar(&opts.Wait, "wait", false, "Keep running after every pane's command exits")
	flag.BoolVar(&opts.Wait, "w", false, "Keep running after every pane's command exits (shorthand)")
	flag.StringVar(&activator, "activator", "", "Prefix chord character (default 'a', i.e. Ctrl-A)")
	flag.StringVar(&activator, "a", "", "Prefix chord character (shorthand)")
	flag.StringVar(&opts.Title, "title", "", "Terminal window title")
	flag.StringVar(&opts.Title, "t", "", "Terminal window title (shorthand)")
	flag.StringVar(&file, "file", "", "Read the layout from a file ('-' for stdin)")
	flag.StringVar(&file, "f", "", "Read the layout from a file (shorthand)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Append structured logs to a file")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gridmux - tiled terminal multiplexer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gridmux [options] [-- layout...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridmux -- '[ vim .. htop ]'          Two panes side by side\n")
		fmt.Fprintf(os.Stderr, "  gridmux -f layout.mux                 Layout from a file\n")
		fmt.Fprintf(os.Stderr, "  echo '[ a : b ]' | gridmux            Layout from stdin\n")
		fmt.Fprintf(os.Stderr, "  gridmux -w -- '[ make .. make test ]' Stay up after commands exit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("gridmux %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if activator != "" {
		opts.Activator = []rune(activator)[0]
	}

	return opts, file
}

// specText resolves the layout text: positional arguments win, then
// -f, then stdin.
func specText(file string, args []string) (string, error) {
	if len(args) > 0 {
		return joinArgs(args), nil
	}
	if file != "" && file != "-" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read layout: %w", err)
		}
		return string(data), nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no layout given (pass it as arguments, with -f, or on stdin)")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// joinArgs rebuilds a layout string from shell-split arguments,
// re-quoting any argument the layout grammar would otherwise split.
func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = quoteArg(arg)
	}
	return strings.Join(quoted, " ")
}

func quoteArg(arg string) string {
	if !strings.ContainsAny(arg, " \t\n\"'") {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range arg {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
