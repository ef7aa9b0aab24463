// Package app wires the parser, layout, surface, sessions, and the
// input state machine together and runs the event loop.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dshills/gridmux/internal/config"
	"github.com/dshills/gridmux/internal/layout"
	"github.com/dshills/gridmux/internal/mux"
	"github.com/dshills/gridmux/internal/session"
	"github.com/dshills/gridmux/internal/spec"
	"github.com/dshills/gridmux/internal/surface"
)

// ErrQuit marks an ordinary user-requested shutdown.
var ErrQuit = errors.New("quit")

// Options are the settings the CLI hands over. Zero values fall back
// to the config file and built-in defaults.
type Options struct {
	Spec      string
	Wait      bool
	Activator rune
	Title     string
	LogFile   string
	Debug     bool
}

// App owns every component of a run.
type App struct {
	opts Options
	cfg  config.Config
	log  *logrus.Logger

	tree   spec.Node
	leaves []*spec.Command

	surf    *surface.Surface
	panes   []*surface.Pane
	manager *session.Manager
	machine mux.Machine
	state   mux.State
	inputOn bool
}

// New parses and validates the layout before any terminal state is
// touched, so syntax and configuration errors print cleanly.
func New(opts Options) (*App, error) {
	cfg := config.Load()
	if opts.Activator != 0 {
		cfg.Activator = opts.Activator
	}
	if opts.Title != "" {
		cfg.Title = opts.Title
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}

	log, err := newLogger(cfg.LogFile, opts.Debug)
	if err != nil {
		return nil, err
	}

	tree, err := spec.Parse(opts.Spec)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(tree); err != nil {
		return nil, err
	}

	return &App{
		opts:    opts,
		cfg:     cfg,
		log:     log,
		tree:    tree,
		leaves:  spec.Leaves(tree),
		machine: mux.Machine{Activator: cfg.Activator},
		inputOn: true,
	}, nil
}

// newLogger writes to path when set and swallows output otherwise;
// the surface owns the terminal, so stderr is never an option while
// the program runs.
func newLogger(path string, debug bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if path == "" {
		return log, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, nil
}

// Run takes over the terminal, provisions sessions, and services
// events until shutdown. It returns nil on ordinary shutdown.
func (a *App) Run() error {
	surf, err := surface.New(a.cfg.Title)
	if err != nil {
		return err
	}
	if err := surf.Init(); err != nil {
		return err
	}
	a.surf = surf
	defer surf.Fini()

	width, height := surf.Size()
	rects, err := layout.Assign(a.tree, layout.Rect{W: width, H: height})
	if err != nil {
		return err
	}

	for i, leaf := range a.leaves {
		p := surf.CreatePane(rects[i], leaf.Label(), a.cfg.Scrollback)
		if leaf.Title == nil {
			// Untitled panes follow whatever title the process sets.
			p.SetTitleFunc(p.SetLabel)
		}
		a.panes = append(a.panes, p)
	}

	a.manager = session.NewManager(a.cfg.Shell, a.opts.Wait, a.log)
	if err := a.manager.Provision(a.leaves, sessionPanes(a.panes)); err != nil {
		return err
	}

	a.state = mux.State{
		Phase: mux.PhaseNormal,
		Focus: a.manager.Focus(),
		Count: len(a.panes),
	}
	a.panes[a.state.Focus].SetFocused(true)
	surf.Render()

	err = a.loop()
	a.manager.Shutdown()
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

// sessionPanes adapts the concrete panes to the session package's
// consumer interface.
func sessionPanes(panes []*surface.Pane) []session.Pane {
	out := make([]session.Pane, len(panes))
	for i, p := range panes {
		out[i] = p
	}
	return out
}
