// Package surface renders panes onto the real terminal with tcell and
// translates between tcell key events and PTY byte sequences. It is the
// only package that touches the physical terminal; everything above it
// deals in rectangles, cells, and events.
package surface

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridmux/internal/layout"
)

// Surface owns the tcell screen and the set of panes drawn on it.
type Surface struct {
	screen tcell.Screen
	title  string
	panes  []*Pane
}

// New creates a surface. Init must be called before any drawing.
func New(title string) (*Surface, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Surface{screen: screen, title: title}, nil
}

// NewSimulation creates a surface over tcell's in-memory screen, for
// exercising the event path without a terminal.
func NewSimulation(width, height int) (*Surface, error) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetSize(width, height)
	return &Surface{screen: screen}, nil
}

// Init takes over the terminal.
func (s *Surface) Init() error {
	if err := s.screen.Init(); err != nil {
		return err
	}
	if s.title != "" {
		s.screen.SetTitle(s.title)
	}
	return nil
}

// Fini releases the terminal. Safe to call more than once.
func (s *Surface) Fini() {
	s.screen.Fini()
}

// Size returns the terminal size in cells.
func (s *Surface) Size() (width, height int) {
	return s.screen.Size()
}

// ChannelEvents forwards terminal events to ch until quit is closed.
// It starts its own goroutine; events are consumed on the app loop.
func (s *Surface) ChannelEvents(ch chan<- tcell.Event, quit <-chan struct{}) {
	go s.screen.ChannelEvents(ch, quit)
}

// CreatePane adds a pane at rect with the given label and returns it.
func (s *Surface) CreatePane(rect layout.Rect, label string, scrollback int) *Pane {
	p := newPane(rect, label, scrollback)
	s.panes = append(s.panes, p)
	return p
}

// Render draws every pane and flushes to the terminal.
func (s *Surface) Render() {
	for _, p := range s.panes {
		p.draw(s.screen)
	}
	s.screen.Show()
}
