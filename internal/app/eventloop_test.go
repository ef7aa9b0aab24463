package app

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridmux/internal/config"
	"github.com/dshills/gridmux/internal/layout"
	"github.com/dshills/gridmux/internal/mux"
	"github.com/dshills/gridmux/internal/session"
	"github.com/dshills/gridmux/internal/surface"
)

// newTestApp wires an App over a simulated screen, with panes but no
// spawned processes, so the key path can be driven directly.
func newTestApp(t *testing.T, panes int) *App {
	t.Helper()
	surf, err := surface.NewSimulation(80, 24)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(surf.Fini)
	log, err := newLogger("", false)
	if err != nil {
		t.Fatal(err)
	}
	a := &App{
		cfg:     config.Config{Activator: 'a', Shell: "/bin/sh"},
		log:     log,
		surf:    surf,
		machine: mux.Machine{Activator: 'a'},
		state:   mux.State{Count: panes},
		inputOn: true,
		manager: session.NewManager("/bin/sh", false, log),
	}
	for i := 0; i < panes; i++ {
		rect := layout.Rect{Y: i * (24 / panes), W: 80, H: 24 / panes}
		a.panes = append(a.panes, surf.CreatePane(rect, "sh", 10))
	}
	return a
}

func chordEvent() *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModCtrl)
}

func runeEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, 0)
}

func TestHandleKeyChordEntersPrefix(t *testing.T) {
	a := newTestApp(t, 2)
	if err := a.handleKey(chordEvent()); err != nil {
		t.Fatal(err)
	}
	if a.state.Phase != mux.PhasePrefix {
		t.Errorf("phase = %v, want prefix", a.state.Phase)
	}
	if a.inputOn {
		t.Error("input still enabled in prefix")
	}
}

// The kill command works no matter what state the focused pane is in.
func TestHandleKeyKillChordInScrollMode(t *testing.T) {
	a := newTestApp(t, 2)
	a.panes[0].EnterScroll()

	if err := a.handleKey(chordEvent()); err != nil {
		t.Fatal(err)
	}
	if a.state.Phase != mux.PhasePrefix {
		t.Fatalf("phase = %v, want prefix (chord must break through scroll mode)", a.state.Phase)
	}
	if err := a.handleKey(runeEvent('k')); !errors.Is(err, ErrQuit) {
		t.Errorf("err = %v, want ErrQuit", err)
	}
}

// chord, v, chord, k: entering scroll mode must not strand the machine
// in prefix, and the second chord still reaches it.
func TestHandleKeyKillAfterScrollCommand(t *testing.T) {
	a := newTestApp(t, 1)
	if err := a.handleKey(chordEvent()); err != nil {
		t.Fatal(err)
	}
	if err := a.handleKey(runeEvent('v')); err != nil {
		t.Fatal(err)
	}
	if !a.panes[0].Scrolling() {
		t.Fatal("pane not in scroll mode after the v command")
	}
	if err := a.handleKey(chordEvent()); err != nil {
		t.Fatal(err)
	}
	if err := a.handleKey(runeEvent('k')); !errors.Is(err, ErrQuit) {
		t.Errorf("err = %v, want ErrQuit", err)
	}
}

// Plain keys scroll while the machine is in its normal phase, and
// leaving scroll mode does not turn the next keystroke into a command.
func TestHandleKeyScrollThenPlainKeys(t *testing.T) {
	a := newTestApp(t, 1)
	p := a.panes[0]
	for i := 0; i < 40; i++ {
		p.FeedString("line\r\n")
	}
	p.EnterScroll()

	if err := a.handleKey(tcell.NewEventKey(tcell.KeyUp, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if a.state.Phase != mux.PhaseNormal {
		t.Errorf("phase = %v after scroll key, want normal", a.state.Phase)
	}
	if err := a.handleKey(runeEvent('q')); err != nil {
		t.Fatal(err)
	}
	if p.Scrolling() {
		t.Fatal("q did not leave scroll mode")
	}
	// k is an ordinary keystroke now, not a command.
	if err := a.handleKey(runeEvent('k')); err != nil {
		t.Errorf("plain k after scroll mode: err = %v", err)
	}
	if a.state.Phase != mux.PhaseNormal {
		t.Errorf("phase = %v, want normal", a.state.Phase)
	}
}
